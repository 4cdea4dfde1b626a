package blockfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"grimm.is/presetctl/internal/clock"
)

// Backuper copies a file aside before it is modified and returns the copy's
// path.
type Backuper interface {
	Backup(path string) (string, error)
}

// BackupFunc adapts a function to Backuper.
type BackupFunc func(path string) (string, error)

// Backup calls f.
func (f BackupFunc) Backup(path string) (string, error) {
	return f(path)
}

// FileBackup writes timestamped copies next to the config file, or into Dir.
// A copy is never overwritten: a stamp collision gets a "~N" sequence.
type FileBackup struct {
	// Dir defaults to a "backups" directory beside the config file.
	Dir string
	// Keep prunes the oldest copies of a file beyond this count. 0 keeps all.
	Keep  int
	Clock clock.Clock
}

// BackupInfo describes one backup copy.
type BackupInfo struct {
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
	Seq       int       `json:"seq,omitempty"`
	Size      int64     `json:"size"`

	stamp string
}

const backupExt = ".bak"

func (f *FileBackup) dirFor(path string) string {
	if f.Dir != "" {
		return f.Dir
	}
	return filepath.Join(filepath.Dir(path), "backups")
}

// Backup copies path to <dir>/<base>.<stamp>.bak.
func (f *FileBackup) Backup(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read config: %w", err)
	}

	dir := f.dirFor(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	base := filepath.Base(path)
	stamp := clock.Stamp(clock.Or(f.Clock).Now())

	for seq := 0; seq < 1000; seq++ {
		name := base + "." + stamp
		if seq > 0 {
			name += "~" + strconv.Itoa(seq)
		}
		backupPath := filepath.Join(dir, name+backupExt)

		if err := writeExclusive(backupPath, data); err != nil {
			if errors.Is(err, fs.ErrExist) {
				continue
			}
			return "", fmt.Errorf("failed to write backup: %w", err)
		}

		f.prune(path)
		return backupPath, nil
	}

	return "", fmt.Errorf("failed to write backup: too many backups for stamp %s", stamp)
}

func writeExclusive(path string, data []byte) error {
	fh, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0640)
	if err != nil {
		return err
	}
	if _, err := fh.Write(data); err != nil {
		fh.Close()
		os.Remove(path)
		return err
	}
	if err := fh.Sync(); err != nil {
		fh.Close()
		os.Remove(path)
		return err
	}
	return fh.Close()
}

// ListBackups returns the backups of path, newest first.
func (f *FileBackup) ListBackups(path string) ([]BackupInfo, error) {
	dir := f.dirFor(path)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	prefix := filepath.Base(path) + "."
	var backups []BackupInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, backupExt) {
			continue
		}

		stamp := strings.TrimSuffix(strings.TrimPrefix(name, prefix), backupExt)
		seq := 0
		if s, n, ok := strings.Cut(stamp, "~"); ok {
			v, err := strconv.Atoi(n)
			if err != nil {
				continue
			}
			stamp, seq = s, v
		}
		ts, err := time.Parse(clock.StampLayout, stamp)
		if err != nil {
			continue
		}

		info := BackupInfo{
			Path:      filepath.Join(dir, name),
			Timestamp: ts,
			Seq:       seq,
			stamp:     stamp,
		}
		if fi, err := entry.Info(); err == nil {
			info.Size = fi.Size()
		}
		backups = append(backups, info)
	}

	sort.Slice(backups, func(i, j int) bool {
		if backups[i].stamp != backups[j].stamp {
			return backups[i].stamp > backups[j].stamp
		}
		return backups[i].Seq > backups[j].Seq
	})
	return backups, nil
}

// prune removes the oldest backups of path beyond Keep.
func (f *FileBackup) prune(path string) {
	if f.Keep <= 0 {
		return
	}
	backups, err := f.ListBackups(path)
	if err != nil || len(backups) <= f.Keep {
		return
	}
	for _, b := range backups[f.Keep:] {
		os.Remove(b.Path)
	}
}
