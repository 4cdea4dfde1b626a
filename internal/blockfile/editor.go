package blockfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"grimm.is/presetctl/internal/logging"
)

var (
	ErrConfigNotFound   = errors.New("config file not found")
	ErrKeyNotFound      = errors.New("directive not found")
	ErrBackupFailed     = errors.New("backup failed")
	ErrInvalidDirective = errors.New("invalid directive")
)

// ValidateDirective checks that marker, key and value survive a
// write/read round trip.
func ValidateDirective(marker, key, value string) error {
	if !validKey(marker) {
		return fmt.Errorf("%w: invalid block marker %q", ErrInvalidDirective, marker)
	}
	if !validKey(key) {
		return fmt.Errorf("%w: invalid key %q", ErrInvalidDirective, key)
	}
	if value == "" || strings.TrimSpace(value) != value {
		return fmt.Errorf("%w: value for %s must be non-empty without surrounding space", ErrInvalidDirective, key)
	}
	if strings.ContainsAny(value, "\n\r{}") {
		return fmt.Errorf("%w: value for %s contains a reserved character", ErrInvalidDirective, key)
	}
	// A trailing ';' and a '#' after whitespace would be read back as
	// terminator and comment.
	if strings.HasSuffix(value, ";") || commentStart(value) >= 0 {
		return fmt.Errorf("%w: value for %s would not read back unchanged", ErrInvalidDirective, key)
	}
	return nil
}

// Editor performs read/modify/write operations on config files.
type Editor struct {
	backup Backuper
	logger *logging.Logger
}

// NewEditor creates an editor that backs files up through b before every
// mutation.
func NewEditor(b Backuper, logger *logging.Logger) *Editor {
	return &Editor{
		backup: b,
		logger: logging.Or(logger).WithComponent("blockfile"),
	}
}

// Load reads and parses path.
func (e *Editor) Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data), nil
}

// Read returns the first value of key anywhere in the file.
func (e *Editor) Read(path, key string) (string, error) {
	doc, err := e.Load(path)
	if err != nil {
		return "", err
	}
	value, ok := doc.Read(key)
	if !ok {
		return "", fmt.Errorf("%w: %s in %s", ErrKeyNotFound, key, path)
	}
	return value, nil
}

// Upsert sets key to value in the block named marker, creating the block
// if needed. A backup is taken on every call, including calls that end up
// changing nothing.
func (e *Editor) Upsert(path, marker, key, value string) (Change, error) {
	if err := ValidateDirective(marker, key, value); err != nil {
		return Change{}, err
	}

	var change Change
	err := e.mutate(path, func(doc *Document) (bool, error) {
		var err error
		change, err = doc.Upsert(marker, key, value)
		return change.Action != ActionUnchanged, err
	})
	if err != nil {
		return Change{}, err
	}

	e.logger.Debug("directive upserted", "path", path, "block", marker, "key", key, "action", string(change.Action))
	return change, nil
}

// Remove deletes every directive named key across the whole file, not only
// inside one block.
func (e *Editor) Remove(path, key string) (int, error) {
	var removed int
	err := e.mutate(path, func(doc *Document) (bool, error) {
		removed = doc.Remove(key)
		return removed > 0, nil
	})
	if err != nil {
		return 0, err
	}

	e.logger.Debug("directive removed", "path", path, "key", key, "count", removed)
	return removed, nil
}

// mutate runs the backup, edit, write sequence shared by Upsert and Remove.
func (e *Editor) mutate(path string, edit func(*Document) (bool, error)) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return fmt.Errorf("failed to stat config: %w", err)
	}

	if e.backup == nil {
		return fmt.Errorf("%w: no backup strategy configured", ErrBackupFailed)
	}
	backupPath, err := e.backup.Backup(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrBackupFailed, path, err)
	}
	e.logger.Debug("config backed up", "path", path, "backup", backupPath)

	doc, err := e.Load(path)
	if err != nil {
		return err
	}

	changed, err := edit(doc)
	if err != nil || !changed {
		return err
	}

	return writeAtomic(path, doc.Bytes(), info.Mode().Perm())
}

// writeAtomic replaces path through a temp file in the same directory.
func writeAtomic(path string, data []byte, perm fs.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close config: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("failed to set config mode: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace config: %w", err)
	}
	return nil
}
