// Package target resolves site identifiers to their on-disk layout.
package target

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"grimm.is/presetctl/internal/validation"
)

var (
	ErrInvalidID = errors.New("invalid target id")
	ErrNotFound  = errors.New("target not found")
)

// SitePlaceholder is replaced by the target id in ConfigPath.
const SitePlaceholder = "{site}"

// Layout describes where sites and their config files live.
type Layout struct {
	SitesRoot string
	// Marker is the file whose presence proves a site exists.
	Marker string
	// ConfigPath is the config-block file. It may contain {site}; a
	// relative path is taken relative to the site root.
	ConfigPath string
	// Block is the marker token of the block presets write into.
	Block string
}

// Target is one resolved site.
type Target struct {
	ID         string
	Root       string
	ConfigPath string
	Block      string
}

// Resolve maps id onto the layout without touching the filesystem.
func (l Layout) Resolve(id string) (Target, error) {
	if err := validation.ValidateTargetID(id); err != nil {
		return Target{}, fmt.Errorf("%w: %w", ErrInvalidID, err)
	}
	root := filepath.Join(l.SitesRoot, id)
	cfg := strings.ReplaceAll(l.ConfigPath, SitePlaceholder, id)
	if !filepath.IsAbs(cfg) {
		cfg = filepath.Join(root, cfg)
	}
	return Target{ID: id, Root: root, ConfigPath: cfg, Block: l.Block}, nil
}

// Probe resolves id and checks its marker file.
func (l Layout) Probe(id string) (Target, error) {
	t, err := l.Resolve(id)
	if err != nil {
		return t, err
	}
	marker := filepath.Join(t.Root, l.Marker)
	if _, err := os.Stat(marker); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return t, fmt.Errorf("%w: %s (no %s)", ErrNotFound, id, l.Marker)
		}
		return t, fmt.Errorf("failed to probe %s: %w", id, err)
	}
	return t, nil
}
