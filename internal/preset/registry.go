package preset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"grimm.is/presetctl/internal/brand"
	"grimm.is/presetctl/internal/logging"
)

// Summary is one entry returned by Registry.List.
type Summary struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Path        string `json:"path"`
}

// Registry discovers presets in a directory.
type Registry struct {
	Dir     string
	Options Options
	logger  *logging.Logger
}

// NewRegistry creates a registry over dir.
func NewRegistry(dir string, opts Options) *Registry {
	return &Registry{
		Dir:     dir,
		Options: opts,
		logger:  logging.Or(opts.Logger).WithComponent("registry"),
	}
}

// List returns the structurally valid presets, sorted by filename.
// Invalid files are logged and skipped.
func (r *Registry) List() ([]Summary, error) {
	entries, err := r.readDir()
	if err != nil {
		return nil, err
	}

	list := make([]Summary, 0, len(entries))
	for _, path := range entries {
		p, err := StructurallyValidate(path, r.Options)
		if err != nil {
			r.logger.Warn("skipping preset", "path", path, "error", err)
			continue
		}
		list = append(list, Summary{Name: p.Name, Description: p.Description, Path: path})
	}
	return list, nil
}

// Locate returns the path of the preset called name: first <dir>/<name>.preset,
// then any file whose declared name matches.
func (r *Registry) Locate(name string) (string, error) {
	entries, err := r.readDir()
	if err != nil {
		return "", err
	}

	if name != "" && !strings.ContainsRune(name, filepath.Separator) {
		candidate := filepath.Join(r.Dir, name+brand.PresetExtension)
		for _, path := range entries {
			if path == candidate {
				return path, nil
			}
		}
	}

	for _, path := range entries {
		p, err := Parse(path, Options{Lenient: true, Logger: logging.Discard()})
		if err != nil {
			continue
		}
		if p.Name == name {
			return path, nil
		}
	}

	return "", fmt.Errorf("%w: %q in %s", ErrNotFound, name, r.Dir)
}

// Load locates and structurally validates a preset.
func (r *Registry) Load(name string) (*Preset, error) {
	path, err := r.Locate(name)
	if err != nil {
		return nil, err
	}
	return StructurallyValidate(path, r.Options)
}

// readDir returns preset file paths in filename order.
func (r *Registry) readDir() ([]string, error) {
	entries, err := os.ReadDir(r.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDirectoryNotFound, r.Dir)
		}
		return nil, fmt.Errorf("failed to read preset directory: %w", err)
	}

	// os.ReadDir returns entries sorted by filename.
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != brand.PresetExtension {
			continue
		}
		paths = append(paths, filepath.Join(r.Dir, entry.Name()))
	}
	return paths, nil
}

// StructurallyValidate parses path and checks it has a name and at least
// one known section.
func StructurallyValidate(path string, opts Options) (*Preset, error) {
	p, err := Parse(path, opts)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidPreset, err)
	}
	if err := Check(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Check applies the structural rules to an already parsed preset.
func Check(p *Preset) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: %s: missing name", ErrInvalidPreset, p.Source)
	}
	for _, s := range KnownSections {
		if p.HasSection(s) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s: needs at least one of the sections %v", ErrInvalidPreset, p.Source, KnownSections)
}
