package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"grimm.is/presetctl/internal/logging"
	"grimm.is/presetctl/internal/target"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

var markerRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]*$`)

// Validate checks a defaulted configuration.
func (c *Config) Validate() ValidationErrors {
	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if !filepath.IsAbs(c.SitesRoot) {
		add("sites_root", "must be an absolute path, got %q", c.SitesRoot)
	}
	if c.PresetsDir == "" {
		add("presets_dir", "must not be empty")
	}
	if c.SiteMarker == "" || strings.ContainsRune(c.SiteMarker, '/') {
		add("site_marker", "must be a file name, got %q", c.SiteMarker)
	}

	if cb := c.ConfigBlock; cb != nil {
		if filepath.IsAbs(cb.Path) && !strings.Contains(cb.Path, target.SitePlaceholder) {
			add("config_block.path", "absolute path must contain %s", target.SitePlaceholder)
		}
		if !markerRegex.MatchString(cb.Marker) {
			add("config_block.marker", "invalid block marker %q", cb.Marker)
		}
		if cb.KeepBackups != nil && *cb.KeepBackups < 0 {
			add("config_block.keep_backups", "must not be negative")
		}
	}

	if col := c.Collaborator; col != nil {
		if col.Binary == "" {
			add("collaborator.binary", "must not be empty")
		}
		if d, err := time.ParseDuration(col.Timeout); err != nil || d <= 0 {
			add("collaborator.timeout", "invalid duration %q", col.Timeout)
		}
		for i, arg := range col.Purge {
			if strings.TrimSpace(arg) == "" {
				add(fmt.Sprintf("collaborator.purge[%d]", i), "must not be empty")
			}
		}
	}

	if c.Log != nil {
		if _, err := logging.ParseLevel(c.Log.Level); err != nil {
			add("log.level", "%v", err)
		}
	}

	return errs
}
