package config

import (
	"path/filepath"
	"time"

	"grimm.is/presetctl/internal/brand"
	"grimm.is/presetctl/internal/logging"
	"grimm.is/presetctl/internal/subsystem"
	"grimm.is/presetctl/internal/target"
)

// Config is the top-level engine configuration.
type Config struct {
	PresetsDir string `hcl:"presets_dir,optional" json:"presets_dir"`
	SitesRoot  string `hcl:"sites_root,optional" json:"sites_root"`
	SiteMarker string `hcl:"site_marker,optional" json:"site_marker"`
	StateDir   string `hcl:"state_dir,optional" json:"state_dir"`
	Color      *bool  `hcl:"color,optional" json:"color,omitempty"`
	// LenientPresets skips unparsable preset lines instead of failing.
	LenientPresets bool `hcl:"lenient_presets,optional" json:"lenient_presets"`

	ConfigBlock  *ConfigBlock  `hcl:"config_block,block" json:"config_block,omitempty"`
	Collaborator *Collaborator `hcl:"collaborator,block" json:"collaborator,omitempty"`
	Audit        *Audit        `hcl:"audit,block" json:"audit,omitempty"`
	Metrics      *Metrics      `hcl:"metrics,block" json:"metrics,omitempty"`
	Log          *Log          `hcl:"log,block" json:"log,omitempty"`
}

// ConfigBlock locates the per-site config-block file.
type ConfigBlock struct {
	// Path may contain {site}; relative paths resolve under the site root.
	Path      string `hcl:"path,optional" json:"path"`
	Marker    string `hcl:"marker,optional" json:"marker"`
	BackupDir string `hcl:"backup_dir,optional" json:"backup_dir,omitempty"`

	// KeepBackups bounds backups per file; 0 keeps all.
	KeepBackups *int `hcl:"keep_backups,optional" json:"keep_backups,omitempty"`
}

// Collaborator configures the plugin command-line tool.
type Collaborator struct {
	Binary    string   `hcl:"binary,optional" json:"binary"`
	AllowRoot bool     `hcl:"allow_root,optional" json:"allow_root"`
	Plugin    string   `hcl:"plugin,optional" json:"plugin"`
	Timeout   string   `hcl:"timeout,optional" json:"timeout"`
	Purge     []string `hcl:"purge,optional" json:"purge"`
}

// Audit configures the run history store.
type Audit struct {
	Enabled       *bool  `hcl:"enabled,optional" json:"enabled,omitempty"`
	Path          string `hcl:"path,optional" json:"path,omitempty"`
	RetentionDays int    `hcl:"retention_days,optional" json:"retention_days"`
}

// Metrics configures the Prometheus textfile output.
type Metrics struct {
	Textfile string `hcl:"textfile,optional" json:"textfile"`
}

// Log configures logging.
type Log struct {
	Level string `hcl:"level,optional" json:"level"`
	JSON  bool   `hcl:"json,optional" json:"json"`
}

// Default values.
const (
	DefaultSitesRoot     = "/var/www"
	DefaultSiteMarker    = "wp-config.php"
	DefaultConfigPath    = "/etc/php/sites/{site}.conf"
	DefaultBlockMarker   = "php_values"
	DefaultKeepBackups   = 20
	DefaultRetentionDays = 90
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func boolPtr(b bool) *bool { return &b }

func (c *Config) applyDefaults() {
	if c.PresetsDir == "" {
		c.PresetsDir = filepath.Join(brand.GetConfigDir(), "presets")
	}
	if c.SitesRoot == "" {
		c.SitesRoot = DefaultSitesRoot
	}
	if c.SiteMarker == "" {
		c.SiteMarker = DefaultSiteMarker
	}
	if c.StateDir == "" {
		c.StateDir = brand.GetStateDir()
	}
	if c.Color == nil {
		c.Color = boolPtr(true)
	}

	if c.ConfigBlock == nil {
		c.ConfigBlock = &ConfigBlock{}
	}
	if c.ConfigBlock.KeepBackups == nil {
		keep := DefaultKeepBackups
		c.ConfigBlock.KeepBackups = &keep
	}
	if c.ConfigBlock.Path == "" {
		c.ConfigBlock.Path = DefaultConfigPath
	}
	if c.ConfigBlock.Marker == "" {
		c.ConfigBlock.Marker = DefaultBlockMarker
	}

	if c.Collaborator == nil {
		c.Collaborator = &Collaborator{}
	}
	def := subsystem.DefaultOptions()
	if c.Collaborator.Binary == "" {
		c.Collaborator.Binary = def.Binary
	}
	if c.Collaborator.Plugin == "" {
		c.Collaborator.Plugin = def.Plugin
	}
	if c.Collaborator.Timeout == "" {
		c.Collaborator.Timeout = def.Timeout.String()
	}
	if len(c.Collaborator.Purge) == 0 {
		c.Collaborator.Purge = def.PurgeArgs
	}

	if c.Audit == nil {
		c.Audit = &Audit{}
	}
	if c.Audit.Enabled == nil {
		c.Audit.Enabled = boolPtr(true)
	}
	if c.Audit.Path == "" {
		c.Audit.Path = filepath.Join(c.StateDir, "history.db")
	}
	if c.Audit.RetentionDays <= 0 {
		c.Audit.RetentionDays = DefaultRetentionDays
	}

	if c.Metrics == nil {
		c.Metrics = &Metrics{}
	}
	if c.Log == nil {
		c.Log = &Log{}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// ColorEnabled reports whether CLI output may be coloured.
func (c *Config) ColorEnabled() bool {
	return c.Color == nil || *c.Color
}

// AuditEnabled reports whether runs are recorded.
func (c *Config) AuditEnabled() bool {
	return c.Audit != nil && (c.Audit.Enabled == nil || *c.Audit.Enabled)
}

// Layout returns the site layout.
func (c *Config) Layout() target.Layout {
	return target.Layout{
		SitesRoot:  c.SitesRoot,
		Marker:     c.SiteMarker,
		ConfigPath: c.ConfigBlock.Path,
		Block:      c.ConfigBlock.Marker,
	}
}

// ClientOptions returns the collaborator options. The timeout has already
// been checked by Validate; an unparsable value falls back to the default.
func (c *Config) ClientOptions() subsystem.Options {
	timeout, err := time.ParseDuration(c.Collaborator.Timeout)
	if err != nil || timeout <= 0 {
		timeout = subsystem.DefaultTimeout
	}
	return subsystem.Options{
		Binary:    c.Collaborator.Binary,
		AllowRoot: c.Collaborator.AllowRoot,
		Plugin:    c.Collaborator.Plugin,
		Timeout:   timeout,
		PurgeArgs: append([]string(nil), c.Collaborator.Purge...),
	}
}

// LogConfig returns the logging configuration.
func (c *Config) LogConfig() logging.Config {
	cfg := logging.DefaultConfig()
	if level, err := logging.ParseLevel(c.Log.Level); err == nil {
		cfg.Level = level
	}
	cfg.JSON = c.Log.JSON
	return cfg
}

// KeepBackups returns the backup retention count.
func (c *Config) KeepBackups() int {
	if c.ConfigBlock == nil || c.ConfigBlock.KeepBackups == nil {
		return DefaultKeepBackups
	}
	return *c.ConfigBlock.KeepBackups
}

// LockDir is where per-target locks live.
func (c *Config) LockDir() string {
	return filepath.Join(c.StateDir, "locks")
}

// ReportDir is where saved reports are written.
func (c *Config) ReportDir() string {
	return filepath.Join(c.StateDir, "reports")
}
