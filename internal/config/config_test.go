package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/presetctl/internal/logging"
)

const sample = `
presets_dir = "/etc/presetctl/presets"
sites_root  = "/srv/sites"
state_dir   = "/var/lib/presetctl"
color       = false

config_block {
  path         = "/etc/php/sites/{site}.conf"
  keep_backups = 5
}

collaborator {
  binary     = "/usr/local/bin/wp"
  allow_root = true
  timeout    = "10s"
  purge      = ["page-cache", "purge"]
}

audit {
  enabled = false
}

metrics {
  textfile = "/var/lib/node_exporter/presetctl.prom"
}

log {
  level = "debug"
  json  = true
}
`

func TestLoadHCL(t *testing.T) {
	cfg, err := LoadHCL([]byte(sample), "presetctl.hcl")
	require.NoError(t, err)

	assert.Equal(t, "/srv/sites", cfg.SitesRoot)
	assert.Equal(t, DefaultSiteMarker, cfg.SiteMarker)
	assert.False(t, cfg.ColorEnabled())
	assert.False(t, cfg.AuditEnabled())
	assert.Equal(t, "/var/lib/presetctl/history.db", cfg.Audit.Path)

	assert.Equal(t, DefaultBlockMarker, cfg.ConfigBlock.Marker)
	assert.Equal(t, 5, cfg.KeepBackups())

	opts := cfg.ClientOptions()
	assert.Equal(t, "/usr/local/bin/wp", opts.Binary)
	assert.True(t, opts.AllowRoot)
	assert.Equal(t, "page-cache", opts.Plugin)
	assert.Equal(t, 10*time.Second, opts.Timeout)
	assert.Equal(t, []string{"page-cache", "purge"}, opts.PurgeArgs)

	lc := cfg.LogConfig()
	assert.Equal(t, logging.LevelDebug, lc.Level)
	assert.True(t, lc.JSON)

	layout := cfg.Layout()
	assert.Equal(t, "/srv/sites", layout.SitesRoot)
	assert.Equal(t, "php_values", layout.Block)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Empty(t, cfg.Validate())
	assert.True(t, cfg.ColorEnabled())
	assert.True(t, cfg.AuditEnabled())
	assert.Equal(t, DefaultConfigPath, cfg.ConfigBlock.Path)
	assert.Equal(t, DefaultKeepBackups, cfg.KeepBackups())
	assert.Equal(t, []string{"cache", "flush"}, cfg.Collaborator.Purge)
	assert.Equal(t, filepath.Join(cfg.StateDir, "locks"), cfg.LockDir())
}

func TestLoadHCL_EnvVariables(t *testing.T) {
	t.Setenv("PRESETCTL_TEST_ROOT", "/data/www")

	cfg, err := LoadHCL([]byte(`sites_root = "${env.PRESETCTL_TEST_ROOT}/live"`), "env.hcl")
	require.NoError(t, err)
	assert.Equal(t, "/data/www/live", cfg.SitesRoot)
}

func TestLoadHCL_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		field string
	}{
		{"relative sites root", `sites_root = "www"`, "sites_root"},
		{"shared config path", "config_block {\n  path = \"/etc/php/all.conf\"\n}\n", "config_block.path"},
		{"bad marker", "config_block {\n  marker = \"php values\"\n}\n", "config_block.marker"},
		{"bad timeout", "collaborator {\n  timeout = \"soon\"\n}\n", "collaborator.timeout"},
		{"bad level", "log {\n  level = \"loud\"\n}\n", "log.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadHCL([]byte(tt.input), "bad.hcl")
			require.Error(t, err)
			var verrs ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Equal(t, tt.field, verrs[0].Field)
		})
	}

	keepAll, err := LoadHCL([]byte("config_block {\n  keep_backups = 0\n}\n"), "keep.hcl")
	require.NoError(t, err)
	assert.Equal(t, 0, keepAll.KeepBackups())
	assert.Equal(t, DefaultConfigPath, keepAll.ConfigBlock.Path)

	_, err = LoadHCL([]byte(`sites_root = `), "broken.hcl")
	assert.ErrorContains(t, err, "HCL parse error")

	_, err = LoadHCL([]byte(`unknown_setting = 1`), "unknown.hcl")
	assert.ErrorContains(t, err, "HCL decode error")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "presetctl.hcl")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/sites", cfg.SitesRoot)

	_, err = Load(filepath.Join(dir, "missing.hcl"))
	assert.Error(t, err)
}

func TestGenerateHCL_RoundTrip(t *testing.T) {
	cfg, err := LoadHCL([]byte(sample), "presetctl.hcl")
	require.NoError(t, err)

	out := GenerateHCL(cfg)
	assert.Contains(t, string(out), "config_block {")

	again, err := LoadHCL(out, "generated.hcl")
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}
