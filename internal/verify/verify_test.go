package verify

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/presetctl/internal/blockfile"
	"grimm.is/presetctl/internal/logging"
	"grimm.is/presetctl/internal/preset"
	"grimm.is/presetctl/internal/subsystem"
	"grimm.is/presetctl/internal/target"
)

const siteID = "example.com"

type fakeSite struct {
	status    subsystem.Status
	statusErr error
	options   map[string]string
}

func (f *fakeSite) Status(ctx context.Context) (subsystem.Status, error) {
	return f.status, f.statusErr
}

func (f *fakeSite) GetOption(ctx context.Context, name string) (string, error) {
	v, ok := f.options[name]
	if !ok {
		return "", subsystem.ErrEmptyOutput
	}
	return v, nil
}

func setup(t *testing.T, config string, site *fakeSite) *Validator {
	t.Helper()
	sites := t.TempDir()
	root := filepath.Join(sites, siteID)
	require.NoError(t, os.MkdirAll(root, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "wp-config.php"), nil, 0644))
	if config != "" {
		require.NoError(t, os.WriteFile(filepath.Join(root, "php.conf"), []byte(config), 0644))
	}

	return &Validator{
		layout: target.Layout{SitesRoot: sites, Marker: "wp-config.php", ConfigPath: "php.conf", Block: "php_values"},
		config: blockfile.NewEditor(nil, logging.Discard()),
		sites:  func(string) SiteReader { return site },
		logger: logging.Discard(),
	}
}

func parse(t *testing.T, text string) *preset.Preset {
	t.Helper()
	p, err := preset.ParseBytes([]byte(text), "test.preset", preset.Options{})
	require.NoError(t, err)
	return p
}

func TestValidate_DriftIsWarning(t *testing.T) {
	v := setup(t, "php_values {\n    memory_limit 256M\n}\n", &fakeSite{status: subsystem.StatusActive})

	res := v.Validate(context.Background(), siteID, parse(t, "name: big\nphp:\n  memory_limit: 512M\n"))

	warns := res.Filter(StatusWarn)
	require.Len(t, warns, 1)
	assert.Equal(t, "php.memory_limit", warns[0].Subject)
	assert.Contains(t, warns[0].Message, "256M")
	assert.Equal(t, StatusWarn, res.Status())
	assert.Equal(t, 1, res.ExitCode())
}

func TestValidate_AllMatch(t *testing.T) {
	site := &fakeSite{status: subsystem.StatusActive, options: map[string]string{"pagecache_enabled": "1", "pagecache_ttl": "3600"}}
	v := setup(t, "php_values {\n    memory_limit 512M;\n}\n", site)

	p := parse(t, "name: ok\nphp:\n  memory_limit: 512M\ncache:\n  page_cache: true\n  ttl: 3600\n")
	res := v.Validate(context.Background(), siteID, p)

	assert.Equal(t, StatusOK, res.Status())
	assert.Equal(t, 0, res.ExitCode())
	assert.Len(t, res.Entries, 4)
}

func TestValidate_MissingConfigFile(t *testing.T) {
	v := setup(t, "", &fakeSite{status: subsystem.StatusActive})

	res := v.Validate(context.Background(), siteID, parse(t, "name: big\nphp:\n  memory_limit: 512M\n  post_max_size: 64M\n"))

	errs := res.Filter(StatusError)
	require.Len(t, errs, 1)
	assert.Equal(t, "config", errs[0].Subject)
	assert.Contains(t, errs[0].Message, "structural absence")
	assert.Equal(t, 2, res.ExitCode())
	for _, e := range res.Entries {
		assert.NotEqual(t, "php.memory_limit", e.Subject)
	}
}

func TestValidate_MissingBlock(t *testing.T) {
	v := setup(t, "other {\n    memory_limit 512M\n}\n", &fakeSite{status: subsystem.StatusActive})

	res := v.Validate(context.Background(), siteID, parse(t, "name: big\nphp:\n  memory_limit: 512M\n"))
	require.Len(t, res.Filter(StatusError), 1)
	assert.Equal(t, StatusError, res.Status())
}

func TestValidate_SubsystemStates(t *testing.T) {
	tests := []struct {
		name   string
		site   *fakeSite
		want   Status
		checks int
	}{
		{"active", &fakeSite{status: subsystem.StatusActive, options: map[string]string{"gzip_enabled": "1"}}, StatusOK, 1},
		{"inactive", &fakeSite{status: subsystem.StatusInactive, options: map[string]string{"gzip_enabled": "1"}}, StatusWarn, 1},
		{"not installed", &fakeSite{status: subsystem.StatusNotInstalled}, StatusError, 0},
		{"unreachable", &fakeSite{status: subsystem.StatusUnknown, statusErr: errors.New("wp: not found")}, StatusError, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := setup(t, "", tt.site)
			res := v.Validate(context.Background(), siteID, parse(t, "name: c\ncache:\n  gzip: true\n"))

			require.NotEmpty(t, res.Entries)
			assert.Equal(t, "subsystem", res.Entries[0].Subject)
			assert.Equal(t, tt.want, res.Entries[0].Status)
			assert.Len(t, res.Entries, 1+tt.checks)
		})
	}
}

func TestValidate_OptionDrift(t *testing.T) {
	site := &fakeSite{status: subsystem.StatusActive, options: map[string]string{"minify_js": "0"}}
	v := setup(t, "", site)

	p := parse(t, "name: c\ncache:\n  minify_js: true\n  page_cache: true\n  custom_thing: 1\n")
	res := v.Validate(context.Background(), siteID, p)

	assert.Equal(t, StatusWarn, res.Status())
	assert.Len(t, res.Filter(StatusWarn), 2)
	require.Len(t, res.Filter(StatusInfo), 1)
	assert.Equal(t, "cache.custom_thing", res.Filter(StatusInfo)[0].Subject)
}

func TestValidate_UnknownTarget(t *testing.T) {
	v := setup(t, "", &fakeSite{status: subsystem.StatusActive})

	res := v.Validate(context.Background(), "missing.org", parse(t, "name: c\nphp:\n  a: b\n"))
	assert.Equal(t, 2, res.ExitCode())
	assert.Equal(t, "target", res.Entries[0].Subject)
}

func TestValidate_NoWrites(t *testing.T) {
	config := "php_values {\n    memory_limit 256M\n}\n"
	m := new(subsystem.MockCommandExecutor)
	sites := t.TempDir()
	root := filepath.Join(sites, siteID)
	require.NoError(t, os.MkdirAll(root, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "wp-config.php"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "php.conf"), []byte(config), 0644))

	m.On("RunCommand", "wp", "--path="+root, "plugin", "is-installed", "page-cache").Return("", nil)
	m.On("RunCommand", "wp", "--path="+root, "plugin", "is-active", "page-cache").Return("", nil)
	m.On("RunCommand", "wp", "--path="+root, "option", "get", "gzip_enabled").Return("1\n", nil)

	layout := target.Layout{SitesRoot: sites, Marker: "wp-config.php", ConfigPath: "php.conf", Block: "php_values"}
	client := subsystem.NewClient(m, subsystem.DefaultOptions(), logging.Discard())
	v := New(layout, blockfile.NewEditor(nil, logging.Discard()), client, nil, logging.Discard())

	res := v.Validate(context.Background(), siteID, parse(t, "name: x\nphp:\n  memory_limit: 512M\ncache:\n  gzip: on\n"))
	assert.Equal(t, StatusWarn, res.Status())

	data, err := os.ReadFile(filepath.Join(root, "php.conf"))
	require.NoError(t, err)
	assert.Equal(t, config, string(data))
	m.AssertExpectations(t)
	for _, c := range m.Calls {
		assert.NotContains(t, c.Arguments, "update")
		assert.NotContains(t, c.Arguments, "activate")
	}
}

func TestResult_Output(t *testing.T) {
	res := &Result{}
	res.add("php.memory_limit", StatusWarn, "is %s (expected %s)", "256M", "512M")
	res.add("subsystem", StatusOK, "active")

	var buf bytes.Buffer
	_, err := res.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, "WARN: php.memory_limit: is 256M (expected 512M)\nOK: subsystem: active\n", buf.String())
	assert.Equal(t, map[string]int{"WARN": 1, "OK": 1}, res.Count())
}
