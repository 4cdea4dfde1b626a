package brand

import (
	"path/filepath"
	"testing"
)

func TestGet(t *testing.T) {
	b := Get()
	if b.Name == "" {
		t.Error("Brand name should not be empty")
	}
	if Version == "" {
		t.Error("Global Version should be initialized (to dev default)")
	}
	if PresetExtension != ".preset" {
		t.Errorf("PresetExtension = %q", PresetExtension)
	}
}

func TestGetDirectories(t *testing.T) {
	t.Setenv(Env("PREFIX"), "")
	t.Setenv(Env("CONFIG_DIR"), "")
	t.Setenv(Env("STATE_DIR"), "")

	if GetConfigDir() != DefaultConfigDir {
		t.Errorf("Expected default config dir %s, got %s", DefaultConfigDir, GetConfigDir())
	}
	if GetStateDir() != DefaultStateDir {
		t.Errorf("Expected default state dir %s, got %s", DefaultStateDir, GetStateDir())
	}

	t.Setenv(Env("PREFIX"), "/opt/pc")
	if got, want := GetConfigDir(), filepath.Join("/opt/pc", "config"); got != want {
		t.Errorf("prefix config dir = %s, want %s", got, want)
	}
	if got, want := GetStateDir(), filepath.Join("/opt/pc", "state"); got != want {
		t.Errorf("prefix state dir = %s, want %s", got, want)
	}

	t.Setenv(Env("CONFIG_DIR"), "/custom/etc")
	if got := GetConfigDir(); got != "/custom/etc" {
		t.Errorf("explicit config dir = %s", got)
	}
	if got, want := DefaultConfigPath(), filepath.Join("/custom/etc", ConfigFileName); got != want {
		t.Errorf("DefaultConfigPath() = %s, want %s", got, want)
	}
}
