// Package brand provides centralized naming and default locations.
//
// The identity is loaded from brand.json at compile time via go:embed so
// packaging scripts can read the same file.
package brand

import (
	_ "embed"
	"encoding/json"
	"os"
	"path/filepath"
)

//go:embed brand.json
var brandJSON []byte

// Brand holds all branding information
type Brand struct {
	Name             string `json:"name"`
	LowerName        string `json:"lowerName"`
	Description      string `json:"description"`
	ConfigEnvPrefix  string `json:"configEnvPrefix"`
	DefaultConfigDir string `json:"defaultConfigDir"`
	DefaultStateDir  string `json:"defaultStateDir"`
	BinaryName       string `json:"binaryName"`
	ConfigFileName   string `json:"configFileName"`
	PresetExtension  string `json:"presetExtension"`
}

var b Brand

func init() {
	if err := json.Unmarshal(brandJSON, &b); err != nil {
		panic("failed to parse brand.json: " + err.Error())
	}

	Name = b.Name
	LowerName = b.LowerName
	Description = b.Description
	ConfigEnvPrefix = b.ConfigEnvPrefix
	DefaultConfigDir = b.DefaultConfigDir
	DefaultStateDir = b.DefaultStateDir
	BinaryName = b.BinaryName
	ConfigFileName = b.ConfigFileName
	PresetExtension = b.PresetExtension
}

var (
	Name             string
	LowerName        string
	Description      string
	ConfigEnvPrefix  string
	DefaultConfigDir string
	DefaultStateDir  string
	BinaryName       string
	ConfigFileName   string
	PresetExtension  string

	// Version is set at build time via -ldflags
	Version   = "dev"
	GitCommit = "unknown"
)

// Get returns the full Brand struct
func Get() Brand {
	return b
}

// Env returns the name of a brand-prefixed environment variable.
func Env(suffix string) string {
	return ConfigEnvPrefix + "_" + suffix
}

// GetConfigDir returns the config directory, checking env vars first.
// Priority: PRESETCTL_CONFIG_DIR > PRESETCTL_PREFIX/config > DefaultConfigDir
func GetConfigDir() string {
	if dir := os.Getenv(Env("CONFIG_DIR")); dir != "" {
		return dir
	}
	if prefix := os.Getenv(Env("PREFIX")); prefix != "" {
		return filepath.Join(prefix, "config")
	}
	return DefaultConfigDir
}

// GetStateDir returns the state directory, checking env vars first.
// Priority: PRESETCTL_STATE_DIR > PRESETCTL_PREFIX/state > DefaultStateDir
func GetStateDir() string {
	if dir := os.Getenv(Env("STATE_DIR")); dir != "" {
		return dir
	}
	if prefix := os.Getenv(Env("PREFIX")); prefix != "" {
		return filepath.Join(prefix, "state")
	}
	return DefaultStateDir
}

// DefaultConfigPath returns the engine config file location.
func DefaultConfigPath() string {
	return filepath.Join(GetConfigDir(), ConfigFileName)
}
