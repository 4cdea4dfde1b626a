package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"grimm.is/presetctl/internal/audit"
	"grimm.is/presetctl/internal/blockfile"
	"grimm.is/presetctl/internal/brand"
	"grimm.is/presetctl/internal/clock"
	"grimm.is/presetctl/internal/config"
	"grimm.is/presetctl/internal/i18n"
	"grimm.is/presetctl/internal/logging"
	"grimm.is/presetctl/internal/metrics"
	"grimm.is/presetctl/internal/preset"
	"grimm.is/presetctl/internal/subsystem"
	"grimm.is/presetctl/internal/target"
)

// Process exit codes.
const (
	ExitOK   = 0
	ExitWarn = 1
	ExitFail = 2
)

// Printer is used for messages printed before a Runtime exists.
var Printer = i18n.NewCLIPrinter()

// Runtime holds the collaborators every subcommand shares. It is built
// once per process from the engine config.
type Runtime struct {
	Config  *config.Config
	Logger  *logging.Logger
	Metrics *metrics.Registry
	Audit   *audit.Store
	Layout  target.Layout
	Backups *blockfile.FileBackup
	Editor  *blockfile.Editor
	Client  *subsystem.Client
	Clock   clock.Clock
	Out     *Output
}

// NewRuntime loads the engine config and wires the runtime.
func NewRuntime(configFile string, out io.Writer) (*Runtime, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("configuration invalid: %w", err)
	}

	logCfg := cfg.LogConfig()
	if raw := os.Getenv(brand.Env("LOG_LEVEL")); raw != "" {
		if level, err := logging.ParseLevel(raw); err == nil {
			logCfg.Level = level
		}
	}
	logger := logging.New(logCfg)
	logging.SetDefault(logger)

	rt := newRuntime(cfg, nil, logger, clock.Real{}, NewOutput(out, cfg.ColorEnabled()))

	if cfg.AuditEnabled() {
		store, err := audit.NewStore(cfg.Audit.Path, cfg.Audit.RetentionDays, rt.Clock)
		if err != nil {
			logger.Warn("run history disabled", "error", err)
		} else {
			rt.Audit = store
		}
	}
	return rt, nil
}

// newRuntime wires a runtime around an executor; a nil executor runs real
// processes.
func newRuntime(cfg *config.Config, exec subsystem.CommandExecutor, logger *logging.Logger, clk clock.Clock, out *Output) *Runtime {
	reg := metrics.New()
	clk = clock.Or(clk)

	clientOpts := cfg.ClientOptions()
	clientOpts.Observe = reg.ObserveCall

	backups := &blockfile.FileBackup{
		Dir:   cfg.ConfigBlock.BackupDir,
		Keep:  cfg.KeepBackups(),
		Clock: clk,
	}

	return &Runtime{
		Config:  cfg,
		Logger:  logger,
		Metrics: reg,
		Layout:  cfg.Layout(),
		Backups: backups,
		Editor:  blockfile.NewEditor(backups, logger),
		Client:  subsystem.NewClient(exec, clientOpts, logger),
		Clock:   clk,
		Out:     out,
	}
}

// Registry returns the preset registry over the configured directory.
func (rt *Runtime) Registry() *preset.Registry {
	return preset.NewRegistry(rt.Config.PresetsDir, rt.presetOptions())
}

func (rt *Runtime) presetOptions() preset.Options {
	return preset.Options{Lenient: rt.Config.LenientPresets, Logger: rt.Logger}
}

// LoadPreset resolves ref as a file path when it looks like one, otherwise
// as a preset name in the registry.
func (rt *Runtime) LoadPreset(ref string) (*preset.Preset, error) {
	if strings.ContainsRune(ref, '/') || strings.HasSuffix(ref, brand.PresetExtension) {
		if _, err := os.Stat(ref); err == nil || !errors.Is(err, fs.ErrNotExist) {
			return preset.StructurallyValidate(ref, rt.presetOptions())
		}
	}
	return rt.Registry().Load(ref)
}

// Record stores a run in the history database, if enabled.
func (rt *Runtime) Record(run audit.Run) {
	rt.Metrics.MarkRun(run.Command, rt.Clock.Now())
	if rt.Audit == nil {
		return
	}
	if _, err := rt.Audit.Record(run); err != nil {
		rt.Logger.Warn("failed to record run", "command", run.Command, "error", err)
	}
}

// Close flushes metrics and closes the history database.
func (rt *Runtime) Close() error {
	if path := rt.Config.Metrics.Textfile; path != "" {
		if err := rt.Metrics.WriteTextfile(path); err != nil {
			rt.Logger.Warn("metrics not written", "error", err)
		}
	}
	if rt.Audit != nil {
		if _, err := rt.Audit.Prune(); err != nil {
			rt.Logger.Warn("history prune failed", "error", err)
		}
		return rt.Audit.Close()
	}
	return nil
}
