// Package applier pushes a preset onto one site: runtime directives into
// the site's config block, cache settings into the page-cache plugin.
//
// Application is best effort per key. Every planned key yields exactly one
// Outcome, so callers can tell which keys failed and why. Only a failure to
// activate the plugin aborts the run before any key is written.
package applier

import (
	"context"
	"errors"
	"fmt"

	"grimm.is/presetctl/internal/blockfile"
	"grimm.is/presetctl/internal/logging"
	"grimm.is/presetctl/internal/metrics"
	"grimm.is/presetctl/internal/preset"
	"grimm.is/presetctl/internal/subsystem"
	"grimm.is/presetctl/internal/target"
)

var (
	ErrNotApplicable = errors.New("target not applicable")
	ErrEnableFailed  = errors.New("failed to enable subsystem")
	ErrEmptyPreset   = errors.New("preset has no applicable settings")
)

// Options tunes an Applier.
type Options struct {
	// DryRun plans every key and renders the config-block diff without
	// writing files or calling setters.
	DryRun  bool
	Metrics *metrics.Registry
	Logger  *logging.Logger
}

// Applier applies presets to sites.
type Applier struct {
	layout  target.Layout
	editor  *blockfile.Editor
	client  *subsystem.Client
	dryRun  bool
	metrics *metrics.Registry
	logger  *logging.Logger
}

// New creates an Applier.
func New(layout target.Layout, editor *blockfile.Editor, client *subsystem.Client, opts Options) *Applier {
	return &Applier{
		layout:  layout,
		editor:  editor,
		client:  client,
		dryRun:  opts.DryRun,
		metrics: opts.Metrics,
		logger:  logging.Or(opts.Logger).WithComponent("applier"),
	}
}

// Apply applies p to the site id. The Result is non-nil whenever the target
// id was valid, including for ErrNotApplicable, ErrEmptyPreset and
// ErrEnableFailed.
func (a *Applier) Apply(ctx context.Context, id string, p *preset.Preset) (*Result, error) {
	res, err := a.apply(ctx, id, p)
	if res != nil {
		a.metrics.ObserveApply(p.Name, res.Label(err))
	}
	return res, err
}

func (a *Applier) apply(ctx context.Context, id string, p *preset.Preset) (*Result, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil preset", ErrEmptyPreset)
	}
	logger := a.logger.WithTarget(id)

	t, err := a.layout.Probe(id)
	if err != nil {
		if errors.Is(err, target.ErrNotFound) {
			logger.Info("skipping target", "reason", err)
			return &Result{Target: id, Preset: p.Name, DryRun: a.dryRun}, fmt.Errorf("%w: %w", ErrNotApplicable, err)
		}
		return nil, err
	}

	res := &Result{Target: id, Preset: p.Name, DryRun: a.dryRun}
	plan := buildPlan(p)
	for _, o := range plan.unmapped {
		logger.Warn("no translation rule for key", "key", o.Key)
		res.add(o)
	}
	if plan.empty() {
		return res, fmt.Errorf("%w: %s", ErrEmptyPreset, p.Name)
	}

	site := a.client.Site(t.Root)

	if len(plan.options) > 0 {
		if err := a.ensureActive(ctx, site, res, logger); err != nil {
			return res, err
		}
	}

	if a.dryRun {
		a.planDirectives(t, plan.directives, res, logger)
	} else {
		a.applyDirectives(t, plan.directives, res, logger)
	}

	a.applyOptions(ctx, site, plan.options, res, logger)

	if !a.dryRun {
		res.PurgeErr = site.Purge(ctx)
		a.metrics.ObservePurge(res.PurgeErr)
		if res.PurgeErr != nil {
			logger.Warn("cache purge failed", "error", res.PurgeErr)
		}
	}

	logger.Info("preset applied", "preset", p.Name, "applied", res.Applied, "failed", res.Failed, "skipped", res.Skipped, "dry_run", a.dryRun)
	return res, nil
}

func (a *Applier) ensureActive(ctx context.Context, site *subsystem.Site, res *Result, logger *logging.Logger) error {
	status, err := site.Status(ctx)
	if status == subsystem.StatusActive {
		return nil
	}
	if err != nil {
		logger.Debug("subsystem status unavailable", "error", err)
	}
	if a.dryRun {
		res.Activated = true
		return nil
	}

	logger.Info("activating subsystem", "status", string(status))
	if err := site.Activate(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrEnableFailed, err)
	}
	res.Activated = true
	return nil
}

func (a *Applier) applyDirectives(t target.Target, steps []step, res *Result, logger *logging.Logger) {
	for i, s := range steps {
		change, err := a.editor.Upsert(t.ConfigPath, t.Block, s.name, s.raw)
		if errors.Is(err, blockfile.ErrConfigNotFound) {
			logger.Warn("config file missing, skipping directives", "path", t.ConfigPath)
			for _, rest := range steps[i:] {
				a.record(res, rest.outcome(StatusSkipped, err))
			}
			return
		}
		if err != nil {
			logger.Warn("directive failed", "key", s.key, "error", err)
			a.record(res, s.outcome(StatusFailed, err))
			continue
		}
		a.metrics.ObserveEdit(string(change.Action))
		o := s.outcome(StatusApplied, nil)
		o.Detail = string(change.Action)
		a.record(res, o)
	}
}

// planDirectives renders the directive steps against an in-memory copy of
// the config file.
func (a *Applier) planDirectives(t target.Target, steps []step, res *Result, logger *logging.Logger) {
	if len(steps) == 0 {
		return
	}
	doc, err := a.editor.Load(t.ConfigPath)
	if err != nil {
		logger.Warn("config file unavailable for dry run", "path", t.ConfigPath, "error", err)
		for _, s := range steps {
			a.record(res, s.outcome(StatusSkipped, err))
		}
		return
	}

	before := doc.Bytes()
	for _, s := range steps {
		change, err := doc.Upsert(t.Block, s.name, s.raw)
		if err != nil {
			a.record(res, s.outcome(StatusFailed, err))
			continue
		}
		o := s.outcome(StatusPlanned, nil)
		o.Detail = string(change.Action)
		a.record(res, o)
	}
	res.Diff = blockfile.Diff(before, doc.Bytes(), t.ConfigPath)
}

func (a *Applier) applyOptions(ctx context.Context, site *subsystem.Site, steps []step, res *Result, logger *logging.Logger) {
	for _, s := range steps {
		value, err := s.rule.Translate(s.raw)
		if err != nil {
			logger.Warn("option value rejected", "key", s.key, "error", err)
			a.record(res, s.outcome(StatusFailed, err))
			continue
		}
		s.value = value

		if a.dryRun {
			a.record(res, s.outcome(StatusPlanned, nil))
			continue
		}
		if err := site.SetOption(ctx, s.name, value); err != nil {
			logger.Warn("option update failed", "key", s.key, "option", s.name, "error", err)
			a.record(res, s.outcome(StatusFailed, err))
			continue
		}
		a.record(res, s.outcome(StatusApplied, nil))
	}
}

func (a *Applier) record(res *Result, o Outcome) {
	a.metrics.ObserveKey(string(o.Kind), string(o.Status))
	res.add(o)
}
