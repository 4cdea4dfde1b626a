// Package verify reads a site back and compares it against a preset.
//
// The Validator only holds read interfaces; it never writes the config file
// and never calls a collaborator setter.
package verify

import (
	"context"
	"errors"

	"grimm.is/presetctl/internal/blockfile"
	"grimm.is/presetctl/internal/logging"
	"grimm.is/presetctl/internal/metrics"
	"grimm.is/presetctl/internal/preset"
	"grimm.is/presetctl/internal/subsystem"
	"grimm.is/presetctl/internal/target"
)

// ConfigLoader loads a config-block file.
type ConfigLoader interface {
	Load(path string) (*blockfile.Document, error)
}

// SiteReader is the read side of the collaborator.
type SiteReader interface {
	Status(ctx context.Context) (subsystem.Status, error)
	GetOption(ctx context.Context, name string) (string, error)
}

// Validator compares live state against presets.
type Validator struct {
	layout  target.Layout
	config  ConfigLoader
	sites   func(root string) SiteReader
	metrics *metrics.Registry
	logger  *logging.Logger
}

// New creates a Validator reading through config and client.
func New(layout target.Layout, config ConfigLoader, client *subsystem.Client, reg *metrics.Registry, logger *logging.Logger) *Validator {
	return &Validator{
		layout:  layout,
		config:  config,
		sites:   func(root string) SiteReader { return client.Site(root) },
		metrics: reg,
		logger:  logging.Or(logger).WithComponent("verify"),
	}
}

// Validate never fails; problems reaching either side become entries.
func (v *Validator) Validate(ctx context.Context, id string, p *preset.Preset) *Result {
	res := &Result{Target: id, Preset: p.Name}
	defer func() {
		v.metrics.ObserveValidate(p.Name, string(res.Status()), res.Count())
		v.logger.Info("validation finished", "target", id, "preset", p.Name, "status", string(res.Status()))
	}()

	t, err := v.layout.Probe(id)
	if err != nil {
		res.add("target", StatusError, "%v", err)
		return res
	}

	if keys := p.Keys(preset.SectionPHP); len(keys) > 0 {
		v.checkDirectives(t, p, keys, res)
	}
	v.checkSubsystem(ctx, t, p, res)
	return res
}

func (v *Validator) checkDirectives(t target.Target, p *preset.Preset, keys []string, res *Result) {
	doc, err := v.config.Load(t.ConfigPath)
	if err != nil {
		if errors.Is(err, blockfile.ErrConfigNotFound) {
			res.add("config", StatusError, "structural absence: %s does not exist", t.ConfigPath)
		} else {
			res.add("config", StatusError, "structural absence: %v", err)
		}
		return
	}
	if doc.Block(t.Block) == nil {
		res.add("config", StatusError, "structural absence: no %s block in %s", t.Block, t.ConfigPath)
		return
	}

	for _, key := range keys {
		subject := preset.SectionPHP + "." + key
		want := p.Sections[preset.SectionPHP][key]
		got, ok := doc.Read(key)
		switch {
		case !ok:
			res.add(subject, StatusWarn, "not set (expected %s)", want)
		case got != want:
			res.add(subject, StatusWarn, "is %s (expected %s)", got, want)
		default:
			res.add(subject, StatusOK, "%s", got)
		}
	}
}

func (v *Validator) checkSubsystem(ctx context.Context, t target.Target, p *preset.Preset, res *Result) {
	site := v.sites(t.Root)

	status, err := site.Status(ctx)
	switch status {
	case subsystem.StatusActive:
		res.add("subsystem", StatusOK, "active")
	case subsystem.StatusInactive:
		res.add("subsystem", StatusWarn, "installed but inactive")
	case subsystem.StatusNotInstalled:
		res.add("subsystem", StatusError, "not installed")
	default:
		res.add("subsystem", StatusError, "unreachable: %v", err)
	}
	if status != subsystem.StatusActive && status != subsystem.StatusInactive {
		return
	}

	for _, key := range p.Keys(preset.SectionCache) {
		subject := preset.SectionCache + "." + key
		raw := p.Sections[preset.SectionCache][key]
		rule, ok := subsystem.Lookup(key)
		if !ok {
			res.add(subject, StatusInfo, "no translation rule, not checked")
			continue
		}
		want, err := rule.Translate(raw)
		if err != nil {
			res.add(subject, StatusWarn, "%v", err)
			continue
		}
		got, err := site.GetOption(ctx, rule.Option)
		switch {
		case err != nil:
			res.add(subject, StatusWarn, "cannot read %s: %v", rule.Option, err)
		case got != want:
			res.add(subject, StatusWarn, "%s is %s (expected %s)", rule.Option, got, want)
		default:
			res.add(subject, StatusOK, "%s = %s", rule.Option, got)
		}
	}
}
