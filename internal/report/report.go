// Package report snapshots the live settings of a site without judging
// them.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	"grimm.is/presetctl/internal/clock"
	"grimm.is/presetctl/internal/logging"
	"grimm.is/presetctl/internal/preset"
	"grimm.is/presetctl/internal/subsystem"
	"grimm.is/presetctl/internal/target"
	"grimm.is/presetctl/internal/verify"
)

// Placeholders used when a value cannot be read.
const (
	Default = "default"
	Unknown = "unknown"
)

// Formats accepted by Encode.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Formats lists the format names Encode and Save accept.
var Formats = []string{FormatJSON, FormatYAML, "yml"}

// Subsystem is the plugin part of a report.
type Subsystem struct {
	Status string `json:"status" yaml:"status"`
}

// Report is a point-in-time snapshot of one site.
type Report struct {
	Target    string            `json:"target" yaml:"target"`
	Preset    string            `json:"preset" yaml:"preset"`
	Timestamp string            `json:"timestamp" yaml:"timestamp"`
	Settings  map[string]string `json:"settings" yaml:"settings"`
	Subsystem Subsystem         `json:"subsystem" yaml:"subsystem"`

	taken time.Time
}

// Generator builds reports.
type Generator struct {
	layout target.Layout
	config verify.ConfigLoader
	sites  func(root string) verify.SiteReader
	clock  clock.Clock
	logger *logging.Logger
}

// New creates a Generator. A nil clock uses wall time.
func New(layout target.Layout, config verify.ConfigLoader, client *subsystem.Client, clk clock.Clock, logger *logging.Logger) *Generator {
	return &Generator{
		layout: layout,
		config: config,
		sites:  func(root string) verify.SiteReader { return client.Site(root) },
		clock:  clock.Or(clk),
		logger: logging.Or(logger).WithComponent("report"),
	}
}

// Snapshot reads every setting p names. It never fails: unreadable
// settings are "default" and an unreadable plugin status is "unknown".
func (g *Generator) Snapshot(ctx context.Context, id string, p *preset.Preset) *Report {
	now := g.clock.Now().UTC()
	r := &Report{
		Target:    id,
		Preset:    p.Name,
		Timestamp: now.Format(time.RFC3339),
		Settings:  make(map[string]string),
		Subsystem: Subsystem{Status: Unknown},
		taken:     now,
	}
	for _, key := range p.Keys(preset.SectionPHP) {
		r.Settings[preset.SectionPHP+"."+key] = Default
	}
	for _, key := range p.Keys(preset.SectionCache) {
		r.Settings[preset.SectionCache+"."+key] = Default
	}

	t, err := g.layout.Probe(id)
	if err != nil {
		g.logger.Warn("snapshot of unknown target", "target", id, "error", err)
		return r
	}

	g.readDirectives(t, p, r)
	g.readSubsystem(ctx, t, p, r)
	return r
}

func (g *Generator) readDirectives(t target.Target, p *preset.Preset, r *Report) {
	keys := p.Keys(preset.SectionPHP)
	if len(keys) == 0 {
		return
	}
	doc, err := g.config.Load(t.ConfigPath)
	if err != nil {
		g.logger.Debug("config unreadable", "path", t.ConfigPath, "error", err)
		return
	}
	for _, key := range keys {
		if v, ok := doc.Read(key); ok {
			r.Settings[preset.SectionPHP+"."+key] = v
		}
	}
}

func (g *Generator) readSubsystem(ctx context.Context, t target.Target, p *preset.Preset, r *Report) {
	site := g.sites(t.Root)
	status, err := site.Status(ctx)
	if err != nil {
		g.logger.Debug("subsystem status unreadable", "error", err)
		return
	}
	r.Subsystem.Status = string(status)
	if status == subsystem.StatusNotInstalled {
		return
	}

	for _, key := range p.Keys(preset.SectionCache) {
		rule, ok := subsystem.Lookup(key)
		if !ok {
			continue
		}
		if v, err := site.GetOption(ctx, rule.Option); err == nil {
			r.Settings[preset.SectionCache+"."+key] = v
		}
	}
}

// Encode writes the report as JSON (the default) or YAML.
func (r *Report) Encode(w io.Writer, format string) error {
	switch strings.ToLower(format) {
	case "", FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML, "yml":
		data, err := yaml.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		_, err = w.Write(data)
		return err
	}
	return fmt.Errorf("unsupported report format %q", format)
}

// Save writes the report to <dir>/<target>-<stamp>.<ext> and returns the
// path. Existing reports are never overwritten.
func (r *Report) Save(dir, format string) (string, error) {
	ext := FormatJSON
	if f := strings.ToLower(format); f == FormatYAML || f == "yml" {
		ext = FormatYAML
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create report dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s-%s.%s", r.Target, clock.Stamp(r.taken), ext))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0640)
	if err != nil {
		return "", fmt.Errorf("failed to create report: %w", err)
	}
	if err := r.Encode(f, ext); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close report: %w", err)
	}
	return path, nil
}
