package cmd

import (
	"context"
	"fmt"
	"strings"

	"grimm.is/presetctl/internal/audit"
	"grimm.is/presetctl/internal/brand"
	"grimm.is/presetctl/internal/report"
	"grimm.is/presetctl/internal/validation"
)

// RunReport prints (and optionally saves) a snapshot of one site.
func RunReport(ctx context.Context, rt *Runtime, site, presetRef, format string, save bool) error {
	if site == "" || presetRef == "" {
		return fmt.Errorf("usage: %s report [-o json|yaml] [--save] <site> <preset>", brand.BinaryName)
	}

	if format == "" {
		format = report.FormatJSON
	}
	format = strings.ToLower(format)
	if err := validation.ValidateAllowlist(format, report.Formats); err != nil {
		return fmt.Errorf("invalid output format: %w", err)
	}

	p, err := rt.LoadPreset(presetRef)
	if err != nil {
		return err
	}

	gen := report.New(rt.Layout, rt.Editor, rt.Client, rt.Clock, rt.Logger)
	r := gen.Snapshot(ctx, site, p)

	if err := r.Encode(rt.Out.W, format); err != nil {
		return err
	}

	run := audit.Run{Command: "report", Target: site, Preset: p.Name, Result: r.Subsystem.Status}
	if save {
		path, err := r.Save(rt.Config.ReportDir(), format)
		if err != nil {
			return err
		}
		run.Details = map[string]any{"path": path}
		rt.Logger.Info("report saved", "path", path)
	}
	rt.Record(run)
	return nil
}
