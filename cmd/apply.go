package cmd

import (
	"context"
	"errors"
	"fmt"

	"grimm.is/presetctl/internal/applier"
	"grimm.is/presetctl/internal/audit"
	"grimm.is/presetctl/internal/brand"
	"grimm.is/presetctl/internal/i18n"
	"grimm.is/presetctl/internal/lock"
)

// RunApply applies a preset to one site and returns the exit code.
func RunApply(ctx context.Context, rt *Runtime, site, presetRef string, dryRun bool) (int, error) {
	if site == "" || presetRef == "" {
		return ExitFail, fmt.Errorf("usage: %s apply [-n] <site> <preset>", brand.BinaryName)
	}

	p, err := rt.LoadPreset(presetRef)
	if err != nil {
		return ExitFail, err
	}

	if !dryRun {
		l, err := lock.Acquire(rt.Config.LockDir(), site)
		if err != nil {
			return ExitFail, err
		}
		defer l.Release()
	}

	a := applier.New(rt.Layout, rt.Editor, rt.Client, applier.Options{
		DryRun:  dryRun,
		Metrics: rt.Metrics,
		Logger:  rt.Logger,
	})
	res, err := a.Apply(ctx, site, p)
	if res != nil {
		command := "apply"
		if dryRun {
			command = "plan"
		}
		rt.Record(audit.Run{
			Command: command,
			Target:  site,
			Preset:  p.Name,
			Result:  res.Label(err),
			Applied: res.Applied,
			Failed:  res.Failed,
			Details: outcomeDetails(res),
		})
	}

	switch {
	case errors.Is(err, applier.ErrNotApplicable):
		rt.Out.Printf(i18n.MsgNotApplicable, site)
		return ExitOK, nil
	case errors.Is(err, applier.ErrEmptyPreset):
		printOutcomes(rt.Out, res)
		rt.Out.Status("WARN", err.Error())
		return ExitWarn, nil
	case err != nil:
		return ExitFail, err
	}

	printOutcomes(rt.Out, res)
	if res.Activated {
		verb := "activated"
		if dryRun {
			verb = "would be activated"
		}
		rt.Out.Status("INFO", fmt.Sprintf("%s %s", rt.Client.Options().Plugin, verb))
	}
	if res.PurgeErr != nil {
		rt.Out.Status("WARN", fmt.Sprintf("cache purge failed: %v", res.PurgeErr))
	}
	if dryRun {
		if res.Diff != "" {
			rt.Out.Plain("%s", res.Diff)
		}
		rt.Out.Printf(i18n.MsgPlanSummary, res.Planned, res.Failed, res.Skipped)
		return ExitOK, nil
	}

	rt.Out.Printf(i18n.MsgApplySummary, res.Applied, res.Failed, res.Skipped)
	if res.Failed > 0 {
		return ExitWarn, nil
	}
	return ExitOK, nil
}

func printOutcomes(out *Output, res *applier.Result) {
	if res == nil {
		return
	}
	for _, o := range res.Outcomes {
		line := fmt.Sprintf("%s = %s", o.Key, o.Value)
		if o.Name != "" && o.Kind == applier.KindOption {
			line = fmt.Sprintf("%s (%s) = %s", o.Key, o.Name, o.Value)
		}
		if o.Detail != "" {
			line += " [" + o.Detail + "]"
		}
		if o.Err != nil {
			line += ": " + o.Err.Error()
		}
		out.Status(string(o.Status), line)
	}
}

func outcomeDetails(res *applier.Result) map[string]any {
	details := make(map[string]any)
	for _, o := range res.Outcomes {
		details[o.Key] = string(o.Status)
	}
	if res.PurgeErr != nil {
		details["purge"] = res.PurgeErr.Error()
	}
	return details
}
