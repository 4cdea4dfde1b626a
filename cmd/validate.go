package cmd

import (
	"context"
	"fmt"

	"grimm.is/presetctl/internal/audit"
	"grimm.is/presetctl/internal/brand"
	"grimm.is/presetctl/internal/i18n"
	"grimm.is/presetctl/internal/verify"
)

// RunValidate compares a site against a preset. The exit code is 0, 1 or 2
// for OK, WARN or ERROR.
func RunValidate(ctx context.Context, rt *Runtime, site, presetRef string) (int, error) {
	if site == "" || presetRef == "" {
		return ExitFail, fmt.Errorf("usage: %s validate <site> <preset>", brand.BinaryName)
	}

	p, err := rt.LoadPreset(presetRef)
	if err != nil {
		return ExitFail, err
	}

	v := verify.New(rt.Layout, rt.Editor, rt.Client, rt.Metrics, rt.Logger)
	res := v.Validate(ctx, site, p)

	rt.Out.Status("INFO", fmt.Sprintf("validating %s against preset %s", site, p.Name))
	for _, e := range res.Entries {
		rt.Out.Status(string(e.Status), e.Subject+": "+e.Message)
	}
	counts := res.Count()
	rt.Out.Printf(i18n.MsgValidateSummary, res.Status(), counts["OK"], counts["WARN"], counts["ERROR"])

	details := make(map[string]any, len(counts))
	for k, n := range counts {
		details[k] = n
	}
	rt.Record(audit.Run{
		Command: "validate",
		Target:  site,
		Preset:  p.Name,
		Result:  string(res.Status()),
		Details: details,
	})
	return res.ExitCode(), nil
}
