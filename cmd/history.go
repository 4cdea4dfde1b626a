package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"
)

// RunHistory prints recorded runs, newest first.
func RunHistory(rt *Runtime, site string, limit int) error {
	if rt.Audit == nil {
		return fmt.Errorf("run history is disabled (audit.enabled = false)")
	}

	runs, err := rt.Audit.History(site, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		rt.Out.Plain("No runs recorded.")
		return nil
	}

	w := tabwriter.NewWriter(rt.Out.W, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tCOMMAND\tTARGET\tPRESET\tRESULT\tAPPLIED\tFAILED")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%d\n",
			r.Timestamp.Local().Format(time.DateTime), r.Command, r.Target, r.Preset, r.Result, r.Applied, r.Failed)
	}
	return w.Flush()
}
