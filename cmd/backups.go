package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"grimm.is/presetctl/internal/brand"
	"grimm.is/presetctl/internal/i18n"
)

// RunBackups lists the config-block backups of one site, newest first.
func RunBackups(rt *Runtime, site string) error {
	if site == "" {
		return fmt.Errorf("usage: %s backups <site>", brand.BinaryName)
	}
	t, err := rt.Layout.Resolve(site)
	if err != nil {
		return err
	}

	backups, err := rt.Backups.ListBackups(t.ConfigPath)
	if err != nil {
		return err
	}

	rt.Out.Printf(i18n.MsgBackupCount, len(backups), t.ConfigPath)
	if len(backups) == 0 {
		return nil
	}
	w := tabwriter.NewWriter(rt.Out.W, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIMESTAMP\tSIZE\tPATH")
	for _, b := range backups {
		fmt.Fprintf(w, "%s\t%d\t%s\n", b.Timestamp.Local().Format(time.DateTime), b.Size, b.Path)
	}
	return w.Flush()
}
