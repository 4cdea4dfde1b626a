package cmd

import (
	"fmt"
	"text/tabwriter"

	"grimm.is/presetctl/internal/i18n"
	"grimm.is/presetctl/internal/preset"
)

// RunList prints the structurally valid presets in dir (default: the
// configured presets directory).
func RunList(rt *Runtime, dir string) error {
	reg := rt.Registry()
	if dir != "" {
		reg = preset.NewRegistry(dir, rt.presetOptions())
	}

	presets, err := reg.List()
	if err != nil {
		return err
	}

	rt.Out.Printf(i18n.MsgPresetCount, len(presets), reg.Dir)
	if len(presets) == 0 {
		return nil
	}
	w := tabwriter.NewWriter(rt.Out.W, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDESCRIPTION")
	for _, s := range presets {
		fmt.Fprintf(w, "%s\t%s\n", s.Name, s.Description)
	}
	return w.Flush()
}
