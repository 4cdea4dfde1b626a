package cmd

import (
	"fmt"
	"strings"

	"grimm.is/presetctl/internal/brand"
	"grimm.is/presetctl/internal/preset"
)

// RunCheck structurally validates one preset file.
func RunCheck(rt *Runtime, path string, lenient bool) error {
	if path == "" {
		return fmt.Errorf("usage: %s check [--lenient] <preset-file>\nExample: %s check /etc/presetctl/presets/fast.preset", brand.BinaryName, brand.BinaryName)
	}

	opts := rt.presetOptions()
	opts.Lenient = opts.Lenient || lenient
	p, err := preset.StructurallyValidate(path, opts)
	if err != nil {
		return fmt.Errorf("preset invalid: %w", err)
	}

	rt.Out.Status("OK", fmt.Sprintf("preset %s is valid", p.Name))
	if p.Description != "" {
		rt.Out.Plain("Description: %s", p.Description)
	}
	for _, section := range p.SectionNames() {
		rt.Out.Plain("Section %s: %s", section, strings.Join(p.Keys(section), ", "))
	}
	for _, s := range p.Skipped {
		rt.Out.Status("WARN", fmt.Sprintf("line %d skipped: %s", s.Line, s.Reason))
	}
	return nil
}
