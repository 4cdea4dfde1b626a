package cmd

import (
	"grimm.is/presetctl/internal/brand"
)

// RunVersion prints the build version.
func RunVersion(out *Output) {
	out.Plain("%s %s (%s)", brand.Name, brand.Version, brand.GitCommit)
	out.Plain("%s", brand.Description)
}
