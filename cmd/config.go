package cmd

import (
	"grimm.is/presetctl/internal/config"
)

// RunConfig prints the effective engine configuration as HCL.
func RunConfig(rt *Runtime) error {
	_, err := rt.Out.W.Write(config.GenerateHCL(rt.Config))
	return err
}
