package config

import (
	"flag"

	"github.com/dmitrijs2005/repoboard/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Only the flags listed in the package documentation are parsed, so other
// components may share the command line.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-w", "-s", "-k", "-z", "-f"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.DurationVar(&cfg.DebounceWindow, "w", cfg.DebounceWindow, "debounce window")
	fs.Float64Var(&cfg.PanSpeed, "s", cfg.PanSpeed, "wheel pan speed")
	fs.Float64Var(&cfg.KeyPanStep, "k", cfg.KeyPanStep, "keyboard pan step")
	fs.Float64Var(&cfg.ZoomStep, "z", cfg.ZoomStep, "keyboard zoom step")
	fs.StringVar(&cfg.LocalStorePath, "f", cfg.LocalStorePath, "local store path")

	return fs.Parse(args)
}
