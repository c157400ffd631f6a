package main

import (
	"fmt"
	"os"

	"codeberg.org/mutker/fancontrol/internal/config"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fancontrol",
		Short: "Temperature driven PWM fan control for OpenWrt routers",
		Long: `fancontrol reads a thermal sensor at a fixed interval and drives a PWM fan
from it. Settings come from /etc/config/fancontrol (the LuCI form) and are
reloaded when the file changes or on SIGHUP.

Without a subcommand the daemon runs in the foreground.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDaemon(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "configuration file (UCI, TOML, YAML or JSON)")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Run the fan control daemon in the foreground",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runDaemon(cmd)
			},
		},
		newStatusCmd(),
		newCheckCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, _ []string) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "fancontrol", version)
			},
		},
	)

	return cmd
}

// newLoader builds a loader for the --config file and the persistent flags
// of cmd. A --config given on the command line must exist.
func newLoader(cmd *cobra.Command) (*config.Loader, error) {
	opts := []config.Option{config.WithFlags(cmd.Flags())}
	if cmd.Flags().Changed("config") {
		opts = append(opts, config.WithConfigFile(configPath))
	}

	return config.NewLoader(opts...)
}
