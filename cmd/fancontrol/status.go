package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"codeberg.org/mutker/fancontrol/internal/status"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newStatusCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print the state the daemon last reported",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loader, err := newLoader(cmd)
			if err != nil {
				return err
			}
			cfg, err := loader.Read()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()

			snap, err := status.Load(ctx, cfg.StatusDB)
			if err != nil {
				return err
			}

			return printSnapshot(cmd.OutOrStdout(), snap, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format (json, yaml)")

	return cmd
}

func printSnapshot(w io.Writer, snap *status.Snapshot, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
