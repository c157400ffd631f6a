package main

import (
	"context"
	"fmt"
	"io"

	"codeberg.org/mutker/fancontrol/internal/config"
	"codeberg.org/mutker/fancontrol/internal/curve"
	"codeberg.org/mutker/fancontrol/internal/errors"
	"codeberg.org/mutker/fancontrol/internal/pwm"
	"codeberg.org/mutker/fancontrol/internal/sensor"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newCheckCmd() *cobra.Command {
	var probe bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and print the effective settings",
		Long: `check prints the settings the daemon would run with and lists every
invalid value. With --probe it also reads the sensor once and shows the duty
the curve yields, without touching the fan.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loader, err := newLoader(cmd)
			if err != nil {
				return err
			}

			cfg, err := loader.Read()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if err := printConfig(out, cfg); err != nil {
				return err
			}

			if st := cfg.Status(); !st.Valid {
				for _, verr := range st.ValidationErrors {
					_, _ = fmt.Fprintf(out, "error: %s\n", verr.Error())
				}
				return errors.New().WithData(errors.ErrInvalidConfig, fmt.Sprintf("%d invalid settings", len(st.ValidationErrors)))
			}

			if probe {
				return runProbe(cmd.Context(), out, cfg)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&probe, "probe", false, "read the sensor and compute a duty")

	return cmd
}

func printConfig(w io.Writer, cfg *config.Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}

	return enc.Close()
}

func runProbe(ctx context.Context, w io.Writer, cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.IOTimeout())
	defer cancel()

	reading, err := sensor.NewReader().Read(ctx, cfg.ThermalFile, cfg.TempDiv)
	if err != nil {
		return err
	}

	current, err := pwm.NewWriter().Current(ctx, cfg.FanFile)
	if err != nil {
		_, _ = fmt.Fprintf(w, "current duty: unknown (%v)\n", err)
		current = curve.MinDuty
	} else {
		_, _ = fmt.Fprintf(w, "current duty: %d (%.0f%%)\n", current, curve.Percent(current))
	}

	duty := curve.Compute(reading.Celsius, current, cfg.CurveParams())
	_, _ = fmt.Fprintf(w, "temperature: %.1f°C (raw %d)\n", reading.Celsius, reading.Raw)
	_, _ = fmt.Fprintf(w, "computed duty: %d (%.0f%%)\n", duty, curve.Percent(duty))

	return nil
}
