package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/winddc/winddc/internal/errors"
	"github.com/winddc/winddc/internal/monitor"
)

// change is a parsed set argument: an absolute level or a relative step.
type change struct {
	value    int
	relative bool
}

func parseChange(s string) (change, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	relative := strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-")

	n, err := strconv.Atoi(s)
	if err != nil {
		return change{}, errors.Errorf(errors.ErrInvalidArg, "set", "%q is not a brightness (N, +N or -N)", s)
	}
	if !relative && n > 0xFFFF {
		return change{}, errors.Errorf(errors.ErrInvalidArg, "set", "%d is out of range", n)
	}
	return change{value: n, relative: relative}, nil
}

// apply requests the change; it does not wait for the hardware.
func (c change) apply(m *monitor.Monitor) {
	if c.relative {
		m.Step(c.value)
		return
	}
	m.SetBrightness(uint16(c.value))
}

func newSetCmd(a *app) *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "set <value>",
		Short: "Set brightness on one or all monitors",
		Long: `Set brightness to N, or step it by +N / -N. Values are clamped to each
monitor's range. Put -- before a negative step so it is not read as a flag.`,
		Example: `  winddcctl set 60
  winddcctl set +10 --monitor dell
  winddcctl set -- -10
  winddcctl set 150 --extended --monitor 0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := parseChange(args[0])
			if err != nil {
				return err
			}
			ms, err := a.selected(cmd.Context(), query)
			if err != nil {
				return err
			}

			for _, m := range ms {
				if c.relative {
					// Step from what the monitor shows now, not the detection snapshot.
					m.GetBrightness()
				}
				c.apply(m)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Detect.Timeout)
			defer cancel()
			for _, m := range ms {
				if err := m.Wait(ctx); err != nil {
					return errors.Wrap(errors.ErrHardwareWrite, m.Describe()+": write still pending", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", m.Describe(), m.Brightness())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&query, "monitor", "m", "", "monitor index, ID prefix or description substring (default all)")
	cmd.Flags().Bool("extended", false, "allow HDR levels above the SDR slider maximum")
	return cmd
}
