package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get [monitor]",
		Short: "Print the current brightness",
		Long: `Print the current brightness read from the hardware. With a monitor
argument (index, ID prefix or part of the description) only that monitor is
printed, as a bare number.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			ms, err := a.selected(cmd.Context(), query)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if query != "" {
				fmt.Fprintln(out, ms[0].GetBrightness())
				return nil
			}
			for i, m := range ms {
				fmt.Fprintf(out, "%d\t%s\t%d\n", i, m.Describe(), m.GetBrightness())
			}
			return nil
		},
	}
}
