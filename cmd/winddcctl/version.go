package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func displayVersion() string {
	if version != "" {
		return version
	}
	return "dev"
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// No config or hardware needed.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "winddcctl %s\n", displayVersion())
		},
	}
}
