// Command winddcctl lists monitors and reads or sets their brightness from
// the command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = ""

func main() {
	a := newApp()
	if err := execute(a, newRootCmd(a)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// execute runs root and releases the registry and log file afterwards,
// whether or not the command succeeded.
func execute(a *app, root *cobra.Command) error {
	defer a.teardown()
	return root.Execute()
}
