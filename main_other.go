//go:build !windows

package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintf(os.Stderr, "WinDDC %s: the tray app only runs on Windows\n", displayVersion())
	os.Exit(1)
}
