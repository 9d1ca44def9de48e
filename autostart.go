//go:build windows

package main

import (
	"os"

	"golang.org/x/sys/windows/registry"

	"github.com/winddc/winddc/internal/errors"
)

const runKey = `Software\Microsoft\Windows\CurrentVersion\Run`

// runKeyEntry is the per-user Run entry that launches the tray app at login.
type runKeyEntry struct {
	name    string
	command string
}

func newAutostart() (*runKeyEntry, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, errors.Wrap(errors.ErrAutostart, "locate executable", err)
	}
	return &runKeyEntry{name: appName, command: autostartCommand(exe)}, nil
}

// Enabled reports whether the entry exists and still launches this
// executable. An entry left behind by a moved or renamed copy does not count.
func (a *runKeyEntry) Enabled() (bool, error) {
	k, err := registry.OpenKey(registry.CURRENT_USER, runKey, registry.QUERY_VALUE)
	if err != nil {
		return false, errors.Wrap(errors.ErrAutostart, "open Run key", err)
	}
	defer k.Close()

	stored, _, err := k.GetStringValue(a.name)
	if errors.Is(err, registry.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(errors.ErrAutostart, "read Run value", err)
	}
	return autostartMatches(stored, a.command), nil
}

// Set writes or removes the entry. Removing a missing entry is not an error.
func (a *runKeyEntry) Set(on bool) error {
	k, err := registry.OpenKey(registry.CURRENT_USER, runKey, registry.SET_VALUE)
	if err != nil {
		return errors.Wrap(errors.ErrAutostart, "open Run key", err)
	}
	defer k.Close()

	if on {
		err = k.SetStringValue(a.name, a.command)
	} else if err = k.DeleteValue(a.name); errors.Is(err, registry.ErrNotExist) {
		err = nil
	}
	if err != nil {
		return errors.Wrap(errors.ErrAutostart, "update Run value", err)
	}
	return nil
}
