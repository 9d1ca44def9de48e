package main

import (
	"fmt"
	"strings"

	"github.com/winddc/winddc/internal/hotkey"
	"github.com/winddc/winddc/internal/monitor"
)

var version = ""

func displayVersion() string {
	if version != "" {
		return version
	}
	return "dev"
}

// presets are the menu levels, highest first.
var presets = []int{100, 90, 80, 70, 60, 50, 40, 30, 20, 10}

// nearestPreset rounds level to the closest preset so values set elsewhere
// (monitor buttons, hotkey steps) still show a checkmark.
func nearestPreset(level int) int {
	return min(max(((level+5)/10)*10, 10), 100)
}

// numpadLevel maps Numpad0-9 to a preset: 1 is 10 %, 9 is 90 %, 0 is 100 %.
func numpadLevel(digit int) int {
	if digit == 0 {
		return 100
	}
	return digit * 10
}

// hotkeyBindings maps Win+Numpad0-9 to the presets and Ctrl+Shift+Up/Down to
// a step in either direction. Presets fire once per press; steps repeat
// while the combination is held.
func hotkeyBindings(setAll func(level int), step func(dir int)) []hotkey.Binding {
	var out []hotkey.Binding
	for d := range 10 {
		level := numpadLevel(d)
		out = append(out, hotkey.Binding{
			Mods:   hotkey.ModWin | hotkey.ModNoRepeat,
			Key:    uint32(hotkey.VKNumpad0 + d),
			Action: func() { setAll(level) },
		})
	}
	return append(out,
		hotkey.Binding{Mods: hotkey.ModCtrl | hotkey.ModShift, Key: hotkey.VKUp, Action: func() { step(+1) }},
		hotkey.Binding{Mods: hotkey.ModCtrl | hotkey.ModShift, Key: hotkey.VKDown, Action: func() { step(-1) }},
	)
}

// statusLine is the per-monitor menu caption.
func statusLine(m *monitor.Monitor) string {
	return fmt.Sprintf("%s  %d/%d  (%s)", truncate(m.Describe(), 40), m.Brightness(), m.MaxValue(), strings.ToUpper(string(m.Protocol())))
}

// tooltip summarises the registry for the tray icon.
func tooltip(level uint16, same bool, count int) string {
	switch {
	case count == 0:
		return "WinDDC: no monitors"
	case !same:
		return fmt.Sprintf("WinDDC: %d monitors, mixed brightness", count)
	default:
		return fmt.Sprintf("WinDDC: %d%%", level)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// autostartCommand is the Run-key command line that starts exe.
func autostartCommand(exe string) string {
	return `"` + exe + `"`
}

// autostartMatches compares Run-key command lines the way Windows resolves
// paths: quotes and case do not matter.
func autostartMatches(stored, want string) bool {
	unquote := func(s string) string { return strings.Trim(strings.TrimSpace(s), `"`) }
	return strings.EqualFold(unquote(stored), unquote(want))
}
