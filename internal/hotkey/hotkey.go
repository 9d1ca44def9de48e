// Package hotkey registers system-wide hotkeys and runs an action when one
// is pressed.
package hotkey

import (
	"fmt"
	"strings"
)

// Modifier flags, as RegisterHotKey takes them.
type Modifier uint32

const (
	ModAlt   Modifier = 0x1
	ModCtrl  Modifier = 0x2
	ModShift Modifier = 0x4
	ModWin   Modifier = 0x8

	// ModNoRepeat suppresses auto-repeat while the key is held. Without it a
	// held combination fires at the keyboard repeat rate.
	ModNoRepeat Modifier = 0x4000
)

// Virtual-key codes used by the tray app.
const (
	VKUp      = 0x26
	VKDown    = 0x28
	VKNumpad0 = 0x60
	VKNumpad9 = 0x69
)

// Binding is one hotkey and what it does.
type Binding struct {
	Mods   Modifier
	Key    uint32
	Action func()
}

func (b Binding) String() string {
	var parts []string
	for _, m := range []struct {
		mod  Modifier
		name string
	}{
		{ModCtrl, "Ctrl"},
		{ModAlt, "Alt"},
		{ModShift, "Shift"},
		{ModWin, "Win"},
	} {
		if b.Mods&m.mod != 0 {
			parts = append(parts, m.name)
		}
	}
	return strings.Join(append(parts, keyName(b.Key)), "+")
}

func keyName(vk uint32) string {
	switch {
	case vk == VKUp:
		return "Up"
	case vk == VKDown:
		return "Down"
	case vk >= VKNumpad0 && vk <= VKNumpad9:
		return fmt.Sprintf("Numpad%d", vk-VKNumpad0)
	case vk >= '0' && vk <= '9', vk >= 'A' && vk <= 'Z':
		return string(rune(vk))
	default:
		return fmt.Sprintf("0x%02X", vk)
	}
}
