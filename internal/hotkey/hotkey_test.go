package hotkey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBindingString(t *testing.T) {
	tests := []struct {
		b    Binding
		want string
	}{
		{Binding{Mods: ModWin, Key: VKNumpad0}, "Win+Numpad0"},
		{Binding{Mods: ModWin, Key: VKNumpad0 + 7}, "Win+Numpad7"},
		{Binding{Mods: ModCtrl | ModShift, Key: VKUp}, "Ctrl+Shift+Up"},
		{Binding{Mods: ModShift | ModCtrl, Key: VKDown}, "Ctrl+Shift+Down"},
		{Binding{Mods: ModAlt, Key: 'B'}, "Alt+B"},
		{Binding{Key: 0x7B}, "0x7B"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.b.String())
	}
}
