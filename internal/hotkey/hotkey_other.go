//go:build !windows

package hotkey

import (
	"context"

	"github.com/winddc/winddc/internal/errors"
)

// Listen is only implemented on Windows.
func Listen(context.Context, []Binding) error {
	return errors.New(errors.ErrUnsupported, "hotkey.Listen")
}
