//go:build !windows

package ddc

import (
	"context"

	"github.com/winddc/winddc/internal/errors"
)

// LibraryOpener is only available on Windows.
type LibraryOpener struct{}

var _ Opener = LibraryOpener{}

func NewLibraryOpener() LibraryOpener { return LibraryOpener{} }

func (LibraryOpener) Open(context.Context) ([]Candidate, error) {
	return nil, errors.New(errors.ErrUnsupported, "ddcci.NewSystemMonitors")
}
