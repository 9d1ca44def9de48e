//go:build windows

package ddc

import (
	"context"
	"fmt"

	"github.com/niluan304/ddcci"

	"github.com/winddc/winddc/internal/errors"
	"github.com/winddc/winddc/internal/logger"
)

// libraryChannel wraps a ddcci.PhysicalMonitor. The library keeps the
// physical handle for the life of the process, so Close has nothing to free.
type libraryChannel struct {
	pm *ddcci.PhysicalMonitor
}

func (c libraryChannel) Brightness() (lo, cur, hi uint32, err error) {
	mn, cr, mx, err := c.pm.GetBrightness()
	if err != nil {
		return 0, 0, 0, err
	}
	return nonNegative(mn), nonNegative(cr), nonNegative(mx), nil
}

func (c libraryChannel) SetBrightness(v uint32) error {
	return c.pm.SetBrightness(int(v))
}

func (libraryChannel) Close() error { return nil }

// LibraryOpener enumerates through github.com/niluan304/ddcci. The library
// does not expose VESA descriptions, so monitors are named by position.
type LibraryOpener struct{}

var _ Opener = LibraryOpener{}

func NewLibraryOpener() LibraryOpener { return LibraryOpener{} }

func (LibraryOpener) Open(ctx context.Context) ([]Candidate, error) {
	log := logger.With("ddcci")

	sys, err := ddcci.NewSystemMonitors()
	if err != nil {
		return nil, errors.Wrap(errors.ErrEnumeration, "ddcci.NewSystemMonitors", err)
	}
	log.Debug().Int("system_monitors", len(sys)).Msg("enumerated")

	out := make([]Candidate, 0, len(sys))
	for i := range sys {
		pm, err := ddcci.NewPhysicalMonitor(&sys[i])
		if err != nil {
			log.Warn().Err(err).Int("index", i).Msg("open physical monitor")
			continue
		}
		out = append(out, Candidate{
			Channel:     libraryChannel{pm: pm},
			Description: fmt.Sprintf("DDC/CI monitor %d", i+1),
		})
	}
	return out, nil
}

func nonNegative(v int) uint32 {
	if v < 0 {
		return 0
	}
	return uint32(v)
}
