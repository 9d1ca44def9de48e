// Package display walks the OS display topology: logical display surfaces and
// the physical monitor handles behind each of them.
package display

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/winddc/winddc/internal/errors"
	"github.com/winddc/winddc/internal/logger"
)

// Rect is a display rectangle in virtual-desktop coordinates.
type Rect struct {
	Left, Top, Right, Bottom int32
}

func (r Rect) Width() int32  { return r.Right - r.Left }
func (r Rect) Height() int32 { return r.Bottom - r.Top }

// PhysicalHandle is an OS handle to one physical monitor plus its VESA
// description. It stays valid until released or until the display
// configuration changes.
type PhysicalHandle struct {
	Handle      uintptr
	Description string
}

func (p PhysicalHandle) String() string {
	return fmt.Sprintf("%s (0x%x)", p.Description, p.Handle)
}

// Display is one logical display surface and its physical monitors.
type Display struct {
	Handle     uintptr
	DeviceName string
	Primary    bool
	Bounds     Rect
	Physical   []PhysicalHandle
}

// Enumerator discovers displays. Callers own every returned handle and must
// hand it back to Release when done.
type Enumerator interface {
	Enumerate() ([]Display, error)
	Release(PhysicalHandle) error
}

// Handles flattens displays into their physical handles, in order.
func Handles(displays []Display) []PhysicalHandle {
	var out []PhysicalHandle
	for _, d := range displays {
		out = append(out, d.Physical...)
	}
	return out
}

// ReleaseAll releases every handle of displays, logging failures.
func ReleaseAll(e Enumerator, displays []Display) {
	for _, h := range Handles(displays) {
		if err := e.Release(h); err != nil {
			logger.Debug().Err(err).Str("monitor", h.Description).Msg("release physical monitor")
		}
	}
}

// logical is what the OS reports for a display surface before any physical
// monitor is opened.
type logical struct {
	handle     uintptr
	deviceName string
	primary    bool
	bounds     Rect
}

// systemAPI is the slice of the OS the enumerator needs.
type systemAPI interface {
	logicalDisplays() ([]logical, error)
	physicalCount(hmonitor uintptr) (uint32, error)
	physicalMonitors(hmonitor uintptr, count uint32) ([]PhysicalHandle, error)
	destroy(handle uintptr) error
}

// SystemEnumerator enumerates through the operating system.
type SystemEnumerator struct {
	api systemAPI
}

var _ Enumerator = (*SystemEnumerator)(nil)

func NewSystemEnumerator() *SystemEnumerator {
	return &SystemEnumerator{api: newSystemAPI()}
}

// Enumerate returns every logical display with its physical monitors. Any OS
// refusal aborts the pass: handles opened so far are released and nothing is
// returned.
func (e *SystemEnumerator) Enumerate() ([]Display, error) {
	logicals, err := e.api.logicalDisplays()
	if err != nil {
		return nil, errors.Wrap(errors.ErrEnumeration, "enumerate displays", err)
	}

	displays := make([]Display, 0, len(logicals))
	for _, l := range logicals {
		count, err := e.api.physicalCount(l.handle)
		if err != nil {
			ReleaseAll(e, displays)
			return nil, errors.Wrap(errors.ErrEnumeration, "count physical monitors of "+l.deviceName, err)
		}

		var physical []PhysicalHandle
		if count > 0 {
			physical, err = e.api.physicalMonitors(l.handle, count)
			if err != nil {
				ReleaseAll(e, displays)
				return nil, errors.Wrap(errors.ErrEnumeration, "get physical monitors of "+l.deviceName, err)
			}
		}

		displays = append(displays, Display{
			Handle:     l.handle,
			DeviceName: l.deviceName,
			Primary:    l.primary,
			Bounds:     l.bounds,
			Physical:   physical,
		})
	}

	sortDisplays(displays)
	for _, d := range displays {
		logger.Debug().
			Str("device", d.DeviceName).
			Bool("primary", d.Primary).
			Str("size", fmt.Sprintf("%dx%d", d.Bounds.Width(), d.Bounds.Height())).
			Int("physical", len(d.Physical)).
			Msg("display")
	}
	return displays, nil
}

// sortDisplays puts the primary display first and the rest in desktop
// order, left to right then top to bottom, so monitor indexes follow the
// physical layout instead of the order the OS happened to report.
func sortDisplays(displays []Display) {
	slices.SortStableFunc(displays, func(a, b Display) int {
		if a.Primary != b.Primary {
			if a.Primary {
				return -1
			}
			return 1
		}
		return cmp.Or(
			cmp.Compare(a.Bounds.Left, b.Bounds.Left),
			cmp.Compare(a.Bounds.Top, b.Bounds.Top),
		)
	})
}

func (e *SystemEnumerator) Release(h PhysicalHandle) error {
	if h.Handle == 0 {
		return nil
	}
	return e.api.destroy(h.Handle)
}
