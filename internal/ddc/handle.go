package ddc

import (
	"context"

	"github.com/winddc/winddc/internal/display"
)

// brightnessAPI is the high-level monitor configuration API of dxva2.
type brightnessAPI interface {
	get(handle uintptr) (min, cur, max uint32, err error)
	set(handle uintptr, v uint32) error
}

// handleChannel talks to a physical handle from the display enumerator and
// gives it back to the enumerator on Close.
type handleChannel struct {
	h   display.PhysicalHandle
	api brightnessAPI
	rel display.Enumerator
}

func (c *handleChannel) Brightness() (min, cur, max uint32, err error) {
	return c.api.get(c.h.Handle)
}

func (c *handleChannel) SetBrightness(v uint32) error {
	return c.api.set(c.h.Handle, v)
}

func (c *handleChannel) Close() error {
	return c.rel.Release(c.h)
}

// DisplayOpener opens a channel for every physical handle the enumerator
// returns.
type DisplayOpener struct {
	enum display.Enumerator
	api  brightnessAPI
}

var _ Opener = (*DisplayOpener)(nil)

// NewDisplayOpener uses the dxva2 GetMonitorBrightness/SetMonitorBrightness
// calls on handles from e.
func NewDisplayOpener(e display.Enumerator) *DisplayOpener {
	return &DisplayOpener{enum: e, api: newBrightnessAPI()}
}

func (o *DisplayOpener) Open(ctx context.Context) ([]Candidate, error) {
	displays, err := o.enum.Enumerate()
	if err != nil {
		return nil, err
	}

	handles := display.Handles(displays)
	out := make([]Candidate, 0, len(handles))
	for i, h := range handles {
		out = append(out, Candidate{
			Channel:     &handleChannel{h: h, api: o.api, rel: o.enum},
			Description: describe(h.Description, i),
		})
	}
	return out, nil
}
