package hdr

import (
	"context"

	"github.com/winddc/winddc/internal/display"
	"github.com/winddc/winddc/internal/logger"
	"github.com/winddc/winddc/internal/monitor"
)

// Target is the target end of one active display path.
type Target struct {
	AdapterLow  uint32
	AdapterHigh int32
	ID          uint32

	// GDIName is the source device name, e.g. \\.\DISPLAY1, which ties the
	// path to a display from the enumerator.
	GDIName string
	HDR     bool
}

// pathAPI is the DisplayConfig and DXGI surface the prober needs.
type pathAPI interface {
	targets() ([]Target, error)
	whiteLevel(t Target) (uint32, error)
	setWhiteLevel(t Target, raw uint32) error
	peakLuminance(gdiName string) (float32, error)
}

// pathChannel drives one path and owns the display's first physical handle.
type pathChannel struct {
	t      Target
	api    pathAPI
	handle *display.PhysicalHandle
	enum   display.Enumerator
}

func (c *pathChannel) WhiteLevel() (uint32, error) { return c.api.whiteLevel(c.t) }

func (c *pathChannel) SetWhiteLevel(raw uint32) error { return c.api.setWhiteLevel(c.t, raw) }

func (c *pathChannel) PeakLuminance() (float32, error) { return c.api.peakLuminance(c.t.GDIName) }

func (c *pathChannel) Close() error {
	if c.handle == nil {
		return nil
	}
	return c.enum.Release(*c.handle)
}

// Prober builds one Monitor per display that is currently in HDR mode.
type Prober struct {
	enum display.Enumerator
	api  pathAPI
}

var _ monitor.Prober = (*Prober)(nil)

func NewProber(e display.Enumerator) *Prober {
	return &Prober{enum: e, api: newPathAPI()}
}

func (p *Prober) Probe(ctx context.Context) ([]monitor.Driver, error) {
	log := logger.With("hdr")

	targets, err := p.api.targets()
	if err != nil {
		return nil, err
	}
	byName := make(map[string]Target, len(targets))
	for _, t := range targets {
		if t.HDR {
			byName[t.GDIName] = t
		}
	}
	if len(byName) == 0 {
		log.Debug().Int("paths", len(targets)).Msg("no display in HDR mode")
		return nil, nil
	}

	displays, err := p.enum.Enumerate()
	if err != nil {
		return nil, err
	}

	var drivers []monitor.Driver
	for _, d := range displays {
		t, ok := byName[d.DeviceName]
		if !ok || ctx.Err() != nil {
			p.release(d.Physical)
			continue
		}

		ch := &pathChannel{t: t, api: p.api, enum: p.enum}
		desc := d.DeviceName
		if len(d.Physical) > 0 {
			first := d.Physical[0]
			ch.handle = &first
			if first.Description != "" {
				desc = first.Description
			}
			p.release(d.Physical[1:])
		}

		m := NewMonitor(ch, desc)
		log.Debug().
			Str("monitor", desc).
			Str("device", d.DeviceName).
			Uint16("extended_max", m.ExtendedMax()).
			Msg("HDR display ready")
		drivers = append(drivers, m)
	}
	return drivers, ctx.Err()
}

func (p *Prober) release(handles []display.PhysicalHandle) {
	for _, h := range handles {
		if err := p.enum.Release(h); err != nil {
			logger.Debug().Err(err).Str("monitor", h.Description).Msg("release physical monitor")
		}
	}
}
