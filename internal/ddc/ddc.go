// Package ddc drives monitor brightness over DDC/CI (VCP code 0x10).
package ddc

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/winddc/winddc/internal/errors"
	"github.com/winddc/winddc/internal/logger"
	"github.com/winddc/winddc/internal/monitor"
)

// Channel is a DDC/CI brightness channel to one physical monitor.
type Channel interface {
	Brightness() (min, cur, max uint32, err error)
	SetBrightness(uint32) error
	Close() error
}

// Monitor is a monitor.Driver over a Channel. Its range is whatever the
// monitor reports, usually 0-100.
type Monitor struct {
	ch   Channel
	desc string

	mu   sync.Mutex
	rng  monitor.Range
	last uint16
}

var _ monitor.Driver = (*Monitor)(nil)

// NewMonitor reads the monitor once. A channel that cannot report its
// brightness, or reports an empty range, is rejected; the caller still owns
// it in that case.
func NewMonitor(ch Channel, desc string) (*Monitor, error) {
	lo, cur, hi, err := ch.Brightness()
	if err != nil {
		return nil, errors.Wrap(errors.ErrHardwareRead, "ddc.NewMonitor", err)
	}
	if hi == 0 || hi < lo {
		return nil, errors.Errorf(errors.ErrHardwareRead, "ddc.NewMonitor", "%s reports range [%d, %d]", desc, lo, hi)
	}

	m := &Monitor{ch: ch, desc: desc}
	m.rng = monitor.Range{Min: clampU16(lo), Max: clampU16(hi)}
	m.last = m.rng.Clamp(clampU16(cur))
	return m, nil
}

func (m *Monitor) Protocol() monitor.Protocol { return monitor.ProtocolDDC }

func (m *Monitor) Describe() string { return m.desc }

// Range is the native range last reported by the monitor.
func (m *Monitor) Range() monitor.Range {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rng
}

func (m *Monitor) TypicalMax() uint16 { return m.Range().Max }

func (m *Monitor) ExtendedMax() uint16 { return m.Range().Max }

// Brightness asks the monitor for its current value. On failure it returns
// the last value read or written together with the error.
func (m *Monitor) Brightness() (uint16, error) {
	lo, cur, hi, err := m.ch.Brightness()

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		return m.last, errors.Wrap(errors.ErrHardwareRead, m.desc, err)
	}
	if hi != 0 && hi >= lo {
		m.rng = monitor.Range{Min: clampU16(lo), Max: clampU16(hi)}
	}
	m.last = m.rng.Clamp(clampU16(cur))
	return m.last, nil
}

// SetBrightness writes v clamped to the native range.
func (m *Monitor) SetBrightness(v uint16) error {
	m.mu.Lock()
	v = m.rng.Clamp(v)
	m.mu.Unlock()

	if err := m.ch.SetBrightness(uint32(v)); err != nil {
		return errors.Wrap(errors.ErrHardwareWrite, m.desc, err)
	}

	m.mu.Lock()
	m.last = v
	m.mu.Unlock()
	return nil
}

func (m *Monitor) Close() error { return m.ch.Close() }

func clampU16(v uint32) uint16 {
	if v > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(v)
}

// Candidate is an open channel that has not been read yet.
type Candidate struct {
	Channel     Channel
	Description string
}

// Opener opens one channel per physical monitor it can reach.
type Opener interface {
	Open(ctx context.Context) ([]Candidate, error)
}

// Prober turns an Opener's channels into drivers. Channels whose first read
// fails are closed and skipped.
type Prober struct {
	opener Opener
}

var _ monitor.Prober = (*Prober)(nil)

func NewProber(o Opener) *Prober {
	return &Prober{opener: o}
}

func (p *Prober) Probe(ctx context.Context) ([]monitor.Driver, error) {
	log := logger.With("ddc")

	candidates, err := p.opener.Open(ctx)
	if err != nil {
		return nil, err
	}

	drivers := make([]monitor.Driver, 0, len(candidates))
	for i, c := range candidates {
		if err := ctx.Err(); err != nil {
			closeCandidates(candidates[i:])
			return drivers, err
		}

		m, err := NewMonitor(c.Channel, c.Description)
		if err != nil {
			log.Warn().Err(err).Str("monitor", c.Description).Msg("skipping monitor without DDC/CI brightness")
			closeChannel(c)
			continue
		}
		log.Debug().
			Str("monitor", m.Describe()).
			Uint16("min", m.rng.Min).
			Uint16("max", m.rng.Max).
			Uint16("brightness", m.last).
			Msg("DDC/CI monitor ready")
		drivers = append(drivers, m)
	}
	return drivers, nil
}

func closeCandidates(cs []Candidate) {
	for _, c := range cs {
		closeChannel(c)
	}
}

func closeChannel(c Candidate) {
	if err := c.Channel.Close(); err != nil {
		logger.Debug().Err(err).Str("monitor", c.Description).Msg("close channel")
	}
}

// describe falls back to a positional name when the OS gives no description.
func describe(desc string, i int) string {
	if desc != "" {
		return desc
	}
	return fmt.Sprintf("DDC/CI monitor %d", i+1)
}
