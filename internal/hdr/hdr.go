// Package hdr drives the SDR content brightness of displays running in HDR
// mode. Windows exposes this as the SDR white level of a DisplayConfig path;
// the level range 0-100 matches the "SDR content brightness" slider in the
// display settings.
package hdr

import (
	"math"
	"sync"

	"github.com/winddc/winddc/internal/errors"
	"github.com/winddc/winddc/internal/logger"
	"github.com/winddc/winddc/internal/monitor"
)

const (
	// TypicalMax is the top of the settings-slider range (480 nits).
	TypicalMax uint16 = 100

	baseNits     = 80.0
	nitsPerLevel = 4.0

	// The OS reports SDR white in thousandths of the 80-nit reference.
	whiteLevelUnit = 1000.0 / baseNits
)

// LevelToNits maps a brightness level to SDR white luminance.
func LevelToNits(level uint16) float64 {
	return baseNits + nitsPerLevel*float64(level)
}

// NitsToLevel is the inverse of LevelToNits, rounded and saturating at 0.
func NitsToLevel(nits float64) uint16 {
	l := math.Round((nits - baseNits) / nitsPerLevel)
	switch {
	case l <= 0 || math.IsNaN(l):
		return 0
	case l >= math.MaxUint16:
		return math.MaxUint16
	}
	return uint16(l)
}

// NitsToWhiteLevel converts nits to the raw SDRWhiteLevel value.
func NitsToWhiteLevel(nits float64) uint32 {
	return uint32(math.Round(nits * whiteLevelUnit))
}

// WhiteLevelToNits converts a raw SDRWhiteLevel value to nits.
func WhiteLevelToNits(raw uint32) float64 {
	return float64(raw) / whiteLevelUnit
}

// ExtendedMax is the highest level whose white luminance still fits under
// the display's peak. It is never below TypicalMax; an unknown peak (zero or
// negative) yields TypicalMax.
func ExtendedMax(peak float32) uint16 {
	if peak <= 0 || math.IsNaN(float64(peak)) {
		return TypicalMax
	}
	l := math.Floor((float64(peak) - baseNits) / nitsPerLevel)
	if l <= float64(TypicalMax) {
		return TypicalMax
	}
	if l >= math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(l)
}

// Channel reaches the SDR white level of one HDR display.
type Channel interface {
	WhiteLevel() (uint32, error)
	SetWhiteLevel(uint32) error
	// PeakLuminance is the display's reported maximum luminance in nits.
	PeakLuminance() (float32, error)
	Close() error
}

// Monitor is a monitor.Driver over a Channel. Its minimum is always 0.
type Monitor struct {
	ch       Channel
	desc     string
	extended uint16

	mu   sync.Mutex
	last uint16
}

var _ monitor.Driver = (*Monitor)(nil)

// NewMonitor queries the peak luminance once to fix the extended ceiling,
// then reads the current white level.
func NewMonitor(ch Channel, desc string) *Monitor {
	log := logger.With("hdr")
	m := &Monitor{ch: ch, desc: desc, extended: TypicalMax}

	if peak, err := ch.PeakLuminance(); err != nil {
		log.Debug().Err(err).Str("monitor", desc).Msg("peak luminance unknown, extended range disabled")
	} else {
		m.extended = ExtendedMax(peak)
	}

	if _, err := m.Brightness(); err != nil {
		log.Debug().Err(err).Str("monitor", desc).Msg("initial white level read failed")
	}
	return m
}

func (m *Monitor) Protocol() monitor.Protocol { return monitor.ProtocolHDR }

func (m *Monitor) Describe() string { return m.desc }

func (m *Monitor) TypicalMax() uint16 { return TypicalMax }

func (m *Monitor) ExtendedMax() uint16 { return m.extended }

func (m *Monitor) Brightness() (uint16, error) {
	raw, err := m.ch.WhiteLevel()

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		return m.last, errors.Wrap(errors.ErrHardwareRead, m.desc, err)
	}
	m.last = min(NitsToLevel(WhiteLevelToNits(raw)), m.extended)
	return m.last, nil
}

// SetBrightness writes v, capped at the extended ceiling.
func (m *Monitor) SetBrightness(v uint16) error {
	v = min(v, m.extended)
	if err := m.ch.SetWhiteLevel(NitsToWhiteLevel(LevelToNits(v))); err != nil {
		return errors.Wrap(errors.ErrHardwareWrite, m.desc, err)
	}

	m.mu.Lock()
	m.last = v
	m.mu.Unlock()
	return nil
}

func (m *Monitor) Close() error { return m.ch.Close() }
