// Package monitor is the brightness-control core: a uniform Monitor over the
// DDC/CI and HDR drivers, a per-monitor coalescing writer and the detection
// registry that front ends talk to.
package monitor

import "context"

// Protocol names the hardware channel behind a Monitor.
type Protocol string

const (
	ProtocolDDC Protocol = "ddc"
	ProtocolHDR Protocol = "hdr"
)

// Range is an inclusive brightness range.
type Range struct {
	Min, Max uint16
}

// Clamp forces v into r.
func (r Range) Clamp(v uint16) uint16 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// Driver is one physical monitor reachable through one protocol.
//
// Brightness and SetBrightness block on hardware I/O. Only the Writer calls
// SetBrightness; callers go through Monitor.SetBrightness. On a failed read
// Brightness returns the last value it saw together with the error.
type Driver interface {
	Protocol() Protocol
	Describe() string
	Brightness() (uint16, error)
	SetBrightness(uint16) error
	TypicalMax() uint16
	ExtendedMax() uint16
	Close() error
}

// Prober finds every monitor reachable through one protocol.
type Prober interface {
	Probe(ctx context.Context) ([]Driver, error)
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(ctx context.Context) ([]Driver, error)

func (f ProberFunc) Probe(ctx context.Context) ([]Driver, error) { return f(ctx) }
