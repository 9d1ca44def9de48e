package monitor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// fakeDriver records hardware writes and flags any overlap between them.
type fakeDriver struct {
	name     string
	proto    Protocol
	typical  uint16
	extended uint16
	delay    time.Duration
	gate     chan struct{} // when set, each write waits for a receive
	onRead   func()        // runs after a read has sampled the hardware

	mu       sync.Mutex
	hw       uint16
	written  []uint16
	readErr  error
	writeErr error

	inFlight atomic.Int32
	overlap  atomic.Bool
	closed   atomic.Bool
}

func newFakeDriver(name string, hw uint16) *fakeDriver {
	return &fakeDriver{name: name, proto: ProtocolDDC, typical: 100, extended: 100, hw: hw}
}

func (f *fakeDriver) Protocol() Protocol  { return f.proto }
func (f *fakeDriver) Describe() string    { return f.name }
func (f *fakeDriver) TypicalMax() uint16  { return f.typical }
func (f *fakeDriver) ExtendedMax() uint16 { return f.extended }

func (f *fakeDriver) Brightness() (uint16, error) {
	f.mu.Lock()
	v, err := f.hw, f.readErr
	f.mu.Unlock()
	if f.onRead != nil {
		f.onRead()
	}
	return v, err
}

func (f *fakeDriver) SetBrightness(v uint16) error {
	if f.inFlight.Add(1) > 1 {
		f.overlap.Store(true)
	}
	defer f.inFlight.Add(-1)

	if f.gate != nil {
		<-f.gate
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		f.written = append(f.written, v)
		return f.writeErr
	}
	f.hw = v
	f.written = append(f.written, v)
	return nil
}

func (f *fakeDriver) Close() error {
	f.closed.Store(true)
	return nil
}

func (f *fakeDriver) setReadErr(err error) {
	f.mu.Lock()
	f.readErr = err
	f.mu.Unlock()
}

func (f *fakeDriver) setHardware(v uint16) {
	f.mu.Lock()
	f.hw = v
	f.mu.Unlock()
}

func (f *fakeDriver) hardware() uint16 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hw
}

func (f *fakeDriver) writes() []uint16 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uint16(nil), f.written...)
}

// countingProber returns fixed drivers and counts calls.
type countingProber struct {
	calls   atomic.Int32
	drivers []Driver
	err     error
	panics  bool
	block   chan struct{}
}

func (p *countingProber) Probe(ctx context.Context) ([]Driver, error) {
	p.calls.Add(1)
	if p.block != nil {
		<-p.block
	}
	if p.panics {
		panic("driver exploded")
	}
	return p.drivers, p.err
}

// staticSource hands out preset monitor lists in order, then empty lists.
type staticSource struct {
	mu     sync.Mutex
	passes [][]*Monitor
}

func (s *staticSource) Detect(context.Context, bool) []*Monitor {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.passes) == 0 {
		return []*Monitor{}
	}
	next := s.passes[0]
	s.passes = s.passes[1:]
	return next
}

const (
	settle = 2 * time.Second
	tick   = 5 * time.Millisecond
)
