package monitor

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/winddc/winddc/internal/errors"
	"github.com/winddc/winddc/internal/logger"
)

// Property names the Monitor value a Change refers to.
type Property int

const (
	PropertyBrightness Property = iota
	PropertyMaxValue
)

func (p Property) String() string {
	switch p {
	case PropertyBrightness:
		return "brightness"
	case PropertyMaxValue:
		return "max_value"
	default:
		return "unknown"
	}
}

// Change is delivered to OnChange listeners after a cached value changes.
type Change struct {
	Monitor  *Monitor
	Property Property
	Value    uint16
}

// Monitor is what front ends hold: a driver, its writer and the cached state
// a UI binds to. Brightness is always within [0, MaxValue].
type Monitor struct {
	id     string
	driver Driver
	writer *Writer

	mu            sync.Mutex
	brightness    uint16
	maxValue      uint16
	allowExtended bool
	gen           uint64 // bumped by every request

	lmu       sync.Mutex
	listeners map[int]func(Change)
	nextID    int
}

// New wraps d and reads its current brightness once.
func New(d Driver, allowExtended bool) *Monitor {
	return newMonitor(d, allowExtended, 0)
}

// newMonitor is New for the n-th monitor of a detection pass that shares
// d's protocol and description.
func newMonitor(d Driver, allowExtended bool, n int) *Monitor {
	m := &Monitor{
		id:            StableID(d.Protocol(), d.Describe(), n),
		driver:        d,
		allowExtended: allowExtended,
		listeners:     make(map[int]func(Change)),
	}
	m.maxValue = m.maxFor(allowExtended)
	m.writer = NewWriter(d.Describe(), d.SetBrightness)

	b, err := d.Brightness()
	if err != nil {
		m.logReadFailure(err)
	}
	m.brightness = min(b, m.maxValue)
	return m
}

// StableID names the n-th monitor with the given protocol and description.
// The same hardware gets the same ID in every process.
func StableID(proto Protocol, description string, n int) string {
	name := fmt.Sprintf("winddc:%s/%s#%d", proto, description, n)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

func (m *Monitor) maxFor(allowExtended bool) uint16 {
	if allowExtended {
		return m.driver.ExtendedMax()
	}
	return m.driver.TypicalMax()
}

// ID is derived from what the monitor reports about itself, so it survives
// detection passes and restarts.
func (m *Monitor) ID() string { return m.id }

func (m *Monitor) Describe() string { return m.driver.Describe() }

func (m *Monitor) String() string { return m.driver.Describe() }

func (m *Monitor) Protocol() Protocol { return m.driver.Protocol() }

func (m *Monitor) TypicalMax() uint16 { return m.driver.TypicalMax() }

func (m *Monitor) ExtendedMax() uint16 { return m.driver.ExtendedMax() }

// Brightness is the cached value. It does no I/O.
func (m *Monitor) Brightness() uint16 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.brightness
}

func (m *Monitor) MaxValue() uint16 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxValue
}

func (m *Monitor) AllowExtended() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.allowExtended
}

// GetBrightness reads the hardware. A failed read returns the cached value.
// While a write is pending, or when a request arrives during the read, the
// cache keeps the requested value since the hardware is about to be
// overwritten anyway.
func (m *Monitor) GetBrightness() uint16 {
	m.mu.Lock()
	gen := m.gen
	m.mu.Unlock()
	if _, active := m.writer.Pending(); active {
		return m.Brightness()
	}

	v, err := m.driver.Brightness()
	if err != nil {
		m.logReadFailure(err)
		return m.Brightness()
	}

	m.mu.Lock()
	if _, active := m.writer.Pending(); active || gen != m.gen {
		v = m.brightness
		m.mu.Unlock()
		return v
	}
	v = min(v, m.maxValue)
	changed := v != m.brightness
	m.brightness = v
	m.mu.Unlock()

	if changed {
		m.notify(PropertyBrightness, v)
	}
	return v
}

// SetBrightness clamps v, caches it and hands it to the writer. It returns
// before any hardware I/O happens.
func (m *Monitor) SetBrightness(v uint16) {
	m.mu.Lock()
	v, changed := m.requestLocked(v)
	m.mu.Unlock()

	if changed {
		m.notify(PropertyBrightness, v)
	}
}

// Step moves the cached brightness by delta, saturating at 0 and MaxValue.
func (m *Monitor) Step(delta int) {
	m.mu.Lock()
	next := max(0, min(int(m.brightness)+delta, int(m.maxValue)))
	v, changed := m.requestLocked(uint16(next))
	m.mu.Unlock()

	if changed {
		m.notify(PropertyBrightness, v)
	}
}

// requestLocked caches and requests v under m.mu, so the writer's slot and
// the cache always end on the same value.
func (m *Monitor) requestLocked(v uint16) (uint16, bool) {
	v = min(v, m.maxValue)
	changed := v != m.brightness
	m.brightness = v
	m.gen++
	m.writer.Request(v)
	return v, changed
}

// SetAllowExtended switches MaxValue between the typical and extended
// ceilings. Brightness above the new ceiling is pulled down to it.
func (m *Monitor) SetAllowExtended(allow bool) {
	m.mu.Lock()
	m.allowExtended = allow
	newMax := m.maxFor(allow)
	maxChanged := newMax != m.maxValue
	m.maxValue = newMax
	over := m.brightness > newMax
	if over {
		m.requestLocked(newMax)
	}
	m.mu.Unlock()

	if maxChanged {
		m.notify(PropertyMaxValue, newMax)
	}
	if over {
		m.notify(PropertyBrightness, newMax)
	}
}

// OnChange registers fn for Change notifications. Listeners run on the
// goroutine that caused the change. The returned func unregisters fn.
func (m *Monitor) OnChange(fn func(Change)) (unsubscribe func()) {
	m.lmu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.lmu.Unlock()

	return func() {
		m.lmu.Lock()
		delete(m.listeners, id)
		m.lmu.Unlock()
	}
}

func (m *Monitor) notify(p Property, v uint16) {
	m.lmu.Lock()
	fns := make([]func(Change), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.lmu.Unlock()

	c := Change{Monitor: m, Property: p, Value: v}
	for _, fn := range fns {
		fn(c)
	}
}

// Wait blocks until pending writes have reached the driver or ctx is done.
func (m *Monitor) Wait(ctx context.Context) error {
	return m.writer.Wait(ctx)
}

// Writes counts hardware write attempts made for this monitor.
func (m *Monitor) Writes() uint64 {
	return m.writer.Writes()
}

// Close drops further writes and releases the driver once the in-flight
// write, if any, finishes.
func (m *Monitor) Close() {
	m.writer.Close(func() {
		if err := m.driver.Close(); err != nil {
			logger.Debug().Err(err).Str("monitor", m.Describe()).Msg("close driver")
		}
	})
}

func (m *Monitor) logReadFailure(err error) {
	logger.Debug().
		Err(errors.Wrap(errors.ErrHardwareRead, "GetBrightness", err)).
		Str("monitor", m.Describe()).
		Msg("brightness read failed, using cached value")
}
