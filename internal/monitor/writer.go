package monitor

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/winddc/winddc/internal/errors"
	"github.com/winddc/winddc/internal/logger"
)

// Writer serializes hardware writes for one monitor.
//
// It holds a single slot with the most recent target. Request stores into the
// slot and, if no write loop is running, starts one. The loop writes whatever
// the slot holds, then looks again: if the slot still holds the value it just
// wrote it stops, otherwise it writes the newer value. At most one loop runs
// per Writer, bursts collapse into few writes, and the last requested value
// is always the last one written.
//
// Write errors are only logged. The loop never retries a value on its own;
// the next Request is the retry.
type Writer struct {
	name  string
	write func(uint16) error

	mu        sync.Mutex
	target    uint16
	active    bool
	idle      chan struct{} // closed whenever no loop is running
	closed    bool
	released  bool
	onRelease func()

	writes atomic.Uint64
}

// NewWriter returns an idle writer that sends values to write. name only
// labels log lines.
func NewWriter(name string, write func(uint16) error) *Writer {
	idle := make(chan struct{})
	close(idle)
	return &Writer{name: name, write: write, idle: idle}
}

// Request records target as the value the hardware should end up with. It
// never blocks on I/O. Requests after Close are dropped.
func (w *Writer) Request(target uint16) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		logger.Debug().Str("monitor", w.name).Uint16("target", target).Msg("write after close dropped")
		return
	}
	w.target = target
	if w.active {
		w.mu.Unlock()
		return
	}
	w.active = true
	w.idle = make(chan struct{})
	w.mu.Unlock()

	go w.loop(target)
}

func (w *Writer) loop(v uint16) {
	for {
		if err := w.write(v); err != nil {
			logger.Debug().
				Err(errors.Wrap(errors.ErrHardwareWrite, "SetBrightness", err)).
				Str("monitor", w.name).
				Uint16("value", v).
				Msg("brightness write failed")
		}
		w.writes.Add(1)

		w.mu.Lock()
		if w.target == v {
			w.active = false
			close(w.idle)
			release := w.takeRelease()
			w.mu.Unlock()
			if release != nil {
				release()
			}
			return
		}
		v = w.target
		w.mu.Unlock()
	}
}

// takeRelease returns the release hook if it is due. Callers hold w.mu.
func (w *Writer) takeRelease() func() {
	if !w.closed || w.released {
		return nil
	}
	w.released = true
	return w.onRelease
}

// Wait blocks until no write loop is running or ctx is done.
func (w *Writer) Wait(ctx context.Context) error {
	w.mu.Lock()
	idle := w.idle
	w.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending reports the slot value and whether a loop is running.
func (w *Writer) Pending() (target uint16, active bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.target, w.active
}

// Writes counts completed hardware write attempts.
func (w *Writer) Writes() uint64 {
	return w.writes.Load()
}

// Close stops accepting requests and arranges for release to run exactly
// once: now if idle, otherwise when the running loop drains.
func (w *Writer) Close(release func()) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.onRelease = release
	var now func()
	if !w.active {
		now = w.takeRelease()
	}
	w.mu.Unlock()

	if now != nil {
		now()
	}
}
