package monitor

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/winddc/winddc/internal/errors"
	"github.com/winddc/winddc/internal/logger"
)

// Registry owns the current monitor list. Each Refresh replaces the list
// wholesale; an empty detection keeps the previous list.
type Registry struct {
	source   Source
	dispatch func(func())

	mu            sync.RWMutex
	monitors      []*Monitor
	allowExtended bool

	lmu       sync.Mutex
	listeners map[int]func([]*Monitor)
	nextID    int
}

type RegistryOption func(*Registry)

// WithDispatcher routes list replacement onto the UI goroutine. The default
// runs it inline.
func WithDispatcher(dispatch func(func())) RegistryOption {
	return func(r *Registry) { r.dispatch = dispatch }
}

func WithAllowExtended(allow bool) RegistryOption {
	return func(r *Registry) { r.allowExtended = allow }
}

func NewRegistry(source Source, opts ...RegistryOption) *Registry {
	r := &Registry{
		source:    source,
		dispatch:  func(fn func()) { fn() },
		listeners: make(map[int]func([]*Monitor)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Refresh runs a detection pass. If nothing is found and no monitors are
// known, it returns a no_monitors error, which front ends treat as fatal.
// If nothing is found but monitors are known, they are kept.
func (r *Registry) Refresh(ctx context.Context) error {
	found := r.source.Detect(ctx, r.AllowExtended())
	if len(found) == 0 {
		if r.Len() == 0 {
			return errors.New(errors.ErrNoMonitors, "monitor.Refresh")
		}
		logger.Warn().Int("kept", r.Len()).Msg("detection found no monitors, keeping previous list")
		return nil
	}

	r.dispatch(func() { r.replace(found) })
	return nil
}

func (r *Registry) replace(found []*Monitor) {
	r.mu.Lock()
	allow := r.allowExtended
	old := r.monitors
	r.monitors = found
	r.mu.Unlock()

	for _, m := range found {
		m.SetAllowExtended(allow)
	}
	for _, m := range old {
		m.Close()
	}
	r.notify()
}

// Monitors returns a copy of the current list.
func (r *Registry) Monitors() []*Monitor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Monitor, len(r.monitors))
	copy(out, r.monitors)
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.monitors)
}

func (r *Registry) AllowExtended() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.allowExtended
}

// SetAllowExtended applies the flag to every current and future monitor.
func (r *Registry) SetAllowExtended(allow bool) {
	r.mu.Lock()
	r.allowExtended = allow
	r.mu.Unlock()

	for _, m := range r.Monitors() {
		m.SetAllowExtended(allow)
	}
}

// SetAll requests v on every monitor; each clamps to its own MaxValue.
func (r *Registry) SetAll(v uint16) {
	for _, m := range r.Monitors() {
		m.SetBrightness(v)
	}
}

// StepAll moves every monitor by delta.
func (r *Registry) StepAll(delta int) {
	for _, m := range r.Monitors() {
		m.Step(delta)
	}
}

// Combined returns the brightness shared by all monitors. ok is false when
// there are none or they disagree; v is then the first monitor's value (or 0).
func (r *Registry) Combined() (v uint16, ok bool) {
	ms := r.Monitors()
	if len(ms) == 0 {
		return 0, false
	}
	v = ms[0].Brightness()
	for _, m := range ms[1:] {
		if m.Brightness() != v {
			return v, false
		}
	}
	return v, true
}

// Find resolves query to one monitor: an index into Monitors, a unique ID
// prefix or a unique case-insensitive description substring. An empty query
// matches when exactly one monitor exists.
func (r *Registry) Find(query string) (*Monitor, error) {
	ms := r.Monitors()
	query = strings.TrimSpace(query)

	if query == "" {
		if len(ms) == 1 {
			return ms[0], nil
		}
		return nil, errors.Errorf(errors.ErrInvalidArg, "monitor.Find", "%d monitors present, pick one", len(ms))
	}
	if i, err := strconv.Atoi(query); err == nil {
		if i < 0 || i >= len(ms) {
			return nil, errors.Errorf(errors.ErrMonitorMissing, "monitor.Find", "no monitor #%d", i)
		}
		return ms[i], nil
	}

	match := func(pred func(*Monitor) bool) (*Monitor, error) {
		var hits []*Monitor
		for _, m := range ms {
			if pred(m) {
				hits = append(hits, m)
			}
		}
		switch len(hits) {
		case 0:
			return nil, nil
		case 1:
			return hits[0], nil
		default:
			return nil, errors.Errorf(errors.ErrInvalidArg, "monitor.Find", "%q matches %d monitors", query, len(hits))
		}
	}

	lower := strings.ToLower(query)
	for _, pred := range []func(*Monitor) bool{
		func(m *Monitor) bool { return strings.HasPrefix(m.ID(), lower) },
		func(m *Monitor) bool { return strings.Contains(strings.ToLower(m.Describe()), lower) },
	} {
		m, err := match(pred)
		if err != nil || m != nil {
			return m, err
		}
	}
	return nil, errors.Errorf(errors.ErrMonitorMissing, "monitor.Find", "no monitor matches %q", query)
}

// OnUpdate registers fn to receive the new list after each replacement.
func (r *Registry) OnUpdate(fn func([]*Monitor)) (unsubscribe func()) {
	r.lmu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = fn
	r.lmu.Unlock()

	return func() {
		r.lmu.Lock()
		delete(r.listeners, id)
		r.lmu.Unlock()
	}
}

func (r *Registry) notify() {
	r.lmu.Lock()
	fns := make([]func([]*Monitor), 0, len(r.listeners))
	for _, fn := range r.listeners {
		fns = append(fns, fn)
	}
	r.lmu.Unlock()

	ms := r.Monitors()
	for _, fn := range fns {
		fn(ms)
	}
}

// Wait blocks until every monitor's pending writes have been issued.
func (r *Registry) Wait(ctx context.Context) error {
	for _, m := range r.Monitors() {
		if err := m.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every monitor and empties the list.
func (r *Registry) Close() {
	r.mu.Lock()
	old := r.monitors
	r.monitors = nil
	r.mu.Unlock()

	for _, m := range old {
		m.Close()
	}
}
