package monitor

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/winddc/winddc/internal/errors"
	"github.com/winddc/winddc/internal/logger"
)

// Source produces a fresh monitor list. It never returns nil. Monitors start
// in the extended range when allowExtended is set.
type Source interface {
	Detect(ctx context.Context, allowExtended bool) []*Monitor
}

// Detector probes HDR first and falls back to DDC/CI only when HDR finds
// nothing. Results of the two protocols are never merged.
type Detector struct {
	HDR Prober
	DDC Prober
}

var _ Source = (*Detector)(nil)

// Detect probes on a background goroutine and blocks until that finishes or
// ctx is done. Failures are logged and yield an empty, non-nil slice. When
// ctx ends first, whatever the abandoned pass produces is closed.
func (d *Detector) Detect(ctx context.Context, allowExtended bool) []*Monitor {
	log := logger.With("detect").With().Str("pass", uuid.NewString()[:8]).Logger()

	done := make(chan []*Monitor, 1)
	go func() { done <- d.run(ctx, log, allowExtended) }()

	select {
	case found := <-done:
		log.Info().Int("monitors", len(found)).Msg("detection finished")
		return found
	case <-ctx.Done():
		log.Warn().Err(ctx.Err()).Msg("detection abandoned")
		go func() {
			for _, m := range <-done {
				m.Close()
			}
		}()
		return []*Monitor{}
	}
}

func (d *Detector) run(ctx context.Context, log zerolog.Logger, allowExtended bool) []*Monitor {
	if d.HDR != nil {
		if found := d.probe(ctx, log, ProtocolHDR, d.HDR, allowExtended); len(found) > 0 {
			return found
		}
	}
	if d.DDC != nil {
		return d.probe(ctx, log, ProtocolDDC, d.DDC, allowExtended)
	}
	return []*Monitor{}
}

func (d *Detector) probe(ctx context.Context, log zerolog.Logger, proto Protocol, p Prober, allowExtended bool) (found []*Monitor) {
	found = []*Monitor{}
	defer func() {
		if r := recover(); r != nil {
			err := errors.Wrap(errors.ErrProbe, string(proto), fmt.Errorf("panic: %v", r))
			log.Error().Err(err).Msg("probe crashed")
			for _, m := range found {
				m.Close()
			}
			found = []*Monitor{}
		}
	}()

	drivers, err := p.Probe(ctx)
	if err != nil {
		log.Warn().Err(errors.Wrap(errors.ErrProbe, string(proto), err)).Msg("probe failed")
		for _, drv := range drivers {
			_ = drv.Close()
		}
		return found
	}

	// Identical monitors are numbered in probe order.
	seen := make(map[string]int)
	for _, drv := range drivers {
		key := string(drv.Protocol()) + "/" + drv.Describe()
		m := newMonitor(drv, allowExtended, seen[key])
		seen[key]++
		log.Debug().
			Str("protocol", string(proto)).
			Str("monitor", m.Describe()).
			Str("id", m.ID()).
			Uint16("brightness", m.Brightness()).
			Uint16("max", m.MaxValue()).
			Msg("monitor found")
		found = append(found, m)
	}
	log.Info().Str("protocol", string(proto)).Int("monitors", len(found)).Msg("probe finished")
	return found
}
