package main

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/winddc/winddc/internal/monitor"
)

// refresher runs detection passes against reg, one at a time. The tray
// starts one whenever its menu opens, so handles invalidated by sleep or a
// topology change are replaced before the user picks a level.
type refresher struct {
	reg     *monitor.Registry
	timeout func() time.Duration
	running atomic.Bool
}

// run performs one bounded pass. ran is false when another pass was already
// in progress; that pass's result stands for this request too.
func (r *refresher) run(ctx context.Context) (ran bool, err error) {
	if !r.running.CompareAndSwap(false, true) {
		return false, nil
	}
	defer r.running.Store(false)

	ctx, cancel := context.WithTimeout(ctx, r.timeout())
	defer cancel()
	return true, r.reg.Refresh(ctx)
}
