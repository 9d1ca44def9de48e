package monitor

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/winddc/winddc/internal/errors"
)

func monitors(drivers ...*fakeDriver) []*Monitor {
	out := make([]*Monitor, 0, len(drivers))
	for _, d := range drivers {
		out = append(out, New(d, false))
	}
	return out
}

func TestRegistryFirstRefreshEmptyIsFatal(t *testing.T) {
	r := NewRegistry(&staticSource{})
	err := r.Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrNoMonitors))
	assert.Zero(t, r.Len())
}

func TestRegistryKeepsListWhenDetectionEmpty(t *testing.T) {
	first := monitors(newFakeDriver("Dell", 30), newFakeDriver("BenQ", 70))
	r := NewRegistry(&staticSource{passes: [][]*Monitor{first, {}}})

	require.NoError(t, r.Refresh(context.Background()))
	require.NoError(t, r.Refresh(context.Background()))

	assert.Equal(t, first, r.Monitors())
}

func TestRegistryReplacesAndClosesOld(t *testing.T) {
	oldDrv := newFakeDriver("old", 30)
	newDrv := newFakeDriver("new", 70)
	r := NewRegistry(&staticSource{passes: [][]*Monitor{monitors(oldDrv), monitors(newDrv)}})

	var updates [][]string
	r.OnUpdate(func(ms []*Monitor) { updates = append(updates, describe(ms)) })

	require.NoError(t, r.Refresh(context.Background()))
	require.NoError(t, r.Refresh(context.Background()))

	assert.Equal(t, []string{"new"}, describe(r.Monitors()))
	assert.True(t, oldDrv.closed.Load())
	assert.False(t, newDrv.closed.Load())
	assert.Equal(t, [][]string{{"old"}, {"new"}}, updates)
}

func TestRegistryUsesDispatcher(t *testing.T) {
	var dispatched int
	r := NewRegistry(
		&staticSource{passes: [][]*Monitor{monitors(newFakeDriver("m", 1))}},
		WithDispatcher(func(fn func()) {
			dispatched++
			fn()
		}),
	)
	require.NoError(t, r.Refresh(context.Background()))
	assert.Equal(t, 1, dispatched)
	assert.Equal(t, 1, r.Len())
}

func TestRegistryAllowExtended(t *testing.T) {
	a := hdrDriver("A")
	b := hdrDriver("B")
	r := NewRegistry(
		&staticSource{passes: [][]*Monitor{monitors(a), monitors(b)}},
		WithAllowExtended(true),
	)

	require.NoError(t, r.Refresh(context.Background()))
	assert.Equal(t, uint16(250), r.Monitors()[0].MaxValue())

	r.SetAllowExtended(false)
	assert.False(t, r.AllowExtended())
	assert.Equal(t, uint16(100), r.Monitors()[0].MaxValue())

	require.NoError(t, r.Refresh(context.Background()))
	assert.Equal(t, uint16(100), r.Monitors()[0].MaxValue(), "new monitors inherit the flag")
}

func TestRegistrySetAllAndCombined(t *testing.T) {
	ddc := newFakeDriver("ddc", 30)
	hdr := hdrDriver("hdr")
	r := NewRegistry(
		&staticSource{passes: [][]*Monitor{monitors(ddc, hdr)}},
		WithAllowExtended(true),
	)
	require.NoError(t, r.Refresh(context.Background()))

	_, ok := r.Combined()
	assert.False(t, ok)

	r.SetAll(60)
	v, ok := r.Combined()
	assert.True(t, ok)
	assert.Equal(t, uint16(60), v)

	r.SetAll(200)
	v, ok = r.Combined()
	assert.False(t, ok)
	assert.Equal(t, uint16(100), v)
	assert.Equal(t, uint16(200), r.Monitors()[1].Brightness())

	r.StepAll(-250)
	v, ok = r.Combined()
	assert.True(t, ok)
	assert.Zero(t, v)

	ctx, cancel := context.WithTimeout(context.Background(), settle)
	defer cancel()
	require.NoError(t, r.Wait(ctx))
	assert.Zero(t, ddc.hardware())
	assert.Zero(t, hdr.hardware())
}

func TestRegistryCombinedEmpty(t *testing.T) {
	v, ok := NewRegistry(&staticSource{}).Combined()
	assert.False(t, ok)
	assert.Zero(t, v)
}

func TestRegistryFind(t *testing.T) {
	ms := monitors(
		newFakeDriver("DELL U2720Q", 1),
		newFakeDriver("DELL P2419H", 2),
		newFakeDriver("BenQ EW3270U", 3),
	)
	r := NewRegistry(&staticSource{passes: [][]*Monitor{ms}})
	require.NoError(t, r.Refresh(context.Background()))

	tests := []struct {
		name  string
		query string
		want  *Monitor
		code  errors.ErrorCode
	}{
		{name: "index", query: "1", want: ms[1]},
		{name: "index out of range", query: "3", code: errors.ErrMonitorMissing},
		{name: "negative index", query: "-1", code: errors.ErrMonitorMissing},
		{name: "id prefix", query: ms[2].ID()[:13], want: ms[2]},
		{name: "description substring", query: "benq", want: ms[2]},
		{name: "description exact model", query: "p2419", want: ms[1]},
		{name: "ambiguous description", query: "dell", code: errors.ErrInvalidArg},
		{name: "no match", query: "samsung", code: errors.ErrMonitorMissing},
		{name: "empty with several", query: "  ", code: errors.ErrInvalidArg},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Find(tt.query)
			if tt.code != "" {
				require.Error(t, err)
				assert.True(t, errors.HasCode(err, tt.code), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Same(t, tt.want, got)
		})
	}
}

func TestRegistryFindSingle(t *testing.T) {
	ms := monitors(newFakeDriver("only", 5))
	r := NewRegistry(&staticSource{passes: [][]*Monitor{ms}})
	require.NoError(t, r.Refresh(context.Background()))

	got, err := r.Find("")
	require.NoError(t, err)
	assert.Same(t, ms[0], got)
}

func TestRegistryClose(t *testing.T) {
	a := newFakeDriver("a", 1)
	b := newFakeDriver("b", 2)
	r := NewRegistry(&staticSource{passes: [][]*Monitor{monitors(a, b)}})
	require.NoError(t, r.Refresh(context.Background()))

	r.Close()
	assert.Zero(t, r.Len())
	assert.True(t, a.closed.Load())
	assert.True(t, b.closed.Load())
}

func TestRegistryWithDetector(t *testing.T) {
	r := NewRegistry(&Detector{
		HDR: &countingProber{},
		DDC: &countingProber{drivers: []Driver{newFakeDriver("Dell", 50)}},
	})
	require.NoError(t, r.Refresh(context.Background()))
	require.Equal(t, 1, r.Len())
	assert.True(t, strings.HasPrefix(r.Monitors()[0].Describe(), "Dell"))
}

func TestRegistryRefreshUsesCurrentExtendedFlag(t *testing.T) {
	drv := hdrDriver("LG")
	drv.setHardware(150)
	r := NewRegistry(&Detector{HDR: &countingProber{drivers: []Driver{drv}}})

	r.SetAllowExtended(true)
	require.NoError(t, r.Refresh(context.Background()))

	m := r.Monitors()[0]
	assert.Equal(t, uint16(250), m.MaxValue())
	assert.Equal(t, uint16(150), m.Brightness(), "detection must not clamp to the typical range")
	assert.Empty(t, drv.writes())
}
