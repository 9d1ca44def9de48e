package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/winddc/winddc/internal/config"
	"github.com/winddc/winddc/internal/ddc"
	"github.com/winddc/winddc/internal/display"
)

type nopEnumerator struct{}

func (nopEnumerator) Enumerate() ([]display.Display, error) { return nil, nil }
func (nopEnumerator) Release(display.PhysicalHandle) error  { return nil }

func TestBuild(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		wantHDR bool
	}{
		{
			name:    "hdr enabled",
			cfg:     config.Config{HDR: config.HDRConfig{Enabled: true}, DDC: config.DDCConfig{Backend: config.BackendDXVA2}},
			wantHDR: true,
		},
		{
			name: "hdr disabled",
			cfg:  config.Config{DDC: config.DDCConfig{Backend: config.BackendDXVA2}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Build(&tt.cfg, nopEnumerator{})
			assert.Equal(t, tt.wantHDR, d.HDR != nil)
			assert.NotNil(t, d.DDC)
		})
	}
}

func TestNewRegistrySeedsAllowExtended(t *testing.T) {
	for _, allow := range []bool{true, false} {
		cfg := config.Config{
			DDC:        config.DDCConfig{Backend: config.BackendDXVA2},
			Brightness: config.BrightnessConfig{AllowExtended: allow},
		}
		assert.Equal(t, allow, NewRegistry(&cfg).AllowExtended())
	}
}

func TestDDCOpener(t *testing.T) {
	assert.IsType(t, &ddc.DisplayOpener{}, DDCOpener(config.BackendDXVA2, nopEnumerator{}))
	assert.IsType(t, &ddc.DisplayOpener{}, DDCOpener("", nopEnumerator{}))
	assert.IsType(t, ddc.LibraryOpener{}, DDCOpener(config.BackendDDCCI, nopEnumerator{}))
}
