// Package platform assembles the OS-specific probers into the detector both
// front ends use.
package platform

import (
	"github.com/winddc/winddc/internal/config"
	"github.com/winddc/winddc/internal/ddc"
	"github.com/winddc/winddc/internal/display"
	"github.com/winddc/winddc/internal/hdr"
	"github.com/winddc/winddc/internal/logger"
	"github.com/winddc/winddc/internal/monitor"
)

// NewDetector builds a detector over the system display enumerator.
func NewDetector(cfg *config.Config) *monitor.Detector {
	return Build(cfg, display.NewSystemEnumerator())
}

// Build wires probers around enum according to cfg. The HDR prober is left
// out when hdr.enabled is false.
func Build(cfg *config.Config, enum display.Enumerator) *monitor.Detector {
	d := &monitor.Detector{
		DDC: ddc.NewProber(DDCOpener(cfg.DDC.Backend, enum)),
	}
	if cfg.HDR.Enabled {
		d.HDR = hdr.NewProber(enum)
	}

	logger.With("platform").Debug().
		Str("ddc_backend", cfg.DDC.Backend).
		Bool("hdr", cfg.HDR.Enabled).
		Msg("detector configured")
	return d
}

// DDCOpener picks the DDC/CI channel backend. Unknown names fall back to
// dxva2; Config.Validate rejects them earlier.
func DDCOpener(backend string, enum display.Enumerator) ddc.Opener {
	if backend == config.BackendDDCCI {
		return ddc.NewLibraryOpener()
	}
	return ddc.NewDisplayOpener(enum)
}

// NewRegistry is the registry over NewDetector, seeded with the configured
// extended-range flag. The registry owns that flag from then on and hands it
// to every detection pass.
func NewRegistry(cfg *config.Config, opts ...monitor.RegistryOption) *monitor.Registry {
	opts = append([]monitor.RegistryOption{monitor.WithAllowExtended(cfg.Brightness.AllowExtended)}, opts...)
	return monitor.NewRegistry(NewDetector(cfg), opts...)
}
