//go:build !windows

package display

import (
	"github.com/winddc/winddc/internal/errors"
)

type unsupportedAPI struct{}

func newSystemAPI() systemAPI { return unsupportedAPI{} }

func (unsupportedAPI) logicalDisplays() ([]logical, error) {
	return nil, errors.New(errors.ErrUnsupported, "EnumDisplayMonitors")
}

func (unsupportedAPI) physicalCount(uintptr) (uint32, error) {
	return 0, errors.New(errors.ErrUnsupported, "GetNumberOfPhysicalMonitorsFromHMONITOR")
}

func (unsupportedAPI) physicalMonitors(uintptr, uint32) ([]PhysicalHandle, error) {
	return nil, errors.New(errors.ErrUnsupported, "GetPhysicalMonitorsFromHMONITOR")
}

func (unsupportedAPI) destroy(uintptr) error {
	return errors.New(errors.ErrUnsupported, "DestroyPhysicalMonitor")
}
