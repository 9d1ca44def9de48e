//go:build !windows

package ddc

import "github.com/winddc/winddc/internal/errors"

type unsupportedAPI struct{}

func newBrightnessAPI() brightnessAPI { return unsupportedAPI{} }

func (unsupportedAPI) get(uintptr) (uint32, uint32, uint32, error) {
	return 0, 0, 0, errors.New(errors.ErrUnsupported, "GetMonitorBrightness")
}

func (unsupportedAPI) set(uintptr, uint32) error {
	return errors.New(errors.ErrUnsupported, "SetMonitorBrightness")
}
