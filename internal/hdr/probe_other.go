//go:build !windows

package hdr

import "github.com/winddc/winddc/internal/errors"

type unsupportedAPI struct{}

func newPathAPI() pathAPI { return unsupportedAPI{} }

func (unsupportedAPI) targets() ([]Target, error) {
	return nil, errors.New(errors.ErrUnsupported, "QueryDisplayConfig")
}

func (unsupportedAPI) whiteLevel(Target) (uint32, error) {
	return 0, errors.New(errors.ErrUnsupported, "DisplayConfigGetDeviceInfo")
}

func (unsupportedAPI) setWhiteLevel(Target, uint32) error {
	return errors.New(errors.ErrUnsupported, "DisplayConfigSetDeviceInfo")
}

func (unsupportedAPI) peakLuminance(string) (float32, error) {
	return 0, errors.New(errors.ErrUnsupported, "IDXGIOutput6.GetDesc1")
}
