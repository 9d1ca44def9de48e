//go:build windows

package ddc

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modDxva2 = windows.NewLazySystemDLL("dxva2.dll")

	procGetMonitorBrightness = modDxva2.NewProc("GetMonitorBrightness")
	procSetMonitorBrightness = modDxva2.NewProc("SetMonitorBrightness")
)

type dxva2API struct{}

func newBrightnessAPI() brightnessAPI { return dxva2API{} }

func (dxva2API) get(handle uintptr) (lo, cur, hi uint32, err error) {
	ret, _, callErr := procGetMonitorBrightness.Call(
		handle,
		uintptr(unsafe.Pointer(&lo)),
		uintptr(unsafe.Pointer(&cur)),
		uintptr(unsafe.Pointer(&hi)),
	)
	if ret == 0 {
		return 0, 0, 0, fmt.Errorf("GetMonitorBrightness: %w", callErr)
	}
	return lo, cur, hi, nil
}

func (dxva2API) set(handle uintptr, v uint32) error {
	ret, _, callErr := procSetMonitorBrightness.Call(handle, uintptr(v))
	if ret == 0 {
		return fmt.Errorf("SetMonitorBrightness(%d): %w", v, callErr)
	}
	return nil
}
