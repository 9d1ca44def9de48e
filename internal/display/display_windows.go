//go:build windows

package display

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

var (
	modUser32 = windows.NewLazySystemDLL("user32.dll")
	modDxva2  = windows.NewLazySystemDLL("dxva2.dll")

	procEnumDisplayMonitors = modUser32.NewProc("EnumDisplayMonitors")
	procGetMonitorInfoW     = modUser32.NewProc("GetMonitorInfoW")

	procGetNumberOfPhysicalMonitorsFromHMONITOR = modDxva2.NewProc("GetNumberOfPhysicalMonitorsFromHMONITOR")
	procGetPhysicalMonitorsFromHMONITOR         = modDxva2.NewProc("GetPhysicalMonitorsFromHMONITOR")
	procDestroyPhysicalMonitor                  = modDxva2.NewProc("DestroyPhysicalMonitor")
)

// monitorInfoEx matches MONITORINFOEXW.
type monitorInfoEx struct {
	cbSize    uint32
	rcMonitor win.RECT
	rcWork    win.RECT
	dwFlags   uint32
	szDevice  [32]uint16
}

// physicalMonitor matches PHYSICAL_MONITOR (packed, 264 bytes on amd64).
type physicalMonitor struct {
	handle      uintptr
	description [128]uint16
}

// The callback is created once: Windows callbacks are a finite resource and
// EnumDisplayMonitors runs synchronously, so a mutex-guarded collector is
// enough.
var (
	collectMu   sync.Mutex
	collecting  *collector
	collectProc = windows.NewCallback(collectDisplay)
)

type collector struct {
	displays []logical
	err      error
}

func collectDisplay(hMonitor win.HMONITOR, _ win.HDC, _ *win.RECT, _ uintptr) uintptr {
	c := collecting

	var info monitorInfoEx
	info.cbSize = uint32(unsafe.Sizeof(info))
	ret, _, err := procGetMonitorInfoW.Call(uintptr(hMonitor), uintptr(unsafe.Pointer(&info)))
	if ret == 0 {
		c.err = fmt.Errorf("GetMonitorInfoW: %w", err)
		return 0
	}

	r := info.rcMonitor
	c.displays = append(c.displays, logical{
		handle:     uintptr(hMonitor),
		deviceName: windows.UTF16ToString(info.szDevice[:]),
		primary:    info.dwFlags&win.MONITORINFOF_PRIMARY != 0,
		bounds:     Rect{Left: r.Left, Top: r.Top, Right: r.Right, Bottom: r.Bottom},
	})
	return 1
}

type windowsAPI struct{}

func newSystemAPI() systemAPI { return windowsAPI{} }

func (windowsAPI) logicalDisplays() ([]logical, error) {
	collectMu.Lock()
	defer collectMu.Unlock()

	c := &collector{}
	collecting = c
	defer func() { collecting = nil }()

	ret, _, err := procEnumDisplayMonitors.Call(0, 0, collectProc, 0)
	if c.err != nil {
		return nil, c.err
	}
	if ret == 0 {
		return nil, fmt.Errorf("EnumDisplayMonitors: %w", err)
	}
	return c.displays, nil
}

func (windowsAPI) physicalCount(hmonitor uintptr) (uint32, error) {
	var n uint32
	ret, _, err := procGetNumberOfPhysicalMonitorsFromHMONITOR.Call(hmonitor, uintptr(unsafe.Pointer(&n)))
	if ret == 0 {
		return 0, fmt.Errorf("GetNumberOfPhysicalMonitorsFromHMONITOR: %w", err)
	}
	return n, nil
}

func (windowsAPI) physicalMonitors(hmonitor uintptr, count uint32) ([]PhysicalHandle, error) {
	buf := make([]physicalMonitor, count)
	ret, _, err := procGetPhysicalMonitorsFromHMONITOR.Call(hmonitor, uintptr(count), uintptr(unsafe.Pointer(&buf[0])))
	if ret == 0 {
		return nil, fmt.Errorf("GetPhysicalMonitorsFromHMONITOR: %w", err)
	}

	out := make([]PhysicalHandle, 0, count)
	for _, p := range buf {
		out = append(out, PhysicalHandle{
			Handle:      p.handle,
			Description: windows.UTF16ToString(p.description[:]),
		})
	}
	return out, nil
}

func (windowsAPI) destroy(handle uintptr) error {
	ret, _, err := procDestroyPhysicalMonitor.Call(handle)
	if ret == 0 {
		return fmt.Errorf("DestroyPhysicalMonitor: %w", err)
	}
	return nil
}
