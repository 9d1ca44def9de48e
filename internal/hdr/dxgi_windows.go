//go:build windows

package hdr

import (
	"fmt"
	"syscall"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

var (
	modDXGI = windows.NewLazySystemDLL("dxgi.dll")

	procCreateDXGIFactory1 = modDXGI.NewProc("CreateDXGIFactory1")
)

// COM vtable indices
const (
	vtblQueryInterface  = 0
	vtblRelease         = 2
	factoryEnumAdapters = 7  // IDXGIFactory
	adapterEnumOutputs  = 7  // IDXGIAdapter
	output6GetDesc1     = 27 // IDXGIOutput6

	dxgiErrorNotFound = 0x887A0002
)

var (
	iidIDXGIFactory1 = windows.GUID{Data1: 0x770aae78, Data2: 0xf26f, Data3: 0x4dba, Data4: [8]byte{0xa8, 0x29, 0x25, 0x3c, 0x83, 0xd1, 0xb3, 0x87}}
	iidIDXGIOutput6  = windows.GUID{Data1: 0x068346e8, Data2: 0xaaec, Data3: 0x4b84, Data4: [8]byte{0xad, 0xd7, 0x13, 0x7f, 0x51, 0x3f, 0x77, 0xa1}}
)

// outputDesc1 matches DXGI_OUTPUT_DESC1.
type outputDesc1 struct {
	deviceName            [32]uint16
	desktopCoordinates    win.RECT
	attachedToDesktop     int32
	rotation              uint32
	monitor               win.HMONITOR
	bitsPerColor          uint32
	colorSpace            uint32
	redPrimary            [2]float32
	greenPrimary          [2]float32
	bluePrimary           [2]float32
	whitePoint            [2]float32
	minLuminance          float32
	maxLuminance          float32
	maxFullFrameLuminance float32
}

func vtblFn(obj uintptr, idx int) uintptr {
	vtbl := *(*uintptr)(unsafe.Pointer(obj))
	return *(*uintptr)(unsafe.Pointer(vtbl + uintptr(idx)*unsafe.Sizeof(uintptr(0))))
}

func comCall(obj uintptr, idx int, args ...uintptr) error {
	hr, _, _ := syscall.SyscallN(vtblFn(obj, idx), append([]uintptr{obj}, args...)...)
	if int32(hr) < 0 {
		return syscall.Errno(uint32(hr))
	}
	return nil
}

func comRelease(obj uintptr) {
	if obj != 0 {
		syscall.SyscallN(vtblFn(obj, vtblRelease), obj)
	}
}

// outputPeakLuminance walks every DXGI output and returns the MaxLuminance
// of the one attached to gdiName.
func outputPeakLuminance(gdiName string) (float32, error) {
	var factory uintptr
	hr, _, _ := procCreateDXGIFactory1.Call(
		uintptr(unsafe.Pointer(&iidIDXGIFactory1)),
		uintptr(unsafe.Pointer(&factory)),
	)
	if int32(hr) < 0 {
		return 0, fmt.Errorf("CreateDXGIFactory1: %w", syscall.Errno(uint32(hr)))
	}
	defer comRelease(factory)

	for a := uintptr(0); ; a++ {
		var adapter uintptr
		if err := comCall(factory, factoryEnumAdapters, a, uintptr(unsafe.Pointer(&adapter))); err != nil {
			if err == syscall.Errno(dxgiErrorNotFound) {
				break
			}
			return 0, fmt.Errorf("EnumAdapters(%d): %w", a, err)
		}

		peak, found, err := adapterPeak(adapter, gdiName)
		comRelease(adapter)
		if err != nil {
			return 0, err
		}
		if found {
			return peak, nil
		}
	}
	return 0, fmt.Errorf("no DXGI output for %s", gdiName)
}

func adapterPeak(adapter uintptr, gdiName string) (float32, bool, error) {
	for o := uintptr(0); ; o++ {
		var output uintptr
		if err := comCall(adapter, adapterEnumOutputs, o, uintptr(unsafe.Pointer(&output))); err != nil {
			if err == syscall.Errno(dxgiErrorNotFound) {
				return 0, false, nil
			}
			return 0, false, fmt.Errorf("EnumOutputs(%d): %w", o, err)
		}

		var output6 uintptr
		err := comCall(output, vtblQueryInterface,
			uintptr(unsafe.Pointer(&iidIDXGIOutput6)),
			uintptr(unsafe.Pointer(&output6)))
		comRelease(output)
		if err != nil {
			// Pre-1803 runtime; the peak is simply unknown.
			return 0, false, fmt.Errorf("IDXGIOutput6: %w", err)
		}

		var desc outputDesc1
		err = comCall(output6, output6GetDesc1, uintptr(unsafe.Pointer(&desc)))
		comRelease(output6)
		if err != nil {
			return 0, false, fmt.Errorf("GetDesc1: %w", err)
		}
		if windows.UTF16ToString(desc.deviceName[:]) == gdiName {
			return desc.maxLuminance, true, nil
		}
	}
}
