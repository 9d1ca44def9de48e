//go:build windows

package hdr

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modUser32 = windows.NewLazySystemDLL("user32.dll")

	procGetDisplayConfigBufferSizes = modUser32.NewProc("GetDisplayConfigBufferSizes")
	procQueryDisplayConfig          = modUser32.NewProc("QueryDisplayConfig")
	procDisplayConfigGetDeviceInfo  = modUser32.NewProc("DisplayConfigGetDeviceInfo")
	procDisplayConfigSetDeviceInfo  = modUser32.NewProc("DisplayConfigSetDeviceInfo")
)

const (
	qdcOnlyActivePaths = 0x2

	deviceInfoGetSourceName        = 1
	deviceInfoGetAdvancedColorInfo = 9
	deviceInfoGetSDRWhiteLevel     = 11
	// Undocumented; used by the display settings page to move the SDR
	// content brightness slider.
	deviceInfoSetSDRWhiteLevel = 0xFFFFFFEE

	advancedColorEnabled = 1 << 1

	errorInsufficientBuffer = 122
)

type deviceInfoHeader struct {
	infoType  uint32
	size      uint32
	adapterID windows.LUID
	id        uint32
}

type pathSourceInfo struct {
	adapterID   windows.LUID
	id          uint32
	modeInfoIdx uint32
	statusFlags uint32
}

type pathTargetInfo struct {
	adapterID        windows.LUID
	id               uint32
	modeInfoIdx      uint32
	outputTechnology uint32
	rotation         uint32
	scaling          uint32
	refreshRate      [2]uint32
	scanLineOrdering uint32
	targetAvailable  int32
	statusFlags      uint32
}

// pathInfo matches DISPLAYCONFIG_PATH_INFO (72 bytes).
type pathInfo struct {
	source pathSourceInfo
	target pathTargetInfo
	flags  uint32
}

// modeInfo matches DISPLAYCONFIG_MODE_INFO (64 bytes); the union is opaque.
type modeInfo struct {
	infoType  uint32
	id        uint32
	adapterID windows.LUID
	info      [48]byte
}

type sourceDeviceName struct {
	header  deviceInfoHeader
	gdiName [32]uint16
}

type advancedColorInfo struct {
	header              deviceInfoHeader
	value               uint32
	colorEncoding       uint32
	bitsPerColorChannel uint32
}

type sdrWhiteLevel struct {
	header     deviceInfoHeader
	whiteLevel uint32
}

type setSDRWhiteLevel struct {
	header     deviceInfoHeader
	whiteLevel uint32
	finalValue uint8
}

type windowsPathAPI struct{}

func newPathAPI() pathAPI { return windowsPathAPI{} }

func (windowsPathAPI) targets() ([]Target, error) {
	paths, err := queryActivePaths()
	if err != nil {
		return nil, err
	}

	out := make([]Target, 0, len(paths))
	for _, p := range paths {
		name := sourceDeviceName{header: deviceInfoHeader{
			infoType:  deviceInfoGetSourceName,
			adapterID: p.source.adapterID,
			id:        p.source.id,
		}}
		name.header.size = uint32(unsafe.Sizeof(name))
		if err := getDeviceInfo(&name.header); err != nil {
			return nil, fmt.Errorf("source name: %w", err)
		}

		color := advancedColorInfo{header: deviceInfoHeader{
			infoType:  deviceInfoGetAdvancedColorInfo,
			adapterID: p.target.adapterID,
			id:        p.target.id,
		}}
		color.header.size = uint32(unsafe.Sizeof(color))
		if err := getDeviceInfo(&color.header); err != nil {
			return nil, fmt.Errorf("advanced color info: %w", err)
		}

		out = append(out, Target{
			AdapterLow:  p.target.adapterID.LowPart,
			AdapterHigh: p.target.adapterID.HighPart,
			ID:          p.target.id,
			GDIName:     windows.UTF16ToString(name.gdiName[:]),
			HDR:         color.value&advancedColorEnabled != 0,
		})
	}
	return out, nil
}

func (windowsPathAPI) whiteLevel(t Target) (uint32, error) {
	req := sdrWhiteLevel{header: targetHeader(t, deviceInfoGetSDRWhiteLevel)}
	req.header.size = uint32(unsafe.Sizeof(req))
	if err := getDeviceInfo(&req.header); err != nil {
		return 0, fmt.Errorf("SDR white level: %w", err)
	}
	return req.whiteLevel, nil
}

func (windowsPathAPI) setWhiteLevel(t Target, raw uint32) error {
	req := setSDRWhiteLevel{header: targetHeader(t, deviceInfoSetSDRWhiteLevel), whiteLevel: raw, finalValue: 1}
	req.header.size = uint32(unsafe.Sizeof(req))
	ret, _, _ := procDisplayConfigSetDeviceInfo.Call(uintptr(unsafe.Pointer(&req.header)))
	if ret != 0 {
		return fmt.Errorf("DisplayConfigSetDeviceInfo(SDR white %d): %w", raw, windows.Errno(ret))
	}
	return nil
}

func (windowsPathAPI) peakLuminance(gdiName string) (float32, error) {
	return outputPeakLuminance(gdiName)
}

func targetHeader(t Target, infoType uint32) deviceInfoHeader {
	return deviceInfoHeader{
		infoType:  infoType,
		adapterID: windows.LUID{LowPart: t.AdapterLow, HighPart: t.AdapterHigh},
		id:        t.ID,
	}
}

func getDeviceInfo(h *deviceInfoHeader) error {
	ret, _, _ := procDisplayConfigGetDeviceInfo.Call(uintptr(unsafe.Pointer(h)))
	if ret != 0 {
		return fmt.Errorf("DisplayConfigGetDeviceInfo(%d): %w", h.infoType, windows.Errno(ret))
	}
	return nil
}

// queryActivePaths retries while the topology changes between the size
// query and the fetch.
func queryActivePaths() ([]pathInfo, error) {
	for {
		var numPaths, numModes uint32
		ret, _, _ := procGetDisplayConfigBufferSizes.Call(
			qdcOnlyActivePaths,
			uintptr(unsafe.Pointer(&numPaths)),
			uintptr(unsafe.Pointer(&numModes)),
		)
		if ret != 0 {
			return nil, fmt.Errorf("GetDisplayConfigBufferSizes: %w", windows.Errno(ret))
		}
		if numPaths == 0 {
			return nil, nil
		}

		paths := make([]pathInfo, numPaths)
		modes := make([]modeInfo, max(numModes, 1))
		ret, _, _ = procQueryDisplayConfig.Call(
			qdcOnlyActivePaths,
			uintptr(unsafe.Pointer(&numPaths)),
			uintptr(unsafe.Pointer(&paths[0])),
			uintptr(unsafe.Pointer(&numModes)),
			uintptr(unsafe.Pointer(&modes[0])),
			0,
		)
		switch ret {
		case 0:
			return paths[:numPaths], nil
		case errorInsufficientBuffer:
			continue
		default:
			return nil, fmt.Errorf("QueryDisplayConfig: %w", windows.Errno(ret))
		}
	}
}
