//go:build windows && amd64

package hdr

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

func TestStructLayout(t *testing.T) {
	tests := []struct {
		name string
		got  uintptr
		want uintptr
	}{
		{"DISPLAYCONFIG_DEVICE_INFO_HEADER", unsafe.Sizeof(deviceInfoHeader{}), 20},
		{"DISPLAYCONFIG_PATH_INFO", unsafe.Sizeof(pathInfo{}), 72},
		{"DISPLAYCONFIG_MODE_INFO", unsafe.Sizeof(modeInfo{}), 64},
		{"DISPLAYCONFIG_SOURCE_DEVICE_NAME", unsafe.Sizeof(sourceDeviceName{}), 84},
		{"DISPLAYCONFIG_GET_ADVANCED_COLOR_INFO", unsafe.Sizeof(advancedColorInfo{}), 32},
		{"DISPLAYCONFIG_SDR_WHITE_LEVEL", unsafe.Sizeof(sdrWhiteLevel{}), 24},
		{"set SDR white level", unsafe.Sizeof(setSDRWhiteLevel{}), 28},
		{"DXGI_OUTPUT_DESC1", unsafe.Sizeof(outputDesc1{}), 152},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.got, tt.name)
	}
}
