package icon

import (
	"bytes"
	"encoding/binary"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLerpColor(t *testing.T) {
	a := color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	b := color.NRGBA{R: 200, G: 100, B: 50, A: 255}

	tests := []struct {
		name string
		t    float64
		want color.NRGBA
	}{
		{"t=0 returns first", 0, color.NRGBA{R: 0, G: 0, B: 0, A: 255}},
		{"t=1 returns second", 1, color.NRGBA{R: 200, G: 100, B: 50, A: 255}},
		{"t=0.5 midpoint", 0.5, color.NRGBA{R: 100, G: 50, B: 25, A: 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lerpColor(a, b, tt.t))
		})
	}
}

func TestScreenColor(t *testing.T) {
	assert.Equal(t, colorDim, screenColor(0))
	assert.Equal(t, colorLit, screenColor(100))
	assert.Equal(t, colorHot, screenColor(101))
	assert.Equal(t, colorHot, screenColor(250))
}

// litRows counts screen rows that carry the fill colour in the middle column.
func litRows(t *testing.T, size, level int) int {
	t.Helper()
	img := monitorImage(size, level)
	x := size / 2
	rows := 0
	for y := range size {
		c := img.NRGBAAt(x, y)
		if c.A != 0 && c != colorBezel {
			rows++
		}
	}
	return rows
}

func TestMonitorImageFill(t *testing.T) {
	const size = 32
	empty := litRows(t, size, 0)
	half := litRows(t, size, 50)
	full := litRows(t, size, 100)

	assert.Zero(t, empty)
	assert.Greater(t, half, 0)
	assert.Greater(t, full, half)
	assert.Equal(t, full, litRows(t, size, 180), "extended levels draw a full screen")
	assert.Zero(t, litRows(t, size, Unknown))
	assert.Equal(t, 1, litRows(t, 16, 1), "any non-zero level shows at least one row")
}

func TestGenerate(t *testing.T) {
	data := Generate(50)
	require.Greater(t, len(data), 6+16*len(Sizes))

	var header [3]uint16
	require.NoError(t, binary.Read(bytes.NewReader(data[:6]), binary.LittleEndian, &header))
	assert.Equal(t, [3]uint16{0, 1, uint16(len(Sizes))}, header)

	for i, size := range Sizes {
		entry := data[6+16*i : 6+16*(i+1)]
		assert.Equal(t, byte(size), entry[0])
		assert.Equal(t, byte(size), entry[1])

		length := binary.LittleEndian.Uint32(entry[8:12])
		offset := binary.LittleEndian.Uint32(entry[12:16])
		img, err := png.Decode(bytes.NewReader(data[offset : offset+length]))
		require.NoError(t, err)
		assert.Equal(t, size, img.Bounds().Dx())
	}
}

func TestGenerateDistinguishesLevels(t *testing.T) {
	assert.NotEqual(t, Generate(10), Generate(90))
	assert.NotEqual(t, Generate(100), Generate(150))
	assert.Equal(t, Generate(150), Generate(250))
}
