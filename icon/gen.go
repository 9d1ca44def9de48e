// Package icon renders the tray icon: a monitor whose screen fills up with
// the current brightness.
package icon

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
)

var (
	colorBezel = color.NRGBA{R: 0xE6, G: 0xE6, B: 0xE6, A: 0xFF}
	colorDim   = color.NRGBA{R: 0x3A, G: 0x5F, B: 0x8C, A: 0xFF} // slate blue #3A5F8C
	colorLit   = color.NRGBA{R: 0xFF, G: 0xE0, B: 0x66, A: 0xFF} // pale gold #FFE066
	colorHot   = color.NRGBA{R: 0xFF, G: 0x8A, B: 0x3D, A: 0xFF} // HDR orange #FF8A3D
)

// Sizes are the bitmaps packed into every icon.
var Sizes = []int{16, 24, 32}

// Unknown is drawn when monitors disagree or none are present.
const Unknown = -1

// Generate returns ICO bytes for a brightness level. 0-100 fill the screen
// proportionally, anything above 100 is the HDR extended range and draws a
// full screen in the accent colour. Unknown draws an empty screen.
func Generate(level int) []byte {
	var pngs [][]byte
	for _, size := range Sizes {
		var buf bytes.Buffer
		png.Encode(&buf, monitorImage(size, level))
		pngs = append(pngs, buf.Bytes())
	}
	return buildICO(Sizes, pngs)
}

// monitorImage draws a bezel, a stand and a screen filled from the bottom.
// Pixels are either fully opaque or fully transparent.
func monitorImage(size, level int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))

	stand := max(size/8, 2)
	bottom := size - stand - 1 // last bezel row
	fill(img, image.Rect(0, 1, size, bottom+1), colorBezel)
	fill(img, image.Rect(size/2-stand, bottom+1, size/2+stand, size), colorBezel)

	border := max(size/16, 1)
	screen := image.Rect(border, 1+border, size-border, bottom+1-border)
	fill(img, screen, color.NRGBA{})

	if level == Unknown || level < 0 {
		return img
	}
	c := screenColor(level)
	h := screen.Dy() * min(level, 100) / 100
	if level > 0 {
		h = max(h, 1)
	}
	fill(img, image.Rect(screen.Min.X, screen.Max.Y-h, screen.Max.X, screen.Max.Y), c)
	return img
}

func fill(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

func screenColor(level int) color.NRGBA {
	if level > 100 {
		return colorHot
	}
	return lerpColor(colorDim, colorLit, float64(level)/100)
}

func lerpColor(a, b color.NRGBA, t float64) color.NRGBA {
	return color.NRGBA{
		R: uint8(float64(a.R) + t*(float64(b.R)-float64(a.R))),
		G: uint8(float64(a.G) + t*(float64(b.G)-float64(a.G))),
		B: uint8(float64(a.B) + t*(float64(b.B)-float64(a.B))),
		A: 0xFF,
	}
}

// buildICO assembles an ICO file from PNG-encoded images.
func buildICO(sizes []int, pngs [][]byte) []byte {
	n := len(sizes)

	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, [3]uint16{0, 1, uint16(n)})

	offset := uint32(6 + n*16)
	for i, size := range sizes {
		w := uint8(size)
		if size >= 256 {
			w = 0
		}
		buf.Write([]byte{w, w, 0, 0})
		binary.Write(&buf, binary.LittleEndian, [2]uint16{1, 32})
		binary.Write(&buf, binary.LittleEndian, [2]uint32{uint32(len(pngs[i])), offset})
		offset += uint32(len(pngs[i]))
	}

	for _, p := range pngs {
		buf.Write(p)
	}
	return buf.Bytes()
}
