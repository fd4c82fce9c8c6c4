package interpret

import (
	"bytes"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"
	"math"
)

const (
	previewSize        = 64
	previewContentType = "image/png"
)

// RenderPreview draws a soft radial gradient whose colours are derived from
// seed, so the same dream always gets the same picture.
func RenderPreview(seed string) ([]byte, error) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(seed))
	sum := h.Sum32()

	inner := color.RGBA{R: uint8(sum), G: uint8(sum >> 8), B: uint8(sum >> 16), A: 255}
	outer := color.RGBA{R: inner.R / 4, G: inner.G / 4, B: 40 + inner.B/3, A: 255}

	img := image.NewRGBA(image.Rect(0, 0, previewSize, previewSize))
	c := float64(previewSize-1) / 2
	maxDist := math.Hypot(c, c)
	for y := 0; y < previewSize; y++ {
		for x := 0; x < previewSize; x++ {
			t := math.Hypot(float64(x)-c, float64(y)-c) / maxDist
			img.SetRGBA(x, y, color.RGBA{
				R: mix(inner.R, outer.R, t),
				G: mix(inner.G, outer.G, t),
				B: mix(inner.B, outer.B, t),
				A: 255,
			})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func mix(a, b uint8, t float64) uint8 {
	return uint8(float64(a)*(1-t) + float64(b)*t)
}
