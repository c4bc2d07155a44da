package gradient

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	purple = color.NRGBA{R: 0x8e, G: 0x2d, B: 0xe2, A: 0xff}
	indigo = color.NRGBA{R: 0x4a, G: 0x00, B: 0xe0, A: 0xff}
)

func TestLinearEndpoints(t *testing.T) {
	f := New(Spec{From: purple, To: indigo, Start: Point{0, 0}, End: Point{1, 1}}, 200, 200)

	assert.Equal(t, purple, f.ColorAt(0, 0))
	assert.Equal(t, indigo, f.ColorAt(200, 200))
	// Beyond either end the colour is clamped.
	assert.Equal(t, purple, f.ColorAt(-50, -10))
	assert.Equal(t, indigo, f.ColorAt(400, 300))

	mid := f.ColorAt(100, 100)
	assert.NotEqual(t, purple, mid)
	assert.NotEqual(t, indigo, mid)
	assert.InDelta(t, (0x8e+0x4a)/2, int(mid.R), 1)
}

func TestLinearIsConstantAcrossTheAxis(t *testing.T) {
	f := New(Spec{From: color.Black, To: color.White, Start: Point{0, 0.5}, End: Point{1, 0.5}}, 100, 50)
	for y := 0.0; y <= 50; y += 5 {
		assert.Equal(t, f.ColorAt(30, 0), f.ColorAt(30, y))
	}
}

func TestLinearIsMonotonic(t *testing.T) {
	f := New(Spec{From: color.Black, To: color.White, Start: Point{0, 0}, End: Point{1, 0}}, 256, 1)
	img := f.Image()
	prev := uint8(0)
	for x := 0; x < 256; x++ {
		c := img.NRGBAAt(x, 0)
		require.GreaterOrEqual(t, c.R, prev, "x=%d", x)
		prev = c.R
	}
	assert.Less(t, img.NRGBAAt(0, 0).R, uint8(2))
	assert.Greater(t, img.NRGBAAt(255, 0).R, uint8(253))
}

func TestRadial(t *testing.T) {
	f := New(Spec{From: purple, To: indigo, Start: Point{0.5, 0.5}, End: Point{1, 0.5}, Kind: Radial}, 100, 100)

	assert.Equal(t, purple, f.ColorAt(50, 50))
	assert.Equal(t, indigo, f.ColorAt(100, 50))
	assert.Equal(t, indigo, f.ColorAt(50, 0), "same radius, other direction")
	assert.Equal(t, indigo, f.ColorAt(0, 0), "beyond the radius")
	assert.Equal(t, f.ColorAt(70, 50), f.ColorAt(50, 30))
}

func TestDegenerateSpecUsesStartColour(t *testing.T) {
	f := New(Spec{From: purple, To: indigo, Start: Point{0.3, 0.3}, End: Point{0.3, 0.3}}, 10, 10)
	assert.Equal(t, purple, f.ColorAt(9, 9))
}

func TestAlphaIsInterpolated(t *testing.T) {
	f := New(Spec{From: color.NRGBA{A: 0}, To: color.NRGBA{R: 255, A: 255}, End: Point{1, 0}}, 100, 1)
	assert.Equal(t, uint8(0), f.ColorAt(0, 0).A)
	assert.Equal(t, uint8(255), f.ColorAt(100, 0).A)
	a := f.ColorAt(50, 0).A
	assert.Greater(t, a, uint8(100))
	assert.Less(t, a, uint8(155))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("Radial")
	require.NoError(t, err)
	assert.Equal(t, Radial, k)

	k, err = ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, Linear, k)

	_, err = ParseKind("conic")
	assert.Error(t, err)
}
