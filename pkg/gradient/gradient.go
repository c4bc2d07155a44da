// Package gradient computes two-colour linear and radial colour fields.
package gradient

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Kind selects how colour varies across the field.
type Kind int

const (
	// Linear varies along the projection onto the start-end line.
	Linear Kind = iota
	// Radial varies with the distance from the start point.
	Radial
)

func (k Kind) String() string {
	if k == Radial {
		return "radial"
	}
	return "linear"
}

// ParseKind reads "linear" or "radial".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "linear":
		return Linear, nil
	case "radial":
		return Radial, nil
	}
	return Linear, fmt.Errorf("unknown gradient kind %q", s)
}

// Point is a normalized position; (0,0) is the top-left corner of the canvas
// and (1,1) the bottom-right.
type Point struct {
	X, Y float64
}

// Spec describes a gradient independently of the canvas size.
type Spec struct {
	From, To   color.Color
	Start, End Point
	Kind       Kind
}

// Field is a Spec mapped onto a w x h pixel canvas.
type Field struct {
	w, h     int
	from, to colorful.Color
	fa, ta   float64
	sx, sy   float64
	dx, dy   float64
	len2     float64
	kind     Kind
}

// New maps s onto a w x h canvas.
func New(s Spec, w, h int) *Field {
	from, fa := split(s.From, color.Black)
	to, ta := split(s.To, color.White)
	f := &Field{
		w: w, h: h,
		from: from, to: to,
		fa: fa, ta: ta,
		sx:   s.Start.X * float64(w),
		sy:   s.Start.Y * float64(h),
		kind: s.Kind,
	}
	f.dx = s.End.X*float64(w) - f.sx
	f.dy = s.End.Y*float64(h) - f.sy
	f.len2 = f.dx*f.dx + f.dy*f.dy
	return f
}

func split(c, fallback color.Color) (colorful.Color, float64) {
	if c == nil {
		c = fallback
	}
	_, _, _, a := c.RGBA()
	if a == 0 {
		return colorful.Color{}, 0
	}
	// colorful.MakeColor un-premultiplies.
	cc, _ := colorful.MakeColor(c)
	return cc, float64(a) / 0xffff
}

// T returns the interpolation parameter at pixel coordinates (x, y), clamped
// to 0..1 and eased so the field has no visible bands at the ends.
func (f *Field) T(x, y float64) float64 {
	if f.len2 == 0 {
		return 0
	}
	px, py := x-f.sx, y-f.sy
	var t float64
	switch f.kind {
	case Radial:
		t = math.Sqrt((px*px + py*py) / f.len2)
	default:
		t = (px*f.dx + py*f.dy) / f.len2
	}
	t = math.Max(0, math.Min(1, t))
	return t * t * (3 - 2*t)
}

// ColorAt samples the field at pixel coordinates (x, y).
func (f *Field) ColorAt(x, y float64) color.NRGBA {
	t := f.T(x, y)
	switch t {
	case 0:
		return nrgba(f.from, f.fa)
	case 1:
		return nrgba(f.to, f.ta)
	}
	return nrgba(f.from.BlendRgb(f.to, t), f.fa+(f.ta-f.fa)*t)
}

func nrgba(c colorful.Color, a float64) color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(a * 255))}
}

// Image renders the field, sampling each pixel at its centre.
func (f *Field) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, f.w, f.h))
	for y := 0; y < f.h; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < f.w; x++ {
			c := f.ColorAt(float64(x)+0.5, float64(y)+0.5)
			i := x * 4
			row[i], row[i+1], row[i+2], row[i+3] = c.R, c.G, c.B, c.A
		}
	}
	return img
}

// Render is a shorthand for New(s, w, h).Image().
func Render(s Spec, w, h int) *image.NRGBA {
	return New(s, w, h).Image()
}
