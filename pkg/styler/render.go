package styler

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/cristianadrielbraun/qretty/pkg/raster"
	"github.com/cristianadrielbraun/qretty/pkg/sampler"
)

// Overdraw widens every cell so neighbouring full squares meet without
// anti-aliasing seams.
const Overdraw = 0.75

// ErrInvalidSize is returned for a non-positive destination size.
var ErrInvalidSize = errors.New("invalid destination size")

// Options configures Render.
type Options struct {
	// Size is the destination edge in pixels.
	Size int
	// Foreground fills the modules. Defaults to black.
	Foreground color.Color
	// Background floods the canvas first. Defaults to opaque white.
	Background color.Color
	// Canvas creates the drawing surface. Defaults to raster.NewGG.
	Canvas raster.Factory
}

// ScaleFactor is the destination pixel size of one module.
func ScaleFactor(size, w, h int) float64 {
	return float64(size) / float64(max(w, h))
}

// Render draws every on module of s with rules onto a Size x Size canvas.
func Render(s *sampler.Sampler, rules Set, opts Options) (image.Image, error) {
	if opts.Size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, opts.Size)
	}
	if opts.Foreground == nil {
		opts.Foreground = color.Black
	}
	if opts.Background == nil {
		opts.Background = color.White
	}
	if opts.Canvas == nil {
		opts.Canvas = raster.NewGG
	}

	c := opts.Canvas(opts.Size, opts.Size)
	c.Clear(opts.Background)
	c.SetColor(opts.Foreground)
	if len(rules) == 0 {
		return c.Image(), nil
	}

	sf := ScaleFactor(opts.Size, s.Width(), s.Height())
	cell := sf + Overdraw
	for y := 0; y < s.Height(); y++ {
		for x := 0; x < s.Width(); x++ {
			if !s.Value(x, y) {
				continue
			}
			m := module{x: float64(x) * sf, y: float64(y) * sf, size: cell}
			for _, r := range rules {
				m.add(c, r, s, x, y)
			}
			c.Fill()
		}
	}
	return c.Image(), nil
}

// module is the destination cell of one module.
type module struct {
	x, y float64
	size float64
}

func (m module) add(c raster.Canvas, r Rule, s *sampler.Sampler, gx, gy int) {
	switch r := r.(type) {
	case Dot:
		m.dot(c, r)
	case Diamond:
		m.diamond(c, r)
	case Chain:
		m.chain(c, r, s.Neighbors(gx, gy))
	default:
		panic(fmt.Sprintf("styler: unhandled rule %T", r))
	}
}

func (m module) dot(c raster.Canvas, d Dot) {
	side := d.Scale * m.size
	if side <= 0 {
		return
	}
	half := m.size / 2
	// Interpolate from the cell centre towards its top-left corner.
	ox := m.x + half - half*d.Scale
	oy := m.y + half - half*d.Scale
	c.RoundedRect(ox, oy, side, side, d.CornerRadius*(side/2))
}

func (m module) diamond(c raster.Canvas, d Diamond) {
	s, h := m.size, m.size/2
	cx, cy := m.x+h, m.y+h
	control := func(px, py float64) (float64, float64) {
		return cx + (px-cx)*d.Curve, cy + (py-cy)*d.Curve
	}

	c.MoveTo(m.x+h, m.y)
	x1, y1 := control(m.x+s, m.y)
	c.QuadTo(x1, y1, m.x+s, m.y+h)
	x2, y2 := control(m.x+s, m.y+s)
	c.QuadTo(x2, y2, m.x+h, m.y+s)
	x3, y3 := control(m.x, m.y+s)
	c.QuadTo(x3, y3, m.x, m.y+h)
	x4, y4 := control(m.x, m.y)
	c.QuadTo(x4, y4, m.x+h, m.y)
	c.ClosePath()
}

func (m module) chain(c raster.Canvas, ch Chain, n sampler.Direction) {
	w := ch.Width * m.size
	if w <= 0 {
		return
	}
	h := m.size / 2
	gap := (m.size - w) / 2
	if n.Has(sampler.Down) {
		c.Rect(m.x+gap, m.y+h, w, h)
	}
	if n.Has(sampler.Up) {
		c.Rect(m.x+gap, m.y, w, h)
	}
	if n.Has(sampler.Right) {
		c.Rect(m.x+h, m.y+gap, h, w)
	}
	if n.Has(sampler.Left) {
		c.Rect(m.x, m.y+gap, h, w)
	}
}
