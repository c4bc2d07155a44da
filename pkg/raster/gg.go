package raster

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
)

// GG draws with github.com/fogleman/gg.
type GG struct {
	dc *gg.Context
}

// NewGG returns a gg backed canvas.
func NewGG(w, h int) Canvas {
	dc := gg.NewContext(w, h)
	dc.SetFillRule(gg.FillRuleWinding)
	return &GG{dc: dc}
}

func (g *GG) MoveTo(x, y float64)         { g.dc.MoveTo(x, y) }
func (g *GG) LineTo(x, y float64)         { g.dc.LineTo(x, y) }
func (g *GG) QuadTo(cx, cy, x, y float64) { g.dc.QuadraticTo(cx, cy, x, y) }
func (g *GG) ClosePath()                  { g.dc.ClosePath() }

func (g *GG) Rect(x, y, w, h float64) { g.dc.DrawRectangle(x, y, w, h) }

func (g *GG) RoundedRect(x, y, w, h, r float64) {
	if r <= 0 {
		g.dc.DrawRectangle(x, y, w, h)
		return
	}
	g.dc.DrawRoundedRectangle(x, y, w, h, r)
}

func (g *GG) Ellipse(cx, cy, rx, ry float64) { g.dc.DrawEllipse(cx, cy, rx, ry) }

func (g *GG) SetColor(c color.Color) { g.dc.SetColor(c) }

// Clear floods the whole canvas with c and leaves c as the current colour.
func (g *GG) Clear(c color.Color) {
	g.dc.SetColor(c)
	g.dc.Clear()
}

func (g *GG) Fill() { g.dc.Fill() }

func (g *GG) Image() image.Image { return g.dc.Image() }
