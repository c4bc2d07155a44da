package raster

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/srwiley/rasterx"
)

// Rasterx draws with github.com/srwiley/rasterx, the scan converter oksvg
// uses for icons.
type Rasterx struct {
	img    *image.RGBA
	filler *rasterx.Filler
}

// NewRasterx returns a rasterx backed canvas.
func NewRasterx(w, h int) Canvas {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	f := rasterx.NewFiller(w, h, scanner)
	f.SetWinding(true)
	return &Rasterx{img: img, filler: f}
}

func (r *Rasterx) MoveTo(x, y float64) {
	r.filler.Stop(true)
	r.filler.Start(rasterx.ToFixedP(x, y))
}

func (r *Rasterx) LineTo(x, y float64) { r.filler.Line(rasterx.ToFixedP(x, y)) }

func (r *Rasterx) QuadTo(cx, cy, x, y float64) {
	r.filler.QuadBezier(rasterx.ToFixedP(cx, cy), rasterx.ToFixedP(x, y))
}

func (r *Rasterx) ClosePath() { r.filler.Stop(true) }

func (r *Rasterx) Rect(x, y, w, h float64) {
	r.filler.Stop(true)
	rasterx.AddRect(x, y, x+w, y+h, 0, r.filler)
}

func (r *Rasterx) RoundedRect(x, y, w, h, rad float64) {
	r.filler.Stop(true)
	if rad <= 0 {
		rasterx.AddRect(x, y, x+w, y+h, 0, r.filler)
		return
	}
	rasterx.AddRoundRect(x, y, x+w, y+h, rad, rad, 0, rasterx.RoundGap, r.filler)
}

func (r *Rasterx) Ellipse(cx, cy, rx, ry float64) {
	r.filler.Stop(true)
	rasterx.AddEllipse(cx, cy, rx, ry, 0, r.filler)
}

func (r *Rasterx) SetColor(c color.Color) { r.filler.SetColor(c) }

// Clear floods the whole canvas with c and leaves c as the current colour.
func (r *Rasterx) Clear(c color.Color) {
	draw.Draw(r.img, r.img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	r.filler.SetColor(c)
}

func (r *Rasterx) Fill() {
	r.filler.Stop(true)
	r.filler.Draw()
	r.filler.Clear()
}

func (r *Rasterx) Image() image.Image { return r.img }
