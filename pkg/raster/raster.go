// Package raster defines the path-fill capability the styler draws through
// and provides two backends for it.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"strings"
)

// Canvas fills closed paths onto a pixel buffer. Path segments accumulate
// until Fill, which paints them with the current colour using the non-zero
// winding rule and then clears the path.
type Canvas interface {
	MoveTo(x, y float64)
	LineTo(x, y float64)
	QuadTo(cx, cy, x, y float64)
	ClosePath()

	Rect(x, y, w, h float64)
	RoundedRect(x, y, w, h, r float64)
	Ellipse(cx, cy, rx, ry float64)

	SetColor(c color.Color)
	Clear(c color.Color)
	Fill()

	Image() image.Image
}

// Factory creates a blank w x h canvas.
type Factory func(w, h int) Canvas

// New returns the named backend: "gg" (default) or "rasterx".
func New(name string) (Factory, error) {
	switch strings.ToLower(name) {
	case "", "gg":
		return NewGG, nil
	case "rasterx":
		return NewRasterx, nil
	}
	return nil, fmt.Errorf("unknown rasterizer %q (must be 'gg' or 'rasterx')", name)
}
