// Package iconmask sizes overlay icons and derives the exclusion mask that
// keeps modules clear of them.
package iconmask

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"math"

	// Raster icon formats.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	_ "golang.org/x/image/webp"

	"github.com/cristianadrielbraun/qretty/pkg/encoder"
)

// ErrIconDecode is returned when icon bytes cannot be turned into pixels.
var ErrIconDecode = errors.New("icon decode failed")

// Decode reads a PNG, JPEG, GIF, WebP or SVG icon.
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty data", ErrIconDecode)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err == nil {
		return img, nil
	}
	if svg, serr := decodeSVG(data); serr == nil {
		return svg, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrIconDecode, err)
}

func decodeSVG(data []byte) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	w, h := int(math.Ceil(icon.ViewBox.W)), int(math.Ceil(icon.ViewBox.H))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("svg has no view box")
	}
	icon.SetTarget(0, 0, float64(w), float64(h))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1)
	return img, nil
}

// MaxSide is the largest icon edge, in pixels, that a canvas x canvas symbol
// at level can lose to occlusion, multiplied by scale.
func MaxSide(canvas int, level encoder.Level, scale float64) float64 {
	area := float64(canvas) * float64(canvas)
	return math.Sqrt(area*level.Tolerance()*0.5) * scale
}

// Placement returns where an icon of the given bounds lands on the canvas:
// fitted inside MaxSide preserving aspect ratio, never enlarged, centred.
func Placement(icon image.Rectangle, canvas int, level encoder.Level, scale float64) image.Rectangle {
	w, h := fitSize(icon.Dx(), icon.Dy(), MaxSide(canvas, level, scale))
	x := (canvas - w) / 2
	y := (canvas - h) / 2
	return image.Rect(x, y, x+w, y+h)
}

func fitSize(w, h int, limit float64) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	if float64(w) <= limit && float64(h) <= limit {
		return w, h
	}
	ratio := math.Min(limit/float64(w), limit/float64(h))
	return max(1, int(math.Round(float64(w)*ratio))), max(1, int(math.Round(float64(h)*ratio)))
}

// Fit returns the icon resampled to its placement size with Lanczos
// filtering, and the placement itself.
func Fit(icon image.Image, canvas int, level encoder.Level, scale float64) (*image.NRGBA, image.Rectangle) {
	r := Placement(icon.Bounds(), canvas, level, scale)
	if r.Empty() {
		return image.NewNRGBA(image.Rectangle{}), r
	}
	if r.Dx() == icon.Bounds().Dx() && r.Dy() == icon.Bounds().Dy() {
		return imaging.Clone(icon), r
	}
	return imaging.Resize(icon, r.Dx(), r.Dy(), imaging.Lanczos), r
}
