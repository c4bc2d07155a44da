// Package effects turns a raw styled symbol into the final shaded, gradient
// coloured image.
//
// Every stage is a pure function from images to a new *image.NRGBA; no stage
// mutates its inputs.
package effects

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// Matte extracts the drawn modules of a dark-on-light raw image as white
// pixels whose alpha is the module coverage. Light areas become transparent.
func Matte(raw image.Image) *image.NRGBA {
	src := imaging.Clone(raw)
	b := src.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for i := 0; i < len(src.Pix); i += 4 {
		p := src.Pix[i : i+4 : i+4]
		// Rec. 601 luma weighted by the pixel's own alpha.
		l := (299*int(p[0]) + 587*int(p[1]) + 114*int(p[2])) / 1000
		cov := (255 - l) * int(p[3]) / 255
		q := out.Pix[i : i+4 : i+4]
		q[0], q[1], q[2], q[3] = 255, 255, 255, uint8(cov)
	}
	return out
}

// OverSolid composites img over an opaque canvas of colour c.
func OverSolid(img image.Image, c color.Color) *image.NRGBA {
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), c)
	return imaging.Overlay(bg, img, image.Point{}, 1)
}

// Invert inverts the colour channels and keeps alpha.
func Invert(img image.Image) *image.NRGBA {
	return imaging.Invert(img)
}

// Translate shifts img by (dx, dy) pixels, rounded to whole pixels, and fills
// the uncovered area with fill.
func Translate(img image.Image, dx, dy float64, fill color.Color) *image.NRGBA {
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), fill)
	pt := image.Pt(int(math.Round(dx)), int(math.Round(dy)))
	return imaging.Paste(bg, img, pt)
}

// Multiply multiplies the colours of src into dst. The result keeps the
// coverage of dst; a translucent src pixel is first flattened onto white so
// it darkens dst proportionally to its alpha.
func Multiply(src, dst image.Image) *image.NRGBA {
	s := imaging.Clone(src)
	d := imaging.Clone(dst)
	out := image.NewNRGBA(d.Bounds())
	w, h := d.Bounds().Dx(), d.Bounds().Dy()
	sw, sh := s.Bounds().Dx(), s.Bounds().Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*d.Stride + x*4
			dp := d.Pix[i : i+4 : i+4]
			op := out.Pix[i : i+4 : i+4]
			if x >= sw || y >= sh {
				copy(op, dp)
				continue
			}
			j := y*s.Stride + x*4
			sp := s.Pix[j : j+4 : j+4]
			a := int(sp[3])
			for c := 0; c < 3; c++ {
				sc := (int(sp[c])*a + 255*(255-a)) / 255
				op[c] = uint8((sc*int(dp[c]) + 127) / 255)
			}
			op[3] = dp[3]
		}
	}
	return out
}

// Blur applies a Gaussian blur with the given standard deviation in pixels.
func Blur(img image.Image, sigma float64) *image.NRGBA {
	if sigma <= 0 {
		return imaging.Clone(img)
	}
	return imaging.Blur(img, sigma)
}

// Over composites top over base with its top-left corner at pt.
func Over(base, top image.Image, pt image.Point) *image.NRGBA {
	return imaging.Overlay(base, top, pt, 1)
}

// Gray is an opaque grey of the given intensity in 0..1.
func Gray(intensity float64) color.NRGBA {
	v := uint8(math.Round(math.Max(0, math.Min(1, intensity)) * 255))
	return color.NRGBA{R: v, G: v, B: v, A: 255}
}
