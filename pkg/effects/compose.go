package effects

import (
	"errors"
	"image"
	"image/color"

	"github.com/cristianadrielbraun/qretty/pkg/encoder"
	"github.com/cristianadrielbraun/qretty/pkg/gradient"
	"github.com/cristianadrielbraun/qretty/pkg/iconmask"
)

// ErrNoInput is returned when the raw image is missing.
var ErrNoInput = errors.New("effects: no input image")

// BlurFactor scales the shadow blur radius by the module size.
const BlurFactor = 0.13548387096774195

// Vector is a normalized 2D offset. Y points up.
type Vector struct {
	X, Y float64
}

// Appearance holds the colouring and lighting parameters.
type Appearance struct {
	Gradient gradient.Spec

	BackgroundVisible  bool
	BackgroundStrength float64

	// ShadowOffset is measured in modules.
	ShadowOffset   Vector
	ShadowSoftness float64
}

// DefaultAppearance returns the stock purple look.
func DefaultAppearance() Appearance {
	return Appearance{
		Gradient: gradient.Spec{
			From:  color.NRGBA{R: 0x8e, G: 0x2d, B: 0xe2, A: 0xff},
			To:    color.NRGBA{R: 0x4a, G: 0x00, B: 0xe0, A: 0xff},
			Start: gradient.Point{X: 0, Y: 0},
			End:   gradient.Point{X: 1, Y: 1},
			Kind:  gradient.Linear,
		},
		BackgroundStrength: 0.25,
		ShadowOffset:       Vector{X: 0.0967741935483871, Y: -0.0967741935483871},
		ShadowSoftness:     0.75,
	}
}

// Icon is an image placed over the centre of the final composite.
type Icon struct {
	Image image.Image
	// Scale shrinks the footprint allowed by Level.
	Scale float64
	Level encoder.Level
}

// Layers keeps every named intermediate of one Compose run.
type Layers struct {
	Foreground      *image.NRGBA
	DotsOnBlack     *image.NRGBA
	DotsOnWhite     *image.NRGBA
	InvertedOffset  *image.NRGBA
	WhiteHalfMoon   *image.NRGBA
	BlackHalfMoon   *image.NRGBA
	BlurredShadow   *image.NRGBA
	ShadedDots      *image.NRGBA
	BackgroundLayer *image.NRGBA
	Gradient        *image.NRGBA
	GradientOutput  *image.NRGBA
	Final           *image.NRGBA
}

// Compose runs the whole pipeline over raw, a dark-on-light styled symbol
// whose modules are scaleFactor pixels wide. icon may be nil.
func Compose(raw image.Image, scaleFactor float64, a Appearance, icon *Icon) (*image.NRGBA, error) {
	l, err := Trace(raw, scaleFactor, a, icon)
	if err != nil {
		return nil, err
	}
	return l.Final, nil
}

// Trace is Compose returning all intermediates.
func Trace(raw image.Image, scaleFactor float64, a Appearance, icon *Icon) (*Layers, error) {
	if raw == nil || raw.Bounds().Empty() {
		return nil, ErrNoInput
	}
	var l Layers
	b := raw.Bounds()

	l.Foreground = Matte(raw)
	l.DotsOnBlack = OverSolid(l.Foreground, color.Black)
	l.DotsOnWhite = Invert(l.DotsOnBlack)
	// Offsets are y-up; image rows grow downwards.
	l.InvertedOffset = Translate(l.DotsOnWhite,
		a.ShadowOffset.X*scaleFactor, -a.ShadowOffset.Y*scaleFactor, color.White)
	l.WhiteHalfMoon = Multiply(l.InvertedOffset, l.DotsOnBlack)
	l.BlackHalfMoon = Invert(l.WhiteHalfMoon)
	l.BlurredShadow = Blur(l.BlackHalfMoon, BlurFactor*scaleFactor*a.ShadowSoftness)
	l.ShadedDots = Multiply(l.BlurredShadow, l.Foreground)

	under := l.ShadedDots
	if a.BackgroundVisible {
		l.BackgroundLayer = OverSolid(l.ShadedDots, Gray(a.BackgroundStrength))
		under = l.BackgroundLayer
	}
	l.Gradient = gradient.Render(a.Gradient, b.Dx(), b.Dy())
	l.GradientOutput = Multiply(l.Gradient, under)

	l.Final = l.GradientOutput
	if icon != nil && icon.Image != nil {
		fitted, at := iconmask.Fit(icon.Image, b.Dx(), icon.Level, icon.Scale)
		if !at.Empty() {
			l.Final = Over(l.GradientOutput, fitted, at.Min)
		}
	}
	return &l, nil
}
