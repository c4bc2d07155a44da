package qretty

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/cristianadrielbraun/qretty/pkg/effects"
	"github.com/cristianadrielbraun/qretty/pkg/encoder"
	"github.com/cristianadrielbraun/qretty/pkg/styler"
)

// IconMode selects how an icon is inserted.
type IconMode int

const (
	// IconNone inserts nothing.
	IconNone IconMode = iota
	// IconOver composites the icon on top of the finished symbol.
	IconOver
	// IconInside also clears the modules underneath the icon.
	IconInside
)

func (m IconMode) String() string {
	switch m {
	case IconOver:
		return "over"
	case IconInside:
		return "inside"
	}
	return "none"
}

// ParseIconMode reads "none", "over" or "inside".
func ParseIconMode(s string) (IconMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return IconNone, nil
	case "over":
		return IconOver, nil
	case "inside":
		return IconInside, nil
	}
	return IconNone, fmt.Errorf("unknown icon mode %q (must be none, over or inside)", s)
}

// Icon describes an inserted logo. Image wins over Data when both are set.
type Icon struct {
	Mode  IconMode
	Image image.Image
	Data  []byte
	// Scale shrinks the largest footprint the correction level allows.
	Scale float64
	// BorderRadius grows the cleared area around the icon (IconInside only).
	BorderRadius float64
}

// Params configures a Generator.
type Params struct {
	Payload []byte
	Level   encoder.Level
	// Size is the logical edge length; PixelScale converts it to pixels.
	Size       int
	PixelScale float64

	Style      styler.Set
	Foreground color.Color
	Background color.Color

	Effects    bool
	Appearance effects.Appearance
	Icon       Icon
}

// DefaultParams returns level Q, size 100, plain blocks and the stock
// appearance with effects off.
func DefaultParams() Params {
	return Params{
		Level:      encoder.Q,
		Size:       100,
		PixelScale: 1,
		Style:      styler.Blocks,
		Foreground: color.Black,
		Background: color.White,
		Appearance: effects.DefaultAppearance(),
		Icon:       Icon{Scale: 1},
	}
}

// ScaledSize is the destination edge in pixels.
func (p Params) ScaledSize() int {
	s := p.PixelScale
	if s <= 0 {
		s = 1
	}
	return int(math.Round(float64(p.Size) * s))
}

// change reports which inputs differ between two parameter sets.
type change struct {
	payload, level, size, style, colors, icon bool
}

func diff(a, b Params) change {
	return change{
		payload: !bytes.Equal(a.Payload, b.Payload),
		level:   a.Level != b.Level,
		size:    a.ScaledSize() != b.ScaledSize(),
		style:   !a.Style.Equal(b.Style),
		colors:  !sameColor(a.Foreground, b.Foreground) || !sameColor(a.Background, b.Background),
		icon: a.Icon.Mode != b.Icon.Mode ||
			a.Icon.Scale != b.Icon.Scale ||
			a.Icon.BorderRadius != b.Icon.BorderRadius ||
			a.Icon.Image != b.Icon.Image ||
			!bytes.Equal(a.Icon.Data, b.Icon.Data),
	}
}

func sameColor(a, b color.Color) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	return ar == br && ag == bg && ab == bb && aa == ba
}
