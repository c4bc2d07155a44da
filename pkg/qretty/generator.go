// Package qretty ties the encoder, module sampler, styler and effects
// together behind a single Generator.
package qretty

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	"github.com/cristianadrielbraun/qretty/pkg/effects"
	"github.com/cristianadrielbraun/qretty/pkg/encoder"
	"github.com/cristianadrielbraun/qretty/pkg/iconmask"
	"github.com/cristianadrielbraun/qretty/pkg/raster"
	"github.com/cristianadrielbraun/qretty/pkg/sampler"
	"github.com/cristianadrielbraun/qretty/pkg/styler"
)

// generations counts changes per input. A derived artifact remembers the
// counters of the inputs it was built from and is rebuilt once they move.
type generations struct {
	payload, level, size, style, colors, icon uint64
}

func (g *generations) bump(c change) {
	if c.payload {
		g.payload++
	}
	if c.level {
		g.level++
	}
	if c.size {
		g.size++
	}
	if c.style {
		g.style++
	}
	if c.colors {
		g.colors++
	}
	if c.icon {
		g.icon++
	}
}

type artifact[T any] struct {
	stamp generations
	valid bool
	val   T
	err   error
}

func (a *artifact[T]) get(stamp generations, build func() (T, error)) (T, error) {
	if a.valid && a.stamp == stamp {
		return a.val, a.err
	}
	a.val, a.err = build()
	a.stamp, a.valid = stamp, true
	return a.val, a.err
}

// Generator renders one symbol and caches every intermediate. It is safe for
// concurrent use; calls are serialized.
type Generator struct {
	mu     sync.Mutex
	p      Params
	gen    generations
	enc    encoder.Encoder
	canvas raster.Factory
	logger *log.Logger

	grid    artifact[*sampler.Bitmap]
	icon    artifact[image.Image]
	mask    artifact[*sampler.Bitmap]
	sampler artifact[*sampler.Sampler]
	raw     artifact[image.Image]
	shape   artifact[image.Image]
}

// Option configures a Generator.
type Option func(*Generator)

// WithEncoder replaces the default gozxing encoder.
func WithEncoder(e encoder.Encoder) Option {
	return func(g *Generator) { g.enc = e }
}

// WithCanvas selects the rasterizer backend.
func WithCanvas(f raster.Factory) Option {
	return func(g *Generator) { g.canvas = f }
}

// WithLogger receives warnings about unusable icons and debug output about
// cache rebuilds.
func WithLogger(l *log.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// New returns a Generator for p.
func New(p Params, opts ...Option) *Generator {
	g := &Generator{
		p:      p,
		enc:    encoder.Zxing{},
		canvas: raster.NewGG,
	}
	for _, o := range opts {
		o(g)
	}
	if g.logger == nil {
		g.logger = log.New(io.Discard)
	}
	return g
}

// Params returns a copy of the current parameters.
func (g *Generator) Params() Params {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.p
}

// Update applies fn to the parameters under one lock and invalidates what
// the changes affect.
func (g *Generator) Update(fn func(*Params)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	old := g.p
	fn(&g.p)
	g.gen.bump(diff(old, g.p))
}

func (g *Generator) SetPayload(b []byte) { g.Update(func(p *Params) { p.Payload = b }) }
func (g *Generator) SetLevel(l encoder.Level) { g.Update(func(p *Params) { p.Level = l }) }
func (g *Generator) SetSize(n int) { g.Update(func(p *Params) { p.Size = n }) }
func (g *Generator) SetStyle(s styler.Set) { g.Update(func(p *Params) { p.Style = s }) }
func (g *Generator) SetEffects(on bool) { g.Update(func(p *Params) { p.Effects = on }) }
func (g *Generator) SetIcon(i Icon) { g.Update(func(p *Params) { p.Icon = i }) }
func (g *Generator) SetAppearance(a effects.Appearance) {
	g.Update(func(p *Params) { p.Appearance = a })
}

func (g *Generator) buildGrid() (*sampler.Bitmap, error) {
	return g.grid.get(generations{payload: g.gen.payload, level: g.gen.level}, func() (*sampler.Bitmap, error) {
		g.logger.Debug("encoding", "bytes", len(g.p.Payload), "level", g.p.Level)
		grid, err := g.enc.Encode(g.p.Payload, g.p.Level)
		if err != nil {
			return nil, err
		}
		return grid, nil
	})
}

// iconImage returns the decoded icon, or nil when there is none or it is
// unusable.
func (g *Generator) iconImage() image.Image {
	img, _ := g.icon.get(generations{icon: g.gen.icon}, func() (image.Image, error) {
		ic := g.p.Icon
		if ic.Mode == IconNone {
			return nil, nil
		}
		if ic.Image != nil {
			return ic.Image, nil
		}
		img, err := iconmask.Decode(ic.Data)
		if err != nil {
			g.logger.Warn("rendering without icon", "err", err)
			return nil, nil
		}
		return img, nil
	})
	return img
}

func (g *Generator) buildMask() *sampler.Bitmap {
	stamp := generations{icon: g.gen.icon, size: g.gen.size, level: g.gen.level}
	m, _ := g.mask.get(stamp, func() (*sampler.Bitmap, error) {
		if g.p.Icon.Mode != IconInside {
			return nil, nil
		}
		icon := g.iconImage()
		if icon == nil {
			return nil, nil
		}
		g.logger.Debug("building icon mask", "size", g.p.ScaledSize(), "radius", g.p.Icon.BorderRadius)
		return iconmask.Generate(icon, g.p.ScaledSize(), g.p.Icon.BorderRadius, g.p.Icon.Scale, g.p.Level), nil
	})
	return m
}

func (g *Generator) buildSampler() (*sampler.Sampler, error) {
	stamp := generations{payload: g.gen.payload, level: g.gen.level, icon: g.gen.icon, size: g.gen.size}
	return g.sampler.get(stamp, func() (*sampler.Sampler, error) {
		grid, err := g.buildGrid()
		if err != nil {
			return nil, err
		}
		return sampler.New(grid).WithMask(g.buildMask())
	})
}

func (g *Generator) buildRaw() (image.Image, error) {
	stamp := g.gen
	return g.raw.get(stamp, func() (image.Image, error) {
		s, err := g.buildSampler()
		if err != nil {
			return nil, err
		}
		g.logger.Debug("styling", "modules", s.Width(), "style", g.p.Style.String())
		return styler.Render(s, g.p.Style, styler.Options{
			Size:       g.p.ScaledSize(),
			Foreground: g.p.Foreground,
			Background: g.p.Background,
			Canvas:     g.canvas,
		})
	})
}

// buildShape styles the symbol black on white for the effects pipeline,
// which reads module coverage from darkness. The user's palette only applies
// to the raw image.
func (g *Generator) buildShape() (image.Image, error) {
	stamp := g.gen
	stamp.colors = 0
	return g.shape.get(stamp, func() (image.Image, error) {
		if sameColor(g.p.Foreground, color.Black) && sameColor(g.p.Background, color.White) {
			return g.buildRaw()
		}
		s, err := g.buildSampler()
		if err != nil {
			return nil, err
		}
		return styler.Render(s, g.p.Style, styler.Options{
			Size:       g.p.ScaledSize(),
			Foreground: color.Black,
			Background: color.White,
			Canvas:     g.canvas,
		})
	})
}

// Sampler returns the module sampler, including the icon mask for
// IconInside.
func (g *Generator) Sampler() (*sampler.Sampler, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.buildSampler()
}

// Value reports whether module (x, y) is drawn. It is false when the
// payload cannot be encoded.
func (g *Generator) Value(x, y int) bool {
	s, err := g.Sampler()
	if err != nil {
		return false
	}
	return s.Value(x, y)
}

// Neighbors returns the drawn neighbours of module (x, y).
func (g *Generator) Neighbors(x, y int) sampler.Direction {
	s, err := g.Sampler()
	if err != nil {
		return 0
	}
	return s.Neighbors(x, y)
}

// ScaleFactor is the destination size of one module in pixels.
func (g *Generator) ScaleFactor() (float64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, err := g.buildSampler()
	if err != nil {
		return 0, err
	}
	return styler.ScaleFactor(g.p.ScaledSize(), s.Width(), s.Height()), nil
}

// RawImage returns the styled symbol before effects.
func (g *Generator) RawImage() (image.Image, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.buildRaw()
}

// Render returns the final image. An encode failure yields a nil image and
// an error wrapping encoder.ErrEncode.
func (g *Generator) Render() (image.Image, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.p.Effects {
		raw, err := g.buildRaw()
		if err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		return raw, nil
	}

	shape, err := g.buildShape()
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	s, err := g.buildSampler()
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	var icon *effects.Icon
	if img := g.iconImage(); img != nil {
		icon = &effects.Icon{Image: img, Scale: g.p.Icon.Scale, Level: g.p.Level}
	}
	sf := styler.ScaleFactor(g.p.ScaledSize(), s.Width(), s.Height())
	out, err := effects.Compose(shape, sf, g.p.Appearance, icon)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return out, nil
}

// Encode renders and writes the image in format. JPEG output is flattened
// onto white first.
func (g *Generator) Encode(w io.Writer, format imaging.Format) error {
	img, err := g.Render()
	if err != nil {
		return err
	}
	if format == imaging.JPEG {
		img = effects.OverSolid(img, color.White)
	}
	return imaging.Encode(w, img, format, imaging.JPEGQuality(95))
}
