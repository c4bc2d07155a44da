package qretty

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/cristianadrielbraun/qretty/pkg/encoder"
	"github.com/cristianadrielbraun/qretty/pkg/sampler"
	"github.com/cristianadrielbraun/qretty/pkg/styler"
	"github.com/cristianadrielbraun/qretty/pkg/verify"
)

type GeneratorSuite struct {
	suite.Suite
	encodes int
	gen     *Generator
}

func (s *GeneratorSuite) SetupTest() {
	s.encodes = 0
	counting := encoder.Func(func(b []byte, l encoder.Level) (*sampler.Bitmap, error) {
		s.encodes++
		return encoder.Zxing{}.Encode(b, l)
	})
	p := DefaultParams()
	p.Payload = []byte("Test")
	p.Level = encoder.H
	p.Size = 230
	s.gen = New(p, WithEncoder(counting))
}

func TestGeneratorSuite(t *testing.T) {
	suite.Run(t, new(GeneratorSuite))
}

func (s *GeneratorSuite) TestRawImageIsCached() {
	a, err := s.gen.RawImage()
	s.Require().NoError(err)
	b, err := s.gen.RawImage()
	s.Require().NoError(err)
	s.Same(a, b)
	s.Equal(1, s.encodes)
}

func (s *GeneratorSuite) TestEffectChangesKeepRawImage() {
	raw, err := s.gen.RawImage()
	s.Require().NoError(err)

	s.gen.SetEffects(true)
	a := s.gen.Params().Appearance
	a.BackgroundVisible = true
	a.ShadowSoftness = 0.2
	s.gen.SetAppearance(a)

	out, err := s.gen.Render()
	s.Require().NoError(err)
	s.NotSame(raw, out)

	again, err := s.gen.RawImage()
	s.Require().NoError(err)
	s.Same(raw, again)
	s.Equal(1, s.encodes)
}

func (s *GeneratorSuite) TestStyleChangeRestylesWithoutEncoding() {
	raw, err := s.gen.RawImage()
	s.Require().NoError(err)
	s.gen.SetStyle(styler.Dots)
	restyled, err := s.gen.RawImage()
	s.Require().NoError(err)
	s.NotSame(raw, restyled)
	s.Equal(1, s.encodes)

	// Setting an equal set is not a change.
	s.gen.SetStyle(styler.NewSet(styler.Chain{Width: 0.4}, styler.Dot{Scale: 0.8, CornerRadius: 1}))
	same, err := s.gen.RawImage()
	s.Require().NoError(err)
	s.Same(restyled, same)
}

func (s *GeneratorSuite) TestUpdateBatchesChanges() {
	_, err := s.gen.Render()
	s.Require().NoError(err)
	s.gen.Update(func(p *Params) {
		p.Payload = []byte("https://example.com")
		p.Level = encoder.L
		p.Size = 300
	})
	img, err := s.gen.Render()
	s.Require().NoError(err)
	s.Equal(2, s.encodes)
	s.Equal(300, img.Bounds().Dx())
}

func (s *GeneratorSuite) TestEncodeFailure() {
	s.gen.SetPayload([]byte(strings.Repeat("x", 4000)))
	img, err := s.gen.Render()
	s.Nil(img)
	s.ErrorIs(err, encoder.ErrEncode)
	s.False(s.gen.Value(0, 0))

	s.gen.SetPayload([]byte("ok"))
	img, err = s.gen.Render()
	s.NoError(err)
	s.NotNil(img)
}

func (s *GeneratorSuite) TestRenderedSymbolScans() {
	s.gen.SetSize(212)
	img, err := s.gen.Render()
	s.Require().NoError(err)
	s.Equal(verify.High, verify.Verify(img, "Test", false))
}

func TestEmptyPayloadRoundTrip(t *testing.T) {
	p := DefaultParams()
	p.Level = encoder.H
	p.Size = 230
	g := New(p)

	s, err := g.Sampler()
	require.NoError(t, err)
	require.Equal(t, 23, s.Width())
	require.Nil(t, s.Mask())

	img, err := g.Render()
	require.NoError(t, err)
	sf, err := g.ScaleFactor()
	require.NoError(t, err)
	assert.InDelta(t, 10.0, sf, 1e-9)

	on := 0
	for y := 0; y < 23; y++ {
		for x := 0; x < 23; x++ {
			c := color.GrayModel.Convert(img.At(x*10+5, y*10+5)).(color.Gray)
			if c.Y < 128 {
				on++
			}
			assert.Equal(t, g.Value(x, y), c.Y < 128)
		}
	}
	assert.Equal(t, s.Count(), on)
}

func solidIcon(c color.Color, n int) image.Image {
	return imaging.New(n, n, c)
}

func TestIconInsideClearsModules(t *testing.T) {
	p := DefaultParams()
	p.Payload = []byte("https://example.com/some/longer/path")
	p.Level = encoder.H
	p.Size = 400
	g := New(p)
	plain, err := g.Sampler()
	require.NoError(t, err)

	g.SetIcon(Icon{Mode: IconInside, Image: solidIcon(color.Black, 60), Scale: 1, BorderRadius: 0.05})
	masked, err := g.Sampler()
	require.NoError(t, err)
	require.NotNil(t, masked.Mask())
	assert.Less(t, masked.Count(), plain.Count())
	mid := masked.Width() / 2
	assert.False(t, g.Value(mid, mid))

	// Over keeps every module.
	g.SetIcon(Icon{Mode: IconOver, Image: solidIcon(color.Black, 60), Scale: 1})
	over, err := g.Sampler()
	require.NoError(t, err)
	assert.Equal(t, plain.Count(), over.Count())
}

func TestIconOverlayWithEffects(t *testing.T) {
	p := DefaultParams()
	p.Payload = []byte("hello")
	p.Level = encoder.H
	p.Size = 200
	p.Effects = true
	p.Icon = Icon{Mode: IconOver, Image: solidIcon(color.NRGBA{G: 255, A: 255}, 20), Scale: 1}
	img, err := New(p).Render()
	require.NoError(t, err)
	r, gr, b, a := img.At(100, 100).RGBA()
	assert.Equal(t, []uint32{0, 0xffff, 0, 0xffff}, []uint32{r, gr, b, a})
}

func TestUnusableIconIsLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	p := DefaultParams()
	p.Payload = []byte("hello")
	p.Effects = true
	p.Icon = Icon{Mode: IconInside, Data: []byte("not an image"), Scale: 1}
	g := New(p, WithLogger(logger))

	img, err := g.Render()
	require.NoError(t, err)
	assert.NotNil(t, img)
	assert.Contains(t, buf.String(), "rendering without icon")
	s, err := g.Sampler()
	require.NoError(t, err)
	assert.Nil(t, s.Mask())
}

func TestPixelScale(t *testing.T) {
	p := DefaultParams()
	p.Size = 100
	p.PixelScale = 2
	img, err := New(p).Render()
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
}

func TestEncodeFormats(t *testing.T) {
	p := DefaultParams()
	p.Payload = []byte("hello")
	p.Effects = true
	g := New(p)

	var buf bytes.Buffer
	require.NoError(t, g.Encode(&buf, imaging.PNG))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())

	buf.Reset()
	require.NoError(t, g.Encode(&buf, imaging.JPEG))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte{0xff, 0xd8}))
}

func TestConcurrentRenders(t *testing.T) {
	p := DefaultParams()
	p.Payload = []byte("concurrent")
	g := New(p)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				g.SetEffects(i%4 == 0)
			}
			_, err := g.Render()
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
}

func TestParseIconMode(t *testing.T) {
	m, err := ParseIconMode("Inside")
	require.NoError(t, err)
	assert.Equal(t, IconInside, m)
	_, err = ParseIconMode("under")
	assert.Error(t, err)
}

func TestEffectsIgnorePalette(t *testing.T) {
	render := func(fg, bg color.Color) image.Image {
		p := DefaultParams()
		p.Payload = []byte("Test")
		p.Level = encoder.H
		p.Size = 212
		p.Effects = true
		p.Foreground, p.Background = fg, bg
		img, err := New(p).Render()
		require.NoError(t, err)
		return img
	}

	want := imaging.Clone(render(color.Black, color.White))
	gold := imaging.Clone(render(color.NRGBA{R: 0xff, G: 0xd7, A: 0xff}, color.White))
	assert.Equal(t, want.Pix, gold.Pix)
	assert.Equal(t, verify.High, verify.Verify(gold, "Test", false))

	inverted := render(color.White, color.Black)
	_, _, _, a := inverted.At(2, 2).RGBA()
	assert.Zero(t, a, "quiet zone stays transparent")
	assert.Equal(t, verify.High, verify.Verify(inverted, "Test", false))
}

func TestPaletteChangeKeepsEffectsShape(t *testing.T) {
	p := DefaultParams()
	p.Payload = []byte("hello")
	p.Effects = true
	g := New(p)
	a, err := g.Render()
	require.NoError(t, err)

	g.Update(func(p *Params) { p.Foreground = color.NRGBA{B: 0xff, A: 0xff} })
	b, err := g.Render()
	require.NoError(t, err)
	assert.Equal(t, imaging.Clone(a).Pix, imaging.Clone(b).Pix)

	g.SetEffects(false)
	raw, err := g.Render()
	require.NoError(t, err)
	r, gr, bl, _ := raw.At(raw.Bounds().Dx()/2, raw.Bounds().Dy()/2).RGBA()
	// The raw image keeps the user's colours: blue or white, never black.
	assert.False(t, r == 0 && gr == 0 && bl == 0)
}

func TestIconInsideBelowGridSize(t *testing.T) {
	for _, size := range []int{16, 22} {
		for _, fx := range []bool{false, true} {
			p := DefaultParams()
			p.Payload = []byte("Test")
			p.Level = encoder.H
			p.Size = size
			p.Effects = fx
			p.Icon = Icon{Mode: IconInside, Image: solidIcon(color.Black, 8), Scale: 1}
			img, err := New(p).Render()
			require.NoError(t, err, "size %d effects %v", size, fx)
			assert.Equal(t, size, img.Bounds().Dx())
		}
	}
}

func TestScaleFactorConsistentUnderUpdates(t *testing.T) {
	p := DefaultParams()
	p.Payload = []byte("Test")
	p.Level = encoder.H
	p.Size = 230
	g := New(p)

	// Both configurations give 10 px modules: 23 modules in 230 px, 47 in 470.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			g.Update(func(p *Params) {
				if i%2 == 0 {
					p.Payload, p.Size = []byte("https://swaap.co/connect/974A2B4C-2A6C-473D-8B15-639BDCB4A70B"), 470
				} else {
					p.Payload, p.Size = []byte("Test"), 230
				}
			})
		}
	}()
	for i := 0; i < 20; i++ {
		sf, err := g.ScaleFactor()
		require.NoError(t, err)
		assert.InDelta(t, 10.0, sf, 1e-9)
	}
	wg.Wait()
}
