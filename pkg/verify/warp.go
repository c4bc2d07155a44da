package verify

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/mat"
)

// Offset is a corner displacement as a fraction of the image size.
type Offset struct {
	X, Y float64
}

// Warp simulates an off-axis photograph of a printed symbol.
type Warp struct {
	// Corners move the top-left, top-right, bottom-right and bottom-left
	// image corners to their destination positions.
	Corners [4]Offset
	// Noise is the amplitude of uniform per-pixel noise, 0..1.
	Noise float64
	// Seed makes the noise reproducible.
	Seed uint64
}

// DefaultWarp is a mild tilt with light sensor noise.
var DefaultWarp = Warp{
	Corners: [4]Offset{
		{X: 0.03, Y: 0.05},
		{X: -0.05, Y: 0.02},
		{X: -0.02, Y: -0.04},
		{X: 0.04, Y: -0.02},
	},
	Noise: 0.08,
	Seed:  0x51e77,
}

// Apply returns the warped image. Areas outside the source are white.
func (w Warp) Apply(img image.Image) (*image.NRGBA, error) {
	src := imaging.Clone(img)
	bw, bh := src.Bounds().Dx(), src.Bounds().Dy()
	out := imaging.New(bw, bh, color.White)
	if bw == 0 || bh == 0 {
		return out, nil
	}

	fw, fh := float64(bw), float64(bh)
	srcPts := [4][2]float64{{0, 0}, {fw, 0}, {fw, fh}, {0, fh}}
	var dstPts [4][2]float64
	for i, c := range w.Corners {
		dstPts[i] = [2]float64{srcPts[i][0] + c.X*fw, srcPts[i][1] + c.Y*fh}
	}
	// Inverse mapping: destination pixel -> source position.
	h, err := homography(dstPts, srcPts)
	if err != nil {
		return nil, err
	}

	for y := 0; y < bh; y++ {
		for x := 0; x < bw; x++ {
			u, v := float64(x)+0.5, float64(y)+0.5
			d := h[6]*u + h[7]*v + 1
			if d == 0 {
				continue
			}
			sx := (h[0]*u+h[1]*v+h[2])/d - 0.5
			sy := (h[3]*u+h[4]*v+h[5])/d - 0.5
			if sx < -0.5 || sy < -0.5 || sx > fw-0.5 || sy > fh-0.5 {
				continue
			}
			bilinear(src, sx, sy, out.Pix[y*out.Stride+x*4:])
		}
	}

	if w.Noise > 0 {
		rng := rand.New(rand.NewPCG(w.Seed, w.Seed^0x9e3779b97f4a7c15))
		amp := w.Noise * 255
		for i := 0; i < len(out.Pix); i += 4 {
			n := (rng.Float64()*2 - 1) * amp
			for c := 0; c < 3; c++ {
				out.Pix[i+c] = clamp8(float64(out.Pix[i+c]) + n)
			}
		}
	}
	return out, nil
}

// homography solves for the projective transform taking from[i] to to[i],
// returned as the first eight entries of a row-major 3x3 matrix with h33=1.
func homography(from, to [4][2]float64) ([8]float64, error) {
	a := mat.NewDense(8, 8, nil)
	b := mat.NewVecDense(8, nil)
	for i := 0; i < 4; i++ {
		u, v := from[i][0], from[i][1]
		x, y := to[i][0], to[i][1]
		a.SetRow(2*i, []float64{u, v, 1, 0, 0, 0, -u * x, -v * x})
		a.SetRow(2*i+1, []float64{0, 0, 0, u, v, 1, -u * y, -v * y})
		b.SetVec(2*i, x)
		b.SetVec(2*i+1, y)
	}
	var sol mat.VecDense
	if err := sol.SolveVec(a, b); err != nil {
		return [8]float64{}, fmt.Errorf("degenerate warp: %w", err)
	}
	var h [8]float64
	for i := range h {
		h[i] = sol.AtVec(i)
	}
	return h, nil
}

// bilinear samples src at (x, y), compositing onto the white already in dst.
func bilinear(src *image.NRGBA, x, y float64, dst []uint8) {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	x0, y0 := int(math.Floor(x)), int(math.Floor(y))
	fx, fy := x-float64(x0), y-float64(y0)

	var acc [4]float64
	for j := 0; j < 2; j++ {
		for i := 0; i < 2; i++ {
			px := min(max(x0+i, 0), w-1)
			py := min(max(y0+j, 0), h-1)
			wt := (1 - math.Abs(float64(i)-fx)) * (1 - math.Abs(float64(j)-fy))
			p := src.Pix[py*src.Stride+px*4:]
			a := float64(p[3]) / 255
			for c := 0; c < 3; c++ {
				acc[c] += wt * (float64(p[c])*a + 255*(1-a))
			}
		}
	}
	for c := 0; c < 3; c++ {
		dst[c] = clamp8(acc[c])
	}
	dst[3] = 255
}

func clamp8(v float64) uint8 {
	return uint8(math.Max(0, math.Min(255, math.Round(v))))
}
