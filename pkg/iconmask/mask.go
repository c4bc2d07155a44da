package iconmask

import (
	"image"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/cristianadrielbraun/qretty/pkg/encoder"
	"github.com/cristianadrielbraun/qretty/pkg/sampler"
)

// Radius converts an icon border radius into a filter radius in pixels for a
// canvas x canvas destination.
func Radius(borderRadius float64, canvas int) float64 {
	return borderRadius * float64(canvas) * 0.1
}

// Alpha draws icon at its placement on a transparent canvas x canvas image
// and returns the alpha channel. Scaling is nearest neighbour so edges stay
// hard.
func Alpha(icon image.Image, canvas int, level encoder.Level, scale float64) *image.Alpha {
	dst := image.NewAlpha(image.Rect(0, 0, canvas, canvas))
	r := Placement(icon.Bounds(), canvas, level, scale)
	if r.Empty() {
		return dst
	}
	xdraw.NearestNeighbor.Scale(dst, r, icon, icon.Bounds(), draw.Src, nil)
	return dst
}

// Minimax replaces every pixel with the maximum alpha found within a disc of
// radius around it. A negative radius takes the minimum instead. Pixels
// outside the image are ignored.
func Minimax(src *image.Alpha, radius float64) *image.Alpha {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewAlpha(image.Rect(0, 0, w, h))

	erode := radius < 0
	in := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
		for x := 0; x < w; x++ {
			v := row[x]
			if erode {
				v = 255 - v
			}
			in[y*w+x] = v
		}
	}

	r := math.Abs(radius)
	res := make([]uint8, w*h)
	if r < 1 {
		copy(res, in)
	} else {
		// The disc is the union of horizontal runs; each run is a sliding
		// window max over one row, shifted vertically by dy.
		plane := make([]uint8, w*h)
		last := -1
		for dy := 0; dy <= int(r); dy++ {
			hw := int(math.Sqrt(r*r - float64(dy*dy)))
			if hw != last {
				slidingMax(in, plane, w, h, hw)
				last = hw
			}
			maxShifted(res, plane, w, h, dy)
			if dy != 0 {
				maxShifted(res, plane, w, h, -dy)
			}
		}
	}

	for y := 0; y < h; y++ {
		row := out.Pix[y*out.Stride:]
		for x := 0; x < w; x++ {
			v := res[y*w+x]
			if erode {
				v = 255 - v
			}
			row[x] = v
		}
	}
	return out
}

// slidingMax writes into out the max of in over [x-hw, x+hw] on each row.
func slidingMax(in, out []uint8, w, h, hw int) {
	q := make([]int, w)
	for y := 0; y < h; y++ {
		row := in[y*w : (y+1)*w]
		dst := out[y*w : (y+1)*w]
		head, tail, next := 0, 0, 0
		for x := 0; x < w; x++ {
			for ; next < w && next <= x+hw; next++ {
				for tail > head && row[q[tail-1]] <= row[next] {
					tail--
				}
				q[tail] = next
				tail++
			}
			for q[head] < x-hw {
				head++
			}
			dst[x] = row[q[head]]
		}
	}
}

// maxShifted folds plane row y+dy into res row y.
func maxShifted(res, plane []uint8, w, h, dy int) {
	for y := 0; y < h; y++ {
		sy := y + dy
		if sy < 0 || sy >= h {
			continue
		}
		dst := res[y*w : (y+1)*w]
		src := plane[sy*w : (sy+1)*w]
		for x, v := range src {
			if v > dst[x] {
				dst[x] = v
			}
		}
	}
}

// Generate builds the exclusion mask for icon on a canvas x canvas
// destination. Modules touching any covered pixel are suppressed by
// sampler.Sampler.WithMask. The mask is stored bottom-up.
func Generate(icon image.Image, canvas int, borderRadius, scale float64, level encoder.Level) *sampler.Bitmap {
	a := Minimax(Alpha(icon, canvas, level, scale), Radius(borderRadius, canvas))
	m := sampler.NewBitmap(canvas, canvas, true)
	for y := 0; y < canvas; y++ {
		row := a.Pix[y*a.Stride:]
		for x := 0; x < canvas; x++ {
			m.Set(x, y, row[x])
		}
	}
	return m
}
