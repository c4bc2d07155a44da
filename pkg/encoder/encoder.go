// Package encoder adapts external QR encoders to the module grid consumed by
// the sampler.
//
// Every backend renders the symbol natively (dark module = 0, light = 255),
// surrounds it with a one-module quiet zone and then inverts the polarity so
// that a dark module becomes an "on" cell (255) and everything else 0.
package encoder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cristianadrielbraun/qretty/pkg/sampler"
)

// ErrEncode reports that a payload could not be turned into a symbol.
var ErrEncode = errors.New("encode failure")

// QuietZone is the light margin, in modules, added around each symbol.
const QuietZone = 1

// Level is a QR error-correction tier.
type Level int

const (
	L Level = iota
	M
	Q
	H
)

// Tolerance is the fraction of symbol area the level can recover.
func (l Level) Tolerance() float64 {
	switch l {
	case L:
		return 0.07
	case M:
		return 0.15
	case Q:
		return 0.25
	case H:
		return 0.30
	default:
		return 0
	}
}

func (l Level) String() string {
	switch l {
	case L:
		return "L"
	case M:
		return "M"
	case Q:
		return "Q"
	case H:
		return "H"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// ParseLevel accepts L, M, Q or H in any case.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "L":
		return L, nil
	case "M":
		return M, nil
	case "Q":
		return Q, nil
	case "H":
		return H, nil
	}
	return 0, fmt.Errorf("invalid correction level %q (must be L, M, Q or H)", s)
}

// Encoder turns a payload into a binarized module grid.
type Encoder interface {
	Encode(payload []byte, level Level) (*sampler.Bitmap, error)
}

// Func adapts a plain function to Encoder.
type Func func(payload []byte, level Level) (*sampler.Bitmap, error)

// Encode calls f.
func (f Func) Encode(payload []byte, level Level) (*sampler.Bitmap, error) {
	return f(payload, level)
}

// New returns the named backend: "zxing" (default) or "yeqown".
func New(name string) (Encoder, error) {
	switch strings.ToLower(name) {
	case "", "zxing":
		return Zxing{}, nil
	case "yeqown":
		return Yeqown{}, nil
	}
	return nil, fmt.Errorf("unknown encoder %q (must be 'zxing' or 'yeqown')", name)
}

// fromNative builds the grid from a symbol of size w x h where dark(x, y)
// reports a dark module. The symbol is padded by QuietZone and inverted: a
// native pixel of 0 becomes 255, any other value becomes 0.
func fromNative(w, h int, dark func(x, y int) bool) *sampler.Bitmap {
	gw, gh := w+2*QuietZone, h+2*QuietZone
	native := make([]byte, gw*gh)
	for i := range native {
		native[i] = 255
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if dark(x, y) {
				native[(y+QuietZone)*gw+x+QuietZone] = 0
			}
		}
	}

	grid := sampler.NewBitmap(gw, gh, false)
	for i, p := range native {
		if p == 0 {
			grid.Pix[i] = sampler.On
		}
	}
	return grid
}
