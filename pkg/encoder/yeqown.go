package encoder

import (
	"fmt"

	"github.com/yeqown/go-qrcode/v2"

	"github.com/cristianadrielbraun/qretty/pkg/sampler"
)

// Yeqown encodes with github.com/yeqown/go-qrcode in byte mode.
type Yeqown struct{}

// Encode implements Encoder.
func (Yeqown) Encode(payload []byte, level Level) (*sampler.Bitmap, error) {
	qrc, err := qrcode.NewWith(string(payload), YeqownOptions(level)...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}

	w := &matrixWriter{}
	if err := qrc.Save(w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return w.grid, nil
}

// matrixWriter captures the symbol matrix instead of producing an image.
type matrixWriter struct {
	grid *sampler.Bitmap
}

var _ qrcode.Writer = (*matrixWriter)(nil)

func (w *matrixWriter) Write(mat qrcode.Matrix) error {
	ww, hh := mat.Width(), mat.Height()
	dark := make([]bool, ww*hh)
	mat.Iterate(qrcode.IterDirection_ROW, func(x, y int, v qrcode.QRValue) {
		dark[y*ww+x] = v.IsSet()
	})
	w.grid = fromNative(ww, hh, func(x, y int) bool { return dark[y*ww+x] })
	return nil
}

func (w *matrixWriter) Close() error { return nil }

// YeqownOptions returns the encode options Yeqown uses for level, for callers
// that drive the yeqown image writers directly.
func YeqownOptions(level Level) []qrcode.EncodeOption {
	return []qrcode.EncodeOption{qrcode.WithEncodingMode(qrcode.EncModeByte), yeqownLevel(level)}
}

func yeqownLevel(l Level) qrcode.EncodeOption {
	switch l {
	case L:
		return qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionLow)
	case M:
		return qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionMedium)
	case Q:
		return qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionQuart)
	default:
		return qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionHighest)
	}
}
