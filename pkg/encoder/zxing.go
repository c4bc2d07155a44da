package encoder

import (
	"fmt"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode/decoder"
	zxenc "github.com/makiuchi-d/gozxing/qrcode/encoder"

	"github.com/cristianadrielbraun/qretty/pkg/sampler"
)

// Zxing encodes with the gozxing port of ZXing. Empty payloads are accepted
// and produce a version 1 symbol.
type Zxing struct{}

// Encode implements Encoder.
func (Zxing) Encode(payload []byte, level Level) (*sampler.Bitmap, error) {
	hints := map[gozxing.EncodeHintType]interface{}{}
	if !isASCII(payload) {
		hints[gozxing.EncodeHintType_CHARACTER_SET] = "UTF-8"
	}

	code, err := zxenc.Encoder_encode(string(payload), zxingLevel(level), hints)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	m := code.GetMatrix()
	if m == nil {
		return nil, fmt.Errorf("%w: encoder returned no matrix", ErrEncode)
	}
	return fromNative(m.GetWidth(), m.GetHeight(), func(x, y int) bool {
		return m.Get(x, y) == 1
	}), nil
}

func zxingLevel(l Level) decoder.ErrorCorrectionLevel {
	switch l {
	case L:
		return decoder.ErrorCorrectionLevel_L
	case M:
		return decoder.ErrorCorrectionLevel_M
	case Q:
		return decoder.ErrorCorrectionLevel_Q
	default:
		return decoder.ErrorCorrectionLevel_H
	}
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= 0x80 {
			return false
		}
	}
	return true
}
