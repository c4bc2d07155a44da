package verify

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

// Accuracy selects a detector pass.
type Accuracy int

const (
	// AccuracyLow is a fast pass with a global threshold.
	AccuracyLow Accuracy = iota
	// AccuracyHigh uses a local threshold and searches harder.
	AccuracyHigh
)

func (a Accuracy) String() string {
	if a == AccuracyHigh {
		return "high"
	}
	return "low"
}

// Detector finds and decodes symbols in an image.
type Detector interface {
	Detect(img image.Image, acc Accuracy) []string
}

// DetectorFunc adapts a function to Detector.
type DetectorFunc func(img image.Image, acc Accuracy) []string

// Detect calls f.
func (f DetectorFunc) Detect(img image.Image, acc Accuracy) []string { return f(img, acc) }

// ZxingDetector decodes with gozxing. Images are flattened onto white and
// given a light margin first, since the decoder ignores alpha.
type ZxingDetector struct{}

// Detect implements Detector. Decoder failures, including panics inside
// gozxing, yield no results.
func (ZxingDetector) Detect(img image.Image, acc Accuracy) (found []string) {
	if img == nil || img.Bounds().Empty() {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			found = nil
		}
	}()

	src := gozxing.NewLuminanceSourceFromImage(prepare(img))
	var bin gozxing.Binarizer
	var hints map[gozxing.DecodeHintType]interface{}
	switch acc {
	case AccuracyHigh:
		bin = gozxing.NewHybridBinarizer(src)
		hints = map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		}
	default:
		bin = gozxing.NewGlobalHistgramBinarizer(src)
	}

	bmp, err := gozxing.NewBinaryBitmap(bin)
	if err != nil {
		return nil
	}
	res, err := qrcode.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		return nil
	}
	return []string{res.GetText()}
}

// prepare flattens img onto white inside a margin of an eighth of its size.
func prepare(img image.Image) image.Image {
	b := img.Bounds()
	pad := max(b.Dx(), b.Dy()) / 8
	bg := imaging.New(b.Dx()+2*pad, b.Dy()+2*pad, color.White)
	return imaging.Overlay(bg, img, image.Pt(pad, pad), 1)
}
