// Package verify checks that a rendered symbol still scans.
//
// Two detector passes, a fast global-threshold one and a slower local one,
// each either find the expected payload or not. The number of passes that
// succeed is the Readability.
package verify

import (
	"fmt"
	"image"
)

// Readability counts how many detector passes decoded the expected payload.
type Readability int

const (
	None Readability = iota
	Low
	High
)

func (r Readability) String() string {
	switch r {
	case None:
		return "none"
	case Low:
		return "low"
	case High:
		return "high"
	}
	return fmt.Sprintf("Readability(%d)", int(r))
}

// MarshalText encodes r as its lowercase name.
func (r Readability) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Verifier runs detector passes over finished images. The zero value uses
// ZxingDetector and DefaultWarp.
type Verifier struct {
	Detector Detector
	Warp     *Warp
}

func (v *Verifier) detector() Detector {
	if v.Detector == nil {
		return ZxingDetector{}
	}
	return v.Detector
}

// Deteriorate warps img with the verifier's warp. On a degenerate warp the
// image is returned unchanged.
func (v *Verifier) Deteriorate(img image.Image) image.Image {
	w := DefaultWarp
	if v.Warp != nil {
		w = *v.Warp
	}
	out, err := w.Apply(img)
	if err != nil {
		return img
	}
	return out
}

// Verify classifies img against expected, optionally after deterioration.
func (v *Verifier) Verify(img image.Image, expected string, deteriorate bool) Readability {
	if img == nil {
		return None
	}
	if deteriorate {
		img = v.Deteriorate(img)
	}
	det := v.detector()
	var r Readability
	for _, acc := range []Accuracy{AccuracyLow, AccuracyHigh} {
		for _, s := range det.Detect(img, acc) {
			if s == expected {
				r++
				break
			}
		}
	}
	return r
}

// VerifyQuality returns the readability of img as rendered and after
// deterioration.
func (v *Verifier) VerifyQuality(img image.Image, expected string) (raw, deteriorated Readability) {
	return v.Verify(img, expected, false), v.Verify(img, expected, true)
}

var std Verifier

// Verify classifies img with the default verifier.
func Verify(img image.Image, expected string, deteriorate bool) Readability {
	return std.Verify(img, expected, deteriorate)
}

// VerifyQuality runs VerifyQuality with the default verifier.
func VerifyQuality(img image.Image, expected string) (raw, deteriorated Readability) {
	return std.VerifyQuality(img, expected)
}

// Deteriorate applies DefaultWarp.
func Deteriorate(img image.Image) image.Image {
	return std.Deteriorate(img)
}
