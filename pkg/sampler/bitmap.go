// Package sampler turns a binary module raster into point and adjacency
// queries.
//
// A Sampler answers two questions about a QR symbol: is the module at (x, y)
// "on", and which of its four direct neighbours are also on. Both answers
// honour an optional exclusion mask so that modules which would sit under an
// embedded icon are never reported as on.
package sampler

import "fmt"

// Bitmap is a single-channel byte raster stored row by row. When Flipped is
// set the rows are stored bottom-up, so row y lives at Height-1-y.
type Bitmap struct {
	Width   int
	Height  int
	Pix     []byte
	Flipped bool
}

// NewBitmap allocates a zeroed w x h bitmap.
func NewBitmap(w, h int, flipped bool) *Bitmap {
	return &Bitmap{Width: w, Height: h, Pix: make([]byte, w*h), Flipped: flipped}
}

// Offset returns the index of (x, y) in Pix. Out of range coordinates are a
// programming error and panic.
func (b *Bitmap) Offset(x, y int) int {
	if x < 0 || x >= b.Width || y < 0 || y >= b.Height {
		panic(fmt.Sprintf("sampler: (%d,%d) outside %dx%d bitmap", x, y, b.Width, b.Height))
	}
	var off int
	if b.Flipped {
		off = (b.Height-1-y)*b.Width + x
	} else {
		off = y*b.Width + x
	}
	if off >= len(b.Pix) {
		panic(fmt.Sprintf("sampler: offset %d exceeds buffer of %d bytes", off, len(b.Pix)))
	}
	return off
}

// At returns the value stored for (x, y).
func (b *Bitmap) At(x, y int) byte { return b.Pix[b.Offset(x, y)] }

// Set stores v for (x, y).
func (b *Bitmap) Set(x, y int, v byte) { b.Pix[b.Offset(x, y)] = v }

// InBounds reports whether (x, y) addresses a cell of b.
func (b *Bitmap) InBounds(x, y int) bool {
	return x >= 0 && x < b.Width && y >= 0 && y < b.Height
}

// Clone returns a deep copy of b.
func (b *Bitmap) Clone() *Bitmap {
	c := *b
	c.Pix = append([]byte(nil), b.Pix...)
	return &c
}

// WithFlipped returns a copy of b whose storage order is reinterpreted as
// flipped. The returned bitmap shares nothing with b.
func (b *Bitmap) WithFlipped(flipped bool) *Bitmap {
	c := b.Clone()
	c.Flipped = flipped
	return c
}
