package sampler

import (
	"errors"
	"fmt"
	"math"
)

// On is the grid value of a module that should be drawn.
const On = 255

// MaskThreshold is the largest mask alpha that still lets a module through.
const MaskThreshold = 10

// ErrSizeMismatch is returned when a mask cannot be laid over the grid.
var ErrSizeMismatch = errors.New("mask and grid proportions differ")

// Direction is a set of 4-neighbour directions.
type Direction uint8

const (
	Up Direction = 1 << iota
	Down
	Left
	Right
)

// Has reports whether every direction in d2 is in d.
func (d Direction) Has(d2 Direction) bool { return d&d2 == d2 && d2 != 0 }

// Opposite mirrors each direction in d.
func (d Direction) Opposite() Direction {
	var o Direction
	if d&Up != 0 {
		o |= Down
	}
	if d&Down != 0 {
		o |= Up
	}
	if d&Left != 0 {
		o |= Right
	}
	if d&Right != 0 {
		o |= Left
	}
	return o
}

func (d Direction) String() string {
	s := ""
	for _, n := range []struct {
		d    Direction
		name string
	}{{Up, "up"}, {Down, "down"}, {Left, "left"}, {Right, "right"}} {
		if d&n.d != 0 {
			if s != "" {
				s += "|"
			}
			s += n.name
		}
	}
	if s == "" {
		return "none"
	}
	return s
}

// offsets lists the neighbour steps in the order up, right, down, left.
var offsets = []struct {
	dx, dy int
	dir    Direction
}{
	{0, -1, Up},
	{1, 0, Right},
	{0, 1, Down},
	{-1, 0, Left},
}

// Sampler answers module queries over an immutable grid and optional mask.
type Sampler struct {
	grid     *Bitmap
	mask     *Bitmap
	excluded []bool
}

// New wraps grid. The grid must not be modified afterwards.
func New(grid *Bitmap) *Sampler {
	return &Sampler{grid: grid}
}

// WithMask returns a sampler that additionally suppresses every module whose
// footprint on mask carries an alpha above MaskThreshold. The mask lives in
// destination pixel space; its size must be proportional to the grid. A
// mask smaller than the grid is allowed: each mask pixel then covers
// several modules.
func (s *Sampler) WithMask(mask *Bitmap) (*Sampler, error) {
	if mask == nil {
		return &Sampler{grid: s.grid}, nil
	}
	g := s.grid
	if mask.Width == 0 || mask.Width*g.Height != mask.Height*g.Width {
		return nil, fmt.Errorf("%w: mask %dx%d, grid %dx%d", ErrSizeMismatch, mask.Width, mask.Height, g.Width, g.Height)
	}

	cell := float64(mask.Width) / float64(g.Width)
	excluded := make([]bool, g.Width*g.Height)
	for y := 0; y < g.Height; y++ {
		y0, y1 := span(y, cell, mask.Height)
		for x := 0; x < g.Width; x++ {
			x0, x1 := span(x, cell, mask.Width)
			excluded[y*g.Width+x] = covered(mask, x0, y0, x1, y1)
		}
	}
	return &Sampler{grid: g, mask: mask, excluded: excluded}, nil
}

// span returns the half-open pixel range covered by module i.
func span(i int, cell float64, limit int) (int, int) {
	lo := int(math.Floor(float64(i) * cell))
	hi := int(math.Ceil(float64(i+1) * cell))
	if hi > limit {
		hi = limit
	}
	if hi <= lo {
		hi = lo + 1
	}
	return lo, hi
}

func covered(mask *Bitmap, x0, y0, x1, y1 int) bool {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			if mask.At(x, y) > MaskThreshold {
				return true
			}
		}
	}
	return false
}

// Width is the module count along x.
func (s *Sampler) Width() int { return s.grid.Width }

// Height is the module count along y.
func (s *Sampler) Height() int { return s.grid.Height }

// Grid returns the underlying module grid.
func (s *Sampler) Grid() *Bitmap { return s.grid }

// Mask returns the exclusion mask, or nil.
func (s *Sampler) Mask() *Bitmap { return s.mask }

// Excluded reports whether the mask suppresses module (x, y).
func (s *Sampler) Excluded(x, y int) bool {
	s.grid.Offset(x, y)
	return s.excluded != nil && s.excluded[y*s.grid.Width+x]
}

// Value reports whether module (x, y) is on and not masked out.
func (s *Sampler) Value(x, y int) bool {
	return s.grid.At(x, y) == On && !s.Excluded(x, y)
}

// Neighbors returns the directions whose in-bounds neighbour is also on.
// Edges simply omit the missing direction.
func (s *Sampler) Neighbors(x, y int) Direction {
	s.grid.Offset(x, y)
	var d Direction
	for _, o := range offsets {
		nx, ny := x+o.dx, y+o.dy
		if !s.grid.InBounds(nx, ny) {
			continue
		}
		if s.Value(nx, ny) {
			d |= o.dir
		}
	}
	return d
}

// Count returns how many modules are on.
func (s *Sampler) Count() int {
	n := 0
	for y := 0; y < s.grid.Height; y++ {
		for x := 0; x < s.grid.Width; x++ {
			if s.Value(x, y) {
				n++
			}
		}
	}
	return n
}
