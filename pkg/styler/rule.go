// Package styler converts module on/off and adjacency data into filled vector
// geometry.
//
// Each on module receives the geometry of every active Rule, accumulated into
// one path and filled before the next module is visited. Rules therefore
// combine additively: a Dot plus a Chain paints the union of both shapes.
package styler

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Rule is one module styling rule. The set of implementations is closed:
// Dot, Diamond and Chain.
type Rule interface {
	rule()
	String() string
}

// Dot is a (possibly rounded) square centred in the cell. Scale is the fill
// fraction of the cell, CornerRadius a fraction of half the dot size.
type Dot struct {
	Scale        float64
	CornerRadius float64
}

// Diamond connects the cell's edge midpoints with quadratic curves whose
// control points sit Curve of the way from the centre to each corner. 0.5
// gives straight edges.
type Diamond struct {
	Curve float64
}

// Chain draws a bar of Width (fraction of the cell) from the centre towards
// every on neighbour, fusing adjacent modules.
type Chain struct {
	Width float64
}

func (Dot) rule()     {}
func (Diamond) rule() {}
func (Chain) rule()   {}

func (d Dot) String() string     { return fmt.Sprintf("dot:%g,%g", d.Scale, d.CornerRadius) }
func (d Diamond) String() string { return fmt.Sprintf("diamond:%g", d.Curve) }
func (c Chain) String() string   { return fmt.Sprintf("chain:%g", c.Width) }

// Set is a duplicate free, canonically ordered collection of rules.
type Set []Rule

// NewSet builds a Set from rules, dropping duplicates.
func NewSet(rules ...Rule) Set {
	seen := make(map[Rule]bool, len(rules))
	s := make(Set, 0, len(rules))
	for _, r := range rules {
		if r == nil || seen[r] {
			continue
		}
		seen[r] = true
		s = append(s, r)
	}
	sort.Slice(s, func(i, j int) bool { return s[i].String() < s[j].String() })
	return s
}

// Equal reports whether s and o hold the same rules.
func (s Set) Equal(o Set) bool {
	a, b := NewSet(s...), NewSet(o...)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (s Set) String() string {
	parts := make([]string, len(s))
	for i, r := range s {
		parts[i] = r.String()
	}
	return strings.Join(parts, ";")
}

// Presets.
var (
	// Blocks draws plain full squares.
	Blocks = NewSet(Dot{Scale: 1, CornerRadius: 0})
	// Dots draws round dots chained to their neighbours.
	Dots = NewSet(Dot{Scale: 0.8, CornerRadius: 1}, Chain{Width: 0.4})
)

// ParseSet reads a preset name ("blocks", "dots") or a list such as
// "dot:0.8,1;chain:0.4;diamond:0.5". An empty string yields an empty set.
func ParseSet(s string) (Set, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "":
		return Set{}, nil
	case "blocks", "block":
		return Blocks, nil
	case "dots":
		return Dots, nil
	}

	var rules []Rule
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, args, _ := strings.Cut(part, ":")
		vals, err := parseFloats(args)
		if err != nil {
			return nil, fmt.Errorf("style %q: %w", part, err)
		}
		switch name {
		case "dot":
			d := Dot{Scale: 1}
			if len(vals) > 0 {
				d.Scale = vals[0]
			}
			if len(vals) > 1 {
				d.CornerRadius = vals[1]
			}
			rules = append(rules, d)
		case "diamond":
			d := Diamond{Curve: 0.5}
			if len(vals) > 0 {
				d.Curve = vals[0]
			}
			rules = append(rules, d)
		case "chain":
			c := Chain{Width: 0.5}
			if len(vals) > 0 {
				c.Width = vals[0]
			}
			rules = append(rules, c)
		default:
			return nil, fmt.Errorf("unknown style %q (must be dot, diamond or chain)", name)
		}
	}
	return NewSet(rules...), nil
}

func parseFloats(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []float64
	for _, f := range strings.Split(s, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, err
		}
		if v < 0 || v > 1 {
			return nil, fmt.Errorf("value %g outside 0..1", v)
		}
		out = append(out, v)
	}
	return out, nil
}
