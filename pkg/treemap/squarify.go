// Package treemap implements the squarified treemap layout of Bruls, Huizing
// and van Wijk.
//
// The layout is a pure function: the same sizes and container always produce
// bit-identical rectangles. The viewport renderer and hit-tester both depend
// on this to agree on every pixel without sharing any cached geometry.
package treemap

import (
	"math"

	"github.com/matzehuels/spaceview/pkg/geom"
)

// Squarify lays out sizes inside r and returns one rectangle per size, in
// input order. Sizes should be sorted descending for the best aspect ratios,
// but any order tiles r.
//
// Empty input or a non-positive total returns nil. Items with a size <= 0
// become zero-area placeholders at the far corner of r. A container with zero
// width or height is sliced along its other axis, so every output keeps the
// zero dimension.
func Squarify(sizes []float64, r geom.Rect) []geom.Rect {
	if len(sizes) == 0 {
		return nil
	}

	var total float64
	for _, s := range sizes {
		if s > 0 {
			total += s
		}
	}
	if total <= 0 || math.IsInf(total, 0) || math.IsNaN(total) {
		return nil
	}

	out := make([]geom.Rect, len(sizes))
	if r.W <= 0 || r.H <= 0 {
		slice(sizes, total, r, out)
		return out
	}

	k := r.Area() / total
	squarify(sizes, k, r, out)
	return out
}

// squarify packs rows until every positive item has been placed. Rows that
// would leave only zero-size items behind absorb the remaining space.
func squarify(sizes []float64, k float64, r geom.Rect, out []geom.Rect) {
	placeholder := geom.Rect{X: r.MaxX(), Y: r.MaxY()}

	// Indexes of positive items, in order.
	idx := make([]int, 0, len(sizes))
	for i, s := range sizes {
		if s > 0 {
			idx = append(idx, i)
		} else {
			out[i] = placeholder
		}
	}

	rem := r
	for start := 0; start < len(idx); {
		short := rem.ShortSide()

		end := start + 1
		rowArea := sizes[idx[start]] * k
		lo, hi := rowArea, rowArea
		best := extremeRatio(lo, hi, rowArea, short)
		for end < len(idx) {
			a := sizes[idx[end]] * k
			cand := rowArea + a
			ratio := extremeRatio(math.Min(lo, a), math.Max(hi, a), cand, short)
			if ratio > best {
				break
			}
			lo, hi = math.Min(lo, a), math.Max(hi, a)
			rowArea = cand
			best = ratio
			end++
		}

		last := end == len(idx)
		rem = layoutRow(sizes, idx[start:end], rowArea, rem, last, out)
		start = end
	}
}

// layoutRow places one row along the shorter side of rem and returns the
// space left over. The final row fills rem exactly.
func layoutRow(sizes []float64, row []int, rowArea float64, rem geom.Rect, last bool, out []geom.Rect) geom.Rect {
	var rowSum float64
	for _, i := range row {
		rowSum += sizes[i]
	}

	if rem.W >= rem.H {
		// Column on the left, items stacked top to bottom.
		thick := rowArea / rem.H
		if last || thick > rem.W {
			thick = rem.W
		}
		y := rem.Y
		for n, i := range row {
			h := rem.H * (sizes[i] / rowSum)
			if n == len(row)-1 {
				h = rem.MaxY() - y
			}
			out[i] = geom.Rect{X: rem.X, Y: y, W: thick, H: h}
			y += h
		}
		return geom.Rect{X: rem.X + thick, Y: rem.Y, W: rem.W - thick, H: rem.H}
	}

	// Row along the top, items placed left to right.
	thick := rowArea / rem.W
	if last || thick > rem.H {
		thick = rem.H
	}
	x := rem.X
	for n, i := range row {
		w := rem.W * (sizes[i] / rowSum)
		if n == len(row)-1 {
			w = rem.MaxX() - x
		}
		out[i] = geom.Rect{X: x, Y: rem.Y, W: w, H: thick}
		x += w
	}
	return geom.Rect{X: rem.X, Y: rem.Y + thick, W: rem.W, H: rem.H - thick}
}

// extremeRatio is WorstRatio for a row whose smallest and largest item areas
// are lo and hi. The per-item ratio is convex in the area, so the worst item
// is always one of the two extremes.
func extremeRatio(lo, hi, rowArea, side float64) float64 {
	if rowArea <= 0 || side <= 0 {
		return math.Inf(1)
	}
	t2 := (rowArea / side) * (rowArea / side)
	return math.Max(math.Max(t2/lo, lo/t2), math.Max(t2/hi, hi/t2))
}

// WorstRatio returns the largest max(w/h, h/w) among items of a row with the
// given areas laid along a side of length side. It returns +Inf for an empty
// or degenerate row.
func WorstRatio(itemAreas []float64, rowArea, side float64) float64 {
	if rowArea <= 0 || side <= 0 {
		return math.Inf(1)
	}
	thick := rowArea / side
	worst := 0.0
	for _, a := range itemAreas {
		if a <= 0 {
			continue
		}
		length := a / thick
		ratio := thick / length
		if length > thick {
			ratio = length / thick
		}
		worst = math.Max(worst, ratio)
	}
	return worst
}

// slice handles containers with no area: items are cut proportionally along
// the longer axis so positions stay meaningful.
func slice(sizes []float64, total float64, r geom.Rect, out []geom.Rect) {
	alongX := r.W >= r.H
	pos := r.X
	if !alongX {
		pos = r.Y
	}
	for i, s := range sizes {
		frac := 0.0
		if s > 0 {
			frac = s / total
		}
		if alongX {
			w := r.W * frac
			out[i] = geom.Rect{X: pos, Y: r.Y, W: w, H: r.H}
			pos += w
		} else {
			h := r.H * frac
			out[i] = geom.Rect{X: r.X, Y: pos, W: r.W, H: h}
			pos += h
		}
	}
}
