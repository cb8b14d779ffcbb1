package decode

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"linedecode/pkg/geometry"
)

// Segment is one decoded character: the winning class, where it was
// placed, and its channel score. Sample is -1 until rescoring picks a
// raw sample (see Rescore).
type Segment struct {
	Class  int              `json:"class"`
	Label  string           `json:"label"`
	X      int              `json:"x"`
	YShift int              `json:"y_shift"`
	Width  int              `json:"width"`
	Box    geometry.RectInt `json:"box"`
	Score  float64          `json:"score"`
	Sample int              `json:"sample"`
}

// Decode runs the Viterbi forward pass over the line and backtracks the
// best-scoring character sequence, left to right.
//
// Trellis position x means "all pixels left of x are accounted for by a
// legal template sequence". Positions are visited in strictly increasing
// order, so every transition reads only finalized scores and a single
// sweep suffices.
func (c *Context) Decode() ([]Segment, error) {
	if c.size == 0 || !c.hasPlacements() {
		return nil, ErrEmptyDecodeArrays
	}

	n := c.lib.Len()
	scores := make([]float64, c.size)
	pred := make([]int, c.size)
	for x := range scores {
		scores[x] = math.Inf(-1)
		pred[x] = -1
	}
	// Position 0 seeds the sweep: every class is tried as a possible
	// first character on the first iteration.
	scores[0] = 0

	for x := 0; x < c.size; x++ {
		if math.IsInf(scores[x], -1) {
			continue
		}
		for t := 0; t < n; t++ {
			w := c.lib.Classes[t].Avg.Bitmap.Width
			sw := c.setwidth[t]
			if sw < 1 {
				// A degenerate one-pixel template would not advance.
				continue
			}
			if x+w > c.size || x+sw >= c.size {
				continue
			}
			cand := scores[x] + c.templateScore(t, x)
			if cand > scores[x+sw] {
				scores[x+sw] = cand
				pred[x+sw] = t
			}
		}
	}

	// Terminate at the best score among the last max-template-width
	// positions: the frontier of any maximal decoding lands there.
	lo := c.size - c.lib.MaxTemplateWidth()
	if lo < 0 {
		lo = 0
	}
	end := lo + floats.MaxIdx(scores[lo:])
	if math.IsInf(scores[end], -1) {
		return nil, ErrNoValidPath
	}

	return c.backtrack(pred, end), nil
}

// backtrack walks predecessors from the terminal position back to 0 and
// returns the decoded segments in reading order.
func (c *Context) backtrack(pred []int, end int) []Segment {
	var segs []Segment
	x := end
	for x > 0 {
		t := pred[x]
		if t < 0 {
			break
		}
		start := x - c.setwidth[t]
		segs = append(segs, c.segmentAt(t, start))
		x = start
	}

	// Emitted right to left; reverse for reading order.
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	return segs
}

// segmentAt materializes the result record for class t placed at column x.
func (c *Context) segmentAt(t, x int) Segment {
	cls := c.lib.Classes[t]
	w := cls.Avg.Bitmap.Width
	h := cls.Avg.Bitmap.Height
	shift := c.bestShift[t][x]
	top := c.alignRow(t, x) + shift

	return Segment{
		Class:  t,
		Label:  cls.Label,
		X:      x,
		YShift: shift,
		Width:  w,
		// The box claims the setwidth extent, so consecutive boxes
		// stay disjoint even though full templates overlap slightly.
		Box:    geometry.NewRectInt(x, top, c.setwidth[t], h),
		Score:  c.templateScore(t, x),
		Sample: -1,
	}
}
