package decode

import (
	"fmt"
	"image"
	"math"

	"linedecode/internal/bitmap"
	"linedecode/internal/template"
)

// setwidthFraction is the horizontal advance after placing a template,
// as a fraction of the template width. Character spacing in machine-set
// text is slightly narrower than the glyph extent.
const setwidthFraction = 0.95

// shiftRange is the vertical shift search radius around the centroid
// alignment, in pixels.
const shiftRange = 1

// Context holds all per-invocation decoding state for one line image.
// A Context is owned exclusively by the decode call that created it and
// must not be shared; the library it references stays read-only, so
// concurrent decodes against one library each build their own Context.
type Context struct {
	lib   *template.Library
	line  *bitmap.Bitmap
	size  int
	model ChannelModel

	// Input column statistics and their prefix sums.
	colSum    []int
	colMoment []float64
	prefCount []int
	prefRow   []float64

	// Per-class decoding arrays. matchCount[t] has one entry per legal
	// start position of class t; it is nil when the template is wider
	// than the line.
	setwidth   []int
	matchCount [][]int
	bestShift  [][]int

	// Channel coefficients, identical per class under the two-level model.
	beta  []float64
	gamma []float64
}

// NewContext builds the decoding context for one binarized line.
// The library must be trained and non-empty.
func NewContext(lib *template.Library, line *bitmap.Bitmap, model ChannelModel) (*Context, error) {
	if !lib.TrainingDone() {
		return nil, template.ErrTrainingNotFinished
	}
	if lib.Len() == 0 {
		return nil, template.ErrNoTemplates
	}

	c := &Context{
		lib:   lib,
		line:  line.Clone(),
		size:  line.Width,
		model: model,
	}

	c.computeColumnStats()
	c.computeChannelCoefficients()
	if err := c.computeMatchArrays(); err != nil {
		return nil, err
	}
	return c, nil
}

// NewContextFromImage binarizes an arbitrary-depth line image at the
// given threshold and builds the decoding context from the result.
func NewContextFromImage(lib *template.Library, img image.Image, threshold uint8, model ChannelModel) (*Context, error) {
	bm, err := bitmap.Binarize(img, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare line image: %w", err)
	}
	return NewContext(lib, bm, model)
}

// Size returns the line width in pixels.
func (c *Context) Size() int {
	return c.size
}

// Line returns the context's copy of the binarized line.
func (c *Context) Line() *bitmap.Bitmap {
	return c.line
}

// computeColumnStats fills the per-column foreground count and mean row
// arrays in one pass, plus prefix sums for windowed centroid queries.
func (c *Context) computeColumnStats() {
	c.colSum, c.colMoment = c.line.ColumnStats()

	c.prefCount = make([]int, c.size+1)
	c.prefRow = make([]float64, c.size+1)
	for x := 0; x < c.size; x++ {
		c.prefCount[x+1] = c.prefCount[x] + c.colSum[x]
		c.prefRow[x+1] = c.prefRow[x] + float64(c.colSum[x])*c.colMoment[x]
	}
}

// computeChannelCoefficients derives beta/gamma for every class from the
// channel model. The two-level model uses one pair for all classes; the
// arrays keep the trellis update uniform if per-class models appear.
func (c *Context) computeChannelCoefficients() {
	beta, gamma := c.model.Coefficients()
	n := c.lib.Len()
	c.beta = make([]float64, n)
	c.gamma = make([]float64, n)
	for t := 0; t < n; t++ {
		c.beta[t] = beta
		c.gamma[t] = gamma
	}
}

// alignRow returns the vertical placement of class t's template at start
// column x before shift search: the row offset that aligns the template
// centroid with the centroid of the input window [x, x+width).
func (c *Context) alignRow(t, x int) int {
	avg := c.lib.Classes[t].Avg
	w := avg.Bitmap.Width
	count := c.prefCount[x+w] - c.prefCount[x]
	if count == 0 {
		return 0
	}
	meanRow := (c.prefRow[x+w] - c.prefRow[x]) / float64(count)
	return int(math.Round(meanRow - avg.Centroid.Y))
}

// computeMatchArrays fills, for every class and every legal start column,
// the best foreground overlap achievable within the vertical shift search
// window and the shift that achieves it.
func (c *Context) computeMatchArrays() error {
	n := c.lib.Len()
	c.setwidth = make([]int, n)
	c.matchCount = make([][]int, n)
	c.bestShift = make([][]int, n)

	for t := 0; t < n; t++ {
		avg := c.lib.Classes[t].Avg
		if avg == nil {
			return fmt.Errorf("%w: class %q has no averaged template", template.ErrTrainingNotFinished, c.lib.Classes[t].Label)
		}
		w := avg.Bitmap.Width
		c.setwidth[t] = int(float64(w) * setwidthFraction)

		if w > c.size {
			continue
		}
		positions := c.size - w + 1
		c.matchCount[t] = make([]int, positions)
		c.bestShift[t] = make([]int, positions)

		for x := 0; x < positions; x++ {
			base := c.alignRow(t, x)
			best := -1
			bestShift := 0
			for d := -shiftRange; d <= shiftRange; d++ {
				ov := c.line.OverlapCount(avg.Bitmap, x, base+d)
				if ov > best {
					best = ov
					bestShift = d
				}
			}
			c.matchCount[t][x] = best
			c.bestShift[t][x] = bestShift
		}
	}
	return nil
}

// templateScore is the channel log score of placing class t at column x.
func (c *Context) templateScore(t, x int) float64 {
	return c.beta[t]*float64(c.matchCount[t][x]) + c.gamma[t]*float64(c.lib.Classes[t].Avg.Area)
}

// hasPlacements reports whether any class fits anywhere on the line.
func (c *Context) hasPlacements() bool {
	for _, m := range c.matchCount {
		if len(m) > 0 {
			return true
		}
	}
	return false
}
