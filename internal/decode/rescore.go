package decode

import (
	"fmt"
	"math"

	"linedecode/internal/template"
	"linedecode/pkg/geometry"
)

// Rescore refines each decoded segment by searching the class's raw
// (non-averaged) samples for the best individual match, recording which
// sample won and a normalized similarity in [0, 1]. Segmentation is a
// strictly prior decision: class, x location and width never change here,
// only the sample index, vertical shift and score. Rescoring the same
// path twice yields identical results.
func (c *Context) Rescore(segs []Segment) error {
	for i := range segs {
		if err := c.rescoreSegment(&segs[i]); err != nil {
			return err
		}
	}
	return nil
}

func (c *Context) rescoreSegment(seg *Segment) error {
	if seg.Class < 0 || seg.Class >= c.lib.Len() {
		return fmt.Errorf("%w: %d of %d", template.ErrInvalidClass, seg.Class, c.lib.Len())
	}
	cls := c.lib.Classes[seg.Class]

	// The segment sub-bitmap spans the full line height at the decoded
	// x extent; vertical alignment is re-derived from centroids below.
	sub, err := c.line.SubBitmap(geometry.NewRectInt(seg.X, 0, seg.Width, c.line.Height))
	if err != nil {
		return fmt.Errorf("failed to extract segment at x=%d: %w", seg.X, err)
	}
	subCentroid := sub.Centroid()
	subArea := sub.Count()

	bestScore := -1.0
	bestSample := -1
	bestShift := 0
	for si, sample := range cls.Samples {
		base := int(math.Round(subCentroid.Y - sample.Centroid.Y))
		for d := -shiftRange; d <= shiftRange; d++ {
			total := subArea + sample.Area
			if total == 0 {
				continue
			}
			ov := sub.OverlapCount(sample.Bitmap, 0, base+d)
			score := 2 * float64(ov) / float64(total)
			if score > bestScore {
				bestScore = score
				bestSample = si
				bestShift = d
			}
		}
	}

	if bestSample >= 0 {
		seg.Sample = bestSample
		seg.YShift = bestShift
		seg.Score = bestScore
	}
	return nil
}
