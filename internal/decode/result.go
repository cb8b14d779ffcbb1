package decode

import (
	"strings"

	"linedecode/internal/bitmap"
	"linedecode/internal/template"
)

// DecodeLine decodes one binarized line against a trained library,
// optionally rescoring against raw samples. Convenience wrapper around
// Context for callers that do not need the intermediate arrays.
func DecodeLine(lib *template.Library, line *bitmap.Bitmap, rescore bool) ([]Segment, error) {
	ctx, err := NewContext(lib, line, TwoLevel)
	if err != nil {
		return nil, err
	}
	segs, err := ctx.Decode()
	if err != nil {
		return nil, err
	}
	if rescore {
		if err := ctx.Rescore(segs); err != nil {
			return nil, err
		}
	}
	return segs, nil
}

// Text concatenates the segment labels into the recognized line text.
func Text(segs []Segment) string {
	var sb strings.Builder
	for _, s := range segs {
		sb.WriteString(s.Label)
	}
	return sb.String()
}

// MeanScore returns the average segment score, or 0 for an empty path.
func MeanScore(segs []Segment) float64 {
	if len(segs) == 0 {
		return 0
	}
	total := 0.0
	for _, s := range segs {
		total += s.Score
	}
	return total / float64(len(segs))
}
