// Package template holds trained character-shape templates for line decoding.
package template

import (
	"fmt"

	"linedecode/internal/bitmap"
	"linedecode/pkg/geometry"
)

// Glyph is a single character-shaped bitmap with its precomputed centroid
// and foreground pixel count.
type Glyph struct {
	Bitmap   *bitmap.Bitmap   `json:"bitmap"`
	Centroid geometry.Point2D `json:"centroid"`
	Area     int              `json:"area"`
}

// NewGlyph wraps a bitmap into a Glyph, computing centroid and area.
func NewGlyph(bm *bitmap.Bitmap) *Glyph {
	return &Glyph{
		Bitmap:   bm,
		Centroid: bm.Centroid(),
		Area:     bm.Count(),
	}
}

// Class is one character class: a text label, the averaged template
// derived from the raw samples, and the raw samples themselves.
type Class struct {
	Index   int      `json:"index"`
	Label   string   `json:"label"`
	Avg     *Glyph   `json:"avg"`
	Samples []*Glyph `json:"samples"`
}

// Library is an immutable, pre-trained collection of character classes.
// It is read-only during decoding, so any number of concurrent decode
// calls may share one library.
type Library struct {
	Classes []*Class `json:"classes"`
	Done    bool     `json:"training_done"`
}

// Len returns the number of character classes.
func (l *Library) Len() int {
	return len(l.Classes)
}

// TrainingDone reports whether training has been finished on this library.
func (l *Library) TrainingDone() bool {
	return l.Done
}

// Class returns the class at the given index.
func (l *Library) Class(i int) (*Class, error) {
	if i < 0 || i >= len(l.Classes) {
		return nil, fmt.Errorf("%w: %d of %d", ErrInvalidClass, i, len(l.Classes))
	}
	return l.Classes[i], nil
}

// FindLabel returns the class with the given label, or nil.
func (l *Library) FindLabel(label string) *Class {
	for _, c := range l.Classes {
		if c.Label == label {
			return c
		}
	}
	return nil
}

// MaxTemplateWidth returns the width of the widest averaged template.
func (l *Library) MaxTemplateWidth() int {
	maxWidth := 0
	for _, c := range l.Classes {
		if c.Avg != nil && c.Avg.Bitmap.Width > maxWidth {
			maxWidth = c.Avg.Bitmap.Width
		}
	}
	return maxWidth
}
