package template

import (
	"fmt"
	"math"

	"linedecode/internal/bitmap"
)

// Trainer accumulates labeled raw glyph samples and averages them into a
// trained Library. Classes are indexed in the order their labels are
// first seen, so repeated training runs over the same sample stream
// produce identical libraries.
type Trainer struct {
	classes []*Class
	byLabel map[string]*Class
}

// NewTrainer creates an empty trainer.
func NewTrainer() *Trainer {
	return &Trainer{
		byLabel: make(map[string]*Class),
	}
}

// AddSample adds one labeled raw sample bitmap to the trainer.
func (t *Trainer) AddSample(label string, bm *bitmap.Bitmap) error {
	if label == "" {
		return fmt.Errorf("empty sample label")
	}
	if bm == nil || bm.Width == 0 || bm.Height == 0 {
		return fmt.Errorf("empty sample bitmap for %q", label)
	}

	c := t.byLabel[label]
	if c == nil {
		c = &Class{Index: len(t.classes), Label: label}
		t.classes = append(t.classes, c)
		t.byLabel[label] = c
	}
	c.Samples = append(c.Samples, NewGlyph(bm.Clone()))
	return nil
}

// SampleCount returns the total number of samples added so far.
func (t *Trainer) SampleCount() int {
	n := 0
	for _, c := range t.classes {
		n += len(c.Samples)
	}
	return n
}

// ClassCount returns the number of distinct labels seen so far.
func (t *Trainer) ClassCount() int {
	return len(t.classes)
}

// Finish averages each class's samples into its averaged template and
// returns the trained library. The trainer must not be reused afterward.
func (t *Trainer) Finish() (*Library, error) {
	if len(t.classes) == 0 {
		return nil, ErrNoTemplates
	}
	for _, c := range t.classes {
		avg, err := averageSamples(c.Samples)
		if err != nil {
			return nil, fmt.Errorf("class %q: %w", c.Label, err)
		}
		c.Avg = avg
	}
	return &Library{Classes: t.classes, Done: true}, nil
}

// averageSamples builds the class-representative bitmap: samples are
// stacked with their centroids aligned, and a pixel is foreground in the
// average when it is foreground in at least half the samples.
func averageSamples(samples []*Glyph) (*Glyph, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("no samples to average")
	}
	if len(samples) == 1 {
		return NewGlyph(samples[0].Bitmap.Clone()), nil
	}

	// The average canvas is the largest sample extent; centroids are
	// aligned at its center.
	var w, h int
	for _, s := range samples {
		if s.Bitmap.Width > w {
			w = s.Bitmap.Width
		}
		if s.Bitmap.Height > h {
			h = s.Bitmap.Height
		}
	}
	cx := float64(w-1) / 2
	cy := float64(h-1) / 2

	counts := make([]int, w*h)
	for _, s := range samples {
		dx := int(math.Round(cx - s.Centroid.X))
		dy := int(math.Round(cy - s.Centroid.Y))
		for y := 0; y < s.Bitmap.Height; y++ {
			for x := 0; x < s.Bitmap.Width; x++ {
				if !s.Bitmap.Get(x, y) {
					continue
				}
				ax, ay := x+dx, y+dy
				if ax >= 0 && ax < w && ay >= 0 && ay < h {
					counts[ay*w+ax]++
				}
			}
		}
	}

	avg, err := bitmap.New(w, h)
	if err != nil {
		return nil, err
	}
	majority := (len(samples) + 1) / 2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if counts[y*w+x] >= majority {
				avg.Set(x, y)
			}
		}
	}
	return NewGlyph(avg), nil
}
