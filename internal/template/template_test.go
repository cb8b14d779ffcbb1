package template

import (
	"errors"
	"path/filepath"
	"testing"

	"linedecode/internal/bitmap"
)

func sampleBitmap(t *testing.T, rows []string) *bitmap.Bitmap {
	t.Helper()
	bm, err := bitmap.New(len(rows[0]), len(rows))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	for y, row := range rows {
		for x, ch := range row {
			if ch == '#' {
				bm.Set(x, y)
			}
		}
	}
	return bm
}

func TestNewGlyph(t *testing.T) {
	bm := sampleBitmap(t, []string{
		"#..#",
		"....",
	})
	g := NewGlyph(bm)
	if g.Area != 2 {
		t.Errorf("Area = %d, want 2", g.Area)
	}
	if g.Centroid.X != 1.5 || g.Centroid.Y != 0 {
		t.Errorf("Centroid = %+v, want (1.5, 0)", g.Centroid)
	}
}

func TestTrainerSingleSample(t *testing.T) {
	bm := sampleBitmap(t, []string{
		"##.",
		".##",
		"#.#",
	})

	tr := NewTrainer()
	if err := tr.AddSample("A", bm); err != nil {
		t.Fatalf("AddSample failed: %v", err)
	}

	lib, err := tr.Finish()
	if err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	if !lib.TrainingDone() {
		t.Error("library should be trained after Finish")
	}
	if lib.Len() != 1 {
		t.Fatalf("Len = %d, want 1", lib.Len())
	}

	cls := lib.Classes[0]
	if cls.Label != "A" || cls.Index != 0 {
		t.Errorf("class = %q/%d, want A/0", cls.Label, cls.Index)
	}
	if len(cls.Samples) != 1 {
		t.Fatalf("samples = %d, want 1", len(cls.Samples))
	}
	// With one sample the average is the sample itself.
	if !cls.Avg.Bitmap.Equal(bm) {
		t.Error("single-sample average should equal the sample")
	}
}

func TestTrainerMajorityAverage(t *testing.T) {
	// Three identical samples plus one with an extra stray pixel: the
	// stray pixel must not survive the majority vote.
	base := []string{
		"####",
		"#..#",
		"####",
	}
	stray := []string{
		"####",
		"####",
		"####",
	}

	tr := NewTrainer()
	for i := 0; i < 3; i++ {
		if err := tr.AddSample("O", sampleBitmap(t, base)); err != nil {
			t.Fatalf("AddSample failed: %v", err)
		}
	}
	if err := tr.AddSample("O", sampleBitmap(t, stray)); err != nil {
		t.Fatalf("AddSample failed: %v", err)
	}

	lib, err := tr.Finish()
	if err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	avg := lib.Classes[0].Avg
	// All samples share dimensions and centroid, so the canvas aligns
	// with the samples and the average equals the 3-of-4 majority.
	if !avg.Bitmap.Equal(sampleBitmap(t, base)) {
		t.Error("majority average should drop 1-of-4 pixels")
	}
	if avg.Area != 10 {
		t.Errorf("avg area = %d, want 10", avg.Area)
	}
}

func TestTrainerClassOrder(t *testing.T) {
	bm := sampleBitmap(t, []string{"##", "##"})

	tr := NewTrainer()
	for _, label := range []string{"B", "A", "C", "A"} {
		if err := tr.AddSample(label, bm); err != nil {
			t.Fatalf("AddSample failed: %v", err)
		}
	}

	lib, err := tr.Finish()
	if err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	// First-seen order, not sorted.
	wantLabels := []string{"B", "A", "C"}
	if lib.Len() != len(wantLabels) {
		t.Fatalf("Len = %d, want %d", lib.Len(), len(wantLabels))
	}
	for i, want := range wantLabels {
		if lib.Classes[i].Label != want {
			t.Errorf("class %d label = %q, want %q", i, lib.Classes[i].Label, want)
		}
		if lib.Classes[i].Index != i {
			t.Errorf("class %d index = %d", i, lib.Classes[i].Index)
		}
	}
	if len(lib.FindLabel("A").Samples) != 2 {
		t.Errorf("A samples = %d, want 2", len(lib.FindLabel("A").Samples))
	}
}

func TestFinishEmptyTrainer(t *testing.T) {
	_, err := NewTrainer().Finish()
	if !errors.Is(err, ErrNoTemplates) {
		t.Errorf("Finish on empty trainer = %v, want ErrNoTemplates", err)
	}
}

func TestLibraryClassBounds(t *testing.T) {
	lib := &Library{Done: true}
	if _, err := lib.Class(0); !errors.Is(err, ErrInvalidClass) {
		t.Errorf("Class(0) on empty library = %v, want ErrInvalidClass", err)
	}
}

func TestPersistRoundTrip(t *testing.T) {
	tr := NewTrainer()
	if err := tr.AddSample("X", sampleBitmap(t, []string{"#.#", ".#.", "#.#"})); err != nil {
		t.Fatalf("AddSample failed: %v", err)
	}
	if err := tr.AddSample("I", sampleBitmap(t, []string{".#.", ".#.", ".#."})); err != nil {
		t.Fatalf("AddSample failed: %v", err)
	}
	lib, err := tr.Finish()
	if err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "templates.json")
	if err := lib.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	back, err := LoadLibrary(path)
	if err != nil {
		t.Fatalf("LoadLibrary failed: %v", err)
	}

	if !back.TrainingDone() {
		t.Error("loaded library lost trained flag")
	}
	if back.Len() != lib.Len() {
		t.Fatalf("loaded Len = %d, want %d", back.Len(), lib.Len())
	}
	for i, c := range lib.Classes {
		bc := back.Classes[i]
		if bc.Label != c.Label || bc.Index != i {
			t.Errorf("class %d = %q/%d, want %q/%d", i, bc.Label, bc.Index, c.Label, i)
		}
		if !bc.Avg.Bitmap.Equal(c.Avg.Bitmap) {
			t.Errorf("class %d averaged bitmap changed", i)
		}
		if bc.Avg.Area != c.Avg.Area || bc.Avg.Centroid != c.Avg.Centroid {
			t.Errorf("class %d glyph metadata changed", i)
		}
		if len(bc.Samples) != len(c.Samples) {
			t.Errorf("class %d samples = %d, want %d", i, len(bc.Samples), len(c.Samples))
		}
	}
}

func TestMaxTemplateWidth(t *testing.T) {
	tr := NewTrainer()
	if err := tr.AddSample("n", sampleBitmap(t, []string{"###", "#.#"})); err != nil {
		t.Fatalf("AddSample failed: %v", err)
	}
	if err := tr.AddSample("m", sampleBitmap(t, []string{"#####", "#.#.#"})); err != nil {
		t.Fatalf("AddSample failed: %v", err)
	}
	lib, err := tr.Finish()
	if err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	if got := lib.MaxTemplateWidth(); got != 5 {
		t.Errorf("MaxTemplateWidth = %d, want 5", got)
	}
}
