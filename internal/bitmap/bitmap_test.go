package bitmap

import (
	"encoding/json"
	"image"
	"image/color"
	"testing"

	"linedecode/pkg/geometry"
)

// buildBitmap sets pixels from a string grid: '#' is foreground.
func buildBitmap(t *testing.T, rows []string) *Bitmap {
	t.Helper()
	bm, err := New(len(rows[0]), len(rows))
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

func TestCountMatchesNaive(t *testing.T) {
	// Width 13 exercises the partial last byte of each row.
	bm, err := New(13, 5)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	want := 0
	for y := 0; y < 5; y++ {
		for x := 0; x < 13; x++ {
			if (x*7+y*3)%4 == 0 {
				bm.Set(x, y)
				want++
			}
		}
	}

	if got := bm.Count(); got != want {
		t.Errorf("Count = %d, want %d", got, want)
	}

	naive := 0
	for y := 0; y < 5; y++ {
		for x := 0; x < 13; x++ {
			if bm.Get(x, y) {
				naive++
			}
		}
	}
	if naive != want {
		t.Errorf("Get-based count = %d, want %d", naive, want)
	}
}

func TestSetOutOfRangeIgnored(t *testing.T) {
	bm, err := New(10, 4)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	bm.Set(-1, 0)
	bm.Set(10, 0)
	bm.Set(0, -1)
	bm.Set(0, 4)
	if got := bm.Count(); got != 0 {
		t.Errorf("Count after out-of-range sets = %d, want 0", got)
	}
	if bm.Get(10, 0) || bm.Get(-1, 0) {
		t.Error("out-of-range Get should read background")
	}
}

func TestCentroid(t *testing.T) {
	tests := []struct {
		name string
		rows []string
		want geometry.Point2D
	}{
		{
			name: "single pixel",
			rows: []string{
				"....",
				".#..",
				"....",
			},
			want: geometry.Point2D{X: 1, Y: 1},
		},
		{
			name: "symmetric pair",
			rows: []string{
				"#..#",
				"....",
			},
			want: geometry.Point2D{X: 1.5, Y: 0},
		},
		{
			name: "empty reports center",
			rows: []string{
				"....",
				"....",
				"....",
			},
			want: geometry.Point2D{X: 1.5, Y: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bm := buildBitmap(t, tt.rows)
			got := bm.Centroid()
			if got != tt.want {
				t.Errorf("Centroid = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestColumnStats(t *testing.T) {
	bm := buildBitmap(t, []string{
		"#..",
		"#.#",
		"..#",
		"#..",
	})

	sum, moment := bm.ColumnStats()

	wantSum := []int{3, 0, 2}
	for x, w := range wantSum {
		if sum[x] != w {
			t.Errorf("sum[%d] = %d, want %d", x, sum[x], w)
		}
	}

	// Column 0 has foreground at rows 0, 1, 3.
	if got, want := moment[0], 4.0/3.0; got != want {
		t.Errorf("moment[0] = %v, want %v", got, want)
	}
	if moment[1] != 0 {
		t.Errorf("moment[1] = %v, want 0 for empty column", moment[1])
	}
	if got, want := moment[2], 1.5; got != want {
		t.Errorf("moment[2] = %v, want %v", got, want)
	}
}

// naiveOverlap is the reference implementation OverlapCount must agree with.
func naiveOverlap(b, tpl *Bitmap, dx, dy int) int {
	n := 0
	for y := 0; y < tpl.Height; y++ {
		for x := 0; x < tpl.Width; x++ {
			if tpl.Get(x, y) && b.Get(x+dx, y+dy) {
				n++
			}
		}
	}
	return n
}

func TestOverlapCountMatchesNaive(t *testing.T) {
	// Both widths avoid byte alignment on purpose.
	line, err := New(29, 11)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	for y := 0; y < 11; y++ {
		for x := 0; x < 29; x++ {
			if (x+2*y)%3 == 0 {
				line.Set(x, y)
			}
		}
	}

	tpl, err := New(10, 7)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	for y := 0; y < 7; y++ {
		for x := 0; x < 10; x++ {
			if (3*x+y)%4 != 0 {
				tpl.Set(x, y)
			}
		}
	}

	for dx := 0; dx <= 25; dx++ {
		for dy := -3; dy <= 8; dy++ {
			got := line.OverlapCount(tpl, dx, dy)
			want := naiveOverlap(line, tpl, dx, dy)
			if got != want {
				t.Fatalf("OverlapCount(dx=%d, dy=%d) = %d, want %d", dx, dy, got, want)
			}
		}
	}
}

func TestOverlapCountExactPlacement(t *testing.T) {
	tpl := buildBitmap(t, []string{
		"##.",
		".##",
	})
	line, err := New(20, 6)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	// Stamp the template at (7, 2).
	for y := 0; y < tpl.Height; y++ {
		for x := 0; x < tpl.Width; x++ {
			if tpl.Get(x, y) {
				line.Set(x+7, y+2)
			}
		}
	}

	if got := line.OverlapCount(tpl, 7, 2); got != tpl.Count() {
		t.Errorf("exact placement overlap = %d, want %d", got, tpl.Count())
	}
	if got := line.OverlapCount(tpl, 8, 2); got >= tpl.Count() {
		t.Errorf("offset placement overlap = %d, want < %d", got, tpl.Count())
	}
}

func TestSubBitmap(t *testing.T) {
	bm := buildBitmap(t, []string{
		"#.#.#",
		".###.",
		"#...#",
	})

	sub, err := bm.SubBitmap(geometry.NewRectInt(1, 0, 3, 3))
	if err != nil {
		t.Fatalf("SubBitmap failed: %v", err)
	}
	want := buildBitmap(t, []string{
		".#.",
		"###",
		"...",
	})
	if !sub.Equal(want) {
		t.Error("SubBitmap content mismatch")
	}

	// Region extending past the edge reads background.
	sub, err = bm.SubBitmap(geometry.NewRectInt(3, 1, 4, 4))
	if err != nil {
		t.Fatalf("SubBitmap failed: %v", err)
	}
	if sub.Width != 4 || sub.Height != 4 {
		t.Errorf("clipped sub dims = %dx%d, want 4x4", sub.Width, sub.Height)
	}
	if !sub.Get(0, 0) {
		t.Error("sub(0,0) should be foreground (from (3,1))")
	}
	if sub.Get(2, 2) {
		t.Error("pixels past the source edge should read background")
	}
}

func TestBinarize(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 2))
	img.SetGray(0, 0, color.Gray{Y: 0})    // ink
	img.SetGray(1, 0, color.Gray{Y: 127})  // ink at threshold 128
	img.SetGray(2, 0, color.Gray{Y: 128})  // background
	img.SetGray(3, 0, color.Gray{Y: 255})  // background
	img.SetGray(0, 1, color.Gray{Y: 255})
	img.SetGray(1, 1, color.Gray{Y: 10})
	img.SetGray(2, 1, color.Gray{Y: 200})
	img.SetGray(3, 1, color.Gray{Y: 50})

	bm, err := Binarize(img, 128)
	if err != nil {
		t.Fatalf("Binarize failed: %v", err)
	}

	want := buildBitmap(t, []string{
		"##..",
		".#.#",
	})
	if !bm.Equal(want) {
		t.Error("Binarize content mismatch")
	}
}

func TestBinarizeRoundTripThroughImage(t *testing.T) {
	bm := buildBitmap(t, []string{
		"#..#.",
		".##..",
		"#...#",
	})
	back, err := Binarize(bm.ToImage(), 128)
	if err != nil {
		t.Fatalf("Binarize failed: %v", err)
	}
	if !back.Equal(bm) {
		t.Error("ToImage/Binarize round trip changed pixels")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	bm := buildBitmap(t, []string{
		"#.#.#.#.#.#",
		".#.#.#.#.#.",
		"###....####",
	})

	data, err := json.Marshal(bm)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var back Bitmap
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !back.Equal(bm) {
		t.Error("JSON round trip changed pixels")
	}
}

func TestLookupTables(t *testing.T) {
	for b := 0; b < 256; b++ {
		count, moment := 0, 0
		for bit := 0; bit < 8; bit++ {
			if b&(0x80>>bit) != 0 {
				count++
				moment += bit
			}
		}
		if countTab[b] != count {
			t.Fatalf("countTab[%d] = %d, want %d", b, countTab[b], count)
		}
		if momentTab[b] != moment {
			t.Fatalf("momentTab[%d] = %d, want %d", b, momentTab[b], moment)
		}
	}
}
