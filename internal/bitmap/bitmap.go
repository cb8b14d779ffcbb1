// Package bitmap provides packed 1-bit bitmaps for binarized text images,
// with the pixel counting and alignment primitives the decoder is built on.
package bitmap

import (
	"encoding/json"
	"fmt"

	"linedecode/pkg/geometry"
)

// Per-byte lookup tables, built once at package init and shared read-only.
// countTab[b] is the number of set bits in b. momentTab[b] is the sum of the
// x offsets (0 = MSB, leftmost pixel) of the set bits in b, so that column
// centroids can be accumulated a byte at a time.
var (
	countTab  [256]int
	momentTab [256]int
)

func init() {
	for b := 0; b < 256; b++ {
		for bit := 0; bit < 8; bit++ {
			if b&(0x80>>bit) != 0 {
				countTab[b]++
				momentTab[b] += bit
			}
		}
	}
}

// Bitmap is a 1-bit image with byte-packed rows, MSB first.
// Foreground pixels are 1. Bits beyond Width in the last byte of each
// row are always zero; every mutator maintains that invariant.
type Bitmap struct {
	Width  int
	Height int

	rowBytes int
	data     []byte
}

// New creates an all-background bitmap of the given dimensions.
func New(width, height int) (*Bitmap, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid bitmap dimensions %dx%d", width, height)
	}
	rb := (width + 7) / 8
	return &Bitmap{
		Width:    width,
		Height:   height,
		rowBytes: rb,
		data:     make([]byte, rb*height),
	}, nil
}

// Get returns true if the pixel at (x, y) is foreground.
// Out-of-range coordinates read as background.
func (b *Bitmap) Get(x, y int) bool {
	if x < 0 || x >= b.Width || y < 0 || y >= b.Height {
		return false
	}
	return b.data[y*b.rowBytes+x>>3]&(0x80>>(x&7)) != 0
}

// Set marks the pixel at (x, y) as foreground. Out-of-range is a no-op.
func (b *Bitmap) Set(x, y int) {
	if x < 0 || x >= b.Width || y < 0 || y >= b.Height {
		return
	}
	b.data[y*b.rowBytes+x>>3] |= 0x80 >> (x & 7)
}

// Clear marks the pixel at (x, y) as background. Out-of-range is a no-op.
func (b *Bitmap) Clear(x, y int) {
	if x < 0 || x >= b.Width || y < 0 || y >= b.Height {
		return
	}
	b.data[y*b.rowBytes+x>>3] &^= 0x80 >> (x & 7)
}

// Count returns the number of foreground pixels.
func (b *Bitmap) Count() int {
	n := 0
	for _, v := range b.data {
		n += countTab[v]
	}
	return n
}

// Centroid returns the mean foreground pixel position.
// An all-background bitmap reports the geometric center.
func (b *Bitmap) Centroid() geometry.Point2D {
	var sumX, sumY, n int
	for y := 0; y < b.Height; y++ {
		row := b.data[y*b.rowBytes : (y+1)*b.rowBytes]
		for bx, v := range row {
			if v == 0 {
				continue
			}
			c := countTab[v]
			sumX += 8*bx*c + momentTab[v]
			sumY += y * c
			n += c
		}
	}
	if n == 0 {
		return geometry.Point2D{X: float64(b.Width-1) / 2, Y: float64(b.Height-1) / 2}
	}
	return geometry.Point2D{X: float64(sumX) / float64(n), Y: float64(sumY) / float64(n)}
}

// ColumnStats computes, in one pass, the foreground pixel count per column
// and the mean foreground row index per column. Columns with no foreground
// report a moment of zero.
func (b *Bitmap) ColumnStats() (sum []int, moment []float64) {
	sum = make([]int, b.Width)
	rowSum := make([]int, b.Width)
	for y := 0; y < b.Height; y++ {
		base := y * b.rowBytes
		for bx := 0; bx < b.rowBytes; bx++ {
			v := b.data[base+bx]
			if v == 0 {
				continue
			}
			for bit := 0; bit < 8; bit++ {
				if v&(0x80>>bit) != 0 {
					x := 8*bx + bit
					sum[x]++
					rowSum[x] += y
				}
			}
		}
	}
	moment = make([]float64, b.Width)
	for x := 0; x < b.Width; x++ {
		if sum[x] > 0 {
			moment[x] = float64(rowSum[x]) / float64(sum[x])
		}
	}
	return sum, moment
}

// rowChunk reads 8 bits of row y starting at pixel x. Bits outside the
// bitmap read as zero, which also covers the zero padding past Width.
func (b *Bitmap) rowChunk(x, y int) byte {
	if y < 0 || y >= b.Height || x >= b.Width {
		return 0
	}
	base := y * b.rowBytes
	bx := x >> 3
	sh := x & 7
	var chunk byte
	if bx >= 0 && bx < b.rowBytes {
		chunk = b.data[base+bx] << sh
	}
	if sh != 0 && bx+1 >= 0 && bx+1 < b.rowBytes {
		chunk |= b.data[base+bx+1] >> (8 - sh)
	}
	return chunk
}

// OverlapCount counts the foreground pixels shared by t and b when t is
// placed with its top-left corner at (dx, dy) on b. The placement is
// clipped: pixels of t falling outside b contribute nothing. dx must be
// non-negative; dy may be negative.
func (b *Bitmap) OverlapCount(t *Bitmap, dx, dy int) int {
	n := 0
	for ty := 0; ty < t.Height; ty++ {
		iy := ty + dy
		if iy < 0 || iy >= b.Height {
			continue
		}
		tBase := ty * t.rowBytes
		for tb := 0; tb < t.rowBytes; tb++ {
			tv := t.data[tBase+tb]
			if tv == 0 {
				continue
			}
			n += countTab[tv&b.rowChunk(dx+8*tb, iy)]
		}
	}
	return n
}

// SubBitmap extracts the region r of b into a new bitmap. The region is
// clipped to b; pixels outside b read as background.
func (b *Bitmap) SubBitmap(r geometry.RectInt) (*Bitmap, error) {
	sub, err := New(r.Width, r.Height)
	if err != nil {
		return nil, fmt.Errorf("sub-bitmap %v: %w", r, err)
	}
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			if b.Get(r.X+x, r.Y+y) {
				sub.Set(x, y)
			}
		}
	}
	return sub, nil
}

// Clone returns a deep copy of b.
func (b *Bitmap) Clone() *Bitmap {
	c := *b
	c.data = make([]byte, len(b.data))
	copy(c.data, b.data)
	return &c
}

// Equal reports whether two bitmaps have identical dimensions and pixels.
func (b *Bitmap) Equal(other *Bitmap) bool {
	if b.Width != other.Width || b.Height != other.Height {
		return false
	}
	for i := range b.data {
		if b.data[i] != other.data[i] {
			return false
		}
	}
	return true
}

// bitmapJSON is the persisted form of a Bitmap. Data is the packed rows,
// which encoding/json base64-encodes.
type bitmapJSON struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Data   []byte `json:"data"`
}

// MarshalJSON implements json.Marshaler.
func (b *Bitmap) MarshalJSON() ([]byte, error) {
	return json.Marshal(bitmapJSON{Width: b.Width, Height: b.Height, Data: b.data})
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *Bitmap) UnmarshalJSON(data []byte) error {
	var bj bitmapJSON
	if err := json.Unmarshal(data, &bj); err != nil {
		return fmt.Errorf("failed to parse bitmap: %w", err)
	}
	nb, err := New(bj.Width, bj.Height)
	if err != nil {
		return fmt.Errorf("invalid persisted bitmap: %w", err)
	}
	if len(bj.Data) != len(nb.data) {
		return fmt.Errorf("bitmap data length %d does not match %dx%d", len(bj.Data), bj.Width, bj.Height)
	}
	copy(nb.data, bj.Data)
	*b = *nb
	return nil
}
