package bitmap

import (
	"fmt"
	"image"
	"image/color"
)

// DefaultThreshold is the binarization threshold used when the caller has
// no better estimate. Printed text on paper separates well at mid-gray.
const DefaultThreshold = 128

// Binarize converts an arbitrary-depth image to a 1-bit bitmap.
// A pixel whose gray value is below the threshold becomes foreground,
// matching dark ink on a light page.
func Binarize(img image.Image, threshold uint8) (*Bitmap, error) {
	bounds := img.Bounds()
	bm, err := New(bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, fmt.Errorf("failed to binarize image: %w", err)
	}

	// Fast path for grayscale input, the common case for scanned lines.
	if gray, ok := img.(*image.Gray); ok {
		for y := 0; y < bm.Height; y++ {
			row := gray.Pix[y*gray.Stride : y*gray.Stride+bm.Width]
			for x, v := range row {
				if v < threshold {
					bm.Set(x, y)
				}
			}
		}
		return bm, nil
	}

	for y := 0; y < bm.Height; y++ {
		for x := 0; x < bm.Width; x++ {
			c := color.GrayModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray)
			if c.Y < threshold {
				bm.Set(x, y)
			}
		}
	}
	return bm, nil
}

// ToImage renders the bitmap as an 8-bit grayscale image with foreground
// black, for inspection and for handing to external OCR engines.
func (b *Bitmap) ToImage() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, b.Width, b.Height))
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			if !b.Get(x, y) {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}
