// Package preprocess prepares scanned line images for decoding.
// Scanner output is grayscale or color with uneven contrast; the decoder
// wants clean 1-bit dark-on-light lines.
package preprocess

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"linedecode/internal/bitmap"
)

// Params holds tunable preprocessing parameters.
type Params struct {
	// CLAHE parameters; a clip limit of 0 disables contrast enhancement
	CLAHEClipLimit float64 `json:"clahe_clip,omitempty"`
	CLAHETileSize  int     `json:"clahe_tile,omitempty"`

	// Use Otsu threshold instead of the fixed value
	UseOtsu bool `json:"use_otsu,omitempty"`

	// Fixed threshold value (0-255) - used when not Otsu
	FixedThreshold int `json:"fixed_threshold,omitempty"`

	// Morphological cleanup
	OpenIterations  int `json:"open,omitempty"`
	CloseIterations int `json:"close,omitempty"`
}

// DefaultParams returns sensible defaults for machine-printed text scans.
func DefaultParams() Params {
	return Params{
		CLAHEClipLimit: 2.0,
		CLAHETileSize:  8,
		UseOtsu:        true,
	}
}

// PrepareLine converts a scanned line image into a binary Mat with
// foreground (ink) white, ready for ToBitmap.
func PrepareLine(img gocv.Mat, params Params) (gocv.Mat, error) {
	if img.Empty() {
		return gocv.Mat{}, fmt.Errorf("empty line image")
	}

	// Convert to grayscale
	var gray gocv.Mat
	if img.Channels() > 1 {
		gray = gocv.NewMat()
		gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)
	} else {
		gray = img.Clone()
	}

	// Apply CLAHE if clip limit > 0
	var enhanced gocv.Mat
	if params.CLAHEClipLimit > 0 {
		tile := params.CLAHETileSize
		if tile < 2 {
			tile = 8
		}
		clahe := gocv.NewCLAHEWithParams(params.CLAHEClipLimit, image.Point{tile, tile})
		enhanced = gocv.NewMat()
		clahe.Apply(gray, &enhanced)
		clahe.Close()
		gray.Close()
	} else {
		enhanced = gray
	}

	// Threshold, inverted so that ink becomes white foreground
	binary := gocv.NewMat()
	if params.UseOtsu {
		gocv.Threshold(enhanced, &binary, 0, 255, gocv.ThresholdBinaryInv|gocv.ThresholdOtsu)
	} else {
		thresh := params.FixedThreshold
		if thresh <= 0 {
			thresh = bitmap.DefaultThreshold
		}
		gocv.Threshold(enhanced, &binary, float32(thresh), 255, gocv.ThresholdBinaryInv)
	}
	enhanced.Close()

	// Morphological cleanup: open removes speckle, close fills pinholes
	if params.OpenIterations > 0 || params.CloseIterations > 0 {
		kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{3, 3})
		for i := 0; i < params.OpenIterations; i++ {
			gocv.MorphologyEx(binary, &binary, gocv.MorphOpen, kernel)
		}
		for i := 0; i < params.CloseIterations; i++ {
			gocv.MorphologyEx(binary, &binary, gocv.MorphClose, kernel)
		}
		kernel.Close()
	}

	return binary, nil
}

// ToBitmap converts a binary Mat (foreground white) into a packed bitmap.
func ToBitmap(m gocv.Mat) (*bitmap.Bitmap, error) {
	if m.Empty() {
		return nil, fmt.Errorf("empty binary image")
	}
	bm, err := bitmap.New(m.Cols(), m.Rows())
	if err != nil {
		return nil, fmt.Errorf("failed to convert binary image: %w", err)
	}
	for y := 0; y < m.Rows(); y++ {
		for x := 0; x < m.Cols(); x++ {
			if m.GetUCharAt(y, x) > 0 {
				bm.Set(x, y)
			}
		}
	}
	return bm, nil
}

// LoadLine reads a line image file and runs the full preparation chain,
// returning the packed bitmap the decoder consumes.
func LoadLine(path string, params Params) (*bitmap.Bitmap, error) {
	img := gocv.IMRead(path, gocv.IMReadColor)
	if img.Empty() {
		return nil, fmt.Errorf("failed to read image %s", path)
	}
	defer img.Close()

	binary, err := PrepareLine(img, params)
	if err != nil {
		return nil, err
	}
	defer binary.Close()

	return ToBitmap(binary)
}
