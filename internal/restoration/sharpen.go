package restoration

import (
	"fmt"
	"image"
	"math"

	"photo-restorer/internal/opencv/safe"

	"gocv.io/x/gocv"
)

const (
	DefaultSharpenSigma    = 1.0
	DefaultSharpenStrength = 1.5
)

// Sharpen applies unsharp masking with the default sigma and strength.
func Sharpen(img *safe.Mat) (*safe.Mat, error) {
	return SharpenWithStrength(img, DefaultSharpenSigma, DefaultSharpenStrength)
}

// SharpenWithStrength computes img*(1+strength) - blur(img, sigma)*strength
// with saturation to 8 bits.
func SharpenWithStrength(img *safe.Mat, sigma, strength float64) (*safe.Mat, error) {
	if err := validateColorImage(img, "sharpening"); err != nil {
		return nil, err
	}
	if !(sigma > 0) || math.IsInf(sigma, 0) {
		return nil, fmt.Errorf("%w: sigma must be a finite value > 0, got %v", ErrInvalidParameter, sigma)
	}
	if !(strength >= 0) || math.IsInf(strength, 0) {
		return nil, fmt.Errorf("%w: strength must be a finite value >= 0, got %v", ErrInvalidParameter, strength)
	}

	blurred, err := gaussianBlur(img, image.Pt(0, 0), sigma)
	if err != nil {
		return nil, err
	}
	defer blurred.Close()

	dst, err := safe.NewMat(img.Rows(), img.Cols(), img.Type())
	if err != nil {
		return nil, fmt.Errorf("failed to create destination Mat: %w", err)
	}

	dstMat := dst.GetMat()
	gocv.AddWeighted(img.GetMat(), 1+strength, blurred.GetMat(), -strength, 0, &dstMat)

	return dst, nil
}
