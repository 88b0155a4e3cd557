package restoration

import (
	"fmt"
	"image"

	"photo-restorer/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// DenoiseKernelSize is the fixed Gaussian window; sigma is derived from it.
const DenoiseKernelSize = 5

// Denoise smooths img with a DenoiseKernelSize Gaussian window.
func Denoise(img *safe.Mat) (*safe.Mat, error) {
	if err := validateColorImage(img, "noise reduction"); err != nil {
		return nil, err
	}

	return gaussianBlur(img, image.Pt(DenoiseKernelSize, DenoiseKernelSize), 0)
}

// gaussianBlur with sigma 0 derives sigma from ksize; with ksize (0,0)
// the window is derived from sigma instead.
func gaussianBlur(src *safe.Mat, ksize image.Point, sigma float64) (*safe.Mat, error) {
	dst, err := safe.NewMat(src.Rows(), src.Cols(), src.Type())
	if err != nil {
		return nil, fmt.Errorf("failed to create destination Mat: %w", err)
	}

	dstMat := dst.GetMat()
	gocv.GaussianBlur(src.GetMat(), &dstMat, ksize, sigma, sigma, gocv.BorderDefault)

	return dst, nil
}
