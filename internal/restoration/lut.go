package restoration

import (
	"fmt"
	"math"

	"photo-restorer/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// applyLUT maps every component of img through table.
func applyLUT(img *safe.Mat, table [256]uint8) (*safe.Mat, error) {
	lut, err := safe.NewMatFromBytes(1, 256, gocv.MatTypeCV8UC1, table[:])
	if err != nil {
		return nil, fmt.Errorf("failed to create lookup table: %w", err)
	}
	defer lut.Close()

	dst, err := safe.NewMat(img.Rows(), img.Cols(), img.Type())
	if err != nil {
		return nil, fmt.Errorf("failed to create destination Mat: %w", err)
	}

	dstMat := dst.GetMat()
	gocv.LUT(img.GetMat(), lut.GetMat(), &dstMat)

	return dst, nil
}

// toUint8 clamps v to [0,255] and rounds to the nearest integer.
func toUint8(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.Round(v))
}
