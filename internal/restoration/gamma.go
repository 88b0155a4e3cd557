package restoration

import (
	"fmt"
	"math"

	"photo-restorer/internal/opencv/safe"
)

// DefaultGamma brightens shadows when an image is judged too dark.
const DefaultGamma = 1.5

// GammaTable builds the 256-entry power-law table for gamma. Entry i is
// ((i/255)^(1/gamma))*255, clamped and rounded.
func GammaTable(gamma float64) ([256]uint8, error) {
	var table [256]uint8
	if gamma <= 0 || math.IsNaN(gamma) || math.IsInf(gamma, 0) {
		return table, fmt.Errorf("%w: gamma must be a finite value > 0, got %v", ErrInvalidParameter, gamma)
	}

	inv := 1.0 / gamma
	for i := range table {
		table[i] = toUint8(math.Pow(float64(i)/255.0, inv) * 255.0)
	}
	return table, nil
}

// ApplyGamma maps every component through GammaTable(gamma). Gamma above
// one brightens shadows. The input is left untouched.
func ApplyGamma(img *safe.Mat, gamma float64) (*safe.Mat, error) {
	if err := validateColorImage(img, "gamma correction"); err != nil {
		return nil, err
	}

	table, err := GammaTable(gamma)
	if err != nil {
		return nil, err
	}

	return applyLUT(img, table)
}
