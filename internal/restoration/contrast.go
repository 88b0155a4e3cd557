package restoration

import (
	"errors"
	"fmt"
	"math"

	"photo-restorer/internal/opencv/safe"
)

const (
	LowPercentile  = 2.0
	HighPercentile = 98.0
)

// ContrastPercentiles returns the 2nd and 98th percentile of all pixel
// components, channels pooled, using linear interpolation between order
// statistics. When both coincide it still returns them, together with
// ErrDegenerateImage.
func ContrastPercentiles(img *safe.Mat) (float64, float64, error) {
	if err := validateColorImage(img, "contrast percentiles"); err != nil {
		return 0, 0, err
	}

	hist, n, err := histogram(img)
	if err != nil {
		return 0, 0, err
	}

	low := percentile(&hist, n, LowPercentile)
	high := percentile(&hist, n, HighPercentile)
	if high <= low {
		return low, high, fmt.Errorf("%w: p%.0f = p%.0f = %.2f", ErrDegenerateImage, LowPercentile, HighPercentile, low)
	}
	return low, high, nil
}

// StretchContrast maps the 2nd percentile to 0 and the 98th to 255,
// clamping values outside that range. Images whose percentiles coincide
// are returned as an unmodified copy.
func StretchContrast(img *safe.Mat) (*safe.Mat, error) {
	low, high, err := ContrastPercentiles(img)
	if errors.Is(err, ErrDegenerateImage) {
		return img.Clone()
	}
	if err != nil {
		return nil, err
	}

	return applyLUT(img, StretchTable(low, high))
}

// StretchTable rescales [low, high] onto [0, 255]. A collapsed range
// yields the identity table.
func StretchTable(low, high float64) [256]uint8 {
	var table [256]uint8
	span := high - low
	for i := range table {
		if span <= 0 {
			table[i] = uint8(i)
			continue
		}
		v := math.Min(math.Max(float64(i), low), high)
		table[i] = toUint8((v - low) / span * 255.0)
	}
	return table
}

func histogram(img *safe.Mat) ([256]int, int, error) {
	var hist [256]int
	data, err := img.DataUint8()
	if err != nil {
		return hist, 0, err
	}
	for _, v := range data {
		hist[v]++
	}
	return hist, len(data), nil
}

// percentile interpolates linearly between the two order statistics that
// bracket rank (n-1)*q/100.
func percentile(hist *[256]int, n int, q float64) float64 {
	if n == 0 {
		return 0
	}

	rank := float64(n-1) * q / 100.0
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	vlo := float64(orderStatistic(hist, lo))
	vhi := float64(orderStatistic(hist, hi))

	return vlo + (vhi-vlo)*(rank-float64(lo))
}

// orderStatistic returns the k-th smallest value (0-based).
func orderStatistic(hist *[256]int, k int) int {
	cum := 0
	for v, count := range hist {
		cum += count
		if cum > k {
			return v
		}
	}
	return 255
}
