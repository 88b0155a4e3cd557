package restoration

import (
	"fmt"
	"image"
	"math"

	"photo-restorer/internal/opencv/safe"

	"gocv.io/x/gocv"
)

const (
	DefaultDarkChannelWindow     = 15
	DefaultAtmosphericTopPercent = 0.001
	DefaultOmega                 = 0.95
	DefaultMinTransmission       = 0.1
)

// DehazeOptions parameterises the dark-channel prior.
type DehazeOptions struct {
	WindowSize      int     // erosion window for both dark channels
	TopPercent      float64 // fraction of haziest pixels averaged into the atmospheric light
	Omega           float64 // fraction of haze removed
	MinTransmission float64 // t0, floor applied before scene recovery
}

// DefaultDehazeOptions returns window 15, top fraction 0.001, omega 0.95
// and a transmission floor of 0.1.
func DefaultDehazeOptions() DehazeOptions {
	return DehazeOptions{
		WindowSize:      DefaultDarkChannelWindow,
		TopPercent:      DefaultAtmosphericTopPercent,
		Omega:           DefaultOmega,
		MinTransmission: DefaultMinTransmission,
	}
}

func (o DehazeOptions) Validate() error {
	switch {
	case o.WindowSize < 1:
		return fmt.Errorf("%w: window size must be >= 1, got %d", ErrInvalidParameter, o.WindowSize)
	case !(o.TopPercent > 0 && o.TopPercent <= 1):
		return fmt.Errorf("%w: top percent must be in (0, 1], got %v", ErrInvalidParameter, o.TopPercent)
	case !(o.Omega >= 0 && o.Omega <= 1):
		return fmt.Errorf("%w: omega must be in [0, 1], got %v", ErrInvalidParameter, o.Omega)
	case !(o.MinTransmission > 0 && o.MinTransmission <= 1):
		return fmt.Errorf("%w: minimum transmission must be in (0, 1], got %v", ErrInvalidParameter, o.MinTransmission)
	}
	return nil
}

// AtmosphericLight is the estimated haze colour, one value per channel in
// the image's channel order.
type AtmosphericLight [3]float64

// Validate reports ErrZeroAtmosphericLight when any component is zero.
func (a AtmosphericLight) Validate() error {
	for c, v := range a {
		if v <= 0 {
			return fmt.Errorf("%w: channel %d", ErrZeroAtmosphericLight, c)
		}
	}
	return nil
}

// Dehaze removes haze with the dark channel prior using the default options.
func Dehaze(img *safe.Mat) (*safe.Mat, error) {
	return DehazeWithOptions(img, DefaultDehazeOptions())
}

// DehazeWithOptions estimates the dark channel, atmospheric light and
// transmission of img, then recovers the haze-free scene.
func DehazeWithOptions(img *safe.Mat, opts DehazeOptions) (*safe.Mat, error) {
	out, _, err := dehaze(img, opts)
	return out, err
}

// dehaze runs dark channel, atmospheric light, transmission and recovery
// in that order, returning the light estimate alongside the result.
func dehaze(img *safe.Mat, opts DehazeOptions) (*safe.Mat, AtmosphericLight, error) {
	var atmo AtmosphericLight
	if err := validateColorImage(img, "dehazing"); err != nil {
		return nil, atmo, err
	}
	if err := opts.Validate(); err != nil {
		return nil, atmo, err
	}

	dark, err := DarkChannel(img, opts.WindowSize)
	if err != nil {
		return nil, atmo, fmt.Errorf("dark channel: %w", err)
	}
	defer dark.Close()

	atmo, err = EstimateAtmosphericLight(img, dark, opts.TopPercent)
	if err != nil {
		return nil, atmo, fmt.Errorf("atmospheric light: %w", err)
	}

	transmission, err := EstimateTransmission(img, atmo, opts.Omega, opts.WindowSize)
	if err != nil {
		return nil, atmo, fmt.Errorf("transmission: %w", err)
	}
	defer transmission.Close()

	out, err := RecoverScene(img, transmission, atmo, opts.MinTransmission)
	if err != nil {
		return nil, atmo, fmt.Errorf("scene recovery: %w", err)
	}
	return out, atmo, nil
}

// DarkChannel takes the per-pixel minimum over the three channels and
// erodes it with a window x window square. The result is 8-bit, 1 channel.
func DarkChannel(img *safe.Mat, window int) (*safe.Mat, error) {
	if err := validateColorImage(img, "dark channel"); err != nil {
		return nil, err
	}
	if window < 1 {
		return nil, fmt.Errorf("%w: window size must be >= 1, got %d", ErrInvalidParameter, window)
	}

	src, err := img.DataUint8()
	if err != nil {
		return nil, err
	}

	minMat, err := safe.NewMat(img.Rows(), img.Cols(), gocv.MatTypeCV8UC1)
	if err != nil {
		return nil, fmt.Errorf("failed to create channel minimum Mat: %w", err)
	}
	defer minMat.Close()

	mins, err := minMat.DataUint8()
	if err != nil {
		return nil, err
	}
	for i := range mins {
		p := src[i*3 : i*3+3]
		mins[i] = min(p[0], p[1], p[2])
	}

	return erodeRect(minMat, window)
}

// EstimateAtmosphericLight averages the colours of the pixels with the
// highest dark-channel values: max(int(n*topPercent), 1) of them. Ties at
// the cut-off are resolved in scan order.
func EstimateAtmosphericLight(img, dark *safe.Mat, topPercent float64) (AtmosphericLight, error) {
	var atmo AtmosphericLight
	if err := validateColorImage(img, "atmospheric light"); err != nil {
		return atmo, err
	}
	if err := safe.ValidateMatForOperation(dark, "atmospheric light"); err != nil {
		return atmo, fmt.Errorf("%w: %v", ErrEmptyImage, err)
	}
	if dark.Type() != gocv.MatTypeCV8UC1 || dark.Rows() != img.Rows() || dark.Cols() != img.Cols() {
		return atmo, fmt.Errorf("%w: dark channel must be 8-bit single channel %dx%d", ErrUnsupportedImage, img.Cols(), img.Rows())
	}
	if !(topPercent > 0 && topPercent <= 1) {
		return atmo, fmt.Errorf("%w: top percent must be in (0, 1], got %v", ErrInvalidParameter, topPercent)
	}

	pixels, err := img.DataUint8()
	if err != nil {
		return atmo, err
	}
	darkValues, err := dark.DataUint8()
	if err != nil {
		return atmo, err
	}

	n := len(darkValues)
	k := int(math.Max(float64(n)*topPercent, 1))
	k = min(k, n)

	// Find the cut-off value so that exactly k pixels are taken: all above
	// the cut-off plus enough of those equal to it.
	var hist [256]int
	for _, v := range darkValues {
		hist[v]++
	}
	cutoff, above := 255, 0
	for ; cutoff > 0; cutoff-- {
		if above+hist[cutoff] >= k {
			break
		}
		above += hist[cutoff]
	}
	fromCutoff := k - above

	var sum [3]float64
	for i, v := range darkValues {
		take := v > uint8(cutoff)
		if !take && v == uint8(cutoff) && fromCutoff > 0 {
			take = true
			fromCutoff--
		}
		if !take {
			continue
		}
		p := pixels[i*3 : i*3+3]
		sum[0] += float64(p[0])
		sum[1] += float64(p[1])
		sum[2] += float64(p[2])
	}

	for c := range atmo {
		atmo[c] = sum[c] / float64(k)
	}
	return atmo, nil
}

// EstimateTransmission normalises the image by the atmospheric light,
// takes its dark channel over the same window, and returns
// 1 - omega*dark as a 32-bit float single-channel Mat. Channels whose
// atmospheric light is zero are left out of the minimum; if none remain
// the pixel is treated as haze-free.
func EstimateTransmission(img *safe.Mat, atmo AtmosphericLight, omega float64, window int) (*safe.Mat, error) {
	if err := validateColorImage(img, "transmission"); err != nil {
		return nil, err
	}
	if !(omega >= 0 && omega <= 1) {
		return nil, fmt.Errorf("%w: omega must be in [0, 1], got %v", ErrInvalidParameter, omega)
	}
	if window < 1 {
		return nil, fmt.Errorf("%w: window size must be >= 1, got %d", ErrInvalidParameter, window)
	}

	src, err := img.DataUint8()
	if err != nil {
		return nil, err
	}

	normMin, err := safe.NewMat(img.Rows(), img.Cols(), gocv.MatTypeCV32FC1)
	if err != nil {
		return nil, fmt.Errorf("failed to create normalised minimum Mat: %w", err)
	}
	defer normMin.Close()

	mins, err := normMin.DataFloat32()
	if err != nil {
		return nil, err
	}

	var inv [3]float64
	for c, a := range atmo {
		if a > 0 {
			inv[c] = 1 / a
		}
	}

	for i := range mins {
		m := math.Inf(1)
		for c := 0; c < 3; c++ {
			if inv[c] == 0 {
				continue
			}
			m = math.Min(m, float64(src[i*3+c])*inv[c])
		}
		if math.IsInf(m, 1) {
			m = 0
		}
		mins[i] = float32(m)
	}

	transmission, err := erodeRect(normMin, window)
	if err != nil {
		return nil, err
	}

	t, err := transmission.DataFloat32()
	if err != nil {
		transmission.Close()
		return nil, err
	}
	for i, d := range t {
		t[i] = float32(1 - omega*float64(d))
	}

	return transmission, nil
}

// RecoverScene inverts the haze model per channel:
// (I - A) / max(t, t0) + A, clamped to [0, 255]. Channels with zero
// atmospheric light pass through unchanged.
func RecoverScene(img, transmission *safe.Mat, atmo AtmosphericLight, t0 float64) (*safe.Mat, error) {
	if err := validateColorImage(img, "scene recovery"); err != nil {
		return nil, err
	}
	if err := safe.ValidateMatForOperation(transmission, "scene recovery"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmptyImage, err)
	}
	if transmission.Type() != gocv.MatTypeCV32FC1 || transmission.Rows() != img.Rows() || transmission.Cols() != img.Cols() {
		return nil, fmt.Errorf("%w: transmission must be float32 single channel %dx%d", ErrUnsupportedImage, img.Cols(), img.Rows())
	}
	if !(t0 > 0 && t0 <= 1) {
		return nil, fmt.Errorf("%w: minimum transmission must be in (0, 1], got %v", ErrInvalidParameter, t0)
	}

	src, err := img.DataUint8()
	if err != nil {
		return nil, err
	}
	t, err := transmission.DataFloat32()
	if err != nil {
		return nil, err
	}

	dst, err := safe.NewMat(img.Rows(), img.Cols(), img.Type())
	if err != nil {
		return nil, fmt.Errorf("failed to create destination Mat: %w", err)
	}
	out, err := dst.DataUint8()
	if err != nil {
		dst.Close()
		return nil, err
	}

	for i, ti := range t {
		tt := math.Max(float64(ti), t0)
		for c := 0; c < 3; c++ {
			idx := i*3 + c
			a := atmo[c]
			if a <= 0 {
				out[idx] = src[idx]
				continue
			}
			out[idx] = toUint8((float64(src[idx])-a)/tt + a)
		}
	}

	return dst, nil
}

// erodeRect is a neighbourhood minimum over a window x window square.
// Pixels outside the image do not take part.
func erodeRect(src *safe.Mat, window int) (*safe.Mat, error) {
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(window, window))
	defer kernel.Close()

	dst, err := safe.NewMat(src.Rows(), src.Cols(), src.Type())
	if err != nil {
		return nil, fmt.Errorf("failed to create eroded Mat: %w", err)
	}

	dstMat := dst.GetMat()
	gocv.Erode(src.GetMat(), &dstMat, kernel)

	return dst, nil
}
