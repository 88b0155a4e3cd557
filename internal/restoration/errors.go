package restoration

import "errors"

var (
	// ErrInvalidParameter reports a numeric argument outside its domain,
	// such as a non-positive gamma.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrDegenerateImage reports a zero-spread intensity distribution that
	// cannot be stretched (2nd and 98th percentile coincide).
	ErrDegenerateImage = errors.New("degenerate image")

	// ErrZeroAtmosphericLight reports an atmospheric light estimate with a
	// zero component. Dehazing leaves such channels uncorrected.
	ErrZeroAtmosphericLight = errors.New("zero atmospheric light component")

	// ErrEmptyImage reports a nil, closed, or zero-dimension image.
	ErrEmptyImage = errors.New("empty image")

	// ErrUnsupportedImage reports an image that is not 8-bit 3-channel.
	ErrUnsupportedImage = errors.New("unsupported image layout")
)
