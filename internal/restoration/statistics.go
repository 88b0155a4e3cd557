package restoration

import (
	"math"

	"photo-restorer/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// Brightness is the mean over every pixel component, channels pooled.
// Invalid images measure as 0.
func Brightness(img *safe.Mat) float64 {
	mean, _, ok := pooledMeanStdDev(img)
	if !ok {
		return 0
	}
	return mean
}

// Contrast is the population standard deviation over every pixel
// component, channels pooled.
func Contrast(img *safe.Mat) float64 {
	_, stddev, ok := pooledMeanStdDev(img)
	if !ok {
		return 0
	}
	return stddev
}

// SignalToNoiseRatio is Brightness/Contrast, saturating to +Inf when the
// image has no variance. It never returns NaN.
func SignalToNoiseRatio(img *safe.Mat) float64 {
	mean, stddev, ok := pooledMeanStdDev(img)
	if !ok || stddev == 0 {
		return math.Inf(1)
	}
	return mean / stddev
}

// pooledMeanStdDev views the image as a single channel so that mean and
// deviation are taken over all components at once.
func pooledMeanStdDev(img *safe.Mat) (float64, float64, bool) {
	if err := safe.ValidateMatForOperation(img, "statistics"); err != nil {
		return 0, 0, false
	}

	src := img.GetMat()
	flat := src.Reshape(1, 0)
	defer flat.Close()

	meanMat := gocv.NewMat()
	defer meanMat.Close()
	stdMat := gocv.NewMat()
	defer stdMat.Close()

	gocv.MeanStdDev(flat, &meanMat, &stdMat)
	return meanMat.GetDoubleAt(0, 0), stdMat.GetDoubleAt(0, 0), true
}
