package conversion

import (
	"fmt"
	"image"
	"image/color"

	"photo-restorer/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// ImageToMat converts a decoded Go image into a BGR 8-bit 3-channel Mat.
// Alpha is dropped after un-premultiplying, so translucent pixels keep
// their straight colour instead of being darkened.
func ImageToMat(img image.Image) (*safe.Mat, error) {
	if img == nil {
		return nil, fmt.Errorf("input image is nil")
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("input image has invalid dimensions %dx%d", width, height)
	}

	switch typedImg := img.(type) {
	case *image.Gray:
		return grayImageToMat(typedImg, width, height)
	case *image.RGBA:
		if !typedImg.Opaque() {
			return genericImageToMat(img, width, height)
		}
		return interleavedToMat(typedImg.Pix, typedImg.Stride, typedImg.PixOffset(bounds.Min.X, bounds.Min.Y), width, height)
	case *image.NRGBA:
		return interleavedToMat(typedImg.Pix, typedImg.Stride, typedImg.PixOffset(bounds.Min.X, bounds.Min.Y), width, height)
	default:
		return genericImageToMat(img, width, height)
	}
}

// MatToImage converts a BGR 8-bit 3-channel Mat into an opaque RGBA image.
func MatToImage(src *safe.Mat) (*image.RGBA, error) {
	if err := safe.ValidateColorMat(src, "Mat to image conversion"); err != nil {
		return nil, err
	}

	rows := src.Rows()
	cols := src.Cols()

	rgba, err := safe.NewMat(rows, cols, gocv.MatTypeCV8UC4)
	if err != nil {
		return nil, fmt.Errorf("RGBA Mat creation failed: %w", err)
	}
	defer rgba.Close()

	rgbaMat := rgba.GetMat()
	gocv.CvtColor(src.GetMat(), &rgbaMat, gocv.ColorBGRToRGBA)

	data, err := rgba.DataUint8()
	if err != nil {
		return nil, fmt.Errorf("RGBA data access failed: %w", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, cols, rows))
	if len(data) != len(img.Pix) {
		return nil, fmt.Errorf("RGBA buffer has %d bytes, want %d", len(data), len(img.Pix))
	}
	copy(img.Pix, data)

	return img, nil
}

func grayImageToMat(img *image.Gray, width, height int) (*safe.Mat, error) {
	data := make([]byte, width*height)
	offset := img.PixOffset(img.Bounds().Min.X, img.Bounds().Min.Y)
	for y := 0; y < height; y++ {
		row := img.Pix[offset+y*img.Stride : offset+y*img.Stride+width]
		copy(data[y*width:], row)
	}

	gray, err := safe.NewMatFromBytes(height, width, gocv.MatTypeCV8UC1, data)
	if err != nil {
		return nil, fmt.Errorf("grayscale Mat creation failed: %w", err)
	}
	defer gray.Close()

	dst, err := safe.NewMat(height, width, gocv.MatTypeCV8UC3)
	if err != nil {
		return nil, fmt.Errorf("destination Mat creation failed: %w", err)
	}

	dstMat := dst.GetMat()
	gocv.CvtColor(gray.GetMat(), &dstMat, gocv.ColorGrayToBGR)

	return dst, nil
}

// interleavedToMat copies 4-byte RGBA-ordered pixels into BGR order.
func interleavedToMat(pix []uint8, stride, offset, width, height int) (*safe.Mat, error) {
	data := make([]byte, width*height*3)
	for y := 0; y < height; y++ {
		src := pix[offset+y*stride:]
		dst := data[y*width*3:]
		for x := 0; x < width; x++ {
			dst[x*3] = src[x*4+2]
			dst[x*3+1] = src[x*4+1]
			dst[x*3+2] = src[x*4]
		}
	}

	return safe.NewMatFromBytes(height, width, gocv.MatTypeCV8UC3, data)
}

func genericImageToMat(img image.Image, width, height int) (*safe.Mat, error) {
	bounds := img.Bounds()
	data := make([]byte, width*height*3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.NRGBAModel.Convert(img.At(x+bounds.Min.X, y+bounds.Min.Y)).(color.NRGBA)

			i := (y*width + x) * 3
			data[i] = c.B
			data[i+1] = c.G
			data[i+2] = c.R
		}
	}

	return safe.NewMatFromBytes(height, width, gocv.MatTypeCV8UC3, data)
}
