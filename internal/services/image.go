package services

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"path/filepath"
	"strings"
	"time"

	"photo-restorer/internal/logger"
	"photo-restorer/internal/models"
	"photo-restorer/internal/opencv/conversion"
	"photo-restorer/internal/opencv/safe"

	"fyne.io/fyne/v2"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// supportedExtensions lists the file extensions offered in the open dialog.
var supportedExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".tif", ".tiff", ".webp"}

// ImageService decodes uploaded images into the BGR layout the restorer
// expects and records the result as the current original.
type ImageService struct {
	repository   *models.ImageRepository
	logger       logger.Logger
	maxDimension int
}

func NewImageService(repo *models.ImageRepository, log logger.Logger, maxDimension int) *ImageService {
	if log == nil {
		log = logger.NewNop()
	}
	return &ImageService{
		repository:   repo,
		logger:       log,
		maxDimension: maxDimension,
	}
}

// LoadImage reads and decodes an image picked in the file dialog.
func (is *ImageService) LoadImage(ctx context.Context, reader fyne.URIReadCloser) (*models.ImageData, error) {
	defer reader.Close()

	uri := reader.URI()
	return is.Decode(ctx, bufio.NewReader(reader), uri.Name())
}

// Decode decodes r, rejects images larger than the configured maximum
// dimension and stores the decoded image as the repository's original.
// name is used for logging and as the format fallback.
func (is *ImageService) Decode(ctx context.Context, r io.Reader, name string) (*models.ImageData, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	startTime := time.Now()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image header: %w", err)
	}
	if err := safe.ValidateDimensions(cfg.Width, cfg.Height, is.maxDimension, "image load"); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	mat, err := conversion.ImageToMat(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image to Mat: %w", err)
	}

	bounds := img.Bounds()
	imageData := &models.ImageData{
		Image:    img,
		Mat:      mat,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Format:   determineFormat(filepath.Ext(name), format),
		Source:   name,
		LoadTime: time.Now(),
	}

	is.repository.SetOriginalImage(imageData)

	is.logger.Info("image", "image loaded", map[string]interface{}{
		"source":   name,
		"format":   imageData.Format,
		"width":    imageData.Width,
		"height":   imageData.Height,
		"bytes":    len(data),
		"duration": time.Since(startTime),
	})

	return imageData, nil
}

// SupportedExtensions returns the extensions accepted for upload.
func (is *ImageService) SupportedExtensions() []string {
	out := make([]string, len(supportedExtensions))
	copy(out, supportedExtensions)
	return out
}

// determineFormat prefers the decoder's name and falls back to the extension.
func determineFormat(extension, detectedFormat string) string {
	if detectedFormat != "" {
		return detectedFormat
	}

	switch strings.ToLower(extension) {
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".tif", ".tiff":
		return "tiff"
	case "":
		return "unknown"
	default:
		return strings.TrimPrefix(strings.ToLower(extension), ".")
	}
}

// Cleanup releases the images held by the repository.
func (is *ImageService) Cleanup() {
	if is.repository != nil {
		is.repository.ClearAll()
	}
}
