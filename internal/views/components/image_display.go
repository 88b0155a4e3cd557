package components

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const (
	ImageAreaWidth  = 480
	ImageAreaHeight = 360
)

// ImageDisplay shows the original and restored images side by side.
// Setters must run on the fyne goroutine.
type ImageDisplay struct {
	splitView     *container.Split
	originalImage *canvas.Image
	restoredImage *canvas.Image
	placeholder   image.Image

	hasOriginal bool
	hasRestored bool
}

func NewImageDisplay() *ImageDisplay {
	id := &ImageDisplay{placeholder: newPlaceholder()}

	id.originalImage = id.newCanvas()
	id.restoredImage = id.newCanvas()

	id.splitView = container.NewHSplit(
		id.titled("**Original Image**", id.originalImage),
		id.titled("**Restored Image**", id.restoredImage),
	)
	id.splitView.SetOffset(0.5)

	return id
}

func (id *ImageDisplay) newCanvas() *canvas.Image {
	img := canvas.NewImageFromImage(id.placeholder)
	img.FillMode = canvas.ImageFillContain
	img.ScaleMode = canvas.ImageScaleSmooth
	img.SetMinSize(fyne.NewSize(ImageAreaWidth, ImageAreaHeight))
	return img
}

func (id *ImageDisplay) titled(title string, img *canvas.Image) fyne.CanvasObject {
	return container.NewBorder(
		widget.NewRichTextFromMarkdown(title),
		nil, nil, nil,
		container.NewStack(canvas.NewRectangle(color.RGBA{R: 252, G: 252, B: 252, A: 255}), img),
	)
}

// newPlaceholder draws a light grey frame shown before any image is set.
func newPlaceholder() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, ImageAreaWidth, ImageAreaHeight))
	fill := color.RGBA{R: 240, G: 240, B: 240, A: 255}
	border := color.RGBA{R: 200, G: 200, B: 200, A: 255}
	for y := 0; y < ImageAreaHeight; y++ {
		for x := 0; x < ImageAreaWidth; x++ {
			if x == 0 || y == 0 || x == ImageAreaWidth-1 || y == ImageAreaHeight-1 {
				img.SetRGBA(x, y, border)
			} else {
				img.SetRGBA(x, y, fill)
			}
		}
	}
	return img
}

// SetOriginalImage shows img on the left; nil restores the placeholder.
func (id *ImageDisplay) SetOriginalImage(img image.Image) {
	id.hasOriginal = id.show(id.originalImage, img)
}

// SetRestoredImage shows img on the right; nil restores the placeholder.
func (id *ImageDisplay) SetRestoredImage(img image.Image) {
	id.hasRestored = id.show(id.restoredImage, img)
}

func (id *ImageDisplay) show(target *canvas.Image, img image.Image) bool {
	if img == nil {
		target.Image = id.placeholder
	} else {
		target.Image = img
	}
	target.Refresh()
	return img != nil
}

func (id *ImageDisplay) HasOriginalImage() bool {
	return id.hasOriginal
}

func (id *ImageDisplay) HasRestoredImage() bool {
	return id.hasRestored
}

func (id *ImageDisplay) GetContainer() fyne.CanvasObject {
	return id.splitView
}
