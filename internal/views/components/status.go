package components

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// StatusBar displays the current status and the loaded image's metadata.
type StatusBar struct {
	container   *fyne.Container
	statusLabel *widget.Label
	imageInfo   *widget.Label
}

func NewStatusBar() *StatusBar {
	sb := &StatusBar{
		statusLabel: widget.NewLabel("Ready"),
		imageInfo:   widget.NewLabel("No image loaded"),
	}
	sb.container = container.NewHBox(sb.statusLabel, widget.NewSeparator(), sb.imageInfo)
	return sb
}

func (sb *StatusBar) SetStatus(status string) {
	sb.statusLabel.SetText(status)
}

func (sb *StatusBar) SetImageInfo(source string, width, height int, format string) {
	sb.imageInfo.SetText(fmt.Sprintf("%s: %dx%d %s", source, width, height, format))
}

func (sb *StatusBar) GetContainer() *fyne.Container {
	return sb.container
}
