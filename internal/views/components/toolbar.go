package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const RestoreButtonLabel = "Run Adaptive Restoration"

// Toolbar holds the open and restore actions.
type Toolbar struct {
	container     *fyne.Container
	openButton    *widget.Button
	restoreButton *widget.Button

	openHandler    func()
	restoreHandler func()

	hasImage         bool
	processingActive bool
}

func NewToolbar() *Toolbar {
	t := &Toolbar{}

	t.openButton = widget.NewButton("Open Image", func() {
		if t.openHandler != nil {
			t.openHandler()
		}
	})
	t.openButton.Importance = widget.HighImportance

	t.restoreButton = widget.NewButton(RestoreButtonLabel, func() {
		if t.restoreHandler != nil {
			t.restoreHandler()
		}
	})
	t.restoreButton.Importance = widget.HighImportance
	t.restoreButton.Disable()

	t.container = container.NewHBox(t.openButton, widget.NewSeparator(), t.restoreButton)
	return t
}

func (t *Toolbar) SetOpenHandler(handler func()) {
	t.openHandler = handler
}

func (t *Toolbar) SetRestoreHandler(handler func()) {
	t.restoreHandler = handler
}

// EnableImageOperations enables the restore button once an image is loaded.
func (t *Toolbar) EnableImageOperations(enabled bool) {
	t.hasImage = enabled
	t.updateButtons()
}

// SetProcessingActive locks both buttons while a restoration runs.
func (t *Toolbar) SetProcessingActive(active bool) {
	t.processingActive = active
	t.updateButtons()
}

func (t *Toolbar) updateButtons() {
	if t.processingActive {
		t.openButton.Disable()
		t.restoreButton.Disable()
		return
	}

	t.openButton.Enable()
	if t.hasImage {
		t.restoreButton.Enable()
	} else {
		t.restoreButton.Disable()
	}
}

func (t *Toolbar) GetContainer() *fyne.Container {
	return t.container
}
