package views

import (
	"image"

	"photo-restorer/internal/views/components"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
)

// MainView is the restorer window: toolbar on top, the image split in the
// centre, the processing log on the right and the status bar below.
// Its update methods may be called from any goroutine.
type MainView struct {
	window        fyne.Window
	mainContainer *fyne.Container
	toolbar       *components.Toolbar
	imageDisplay  *components.ImageDisplay
	logPanel      *components.LogPanel
	statusBar     *components.StatusBar
}

func NewMainView(window fyne.Window) *MainView {
	mv := &MainView{
		window:       window,
		toolbar:      components.NewToolbar(),
		imageDisplay: components.NewImageDisplay(),
		logPanel:     components.NewLogPanel(),
		statusBar:    components.NewStatusBar(),
	}

	content := container.NewHSplit(mv.imageDisplay.GetContainer(), mv.logPanel.GetContainer())
	content.SetOffset(0.8)

	mv.mainContainer = container.NewBorder(
		mv.toolbar.GetContainer(),
		mv.statusBar.GetContainer(),
		nil,
		nil,
		content,
	)
	window.SetContent(mv.mainContainer)

	return mv
}

func (mv *MainView) SetOpenImageHandler(handler func()) {
	mv.toolbar.SetOpenHandler(handler)
}

func (mv *MainView) SetRestoreHandler(handler func()) {
	mv.toolbar.SetRestoreHandler(handler)
}

// ShowOriginal displays a newly loaded image and clears the previous result.
func (mv *MainView) ShowOriginal(img image.Image, source string, width, height int, format string) {
	fyne.Do(func() {
		mv.imageDisplay.SetOriginalImage(img)
		mv.imageDisplay.SetRestoredImage(nil)
		mv.logPanel.Clear()
		mv.statusBar.SetImageInfo(source, width, height, format)
		mv.toolbar.EnableImageOperations(img != nil)
	})
}

// ShowRestoration displays the restored image and its processing log.
func (mv *MainView) ShowRestoration(img image.Image, log []string) {
	fyne.Do(func() {
		mv.imageDisplay.SetRestoredImage(img)
		mv.logPanel.SetEntries(log)
	})
}

func (mv *MainView) UpdateStatus(status string) {
	fyne.Do(func() {
		mv.statusBar.SetStatus(status)
	})
}

func (mv *MainView) SetProcessingActive(active bool) {
	fyne.Do(func() {
		mv.toolbar.SetProcessingActive(active)
	})
}

func (mv *MainView) ShowError(err error) {
	fyne.Do(func() {
		dialog.ShowError(err, mv.window)
	})
}

// ShowFileDialog opens a file picker restricted to extensions.
func (mv *MainView) ShowFileDialog(extensions []string, callback func(fyne.URIReadCloser, error)) {
	fyne.Do(func() {
		fd := dialog.NewFileOpen(callback, mv.window)
		fd.SetFilter(storage.NewExtensionFileFilter(extensions))
		fd.Show()
	})
}
