package controllers

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"photo-restorer/internal/logger"
	"photo-restorer/internal/models"
	"photo-restorer/internal/services"

	"fyne.io/fyne/v2"
)

const (
	loadTimeout    = 30 * time.Second
	restoreTimeout = 10 * time.Minute
)

// View is the part of the main window the controller drives.
// *views.MainView implements it.
type View interface {
	SetOpenImageHandler(handler func())
	SetRestoreHandler(handler func())
	ShowOriginal(img image.Image, source string, width, height int, format string)
	ShowRestoration(img image.Image, log []string)
	UpdateStatus(status string)
	SetProcessingActive(active bool)
	ShowError(err error)
	ShowFileDialog(extensions []string, callback func(fyne.URIReadCloser, error))
}

// MainController connects the view to the image and restoration services.
type MainController struct {
	imageService       *services.ImageService
	restorationService *services.RestorationService
	logger             logger.Logger

	mu         sync.Mutex
	view       View
	cancelFunc context.CancelFunc
	loading    bool
	wg         sync.WaitGroup
}

func NewMainController(
	imageService *services.ImageService,
	restorationService *services.RestorationService,
	log logger.Logger,
) *MainController {
	if log == nil {
		log = logger.NewNop()
	}
	return &MainController{
		imageService:       imageService,
		restorationService: restorationService,
		logger:             log,
	}
}

// SetView associates the view and wires its actions to the controller.
func (mc *MainController) SetView(view View) {
	mc.mu.Lock()
	mc.view = view
	mc.mu.Unlock()

	view.SetOpenImageHandler(mc.OpenImage)
	view.SetRestoreHandler(mc.RestoreImage)
}

// OpenImage shows the file dialog and loads the chosen image in the
// background.
func (mc *MainController) OpenImage() {
	view := mc.currentView()
	if view == nil {
		return
	}

	view.ShowFileDialog(mc.imageService.SupportedExtensions(), func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			mc.handleError("File selection failed", err)
			return
		}
		if reader == nil {
			return
		}
		if !mc.beginLoad() {
			reader.Close()
			return
		}

		mc.wg.Add(1)
		go func() {
			defer mc.wg.Done()
			mc.loadFromReader(reader)
		}()
	})
}

// beginLoad marks a load as running and locks the toolbar until finishLoad.
// It fails while another load or a restoration is running.
func (mc *MainController) beginLoad() bool {
	mc.mu.Lock()
	if mc.loading || mc.cancelFunc != nil {
		mc.mu.Unlock()
		return false
	}
	mc.loading = true
	view := mc.view
	mc.mu.Unlock()

	if view != nil {
		view.SetProcessingActive(true)
		view.UpdateStatus("Loading image...")
	}
	return true
}

func (mc *MainController) loadFromReader(reader fyne.URIReadCloser) {
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()

	mc.finishLoad(mc.imageService.LoadImage(ctx, reader))
}

func (mc *MainController) finishLoad(data *models.ImageData, err error) {
	mc.mu.Lock()
	mc.loading = false
	view := mc.view
	mc.mu.Unlock()

	if view != nil {
		view.SetProcessingActive(false)
	}
	if err != nil {
		mc.handleError("Image load failed", err)
		if view != nil {
			view.UpdateStatus("Ready")
		}
		return
	}

	if view != nil {
		view.ShowOriginal(data.Image, data.Source, data.Width, data.Height, data.Format)
		view.UpdateStatus("Image loaded")
	}
}

// RestoreImage starts an adaptive restoration of the loaded image in the
// background. It returns immediately and does nothing while a load or
// another restoration is running.
func (mc *MainController) RestoreImage() {
	ctx, cancel := context.WithTimeout(context.Background(), restoreTimeout)

	mc.mu.Lock()
	if mc.cancelFunc != nil || mc.loading {
		mc.mu.Unlock()
		cancel()
		return
	}
	mc.cancelFunc = cancel
	view := mc.view
	mc.mu.Unlock()

	if view != nil {
		view.SetProcessingActive(true)
		view.UpdateStatus("Restoring...")
	}

	mc.wg.Add(1)
	go func() {
		defer mc.wg.Done()
		mc.performRestoration(ctx)
	}()
}

func (mc *MainController) performRestoration(ctx context.Context) {
	result, err := mc.restorationService.Restore(ctx)

	mc.mu.Lock()
	if mc.cancelFunc != nil {
		mc.cancelFunc()
		mc.cancelFunc = nil
	}
	view := mc.view
	mc.mu.Unlock()

	if view != nil {
		view.SetProcessingActive(false)
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			if view != nil {
				view.UpdateStatus("Restoration cancelled")
			}
			return
		}
		if errors.Is(err, services.ErrStaleRestoration) {
			if view != nil {
				view.UpdateStatus("Image changed, run restoration again")
			}
			return
		}
		mc.handleError("Restoration failed", err)
		if view != nil {
			view.UpdateStatus("Restoration failed")
		}
		return
	}

	if view != nil {
		view.ShowRestoration(result.Restored.Image, result.Log)
		view.UpdateStatus(fmt.Sprintf("Restoration complete in %s", result.Duration.Round(time.Millisecond)))
	}
}

// CancelRestoration cancels a running restoration, if any.
func (mc *MainController) CancelRestoration() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if mc.cancelFunc != nil {
		mc.cancelFunc()
	}
}

// Wait blocks until background loads and restorations have finished.
func (mc *MainController) Wait() {
	mc.wg.Wait()
}

func (mc *MainController) handleError(title string, err error) {
	mc.logger.Error("controller", err, map[string]interface{}{"action": title})

	if view := mc.currentView(); view != nil {
		view.ShowError(fmt.Errorf("%s: %w", title, err))
	}
}

func (mc *MainController) currentView() View {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.view
}

// Shutdown cancels outstanding work and releases held images.
func (mc *MainController) Shutdown() {
	mc.CancelRestoration()
	mc.Wait()
	mc.imageService.Cleanup()
}
