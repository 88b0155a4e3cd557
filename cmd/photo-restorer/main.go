package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"runtime"

	"photo-restorer/internal/config"
	"photo-restorer/internal/controllers"
	"photo-restorer/internal/logger"
	"photo-restorer/internal/models"
	"photo-restorer/internal/services"
	"photo-restorer/internal/shutdown"
	"photo-restorer/internal/views"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
)

const (
	AppName    = "Photo Restorer"
	AppID      = "com.imageprocessing.photo-restorer"
	AppVersion = "1.0.0"
)

// Application owns the window and the MVC components behind it.
type Application struct {
	fyneApp fyne.App
	window  fyne.Window
	logger  logger.Logger

	controller *controllers.MainController
	view       *views.MainView
	shutdown   *shutdown.Manager
}

func main() {
	cfg, warnings, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration failed: %v", err)
	}

	application, err := NewApplication(cfg)
	if err != nil {
		log.Fatalf("Application initialization failed: %v", err)
	}
	for _, w := range warnings {
		application.logger.Warning("config", w, nil)
	}

	application.Run()
}

// NewApplication builds the logger, repository, services, controller and
// view, and wires them together.
func NewApplication(cfg config.Config) (*Application, error) {
	appLogger, sink, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	fyneApp := app.NewWithID(AppID)
	window := fyneApp.NewWindow(AppName)
	window.Resize(fyne.NewSize(1200, 800))
	window.CenterOnScreen()

	imageRepo := models.NewImageRepository()
	imageService := services.NewImageService(imageRepo, appLogger, cfg.MaxDimension)
	restorationService := services.NewRestorationService(imageRepo, appLogger)

	controller := controllers.NewMainController(imageService, restorationService, appLogger)
	view := views.NewMainView(window)
	controller.SetView(view)

	manager := shutdown.NewManager(appLogger, shutdown.DefaultTimeout)
	if sink != nil {
		manager.Register("log sink", shutdown.Func(func() { sink.Close() }))
	}
	manager.Register("controller", controller)

	application := &Application{
		fyneApp:    fyneApp,
		window:     window,
		logger:     appLogger,
		controller: controller,
		view:       view,
		shutdown:   manager,
	}

	window.SetOnClosed(manager.Shutdown)
	manager.Listen(func() { fyne.Do(fyneApp.Quit) })

	appLogger.Info("app", "application initialized", map[string]interface{}{
		"version":       AppVersion,
		"go_version":    runtime.Version(),
		"log_level":     cfg.LogLevel.String(),
		"max_dimension": cfg.MaxDimension,
		"steps":         restorationService.StepNames(),
	})

	return application, nil
}

// newLogger logs to the console, or as JSON to RESTORER_LOG_FILE when set.
func newLogger(cfg config.Config) (logger.Logger, io.Closer, error) {
	if cfg.LogFile == "" {
		return logger.NewConsoleLogger(cfg.LogLevel), nil, nil
	}

	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return logger.NewZerolog(f, cfg.LogLevel), f, nil
}

// Run shows the window and blocks until the application quits.
func (a *Application) Run() {
	a.logger.Info("app", "starting UI", nil)
	a.window.ShowAndRun()
	a.shutdown.Shutdown()
}
