package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"photo-restorer/internal/logger"
	"photo-restorer/internal/models"
	"photo-restorer/internal/opencv/conversion"
	"photo-restorer/internal/restoration"
)

var (
	ErrNoImage           = errors.New("no original image loaded")
	ErrRestoreInProgress = errors.New("restoration already in progress")
	ErrStaleRestoration  = errors.New("original image replaced during restoration")
)

// RestorationService runs the adaptive restorer on the repository's
// original image, one run at a time.
type RestorationService struct {
	restorer   *restoration.Restorer
	repository *models.ImageRepository
	logger     logger.Logger
	running    sync.Mutex
}

func NewRestorationService(repo *models.ImageRepository, log logger.Logger) *RestorationService {
	if log == nil {
		log = logger.NewNop()
	}
	return &RestorationService{
		restorer:   restoration.NewRestorer(restoration.Options{Logger: log}),
		repository: repo,
		logger:     log,
	}
}

// Restore restores a copy of the current original and stores the result
// as the latest restoration. A call made while another is running fails
// with ErrRestoreInProgress. If a new image is loaded before the run
// finishes, the result is discarded and ErrStaleRestoration is returned.
func (rs *RestorationService) Restore(ctx context.Context) (*models.RestorationResult, error) {
	if !rs.running.TryLock() {
		return nil, ErrRestoreInProgress
	}
	defer rs.running.Unlock()

	original, generation, err := rs.repository.CloneOriginal()
	if errors.Is(err, models.ErrNoOriginal) {
		return nil, ErrNoImage
	}
	if err != nil {
		return nil, err
	}
	defer original.Close()

	startTime := time.Now()

	restored, log, err := rs.restorer.Restore(ctx, original.Mat)
	if err != nil {
		return nil, err
	}

	img, err := conversion.MatToImage(restored)
	if err != nil {
		restored.Close()
		return nil, fmt.Errorf("failed to convert restored Mat to image: %w", err)
	}

	result := &models.RestorationResult{
		Restored: &models.ImageData{
			Image:    img,
			Mat:      restored,
			Width:    restored.Cols(),
			Height:   restored.Rows(),
			Format:   original.Format,
			Source:   original.Source,
			LoadTime: time.Now(),
		},
		Log:      log,
		Duration: time.Since(startTime),
	}

	if !rs.repository.StoreRestoration(generation, result) {
		result.Restored.Close()
		rs.logger.Warning("restoration_service", "discarding result for replaced image", map[string]interface{}{
			"source": original.Source,
		})
		return nil, ErrStaleRestoration
	}

	rs.logger.Info("restoration_service", "restoration stored", map[string]interface{}{
		"source":   original.Source,
		"steps":    len(log),
		"duration": result.Duration,
	})

	return result, nil
}

// StepNames lists the restoration steps in evaluation order.
func (rs *RestorationService) StepNames() []string {
	return rs.restorer.StepNames()
}
