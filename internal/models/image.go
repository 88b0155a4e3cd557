package models

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"photo-restorer/internal/opencv/safe"
)

// ImageData is a decoded image held both as a Go image for display and as
// a BGR Mat for restoration.
type ImageData struct {
	Image    image.Image
	Mat      *safe.Mat
	Width    int
	Height   int
	Format   string
	Source   string
	LoadTime time.Time
}

// Close releases the Mat. Safe on nil.
func (d *ImageData) Close() {
	if d != nil && d.Mat != nil {
		d.Mat.Close()
	}
}

// RestorationResult is the output of one adaptive restoration run.
type RestorationResult struct {
	Restored *ImageData
	Log      []string
	Duration time.Duration
}

var ErrNoOriginal = errors.New("no original image loaded")

// ImageRepository keeps the loaded original and the latest restoration.
// Replacing either closes the Mat it held. Every new original bumps a
// generation so that work started on an older image can be recognised.
type ImageRepository struct {
	mu          sync.RWMutex
	original    *ImageData
	generation  uint64
	restoration *RestorationResult
}

func NewImageRepository() *ImageRepository {
	return &ImageRepository{}
}

// SetOriginalImage stores a newly loaded image and discards the previous
// original together with any restoration derived from it.
func (r *ImageRepository) SetOriginalImage(img *ImageData) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.original.Close()
	r.original = img
	r.generation++
	r.clearRestorationLocked()
}

func (r *ImageRepository) GetOriginalImage() *ImageData {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.original
}

// CloneOriginal returns a copy of the original with its own Mat, taken
// under the repository lock so a concurrent SetOriginalImage cannot free
// the pixels mid-copy. The caller must Close the copy. The generation
// identifies the original the copy was taken from.
func (r *ImageRepository) CloneOriginal() (*ImageData, uint64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.original == nil || r.original.Mat == nil {
		return nil, 0, ErrNoOriginal
	}

	mat, err := r.original.Mat.Clone()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to copy original: %w", err)
	}

	clone := *r.original
	clone.Mat = mat
	return &clone, r.generation, nil
}

// StoreRestoration records result as the latest restoration if it was
// computed from the current original. A stale result is not stored and
// false is returned; the caller still owns it.
func (r *ImageRepository) StoreRestoration(generation uint64, result *RestorationResult) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.original == nil || generation != r.generation {
		return false
	}

	r.clearRestorationLocked()
	r.restoration = result
	return true
}

// ClearAll removes all images including the original.
func (r *ImageRepository) ClearAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.original.Close()
	r.original = nil
	r.generation++
	r.clearRestorationLocked()
}

func (r *ImageRepository) clearRestorationLocked() {
	if r.restoration != nil {
		r.restoration.Restored.Close()
		r.restoration = nil
	}
}
