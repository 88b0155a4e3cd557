package safe

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"gocv.io/x/gocv"
)

// Mat guards a gocv.Mat against use after Close and double release.
type Mat struct {
	mat     gocv.Mat
	isValid int32
	mu      sync.RWMutex
}

func NewMat(rows, cols int, matType gocv.MatType) (*Mat, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("invalid dimensions: %dx%d", cols, rows)
	}

	mat := gocv.NewMatWithSize(rows, cols, matType)
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("failed to create Mat with size %dx%d", cols, rows)
	}

	return wrap(mat), nil
}

// NewMatFromBytes copies data into a freshly allocated Mat. The length of
// data must match rows*cols*elemSize exactly.
func NewMatFromBytes(rows, cols int, matType gocv.MatType, data []byte) (*Mat, error) {
	sm, err := NewMat(rows, cols, matType)
	if err != nil {
		return nil, err
	}

	dst, err := sm.DataUint8()
	if err != nil {
		sm.Close()
		return nil, err
	}
	if len(dst) != len(data) {
		sm.Close()
		return nil, fmt.Errorf("data length %d does not match %dx%d Mat of %d bytes", len(data), cols, rows, len(dst))
	}
	copy(dst, data)

	return sm, nil
}

// NewMatFromMat clones srcMat; the caller keeps ownership of srcMat.
func NewMatFromMat(srcMat gocv.Mat) (*Mat, error) {
	if srcMat.Empty() {
		return nil, fmt.Errorf("source Mat is empty")
	}

	if srcMat.Rows() <= 0 || srcMat.Cols() <= 0 {
		return nil, fmt.Errorf("source Mat has invalid dimensions: %dx%d", srcMat.Cols(), srcMat.Rows())
	}

	clonedMat := srcMat.Clone()
	if clonedMat.Empty() {
		clonedMat.Close()
		return nil, fmt.Errorf("failed to clone Mat")
	}

	return wrap(clonedMat), nil
}

func wrap(mat gocv.Mat) *Mat {
	safeMat := &Mat{
		mat:     mat,
		isValid: 1,
	}

	// Set finalizer for cleanup if Close() is not called
	runtime.SetFinalizer(safeMat, (*Mat).finalize)

	return safeMat
}

func (sm *Mat) IsValid() bool {
	return sm != nil && atomic.LoadInt32(&sm.isValid) == 1
}

func (sm *Mat) Empty() bool {
	if !sm.IsValid() {
		return true
	}

	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.mat.Empty()
}

func (sm *Mat) Rows() int {
	if !sm.IsValid() {
		return 0
	}

	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.mat.Rows()
}

func (sm *Mat) Cols() int {
	if !sm.IsValid() {
		return 0
	}

	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.mat.Cols()
}

func (sm *Mat) Channels() int {
	if !sm.IsValid() {
		return 0
	}

	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.mat.Channels()
}

func (sm *Mat) Type() gocv.MatType {
	if !sm.IsValid() {
		return gocv.MatTypeCV8UC1
	}

	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.mat.Type()
}

func (sm *Mat) Clone() (*Mat, error) {
	if !sm.IsValid() {
		return nil, fmt.Errorf("cannot clone invalid Mat")
	}

	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if sm.mat.Empty() {
		return nil, fmt.Errorf("cannot clone empty Mat")
	}

	return NewMatFromMat(sm.mat)
}

// DataUint8 exposes the pixel buffer of an 8-bit Mat. The slice aliases
// the Mat's memory and is only valid until Close.
func (sm *Mat) DataUint8() ([]uint8, error) {
	if !sm.IsValid() {
		return nil, fmt.Errorf("Mat is invalid")
	}

	sm.mu.RLock()
	defer sm.mu.RUnlock()

	data, err := sm.mat.DataPtrUint8()
	if err != nil {
		return nil, fmt.Errorf("uint8 data access failed: %w", err)
	}
	return data, nil
}

// DataFloat32 exposes the buffer of a 32-bit float Mat. Same aliasing
// rules as DataUint8.
func (sm *Mat) DataFloat32() ([]float32, error) {
	if !sm.IsValid() {
		return nil, fmt.Errorf("Mat is invalid")
	}

	sm.mu.RLock()
	defer sm.mu.RUnlock()

	data, err := sm.mat.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("float32 data access failed: %w", err)
	}
	return data, nil
}

// GetMat returns the underlying header for passing to gocv functions.
// It must not be closed by the caller.
func (sm *Mat) GetMat() gocv.Mat {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.mat
}

func (sm *Mat) Close() {
	if sm == nil {
		return
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	if atomic.CompareAndSwapInt32(&sm.isValid, 1, 0) {
		if !sm.mat.Empty() {
			sm.mat.Close()
		}

		// Clear finalizer since we're cleaning up manually
		runtime.SetFinalizer(sm, nil)
	}
}

// finalize is called by Go's garbage collector as last resort cleanup
func (sm *Mat) finalize() {
	if atomic.LoadInt32(&sm.isValid) == 1 {
		sm.Close()
	}
}
