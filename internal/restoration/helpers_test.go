package restoration

import (
	"testing"

	"photo-restorer/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// newImage builds a rows x cols BGR image from fill(row, col).
func newImage(t testing.TB, rows, cols int, fill func(r, c int) (b, g, red uint8)) *safe.Mat {
	t.Helper()
	data := make([]byte, rows*cols*3)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			i := (r*cols + c) * 3
			data[i], data[i+1], data[i+2] = fill(r, c)
		}
	}
	m, err := safe.NewMatFromBytes(rows, cols, gocv.MatTypeCV8UC3, data)
	if err != nil {
		t.Fatalf("NewMatFromBytes: %v", err)
	}
	t.Cleanup(m.Close)
	return m
}

func newSolid(t testing.TB, rows, cols int, b, g, red uint8) *safe.Mat {
	t.Helper()
	return newImage(t, rows, cols, func(int, int) (uint8, uint8, uint8) { return b, g, red })
}

func newGray(t testing.TB, rows, cols int, value func(r, c int) uint8) *safe.Mat {
	t.Helper()
	return newImage(t, rows, cols, func(r, c int) (uint8, uint8, uint8) {
		v := value(r, c)
		return v, v, v
	})
}

// pixels copies the component buffer so it outlives the Mat.
func pixels(t testing.TB, m *safe.Mat) []uint8 {
	t.Helper()
	data, err := m.DataUint8()
	if err != nil {
		t.Fatalf("DataUint8: %v", err)
	}
	out := make([]uint8, len(data))
	copy(out, data)
	return out
}

func assertSameShape(t testing.TB, in, out *safe.Mat) {
	t.Helper()
	if out.Rows() != in.Rows() || out.Cols() != in.Cols() || out.Type() != in.Type() {
		t.Fatalf("shape changed: in %dx%d type %d, out %dx%d type %d",
			in.Cols(), in.Rows(), int(in.Type()), out.Cols(), out.Rows(), int(out.Type()))
	}
}

// own fails the test on err and registers the result for Close. It is
// curried so a (mat, err) call can be passed straight through.
func own(t testing.TB) func(*safe.Mat, error) *safe.Mat {
	return func(m *safe.Mat, err error) *safe.Mat {
		t.Helper()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		t.Cleanup(m.Close)
		return m
	}
}
