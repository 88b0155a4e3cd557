package restoration

import (
	"errors"
	"math"
	"testing"
)

func TestPercentileMatchesLinearInterpolation(t *testing.T) {
	var hist [256]int
	// values 0..99 once each
	for v := 0; v < 100; v++ {
		hist[v]++
	}
	cases := []struct {
		q    float64
		want float64
	}{
		{0, 0},
		{2, 1.98},
		{50, 49.5},
		{98, 97.02},
		{100, 99},
	}
	for _, tc := range cases {
		if got := percentile(&hist, 100, tc.q); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("percentile(%v) = %v, want %v", tc.q, got, tc.want)
		}
	}
}

func TestStretchContrastExpandsRange(t *testing.T) {
	// 100 + (r*10+c)%50 spans 100..149.
	img := newGray(t, 10, 10, func(r, c int) uint8 { return uint8(100 + (r*10+c)%50) })

	low, high, err := ContrastPercentiles(img)
	if err != nil {
		t.Fatalf("ContrastPercentiles: %v", err)
	}
	if low < 100 || high > 149 || low >= high {
		t.Fatalf("percentiles = %v, %v", low, high)
	}

	out := own(t)(StretchContrast(img))
	assertSameShape(t, img, out)

	if Contrast(out) <= Contrast(img) {
		t.Fatalf("contrast did not increase: %v -> %v", Contrast(img), Contrast(out))
	}
	got := pixels(t, out)
	var sawZero, saw255 bool
	for _, v := range got {
		sawZero = sawZero || v == 0
		saw255 = saw255 || v == 255
	}
	if !sawZero || !saw255 {
		t.Fatalf("stretched image does not reach both ends of the range")
	}
}

func TestStretchContrastIdempotentWhenFullyStretched(t *testing.T) {
	// 10% black, 10% white, the rest a ramp: p2 = 0 and p98 = 255.
	img := newGray(t, 20, 20, func(r, c int) uint8 {
		i := r*20 + c
		switch {
		case i < 40:
			return 0
		case i >= 360:
			return 255
		default:
			return uint8((i - 40) * 255 / 320)
		}
	})

	once := own(t)(StretchContrast(img))
	twice := own(t)(StretchContrast(once))

	a, b := pixels(t, once), pixels(t, twice)
	for i := range a {
		d := int(a[i]) - int(b[i])
		if d < -1 || d > 1 {
			t.Fatalf("component %d changed by %d on second stretch", i, d)
		}
	}
}

func TestStretchContrastDegenerateImageIsUnchanged(t *testing.T) {
	img := newSolid(t, 6, 6, 90, 90, 90)

	if _, _, err := ContrastPercentiles(img); !errors.Is(err, ErrDegenerateImage) {
		t.Fatalf("expected ErrDegenerateImage, got %v", err)
	}

	out := own(t)(StretchContrast(img))
	assertSameShape(t, img, out)
	for i, v := range pixels(t, out) {
		if v != 90 {
			t.Fatalf("component %d = %d, want 90", i, v)
		}
	}
}

func TestStretchTable(t *testing.T) {
	table := StretchTable(50, 150)
	if table[0] != 0 || table[50] != 0 {
		t.Fatalf("values at or below low must map to 0: %d %d", table[0], table[50])
	}
	if table[150] != 255 || table[255] != 255 {
		t.Fatalf("values at or above high must map to 255: %d %d", table[150], table[255])
	}
	if table[100] != 128 {
		t.Fatalf("midpoint = %d, want 128", table[100])
	}

	identity := StretchTable(7, 7)
	for i, v := range identity {
		if int(v) != i {
			t.Fatalf("collapsed range should be identity, table[%d] = %d", i, v)
		}
	}
}
