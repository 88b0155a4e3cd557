package restoration

import (
	"errors"
	"math"
	"testing"
)

func TestGammaTable(t *testing.T) {
	table, err := GammaTable(DefaultGamma)
	if err != nil {
		t.Fatalf("GammaTable: %v", err)
	}
	if table[0] != 0 || table[255] != 255 {
		t.Fatalf("endpoints = %d, %d, want 0, 255", table[0], table[255])
	}
	for i := 1; i < 256; i++ {
		want := uint8(math.Round(math.Pow(float64(i)/255, 1/DefaultGamma) * 255))
		if table[i] != want {
			t.Fatalf("table[%d] = %d, want %d", i, table[i], want)
		}
		if table[i] < table[i-1] {
			t.Fatalf("table not monotonic at %d", i)
		}
		if table[i] < uint8(i) {
			t.Fatalf("gamma > 1 should brighten: table[%d] = %d", i, table[i])
		}
	}
}

func TestGammaOneIsIdentity(t *testing.T) {
	img := newImage(t, 16, 16, func(r, c int) (uint8, uint8, uint8) {
		v := uint8(r*16 + c)
		return v, 255 - v, v / 2
	})

	out := own(t)(ApplyGamma(img, 1))
	assertSameShape(t, img, out)

	in, got := pixels(t, img), pixels(t, out)
	for i := range in {
		if in[i] != got[i] {
			t.Fatalf("component %d: %d -> %d with gamma 1", i, in[i], got[i])
		}
	}
}

func TestApplyGammaBrightensShadows(t *testing.T) {
	img := newSolid(t, 4, 4, 20, 40, 60)
	out := own(t)(ApplyGamma(img, DefaultGamma))

	if Brightness(out) <= Brightness(img) {
		t.Fatalf("brightness did not increase: %v -> %v", Brightness(img), Brightness(out))
	}
	table, _ := GammaTable(DefaultGamma)
	got := pixels(t, out)
	if got[0] != table[20] || got[1] != table[40] || got[2] != table[60] {
		t.Fatalf("pixel = %v, want %d %d %d", got[:3], table[20], table[40], table[60])
	}
}

func TestApplyGammaRejectsInvalidGamma(t *testing.T) {
	img := newSolid(t, 2, 2, 1, 2, 3)
	for _, g := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := ApplyGamma(img, g); !errors.Is(err, ErrInvalidParameter) {
			t.Fatalf("gamma %v: expected ErrInvalidParameter, got %v", g, err)
		}
	}
}

func TestApplyGammaRejectsEmptyImage(t *testing.T) {
	if _, err := ApplyGamma(nil, 1.5); !errors.Is(err, ErrEmptyImage) {
		t.Fatalf("expected ErrEmptyImage, got %v", err)
	}
}
