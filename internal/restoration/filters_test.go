package restoration

import (
	"errors"
	"testing"
)

func TestDenoiseSmoothsImpulse(t *testing.T) {
	img := newImage(t, 9, 9, func(r, c int) (uint8, uint8, uint8) {
		if r == 4 && c == 4 {
			return 255, 255, 255
		}
		return 100, 100, 100
	})

	out := own(t)(Denoise(img))
	assertSameShape(t, img, out)

	in, got := pixels(t, img), pixels(t, out)
	centre := (4*9 + 4) * 3
	if got[centre] >= in[centre] || got[centre] <= 100 {
		t.Fatalf("impulse not smoothed: %d -> %d", in[centre], got[centre])
	}
	neighbour := (4*9 + 5) * 3
	if got[neighbour] <= 100 {
		t.Fatalf("neighbour should pick up some of the impulse, got %d", got[neighbour])
	}
	if Contrast(out) >= Contrast(img) {
		t.Fatalf("denoise increased variance: %v -> %v", Contrast(img), Contrast(out))
	}
}

func TestDenoiseKeepsConstantImage(t *testing.T) {
	img := newSolid(t, 7, 5, 12, 34, 56)
	out := own(t)(Denoise(img))
	got := pixels(t, out)
	for i := 0; i < len(got); i += 3 {
		if got[i] != 12 || got[i+1] != 34 || got[i+2] != 56 {
			t.Fatalf("pixel %d changed: %v", i/3, got[i:i+3])
		}
	}
}

func TestSharpenIncreasesVariance(t *testing.T) {
	// Vertical step edge with a soft ramp.
	img := newGray(t, 24, 24, func(r, c int) uint8 {
		switch {
		case c < 10:
			return 90
		case c < 14:
			return uint8(90 + (c-9)*15)
		default:
			return 165
		}
	})

	out := own(t)(Sharpen(img))
	assertSameShape(t, img, out)

	if Contrast(out) < Contrast(img) {
		t.Fatalf("sharpened variance %v < original %v", Contrast(out), Contrast(img))
	}
	// Overshoot next to the edge on the dark side.
	got := pixels(t, out)
	if got[(12*24+9)*3] >= 90 {
		t.Fatalf("expected undershoot at dark side of edge, got %d", got[(12*24+9)*3])
	}
}

func TestSharpenKeepsConstantImage(t *testing.T) {
	img := newSolid(t, 6, 6, 40, 80, 120)
	out := own(t)(Sharpen(img))
	got := pixels(t, out)
	for i := 0; i < len(got); i += 3 {
		if got[i] != 40 || got[i+1] != 80 || got[i+2] != 120 {
			t.Fatalf("pixel %d changed: %v", i/3, got[i:i+3])
		}
	}
}

func TestSharpenRejectsInvalidParameters(t *testing.T) {
	img := newSolid(t, 2, 2, 1, 1, 1)
	if _, err := SharpenWithStrength(img, 0, 1.5); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("sigma 0: expected ErrInvalidParameter, got %v", err)
	}
	if _, err := SharpenWithStrength(img, 1, -1); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("negative strength: expected ErrInvalidParameter, got %v", err)
	}
}
