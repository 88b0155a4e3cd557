package restoration

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"

	"photo-restorer/internal/logger"
	"photo-restorer/internal/opencv/safe"

	"github.com/rs/zerolog"
	"gocv.io/x/gocv"
)

// expectedLog replays the decision procedure with the exported building
// blocks so that every threshold is checked against the image as it
// stands after the preceding steps.
func expectedLog(t *testing.T, img *safe.Mat) []string {
	t.Helper()

	current, err := img.Clone()
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	replace := func(next *safe.Mat, err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("replay step failed: %v", err)
		}
		current.Close()
		current = next
	}

	var log []string
	if Brightness(current) < DarkBrightnessThreshold {
		replace(ApplyGamma(current, DefaultGamma))
		log = append(log, LogGammaCorrection)
	}
	if Contrast(current) < LowContrastThreshold {
		replace(StretchContrast(current))
		log = append(log, LogContrastStretch)
	}
	if Brightness(current) < HazeBrightnessThreshold {
		replace(Dehaze(current))
		log = append(log, LogDehazing)
	}
	if snr := SignalToNoiseRatio(current); snr < NoiseSNRThreshold {
		replace(Denoise(current))
		log = append(log, fmt.Sprintf(LogNoiseReductionFmt, snr))
	}
	current.Close()
	return append(log, LogSharpening)
}

func restore(t *testing.T, img *safe.Mat) (*safe.Mat, []string) {
	t.Helper()
	out, log, err := Restore(context.Background(), img)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	t.Cleanup(out.Close)
	return out, log
}

func TestRestoreWellExposedImageOnlySharpens(t *testing.T) {
	// One pixel in five at 120, the rest at 255:
	// brightness 228, contrast 54, SNR 4.22.
	img := newGray(t, 20, 20, func(r, c int) uint8 {
		if (r*20+c)%5 == 0 {
			return 120
		}
		return 255
	})

	out, log := restore(t, img)
	assertSameShape(t, img, out)

	if want := []string{LogSharpening}; !reflect.DeepEqual(log, want) {
		t.Fatalf("log = %q, want %q", log, want)
	}
}

func TestRestoreDarkImageFollowsRecomputedStatistics(t *testing.T) {
	// Dark and fairly contrasty, so gamma runs first and the later
	// decisions depend on the brightened image.
	img := newGray(t, 32, 32, func(r, c int) uint8 {
		if (r/4+c/4)%2 == 0 {
			return 5
		}
		return 70
	})
	if b := Brightness(img); b >= DarkBrightnessThreshold {
		t.Fatalf("fixture brightness %v is not dark", b)
	}

	want := expectedLog(t, img)
	_, log := restore(t, img)

	if !reflect.DeepEqual(log, want) {
		t.Fatalf("log = %q, want %q", log, want)
	}
	if log[0] != LogGammaCorrection {
		t.Fatalf("first entry = %q, want gamma correction", log[0])
	}
}

func TestRestoreNoisyImageReportsSNR(t *testing.T) {
	img := newGray(t, 32, 32, func(r, c int) uint8 {
		if (r*7+c*13)%3 == 0 {
			return 250
		}
		return 30
	})

	want := expectedLog(t, img)
	_, log := restore(t, img)

	if !reflect.DeepEqual(log, want) {
		t.Fatalf("log = %q, want %q", log, want)
	}
	var found bool
	for _, entry := range log {
		if strings.HasPrefix(entry, "Applied noise reduction (SNR: ") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a noise reduction entry in %q", log)
	}
}

func TestRestoreAllBlackImage(t *testing.T) {
	img := newSolid(t, 16, 16, 0, 0, 0)

	out, log := restore(t, img)
	assertSameShape(t, img, out)

	want := []string{LogGammaCorrection, LogContrastStretch, LogDehazing, LogSharpening}
	if !reflect.DeepEqual(log, want) {
		t.Fatalf("log = %q, want %q", log, want)
	}
}

func TestRestoreDoesNotModifyInput(t *testing.T) {
	img := newImage(t, 12, 12, func(r, c int) (uint8, uint8, uint8) {
		return uint8(r * 3), uint8(c * 5), uint8(r + c)
	})
	before := pixels(t, img)

	out, _ := restore(t, img)
	if out == img {
		t.Fatalf("Restore returned its input")
	}
	if after := pixels(t, img); !bytes.Equal(before, after) {
		t.Fatalf("input pixels changed")
	}
}

func TestRestorePreservesShapeAcrossSizes(t *testing.T) {
	for _, size := range [][2]int{{1, 1}, {1, 17}, {3, 2}, {31, 47}} {
		img := newImage(t, size[0], size[1], func(r, c int) (uint8, uint8, uint8) {
			return uint8(r * 11), uint8(c * 7), uint8((r * c) % 256)
		})
		out, log := restore(t, img)
		assertSameShape(t, img, out)
		if len(log) == 0 || log[len(log)-1] != LogSharpening {
			t.Fatalf("%v: log must end with sharpening, got %q", size, log)
		}
	}
}

func TestRestoreRejectsInvalidInput(t *testing.T) {
	if _, _, err := Restore(context.Background(), nil); !errors.Is(err, ErrEmptyImage) {
		t.Fatalf("nil: expected ErrEmptyImage, got %v", err)
	}

	closed, err := safe.NewMat(2, 2, gocv.MatTypeCV8UC3)
	if err != nil {
		t.Fatalf("NewMat: %v", err)
	}
	closed.Close()
	if _, _, err := Restore(context.Background(), closed); !errors.Is(err, ErrEmptyImage) {
		t.Fatalf("closed: expected ErrEmptyImage, got %v", err)
	}

	gray, err := safe.NewMat(2, 2, gocv.MatTypeCV8UC1)
	if err != nil {
		t.Fatalf("NewMat: %v", err)
	}
	defer gray.Close()
	if _, _, err := Restore(context.Background(), gray); !errors.Is(err, ErrUnsupportedImage) {
		t.Fatalf("gray: expected ErrUnsupportedImage, got %v", err)
	}

	// Three channels are not enough: the depth must be 8-bit too.
	float, err := safe.NewMat(2, 2, gocv.MatTypeCV32FC3)
	if err != nil {
		t.Fatalf("NewMat: %v", err)
	}
	defer float.Close()
	_, _, err = Restore(context.Background(), float)
	if !errors.Is(err, ErrUnsupportedImage) {
		t.Fatalf("float: expected ErrUnsupportedImage, got %v", err)
	}
	if !strings.Contains(err.Error(), "8-bit 3-channel") {
		t.Fatalf("float: validator detail lost: %v", err)
	}
}

func TestRestoreHonoursCancelledContext(t *testing.T) {
	img := newSolid(t, 4, 4, 10, 10, 10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := Restore(ctx, img); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRestorerLogsEachDecision(t *testing.T) {
	var buf bytes.Buffer
	r := NewRestorer(Options{Logger: logger.NewZerolog(&buf, zerolog.DebugLevel)})

	img := newSolid(t, 8, 8, 200, 200, 200)
	out, _, err := r.Restore(context.Background(), img)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	defer out.Close()

	for _, name := range r.StepNames() {
		if !strings.Contains(buf.String(), `"step":"`+name+`"`) {
			t.Fatalf("no debug entry for step %s in %s", name, buf.String())
		}
	}
	if !strings.Contains(buf.String(), "restoration complete") {
		t.Fatalf("missing completion entry")
	}
}

func TestRestorerIsReentrant(t *testing.T) {
	r := NewRestorer(Options{})
	img := newGray(t, 16, 16, func(r, c int) uint8 { return uint8(r*8 + c) })
	want := expectedLog(t, img)

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, log, err := r.Restore(context.Background(), img)
			if err != nil {
				errs <- err
				return
			}
			defer out.Close()
			if !reflect.DeepEqual(log, want) {
				errs <- fmt.Errorf("log = %q, want %q", log, want)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
}
