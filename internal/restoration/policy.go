package restoration

import (
	"context"
	"fmt"
	"time"

	"photo-restorer/internal/logger"
	"photo-restorer/internal/opencv/safe"
	"photo-restorer/internal/processing/chain"
)

const component = "restoration"

// Decision thresholds, each compared against the image as it stands after
// the preceding steps.
const (
	DarkBrightnessThreshold = 50.0
	LowContrastThreshold    = 50.0
	HazeBrightnessThreshold = 128.0
	NoiseSNRThreshold       = 4.0
)

const (
	LogGammaCorrection   = "Applied gamma correction"
	LogContrastStretch   = "Applied contrast stretching"
	LogDehazing          = "Applied dehazing"
	LogNoiseReductionFmt = "Applied noise reduction (SNR: %.2f)"
	LogSharpening        = "Applied sharpening"
)

type Options struct {
	// Logger receives per-step debug entries. Nil discards them.
	Logger logger.Logger
}

// Restorer runs the adaptive restoration policy. It holds no per-call
// state, so one Restorer may serve concurrent callers.
type Restorer struct {
	chain  *chain.ProcessingChain
	logger logger.Logger
}

// NewRestorer returns a Restorer that logs its decisions to opts.Logger,
// or discards them when it is nil.
func NewRestorer(opts Options) *Restorer {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}

	r := &Restorer{logger: log}
	r.chain = chain.NewProcessingChain(r.steps())
	return r
}

// Restore is the restoration entry point with default options.
func Restore(ctx context.Context, img *safe.Mat) (*safe.Mat, []string, error) {
	return NewRestorer(Options{}).Restore(ctx, img)
}

// Restore takes a BGR 8-bit image and returns a new restored image of the
// same size together with one log line per applied step, in order.
// Sharpening always runs, so the log is never empty on success. The input
// is not modified; the caller owns and must Close the result.
func (r *Restorer) Restore(ctx context.Context, img *safe.Mat) (*safe.Mat, []string, error) {
	if err := validateColorImage(img, "restoration"); err != nil {
		return nil, nil, err
	}

	start := time.Now()
	out, log, err := r.chain.Execute(ctx, img)
	if err != nil {
		r.logger.Error(component, err, map[string]interface{}{
			"width":  img.Cols(),
			"height": img.Rows(),
		})
		return nil, nil, fmt.Errorf("restoration failed: %w", err)
	}

	r.logger.Info(component, "restoration complete", map[string]interface{}{
		"width":    img.Cols(),
		"height":   img.Rows(),
		"steps":    log,
		"duration": time.Since(start),
	})

	return out, log, nil
}

// StepNames lists the steps in evaluation order.
func (r *Restorer) StepNames() []string {
	return r.chain.GetStepNames()
}

func (r *Restorer) steps() []chain.ProcessingStep {
	return []chain.ProcessingStep{
		&guardedStep{
			name:   "gamma_correction",
			logger: r.logger,
			predicate: func(current *safe.Mat) (bool, string, map[string]interface{}) {
				b := Brightness(current)
				return b < DarkBrightnessThreshold, LogGammaCorrection, map[string]interface{}{"brightness": b}
			},
			transform: func(input *safe.Mat) (*safe.Mat, error) {
				return ApplyGamma(input, DefaultGamma)
			},
		},
		&guardedStep{
			name:   "contrast_stretching",
			logger: r.logger,
			predicate: func(current *safe.Mat) (bool, string, map[string]interface{}) {
				c := Contrast(current)
				return c < LowContrastThreshold, LogContrastStretch, map[string]interface{}{"contrast": c}
			},
			transform: r.stretchContrast,
		},
		&guardedStep{
			name:   "dehazing",
			logger: r.logger,
			predicate: func(current *safe.Mat) (bool, string, map[string]interface{}) {
				b := Brightness(current)
				return b < HazeBrightnessThreshold, LogDehazing, map[string]interface{}{"brightness": b}
			},
			transform: r.dehaze,
		},
		&guardedStep{
			name:   "noise_reduction",
			logger: r.logger,
			predicate: func(current *safe.Mat) (bool, string, map[string]interface{}) {
				snr := SignalToNoiseRatio(current)
				return snr < NoiseSNRThreshold, fmt.Sprintf(LogNoiseReductionFmt, snr), map[string]interface{}{"snr": snr}
			},
			transform: Denoise,
		},
		&guardedStep{
			name:   "sharpening",
			logger: r.logger,
			predicate: func(*safe.Mat) (bool, string, map[string]interface{}) {
				return true, LogSharpening, map[string]interface{}{}
			},
			transform: Sharpen,
		},
	}
}

func (r *Restorer) stretchContrast(input *safe.Mat) (*safe.Mat, error) {
	low, high, err := ContrastPercentiles(input)
	if err != nil {
		r.logger.Debug(component, "contrast stretch left image unchanged", map[string]interface{}{
			"reason": err,
		})
	} else {
		r.logger.Debug(component, "contrast percentiles", map[string]interface{}{
			"p_low":  low,
			"p_high": high,
		})
	}
	return StretchContrast(input)
}

func (r *Restorer) dehaze(input *safe.Mat) (*safe.Mat, error) {
	out, atmo, err := dehaze(input, DefaultDehazeOptions())
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{"atmospheric_light": atmo[:]}
	if verr := atmo.Validate(); verr != nil {
		fields["guard"] = verr
	}
	r.logger.Debug(component, "atmospheric light estimated", fields)

	return out, nil
}

// guardedStep is one (predicate, transform, log line) entry of the policy.
type guardedStep struct {
	name      string
	predicate func(current *safe.Mat) (bool, string, map[string]interface{})
	transform func(input *safe.Mat) (*safe.Mat, error)
	logger    logger.Logger
}

func (s *guardedStep) Name() string {
	return s.name
}

func (s *guardedStep) ShouldExecute(current *safe.Mat) (bool, string, error) {
	run, entry, fields := s.predicate(current)
	fields["step"] = s.name
	fields["applies"] = run
	s.logger.Debug(component, "step evaluated", fields)
	return run, entry, nil
}

func (s *guardedStep) Apply(ctx context.Context, input *safe.Mat) (*safe.Mat, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	return s.transform(input)
}

// validateColorImage maps the safe validators' failures onto ErrEmptyImage
// and ErrUnsupportedImage.
func validateColorImage(img *safe.Mat, operation string) error {
	if err := safe.ValidateMatForOperation(img, operation); err != nil {
		return fmt.Errorf("%w: %v", ErrEmptyImage, err)
	}
	if err := safe.ValidateColorMat(img, operation); err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	return nil
}
