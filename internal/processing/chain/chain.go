package chain

import (
	"context"
	"fmt"

	"photo-restorer/internal/opencv/safe"
)

// ProcessingStep is one guarded stage. ShouldExecute inspects the current
// image and, when the step applies, returns the log line to record for it.
type ProcessingStep interface {
	Name() string
	ShouldExecute(current *safe.Mat) (bool, string, error)
	Apply(ctx context.Context, input *safe.Mat) (*safe.Mat, error)
}

type ProcessingChain struct {
	steps []ProcessingStep
}

func NewProcessingChain(steps []ProcessingStep) *ProcessingChain {
	return &ProcessingChain{
		steps: steps,
	}
}

// Execute threads input through every step in order. The input is never
// closed or modified; the returned Mat is always a new Mat owned by the
// caller, together with one log line per applied step.
func (pc *ProcessingChain) Execute(ctx context.Context, input *safe.Mat) (*safe.Mat, []string, error) {
	current := input
	log := make([]string, 0, len(pc.steps))

	release := func() {
		if current != input {
			current.Close()
		}
	}

	for _, step := range pc.steps {
		select {
		case <-ctx.Done():
			release()
			return nil, nil, ctx.Err()
		default:
		}

		run, entry, err := step.ShouldExecute(current)
		if err != nil {
			release()
			return nil, nil, fmt.Errorf("step %s evaluation failed: %w", step.Name(), err)
		}
		if !run {
			continue
		}

		result, err := step.Apply(ctx, current)
		if err != nil {
			release()
			return nil, nil, fmt.Errorf("step %s failed: %w", step.Name(), err)
		}

		release()
		current = result
		log = append(log, entry)
	}

	if current == input {
		clone, err := input.Clone()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to copy unmodified input: %w", err)
		}
		current = clone
	}

	return current, log, nil
}

func (pc *ProcessingChain) GetStepNames() []string {
	names := make([]string, len(pc.steps))
	for i, step := range pc.steps {
		names[i] = step.Name()
	}
	return names
}
