package processor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
)

// Processor is a single image transformation step.
type Processor interface {
	// Identifier is stable between runs and covers every parameter
	// that affects the output, two processors with the same identifier
	// must produce the same pixels.
	Identifier() string

	Process(img image.Image) (image.Image, error)
}

// Apply runs the processors in order. The context is checked before
// every step.
func Apply(ctx context.Context, processors []Processor, img image.Image) (image.Image, error) {
	for _, proc := range processors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		output, err := proc.Process(img)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", proc.Identifier(), err)
		}

		if output == nil {
			return nil, fmt.Errorf("%s: %w", proc.Identifier(), ErrEmptyOutput)
		}

		img = output
	}

	return img, nil
}

// Identifiers joins identifiers of all processors, preserving order.
func Identifiers(processors []Processor) string {
	ids := make([]string, len(processors))
	for i, proc := range processors {
		ids[i] = proc.Identifier()
	}

	return strings.Join(ids, "|")
}

var (
	ErrEmptyOutput       = errors.New("processor returned no image")
	ErrInvalidParameters = errors.New("invalid processor parameters")
)
