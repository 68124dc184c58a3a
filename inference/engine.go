// Package inference - Inference engine interface and implementations.
package inference

import (
	"context"

	"github.com/nvr-ai/visioncore/models/model"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

var (
	// ErrClosed is returned when running a closed engine.
	ErrClosed = errors.New("inference: engine closed")
	// ErrInputShape is returned when the input tensor does not match the session input.
	ErrInputShape = errors.New("inference: input shape mismatch")
)

// Engine runs a model on one preprocessed input at a time.
//
// Implementations are not safe for concurrent use; share one through Exclusive.
// The returned outputs are owned by the caller and stay valid after the next Run.
type Engine interface {
	Run(ctx context.Context, input *tensor.Dense) (model.Outputs, error)
	Close() error
}
