// Package detector - Face detection over a shared inference engine.
package detector

import (
	"context"
	"sync"
	"time"

	"github.com/nvr-ai/visioncore/common"
	"github.com/nvr-ai/visioncore/images"
	"github.com/nvr-ai/visioncore/inference"
	"github.com/nvr-ai/visioncore/models/model"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Stats counts the work done by a Detector.
type Stats struct {
	Frames      int64
	Faces       int64
	Failures    int64
	LastLatency time.Duration
}

// Detector runs a model on frames through an exclusively held engine.
//
// Detect is safe for concurrent use. Preprocessing and inference are serialized by the
// engine lease; decoding runs outside it on owned copies of the outputs.
type Detector struct {
	model  model.Model
	engine *inference.Exclusive
	logger *zap.Logger

	mu    sync.Mutex
	stats Stats
}

// New creates a detector. A nil logger disables logging.
func New(m model.Model, engine *inference.Exclusive, logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{model: m, engine: engine, logger: logger}
}

// Detect finds the faces in frame, in frame pixel coordinates.
//
// Arguments:
//   - ctx: Bounds the wait for the engine.
//   - frame: The frame, borrowed for the duration of the call.
//
// Returns:
//   - The faces, highest score first. Empty when there are none.
//   - An error if the frame is invalid, the engine fails or its outputs have the wrong shape.
func (d *Detector) Detect(ctx context.Context, frame images.Frame) ([]common.Face, error) {
	start := time.Now()

	outputs, err := d.infer(ctx, frame)
	if err != nil {
		d.record(0, start, err)
		return nil, err
	}

	faces, err := d.model.PostProcess(outputs, frame.Height, frame.Width)
	if err != nil {
		d.record(0, start, err)
		return nil, errors.Wrap(err, "decoding outputs")
	}

	d.record(len(faces), start, nil)
	return faces, nil
}

// infer holds the engine lease for preprocessing and inference only.
func (d *Detector) infer(ctx context.Context, frame images.Frame) (model.Outputs, error) {
	if err := frame.Validate(); err != nil {
		return model.Outputs{}, err
	}

	lease, err := d.engine.Acquire(ctx)
	if err != nil {
		return model.Outputs{}, err
	}
	defer lease.Release()

	input, err := d.model.PreProcess(frame)
	if err != nil {
		return model.Outputs{}, errors.Wrap(err, "preprocessing frame")
	}

	outputs, err := lease.Infer(ctx, input)
	if err != nil {
		return model.Outputs{}, errors.Wrap(err, "running inference")
	}
	return outputs, nil
}

func (d *Detector) record(faces int, start time.Time, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stats.Frames++
	d.stats.Faces += int64(faces)
	d.stats.LastLatency = time.Since(start)
	if err != nil {
		d.stats.Failures++
	}
}

// Stats returns a snapshot of the counters.
func (d *Detector) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// CollectMetrics reports the counters for the profiler.
func (d *Detector) CollectMetrics() map[string]float64 {
	s := d.Stats()
	return map[string]float64{
		"frames":     float64(s.Frames),
		"faces":      float64(s.Faces),
		"failures":   float64(s.Failures),
		"latency_ms": float64(s.LastLatency) / float64(time.Millisecond),
	}
}

// DetectFaces runs Detect and packs the result for a caller across a boundary.
// The buffer must be handed back through FreeFaces.
func (d *Detector) DetectFaces(ctx context.Context, frame images.Frame) (*common.FaceBuffer, error) {
	faces, err := d.Detect(ctx, frame)
	if err != nil {
		return nil, err
	}
	return common.NewFaceBuffer(faces), nil
}

// FreeFaces releases a buffer returned by DetectFaces.
func (d *Detector) FreeFaces(buf *common.FaceBuffer) {
	if buf != nil {
		buf.Release()
	}
}

// Close waits for in-flight inference and closes the engine.
func (d *Detector) Close(ctx context.Context) error {
	stats := d.Stats()
	d.logger.Info("detector closing",
		zap.Int64("frames", stats.Frames),
		zap.Int64("faces", stats.Faces),
		zap.Int64("failures", stats.Failures))
	return d.engine.Close(ctx)
}
