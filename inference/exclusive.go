package inference

import (
	"context"
	"sync"

	"github.com/nvr-ai/visioncore/models/model"
	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"
	"gorgonia.org/tensor"
)

// ErrLeaseReleased is returned when a released lease is used.
var ErrLeaseReleased = errors.New("inference: lease released")

// Exclusive guards an Engine so that at most one caller runs it at a time.
type Exclusive struct {
	engine Engine
	sem    *semaphore.Weighted
}

// NewExclusive wraps engine for exclusive access.
func NewExclusive(engine Engine) *Exclusive {
	return &Exclusive{engine: engine, sem: semaphore.NewWeighted(1)}
}

// Lease is exclusive access to an engine until Release.
type Lease struct {
	owner *Exclusive
	once  sync.Once
	mu    sync.Mutex
	done  bool
}

// Acquire waits for exclusive access or for ctx to end.
//
// The caller must Release the lease on every path, usually with defer.
func (e *Exclusive) Acquire(ctx context.Context) (*Lease, error) {
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return nil, errors.Wrap(err, "acquiring inference engine")
	}
	return &Lease{owner: e}, nil
}

// Infer runs the engine under the lease.
func (l *Lease) Infer(ctx context.Context, input *tensor.Dense) (model.Outputs, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.done {
		return model.Outputs{}, ErrLeaseReleased
	}
	return l.owner.engine.Run(ctx, input)
}

// Release gives up the lease. Only the first call has an effect.
func (l *Lease) Release() {
	l.once.Do(func() {
		l.mu.Lock()
		l.done = true
		l.mu.Unlock()
		l.owner.sem.Release(1)
	})
}

// Infer acquires a lease, runs one input and releases it.
func (e *Exclusive) Infer(ctx context.Context, input *tensor.Dense) (model.Outputs, error) {
	lease, err := e.Acquire(ctx)
	if err != nil {
		return model.Outputs{}, err
	}
	defer lease.Release()
	return lease.Infer(ctx, input)
}

// Close waits for the current lease to end and closes the engine.
func (e *Exclusive) Close(ctx context.Context) error {
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return errors.Wrap(err, "waiting for inference engine")
	}
	defer e.sem.Release(1)
	return e.engine.Close()
}
