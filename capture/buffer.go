// Package capture - Frame acquisition and the latest-frame buffer feeding detection.
package capture

import (
	"context"
	"sync"

	"github.com/nvr-ai/visioncore/images"
)

// FrameBuffer holds the most recent frame.
//
// Publish never blocks: a new frame replaces one nobody consumed yet and the replaced frame
// is counted as dropped. Consumers wait for a sequence number newer than the last one they saw.
type FrameBuffer struct {
	mu      sync.Mutex
	frame   images.Frame
	seq     uint64
	taken   bool
	drops   uint64
	changed chan struct{}
}

// NewFrameBuffer creates an empty buffer.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{changed: make(chan struct{})}
}

// Publish stores frame as the latest. The buffer takes ownership of frame.Data.
func (b *FrameBuffer) Publish(frame images.Frame) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.seq > 0 && !b.taken {
		b.drops++
	}
	b.frame = frame
	b.seq++
	b.taken = false

	close(b.changed)
	b.changed = make(chan struct{})
	return b.seq
}

// Latest returns the current frame and its sequence number, 0 when nothing was published.
func (b *FrameBuffer) Latest() (images.Frame, uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.seq > 0 {
		b.taken = true
	}
	return b.frame, b.seq
}

// Next waits for a frame newer than afterSeq.
//
// The returned frame is shared with other consumers and must not be modified.
func (b *FrameBuffer) Next(ctx context.Context, afterSeq uint64) (images.Frame, uint64, error) {
	for {
		b.mu.Lock()
		if b.seq > afterSeq {
			frame, seq := b.frame, b.seq
			b.taken = true
			b.mu.Unlock()
			return frame, seq, nil
		}
		changed := b.changed
		b.mu.Unlock()

		select {
		case <-ctx.Done():
			return images.Frame{}, afterSeq, ctx.Err()
		case <-changed:
		}
	}
}

// Drops returns how many frames were overwritten before being read.
func (b *FrameBuffer) Drops() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.drops
}
