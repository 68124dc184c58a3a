package common

import "sync"

// FaceBuffer is a contiguous block of face records handed across a boundary.
//
// The producer allocates the buffer; the consumer hands it back through Release, which is the
// only way to free it. Release is idempotent and a released buffer reads as empty.
type FaceBuffer struct {
	mu      sync.Mutex
	records []FaceRecord
}

// NewFaceBuffer packs faces into a freshly allocated buffer.
func NewFaceBuffer(faces []Face) *FaceBuffer {
	records := make([]FaceRecord, len(faces))
	for i, f := range faces {
		records[i] = f.Record()
	}
	return &FaceBuffer{records: records}
}

// Len returns the number of records, 0 after Release.
func (b *FaceBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.records)
}

// Records returns a copy of the records. The copy stays valid after Release.
func (b *FaceBuffer) Records() []FaceRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]FaceRecord, len(b.records))
	copy(out, b.records)
	return out
}

// Release frees the records.
func (b *FaceBuffer) Release() {
	b.mu.Lock()
	b.records = nil
	b.mu.Unlock()
}
