package blazeface

import "github.com/pkg/errors"

var (
	// ErrShapeMismatch is returned when the engine outputs do not match the fixed topology.
	// The frame must be dropped; it is never partially decoded.
	ErrShapeMismatch = errors.New("blazeface: output shape mismatch")
	// ErrAnchorCount is returned when an anchor table does not hold exactly NumAnchors entries.
	ErrAnchorCount = errors.New("blazeface: unexpected anchor count")
)
