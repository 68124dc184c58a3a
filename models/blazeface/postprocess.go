package blazeface

import (
	"github.com/nvr-ai/visioncore/common"
	"github.com/nvr-ai/visioncore/models/postprocess"
	"github.com/pkg/errors"
)

// Detect decodes one frame of raw outputs into faces in source frame pixels.
//
// Arguments:
//   - deltas: The regression tensor, NumAnchors*DeltaStride values.
//   - scores: The score logits, NumAnchors values.
//   - anchors: The anchor table. Nil uses the shared table from Anchors.
//   - confidenceThreshold: Minimum probability for an anchor to be considered.
//   - iouThreshold: Overlap above which a lower scoring box is suppressed.
//   - imageHeight: The source frame height in pixels.
//   - imageWidth: The source frame width in pixels.
//
// Returns:
//   - The faces, highest score first. Empty when nothing passes the threshold.
//   - ErrShapeMismatch or ErrAnchorCount when the inputs break the fixed topology.
func Detect(
	deltas, scores []float32,
	anchors []Anchor,
	confidenceThreshold, iouThreshold float32,
	imageHeight, imageWidth int,
) ([]common.Face, error) {
	return decode(deltas, scores, anchors, confidenceThreshold,
		&postprocess.NMSConfig{IoUThreshold: iouThreshold}, imageHeight, imageWidth)
}

func decode(
	deltas, scores []float32,
	anchors []Anchor,
	confidenceThreshold float32,
	nms *postprocess.NMSConfig,
	imageHeight, imageWidth int,
) ([]common.Face, error) {
	if anchors == nil {
		var err error
		if anchors, err = Anchors(); err != nil {
			return nil, err
		}
	}
	if err := checkShapes(deltas, scores, anchors); err != nil {
		return nil, err
	}

	candidates := FilterScores(scores, confidenceThreshold)
	if len(candidates) == 0 {
		return []common.Face{}, nil
	}

	results := make([]postprocess.Result, len(candidates))
	for i, c := range candidates {
		row := deltas[c.Index*DeltaStride : (c.Index+1)*DeltaStride]
		results[i] = postprocess.Result{
			Box:    DecodeBox(anchors[c.Index], row, InputSize),
			Score:  c.Probability,
			Anchor: c.Index,
		}
	}

	kept := postprocess.ApplyGreedyNMS(results, nms)

	faces := make([]common.Face, len(kept))
	for i, r := range kept {
		faces[i] = common.NewFace(r.Box, anchors[r.Anchor].Center(), r.Score, imageHeight, imageWidth)
	}
	return faces, nil
}

func checkShapes(deltas, scores []float32, anchors []Anchor) error {
	if len(anchors) != NumAnchors {
		return errors.Wrapf(ErrAnchorCount, "got %d anchors, want %d", len(anchors), NumAnchors)
	}
	if len(scores) != NumAnchors {
		return errors.Wrapf(ErrShapeMismatch, "got %d scores, want %d", len(scores), NumAnchors)
	}
	if len(deltas) != NumAnchors*DeltaStride {
		return errors.Wrapf(ErrShapeMismatch, "got %d deltas, want %d", len(deltas), NumAnchors*DeltaStride)
	}
	return nil
}
