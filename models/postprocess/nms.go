// Package postprocess - provides Non-Maximum Suppression for detection results.
package postprocess

import (
	"sort"

	"github.com/nvr-ai/visioncore/images"
)

// DefaultIoUThreshold is the overlap above which a lower scoring box is suppressed.
//
// It is stricter than the usual 0.5 because BlazeFace emits many near-identical boxes per face.
const DefaultIoUThreshold = 0.2

// NMSConfig defines parameters for Non-Maximum Suppression.
type NMSConfig struct {
	IoUThreshold  float32 `json:"iou_threshold" yaml:"iou_threshold" mapstructure:"iou_threshold"`    // Overlap threshold for suppression.
	ClassAware    bool    `json:"class_aware" yaml:"class_aware" mapstructure:"class_aware"`          // If true, suppress only within same class.
	MaxDetections int     `json:"max_detections" yaml:"max_detections" mapstructure:"max_detections"` // Cap on kept results, 0 keeps all.
}

// DefaultNMSConfig returns the configuration used for face detection.
func DefaultNMSConfig() *NMSConfig {
	return &NMSConfig{IoUThreshold: DefaultIoUThreshold}
}

// SortByScore returns a copy of detections ordered by descending score.
//
// The sort is stable, so equal scores keep their original relative order and the output is
// deterministic for a given input.
func SortByScore(detections []Result) []Result {
	sorted := make([]Result, len(detections))
	copy(sorted, detections)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	return sorted
}

// ApplyGreedyNMS performs standard greedy Non-Maximum Suppression.
//
// Candidates are visited from the highest score down. A candidate is kept only when its IoU
// with every box kept so far is at most config.IoUThreshold. The input slice is not modified.
//
// Arguments:
//   - detections: Candidate detections in any order.
//   - config: NMS configuration. A nil config uses DefaultNMSConfig.
//
// Returns:
//   - Kept detections, highest score first. Nil when detections is empty.
func ApplyGreedyNMS(detections []Result, config *NMSConfig) []Result {
	n := len(detections)
	if n == 0 {
		return nil
	}
	if config == nil {
		config = DefaultNMSConfig()
	}

	sorted := SortByScore(detections)
	filtered := make([]Result, 0, n)

	for _, candidate := range sorted {
		if config.MaxDetections > 0 && len(filtered) >= config.MaxDetections {
			break
		}
		if overlapsKept(candidate, filtered, config) {
			continue
		}
		filtered = append(filtered, candidate)
	}

	return filtered
}

// overlapsKept reports whether candidate overlaps any kept box beyond the threshold.
func overlapsKept(candidate Result, kept []Result, config *NMSConfig) bool {
	for _, k := range kept {
		if config.ClassAware && k.Class != candidate.Class {
			continue
		}
		if images.CalculateIoU(k.Box, candidate.Box) > config.IoUThreshold {
			return true
		}
	}
	return false
}
