package blazeface

import "github.com/chewxy/math32"

// DefaultConfidenceThreshold is the minimum probability for an anchor to be decoded.
const DefaultConfidenceThreshold = 0.5

// Candidate is an anchor that passed the confidence filter.
type Candidate struct {
	Index       int
	Probability float32
}

// Sigmoid maps a logit to a probability.
func Sigmoid(logit float32) float32 {
	return 1 / (1 + math32.Exp(-logit))
}

// FilterScores keeps the anchors whose probability is at least threshold.
//
// The result is in ascending anchor order. An empty result means no face, not a failure.
func FilterScores(scores []float32, threshold float32) []Candidate {
	candidates := make([]Candidate, 0)
	for i, logit := range scores {
		if p := Sigmoid(logit); p >= threshold {
			candidates = append(candidates, Candidate{Index: i, Probability: p})
		}
	}
	return candidates
}
