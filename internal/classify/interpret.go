package classify

import (
	"errors"
	"fmt"
)

// ErrScoreVector reports a score vector that is empty or does not
// match the label vocabulary. This means the model and the vocabulary
// disagree about the class count; guessing a label would silently
// misdiagnose, so it fails instead.
var ErrScoreVector = errors.New("classify: score vector does not match label vocabulary")

// Diagnosis is the final classification result. Confidence is the
// winning raw score expressed as a percentage with two decimals; the
// model's outputs are relative scores, not calibrated probabilities.
type Diagnosis struct {
	Label      string `json:"label"`
	Confidence string `json:"confidence"`
}

// Interpret selects the highest-scoring class and maps it through the
// vocabulary. Ties resolve to the lowest index.
func Interpret(scores []float32, labels []string) (Diagnosis, error) {
	if len(scores) == 0 || len(scores) != len(labels) {
		return Diagnosis{}, fmt.Errorf("%w: got %d scores for %d labels",
			ErrScoreVector, len(scores), len(labels))
	}

	best := 0
	for i, score := range scores {
		if score > scores[best] {
			best = i
		}
	}

	return Diagnosis{
		Label:      labels[best],
		Confidence: fmt.Sprintf("%.2f%%", scores[best]*100),
	}, nil
}
