package classify

import (
	"errors"
	"testing"
)

var testLabels = []string{
	"Bacterial Leaf Blight",
	"Brown Spot",
	"Healthy",
	"Leaf Blast",
	"Leaf Scald",
	"Narrow Brown Spot",
	"Sheath Blight",
}

func TestInterpretPicksMax(t *testing.T) {
	d, err := Interpret([]float32{0.1, 0.05, 0.6, 0.1, 0.05, 0.05, 0.05}, testLabels)
	if err != nil {
		t.Fatalf("Interpret failed: %v", err)
	}
	if d.Label != "Healthy" {
		t.Errorf("expected label at index 2 (Healthy), got %q", d.Label)
	}
	if d.Confidence != "60.00%" {
		t.Errorf("expected confidence 60.00%%, got %q", d.Confidence)
	}
}

func TestInterpretTieBreaksToLowestIndex(t *testing.T) {
	d, err := Interpret([]float32{0.5, 0.5, 0, 0, 0, 0, 0}, testLabels)
	if err != nil {
		t.Fatalf("Interpret failed: %v", err)
	}
	if d.Label != testLabels[0] {
		t.Errorf("expected tie to resolve to index 0, got %q", d.Label)
	}
	if d.Confidence != "50.00%" {
		t.Errorf("expected confidence 50.00%%, got %q", d.Confidence)
	}
}

func TestInterpretRejectsMismatch(t *testing.T) {
	cases := []struct {
		name   string
		scores []float32
	}{
		{"short vector", []float32{0.1, 0.2, 0.3, 0.2, 0.2}},
		{"empty vector", nil},
		{"long vector", make([]float32, 9)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Interpret(tc.scores, testLabels); !errors.Is(err, ErrScoreVector) {
				t.Fatalf("expected ErrScoreVector, got %v", err)
			}
		})
	}
}

func TestInterpretUnnormalizedScores(t *testing.T) {
	// Raw logits are valid input; scores are relative, not
	// probabilities.
	d, err := Interpret([]float32{-3, 12.5, 4, 0, -1, 2, 3}, testLabels)
	if err != nil {
		t.Fatalf("Interpret failed: %v", err)
	}
	if d.Label != "Brown Spot" {
		t.Errorf("expected Brown Spot, got %q", d.Label)
	}
	if d.Confidence != "1250.00%" {
		t.Errorf("expected 1250.00%%, got %q", d.Confidence)
	}
}
