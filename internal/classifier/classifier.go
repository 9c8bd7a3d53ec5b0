package classifier

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// Common errors returned by classifiers.
var (
	// ErrEmptyText is returned when the text to classify is empty.
	ErrEmptyText = errors.New("text to classify cannot be empty")

	// ErrInvalidScores is returned when a model produced scores that can't be
	// turned into a probability pair.
	ErrInvalidScores = errors.New("invalid classifier scores")
)

// Labels is the ordered pair of labels a text is scored against.
type Labels [2]string

// Probabilities holds one probability per label. The two values sum to 1.
type Probabilities [2]float64

// Classifier scores a text against two labels.
// Implementations must be safe for concurrent use.
type Classifier interface {
	// Predict returns the normalized probability that text entails each label.
	Predict(ctx context.Context, text string, labels Labels) (Probabilities, error)
}

// Func adapts an ordinary function to the Classifier interface.
type Func func(ctx context.Context, text string, labels Labels) (Probabilities, error)

// Predict calls f.
func (f Func) Predict(ctx context.Context, text string, labels Labels) (Probabilities, error) {
	return f(ctx, text, labels)
}

// Normalize converts raw per-label scores into a Probabilities value whose
// entries sum to 1. Scores must be finite and non-negative with a positive sum.
func Normalize(scores []float64) (Probabilities, error) {
	if len(scores) != 2 {
		return Probabilities{}, fmt.Errorf("%w: expected 2 scores, got %d", ErrInvalidScores, len(scores))
	}

	var sum float64
	for i, s := range scores {
		if math.IsNaN(s) || math.IsInf(s, 0) || s < 0 {
			return Probabilities{}, fmt.Errorf("%w: score %d is %v", ErrInvalidScores, i, s)
		}
		sum += s
	}
	if sum == 0 {
		return Probabilities{}, fmt.Errorf("%w: scores sum to zero", ErrInvalidScores)
	}

	return Probabilities{scores[0] / sum, scores[1] / sum}, nil
}
