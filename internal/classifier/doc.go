// Package classifier defines the boundary to zero-shot classification
// services. A Classifier scores a text against an ordered pair of labels and
// returns normalized entailment probabilities, one per label.
//
// Concrete adapters live under internal/platform (gemini, nli). This package
// also provides a caching decorator so repeated (text, labels) lookups are
// served without calling the model again.
package classifier
