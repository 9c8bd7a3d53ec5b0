// Package aggregate scores a batch of text items against a set of category
// pairs and folds the per-item probabilities into running averages per pair.
package aggregate
