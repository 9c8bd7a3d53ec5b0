package domain

import (
	"fmt"
	"strings"
)

// ClassificationRequest describes the category pairs a task scores every
// text item against.
type ClassificationRequest struct {
	Pairs []CategoryPair `json:"pairs"`
}

// NewClassificationRequest normalizes and validates the given pairs. All
// field failures are reported together in a single ValidationError.
func NewClassificationRequest(pairs []CategoryPair) (ClassificationRequest, error) {
	verr := &ValidationError{}
	if len(pairs) == 0 {
		verr.Add("pairs", "at least one classification pair is required")
		return ClassificationRequest{}, verr
	}

	normalized := make([]CategoryPair, 0, len(pairs))
	type keyOwner struct {
		index int
		pair  CategoryPair
	}
	owners := make(map[string]keyOwner, len(pairs))
	for i, p := range pairs {
		pair := CategoryPair{
			Class1: strings.TrimSpace(p.Class1),
			Class2: strings.TrimSpace(p.Class2),
		}
		before := len(verr.Errors)
		pair.validate(fmt.Sprintf("pairs[%d].", i), verr)
		if len(verr.Errors) != before {
			continue
		}
		// Distinct pairs must not share a summary key.
		owner, ok := owners[pair.Key()]
		if ok && owner.pair != pair {
			verr.Add(fmt.Sprintf("pairs[%d]", i),
				fmt.Sprintf("summary key %q is already used by pairs[%d]", pair.Key(), owner.index))
			continue
		}
		if !ok {
			owners[pair.Key()] = keyOwner{index: i, pair: pair}
		}
		normalized = append(normalized, pair)
	}

	if verr.HasErrors() {
		return ClassificationRequest{}, verr
	}
	return ClassificationRequest{Pairs: normalized}, nil
}

// Validate checks the request invariants.
func (r ClassificationRequest) Validate() error {
	_, err := NewClassificationRequest(r.Pairs)
	return err
}

// DistinctPairs returns the pairs with exact duplicates removed, keeping the
// first occurrence of each.
func (r ClassificationRequest) DistinctPairs() []CategoryPair {
	seen := make(map[CategoryPair]struct{}, len(r.Pairs))
	distinct := make([]CategoryPair, 0, len(r.Pairs))
	for _, p := range r.Pairs {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		distinct = append(distinct, p)
	}
	return distinct
}

// Clone returns a deep copy of the request.
func (r ClassificationRequest) Clone() ClassificationRequest {
	pairs := make([]CategoryPair, len(r.Pairs))
	copy(pairs, r.Pairs)
	return ClassificationRequest{Pairs: pairs}
}
