package source

import "context"

// TextSource fetches a batch of text items.
//
// Fetch may legitimately return an empty batch. Implementations handle their
// own transport retries; an error is returned only when the batch could not
// be produced at all (for example the context was cancelled).
// Implementations must be safe for concurrent use.
type TextSource interface {
	Fetch(ctx context.Context) ([]string, error)
}

// Func adapts an ordinary function to the TextSource interface.
type Func func(ctx context.Context) ([]string, error)

// Fetch calls f.
func (f Func) Fetch(ctx context.Context) ([]string, error) {
	return f(ctx)
}

// StaticSource always returns the same items. It backs the "static" source
// provider used for local runs and demos.
type StaticSource struct {
	items []string
}

// NewStaticSource creates a StaticSource serving a copy of items.
func NewStaticSource(items []string) *StaticSource {
	cp := make([]string, len(items))
	copy(cp, items)
	return &StaticSource{items: cp}
}

// Fetch implements TextSource.
func (s *StaticSource) Fetch(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out, nil
}
