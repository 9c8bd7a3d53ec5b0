package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClassificationRequest(t *testing.T) {
	t.Parallel()

	t.Run("rejects empty pairs", func(t *testing.T) {
		t.Parallel()

		_, err := NewClassificationRequest(nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrValidation)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields(), "pairs")
	})

	t.Run("reports every invalid field", func(t *testing.T) {
		t.Parallel()

		_, err := NewClassificationRequest([]CategoryPair{
			{Class1: "positive", Class2: "negative"},
			{Class1: "", Class2: "negative"},
			{Class1: "good", Class2: ""},
		})
		require.Error(t, err)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		fields := verr.Fields()
		assert.Len(t, fields, 2)
		assert.Equal(t, "must not be empty", fields["pairs[1].class1"])
		assert.Equal(t, "must not be empty", fields["pairs[2].class2"])
	})

	t.Run("normalizes labels", func(t *testing.T) {
		t.Parallel()

		req, err := NewClassificationRequest([]CategoryPair{{Class1: " positive ", Class2: "negative "}})
		require.NoError(t, err)
		require.Len(t, req.Pairs, 1)
		assert.Equal(t, "positive / negative", req.Pairs[0].Key())
		assert.NoError(t, req.Validate())
	})
}

func TestDistinctPairs(t *testing.T) {
	t.Parallel()

	req := ClassificationRequest{Pairs: []CategoryPair{
		{Class1: "a", Class2: "b"},
		{Class1: "c", Class2: "d"},
		{Class1: "a", Class2: "b"},
	}}

	distinct := req.DistinctPairs()
	require.Len(t, distinct, 2)
	assert.Equal(t, "a / b", distinct[0].Key())
	assert.Equal(t, "c / d", distinct[1].Key())
}

func TestDistinctPairs_KeepsPairsWithSameKey(t *testing.T) {
	t.Parallel()

	req := ClassificationRequest{Pairs: []CategoryPair{
		{Class1: "a / b", Class2: "c"},
		{Class1: "a", Class2: "b / c"},
	}}

	distinct := req.DistinctPairs()
	require.Len(t, distinct, 2)
	assert.Equal(t, req.Pairs, distinct)
}

func TestNewClassificationRequest_RejectsKeyCollision(t *testing.T) {
	t.Parallel()

	_, err := NewClassificationRequest([]CategoryPair{
		{Class1: "a / b", Class2: "c"},
		{Class1: "a", Class2: "b / c"},
	})
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Errors, 1)
	assert.Equal(t, "pairs[1]", verr.Errors[0].Field)
	assert.Contains(t, verr.Errors[0].Message, `"a / b / c"`)
	assert.Contains(t, verr.Errors[0].Message, "pairs[0]")

	// Exact duplicates, including ones that only differ by padding, are fine.
	req, err := NewClassificationRequest([]CategoryPair{
		{Class1: "a", Class2: "b"},
		{Class1: " a ", Class2: "b"},
	})
	require.NoError(t, err)
	assert.Len(t, req.DistinctPairs(), 1)
}

func TestClassificationRequestClone(t *testing.T) {
	t.Parallel()

	req := ClassificationRequest{Pairs: []CategoryPair{{Class1: "a", Class2: "b"}}}
	clone := req.Clone()
	clone.Pairs[0].Class1 = "changed"

	assert.Equal(t, "a", req.Pairs[0].Class1)
	assert.False(t, errors.Is(req.Validate(), ErrValidation))
}
