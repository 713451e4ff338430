package model

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks for cache tests ---

type countingClassifier struct {
	calls int
	label int
	err   error
	width int
}

func (c *countingClassifier) Predict(_ context.Context, _ []float64) (int, error) {
	c.calls++
	return c.label, c.err
}

func (c *countingClassifier) NumFeatures() int { return c.width }

type recordingObserver struct {
	hits, misses int
}

func (o *recordingObserver) CacheLookup(hit bool) {
	if hit {
		o.hits++
	} else {
		o.misses++
	}
}

// --- Cached tests ---

func TestCached_Hit(t *testing.T) {
	inner := &countingClassifier{label: 1, width: 3}
	obs := &recordingObserver{}
	c, err := NewCached(inner, 10, obs)
	require.NoError(t, err)

	for range 3 {
		label, err := c.Predict(context.Background(), []float64{1, 2, 3})
		require.NoError(t, err)
		assert.Equal(t, 1, label)
	}

	assert.Equal(t, 1, inner.calls, "should only call inner once")
	assert.Equal(t, 2, obs.hits)
	assert.Equal(t, 1, obs.misses)
	assert.Equal(t, 1, c.Len())
}

func TestCached_DifferentRowsMiss(t *testing.T) {
	inner := &countingClassifier{width: 2}
	c, err := NewCached(inner, 10, nil)
	require.NoError(t, err)

	_, _ = c.Predict(context.Background(), []float64{1, 2})
	_, _ = c.Predict(context.Background(), []float64{2, 1})

	assert.Equal(t, 2, inner.calls)
}

func TestCached_ErrorsNotCached(t *testing.T) {
	inner := &countingClassifier{width: 1, err: errors.New("boom")}
	c, err := NewCached(inner, 10, nil)
	require.NoError(t, err)

	_, err = c.Predict(context.Background(), []float64{1})
	require.Error(t, err)
	_, err = c.Predict(context.Background(), []float64{1})
	require.Error(t, err)

	assert.Equal(t, 2, inner.calls)
	assert.Zero(t, c.Len())
}

func TestCached_WidthMismatchBypasses(t *testing.T) {
	inner := &countingClassifier{width: 3}
	c, err := NewCached(inner, 10, nil)
	require.NoError(t, err)

	_, _ = c.Predict(context.Background(), []float64{1, 2})
	_, _ = c.Predict(context.Background(), []float64{1, 2})

	assert.Equal(t, 2, inner.calls)
	assert.Zero(t, c.Len())
}

func TestCached_Eviction(t *testing.T) {
	inner := &countingClassifier{width: 1}
	c, err := NewCached(inner, 2, nil)
	require.NoError(t, err)

	_, _ = c.Predict(context.Background(), []float64{1})
	_, _ = c.Predict(context.Background(), []float64{2})
	_, _ = c.Predict(context.Background(), []float64{3}) // evicts 1
	_, _ = c.Predict(context.Background(), []float64{1})

	assert.Equal(t, 4, inner.calls)
	assert.Equal(t, 2, c.Len())
}

func TestNewCached_InvalidSize(t *testing.T) {
	_, err := NewCached(&countingClassifier{}, 0, nil)
	assert.Error(t, err)
}

type closingClassifier struct {
	countingClassifier
	closed bool
}

func (c *closingClassifier) Close() error {
	c.closed = true
	return nil
}

func TestCached_CloseForwards(t *testing.T) {
	inner := &closingClassifier{countingClassifier: countingClassifier{width: 2}}
	c, err := NewCached(inner, 4, nil)
	require.NoError(t, err)

	require.NoError(t, c.Close())
	assert.True(t, inner.closed)

	plain, err := NewCached(&countingClassifier{width: 2}, 4, nil)
	require.NoError(t, err)
	assert.NoError(t, plain.Close())
}
