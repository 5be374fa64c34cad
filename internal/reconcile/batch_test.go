package reconcile

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planbiir/alignfix/internal/layout"
)

func TestBatchKeepsInputOrder(t *testing.T) {
	var alignments []layout.Alignment
	for i := 0; i < 20; i++ {
		a := straightAlignment(fmt.Sprintf("a%02d", i), i, 0, 10, 20, float64(30+i))
		a.Metadata = []layout.ElementMetadata{md(i+1, i, 0, 20)}
		alignments = append(alignments, a)
	}

	results, err := Batch(context.Background(), alignments, DefaultConfig(), 4)
	require.NoError(t, err)
	require.Len(t, results, len(alignments))
	for i, res := range results {
		assert.Equal(t, alignments[i].ID, res.ID)
		assert.InDelta(t, float64(30+i), res.Stats.TotalLength, 1e-9)
	}
}

func TestBatchReturnsFirstError(t *testing.T) {
	alignments := []layout.Alignment{
		straightAlignment("ok", 0, 0, 1, 2),
		{ID: "empty"},
	}
	_, err := Batch(context.Background(), alignments, DefaultConfig(), 1)
	require.ErrorIs(t, err, ErrNoPoints)
	assert.Contains(t, err.Error(), "empty")
}

func TestBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Batch(ctx, []layout.Alignment{straightAlignment("a", 0, 0, 1)}, DefaultConfig(), 0)
	assert.ErrorIs(t, err, context.Canceled)
}
