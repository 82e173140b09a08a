package chunkpool

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_ProcessesEveryItem(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	var mu sync.Mutex
	seen := make(map[int]bool)

	err := Run(context.Background(), items, 2, func(ctx context.Context, item int) error {
		mu.Lock()
		seen[item] = true
		mu.Unlock()
		return nil
	})
	require.NoError(t, err)
	for _, i := range items {
		assert.True(t, seen[i])
	}
}

func TestRun_DefaultLimitHandlesZero(t *testing.T) {
	err := Run(context.Background(), []int{1, 2, 3}, 0, func(ctx context.Context, item int) error {
		return nil
	})
	require.NoError(t, err)
}

func TestRun_PropagatesFirstError(t *testing.T) {
	sentinel := assert.AnError
	err := Run(context.Background(), []int{1, 2, 3}, 1, func(ctx context.Context, item int) error {
		if item == 2 {
			return sentinel
		}
		return nil
	})
	require.Error(t, err)
}
