package usecase

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emergent-company/taskvision-mcp/internal/domain"
)

func TestAlignmentCache_GetMissesWhenEmpty(t *testing.T) {
	c := newAlignmentCache(time.Minute)
	_, ok := c.Get("task_1", time.Now())
	assert.False(t, ok)
}

func TestAlignmentCache_SetThenGetHits(t *testing.T) {
	c := newAlignmentCache(time.Minute)
	now := time.Now()
	c.Set("task_1", []domain.Alignment{{ObjectiveID: "obj_1", Score: 0.8}}, now)

	got, ok := c.Get("task_1", now.Add(10*time.Second))
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "obj_1", got[0].ObjectiveID)
}

func TestAlignmentCache_ExpiresAfterTTL(t *testing.T) {
	c := newAlignmentCache(time.Minute)
	now := time.Now()
	c.Set("task_1", []domain.Alignment{{ObjectiveID: "obj_1"}}, now)

	_, ok := c.Get("task_1", now.Add(2*time.Minute))
	assert.False(t, ok)
}

func TestAlignmentCache_InvalidateForcesRecompute(t *testing.T) {
	c := newAlignmentCache(time.Minute)
	now := time.Now()
	c.Set("task_1", []domain.Alignment{{ObjectiveID: "obj_1"}}, now)
	c.Invalidate("task_1")

	_, ok := c.Get("task_1", now)
	assert.False(t, ok)
}

func TestAlignmentCache_GetOrCompute_CachesResult(t *testing.T) {
	c := newAlignmentCache(time.Minute)
	now := time.Now()
	var calls int32

	compute := func() ([]domain.Alignment, error) {
		atomic.AddInt32(&calls, 1)
		return []domain.Alignment{{ObjectiveID: "obj_1"}}, nil
	}

	first, err := c.GetOrCompute("task_1", now, compute)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := c.GetOrCompute("task_1", now, compute)
	require.NoError(t, err)
	require.Len(t, second, 1)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestAlignmentCache_GetOrCompute_CoalescesConcurrentCallers(t *testing.T) {
	c := newAlignmentCache(time.Minute)
	now := time.Now()
	var calls int32
	release := make(chan struct{})

	compute := func() ([]domain.Alignment, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return []domain.Alignment{{ObjectiveID: "obj_1"}}, nil
	}

	const waves = 10
	var wg sync.WaitGroup
	wg.Add(waves)
	for i := 0; i < waves; i++ {
		go func() {
			defer wg.Done()
			_, _ = c.GetOrCompute("task_1", now, compute)
		}()
	}

	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
