package progress

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracker(t *testing.T) {
	var mu sync.Mutex
	var last Snapshot
	ctx, tracker := WithNewTracker(context.Background(), func(s Snapshot) {
		mu.Lock()
		last = s
		mu.Unlock()
	})
	tracker.SetRunID("run-1")
	UpdateCtx(ctx, Delta{Files: 3})

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			UpdateCtx(ctx, Delta{Parsed: 1, Notes: 2})
		}()
	}
	wg.Wait()

	snapshot := tracker.Snapshot()
	assert.Equal(t, "run-1", snapshot.RunID)
	assert.Equal(t, 3, snapshot.Parsed)
	assert.Equal(t, 6, snapshot.Notes)
	assert.True(t, snapshot.Done())
	mu.Lock()
	assert.True(t, last.Parsed > 0)
	mu.Unlock()

	UpdateCtx(context.Background(), Delta{Files: 1})
	var missing *Progress
	missing.Update(Delta{Files: 1})
	assert.Equal(t, Snapshot{}, missing.Snapshot())
}
