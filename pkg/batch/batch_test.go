package batch_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/waypoint/pkg/batch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatch_SynchronousWhenNoBranches(t *testing.T) {
	var order []string

	batch.Start(func(*batch.Batch) {
		order = append(order, "a")
	}).ContinueWith(func(*batch.Batch) {
		order = append(order, "b")
	}).ContinueWith(func(*batch.Batch) {
		order = append(order, "c")
	}).Start()

	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestBatch_StageWaitsForAllBranches(t *testing.T) {
	var mu sync.Mutex
	var order []string
	record := func(s string) {
		mu.Lock()
		defer mu.Unlock()
		order = append(order, s)
	}

	release := make(chan struct{})
	done := make(chan struct{})

	batch.Start(func(b *batch.Batch) {
		for _, name := range []string{"x", "y", "z"} {
			b.Go(func() {
				<-release
				record(name)
			})
		}
	}).ContinueWith(func(*batch.Batch) {
		record("next")
		close(done)
	}).Start()

	select {
	case <-done:
		t.Fatal("next stage fired before branches completed")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	<-done

	require.Len(t, order, 4)
	assert.Equal(t, "next", order[3])
	assert.ElementsMatch(t, []string{"x", "y", "z"}, order[:3])
}

func TestBatch_CallbackFiresOnce(t *testing.T) {
	var calls atomic.Int32
	b := batch.Start(func(*batch.Batch) { calls.Add(1) })
	b.Start()
	assert.True(t, b.Done())

	// Re-arming the counter does not fire the stage again.
	b.Push()
	b.Pop()
	assert.Equal(t, int32(1), calls.Load())
}

func TestBatch_PushWithoutPopStopsChain(t *testing.T) {
	fired := false
	tail := batch.Start(func(b *batch.Batch) {
		b.Push()
	}).ContinueWith(func(*batch.Batch) {
		fired = true
	})
	tail.Start()

	assert.False(t, fired)
	assert.False(t, tail.Done())
}

func TestBatch_PopUnderflowPanics(t *testing.T) {
	b := batch.Start(nil)
	assert.Panics(t, func() { b.Pop() })
}

func TestSequence(t *testing.T) {
	var got []int
	batch.Sequence(
		func(*batch.Batch) { got = append(got, 1) },
		func(*batch.Batch) { got = append(got, 2) },
		func(*batch.Batch) { got = append(got, 3) },
	).Start()

	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestBatch_NestedFanOut(t *testing.T) {
	var count atomic.Int32
	done := make(chan struct{})

	batch.Start(func(b *batch.Batch) {
		for i := 0; i < 5; i++ {
			b.Go(func() {
				inner := make(chan struct{})
				batch.Start(func(ib *batch.Batch) {
					for j := 0; j < 3; j++ {
						ib.Go(func() { count.Add(1) })
					}
				}).ContinueWith(func(*batch.Batch) { close(inner) }).Start()
				<-inner
			})
		}
	}).ContinueWith(func(*batch.Batch) { close(done) }).Start()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("batch did not complete")
	}
	assert.Equal(t, int32(15), count.Load())
}
