package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	ran  *atomic.Int32
	done chan struct{}
}

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) Run(context.Context) error {
	j.ran.Add(1)
	if j.done != nil {
		close(j.done)
	}
	return nil
}

type blockingJob struct {
	release chan struct{}
}

func (j *blockingJob) Name() string { return "blocking" }

func (j *blockingJob) Run(context.Context) error {
	<-j.release
	return nil
}

func TestPoolRunsSubmittedJobs(t *testing.T) {
	pool := NewPool(1, 4)
	pool.Start(context.Background())

	var ran atomic.Int32
	done := make(chan struct{})
	require.NoError(t, pool.Submit(&countingJob{ran: &ran, done: done}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run")
	}
	pool.Stop()
	assert.Equal(t, int32(1), ran.Load())
}

func TestPoolRejectsWhenQueueFull(t *testing.T) {
	pool := NewPool(1, 1)
	// Not started: nothing drains the queue.

	release := make(chan struct{})
	require.NoError(t, pool.Submit(&blockingJob{release: release}))

	err := pool.Submit(&blockingJob{release: release})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue full")

	close(release)
	pool.Start(context.Background())
	pool.Stop()
}

func TestPoolStopDrainsQueue(t *testing.T) {
	pool := NewPool(2, 8)
	pool.Start(context.Background())

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		require.NoError(t, pool.Submit(&countingJob{ran: &ran}))
	}

	// Give workers a moment to pick jobs up before stopping.
	time.Sleep(50 * time.Millisecond)
	pool.Stop()
	assert.LessOrEqual(t, ran.Load(), int32(5))
	assert.Zero(t, pool.QueueSize())
}
