package queue_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fornello/pizzeria/pkg/queue"
)

var (
	echoCalls    atomic.Int32
	failAttempts atomic.Int32
)

type echoJob struct {
	OrderNumber int64 `json:"orderNumber"`
}

func (j *echoJob) Handle() error {
	echoCalls.Add(1)
	return nil
}

type failJob struct{}

func (j *failJob) Handle() error {
	failAttempts.Add(1)
	return errors.New("always fails")
}

func init() {
	queue.Register("*queue_test.echoJob", func() queue.Job { return &echoJob{} })
	queue.Register("*queue_test.failJob", func() queue.Job { return &failJob{} })
	queue.SetMaxRetry(2)
	queue.StartWorkers(context.Background(), 2)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestDispatchProcessesJob(t *testing.T) {
	before := echoCalls.Load()

	if err := queue.Dispatch(&echoJob{OrderNumber: 17}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	waitFor(t, 2*time.Second, func() bool { return echoCalls.Load() > before })
}

func TestFailingJobIsRetriedThenRecorded(t *testing.T) {
	before := failAttempts.Load()

	if err := queue.Dispatch(&failJob{}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	// maxRetry is 2, so the job runs exactly twice before giving up.
	waitFor(t, 10*time.Second, func() bool { return failAttempts.Load() >= before+2 })
	waitFor(t, 5*time.Second, func() bool { return len(queue.FailedJobs()) > 0 })

	failed := queue.FailedJobs()
	last := failed[len(failed)-1]
	if last.Attempts != 2 {
		t.Errorf("attempts = %d, want 2", last.Attempts)
	}
	if last.Err == nil {
		t.Error("expected the final error to be recorded")
	}
}
