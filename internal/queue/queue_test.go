package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfsync/shelfsync/internal/logger"
)

func newTestQueue(t *testing.T, cfg Config) *Queue {
	t.Helper()
	cfg.Logger = logger.Nop()
	if cfg.BaseDelay == 0 {
		cfg.BaseDelay = time.Millisecond
	}
	if cfg.MaxDelay == 0 {
		cfg.MaxDelay = 5 * time.Millisecond
	}
	q := New(cfg)
	t.Cleanup(q.Close)
	return q
}

func waitIdle(t *testing.T, q *Queue) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, q.WaitIdle(ctx))
}

func TestQueue_RunsInFIFOOrder(t *testing.T) {
	q := newTestQueue(t, Config{})

	var mu sync.Mutex
	var order []int
	for i := 0; i < 10; i++ {
		i := i
		q.Enqueue(Operation{Name: "op", Run: func(context.Context) error {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return nil
		}})
	}
	waitIdle(t, q)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, order, 10)
	for i, got := range order {
		assert.Equal(t, i, got)
	}
}

func TestQueue_SerializesOperations(t *testing.T) {
	q := newTestQueue(t, Config{})

	var mu sync.Mutex
	var active, maxActive int
	for i := 0; i < 8; i++ {
		q.Enqueue(Operation{Name: "op", Run: func(context.Context) error {
			mu.Lock()
			active++
			if active > maxActive {
				maxActive = active
			}
			mu.Unlock()
			time.Sleep(2 * time.Millisecond)
			mu.Lock()
			active--
			mu.Unlock()
			return nil
		}})
	}
	waitIdle(t, q)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, maxActive, "operations must never overlap")
}

func TestQueue_SuspendHoldsWork_ResumeRunsIt(t *testing.T) {
	q := newTestQueue(t, Config{})
	q.Suspend()

	ran := make(chan struct{})
	q.Enqueue(Operation{Name: "held", Run: func(context.Context) error {
		close(ran)
		return nil
	}})

	select {
	case <-ran:
		t.Fatal("operation ran while suspended")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, 1, q.Len())

	q.Resume()
	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("operation did not run after resume")
	}
}

func TestQueue_CancelAllDiscardsQueued(t *testing.T) {
	q := newTestQueue(t, Config{})
	q.Suspend()

	var ran bool
	q.Enqueue(Operation{Name: "doomed", Run: func(context.Context) error {
		ran = true
		return nil
	}})
	q.CancelAll()
	q.Resume()
	waitIdle(t, q)

	assert.False(t, ran, "cancelled operation must not run")
	assert.Equal(t, 0, q.Len())
}

func TestQueue_CancelAllCancelsInFlight(t *testing.T) {
	var fatalMu sync.Mutex
	var fatals []string
	q := newTestQueue(t, Config{
		OnFatal: func(name string, err error) {
			fatalMu.Lock()
			fatals = append(fatals, name)
			fatalMu.Unlock()
		},
	})

	started := make(chan struct{})
	q.Enqueue(Operation{Name: "inflight", Run: func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return errors.New("discarded result")
	}})
	<-started
	q.CancelAll()
	waitIdle(t, q)

	fatalMu.Lock()
	defer fatalMu.Unlock()
	assert.Empty(t, fatals, "results of a cancelled operation must be discarded")
}

func TestQueue_TransientErrorsAreRetried(t *testing.T) {
	transient := errors.New("temporarily unavailable")

	var mu sync.Mutex
	attempts := 0
	q := newTestQueue(t, Config{
		MaxAttempts: 5,
		IsTransient: func(err error) bool { return errors.Is(err, transient) },
	})

	q.Enqueue(Operation{Name: "flaky", Run: func(context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts < 3 {
			return transient
		}
		return nil
	}})
	waitIdle(t, q)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, attempts)
}

func TestQueue_RetriesHoldWhileSuspended(t *testing.T) {
	transient := errors.New("connection refused")

	var mu sync.Mutex
	attempts, fatals := 0, 0
	q := newTestQueue(t, Config{
		MaxAttempts: 5,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
		IsTransient: func(err error) bool { return errors.Is(err, transient) },
		OnFatal: func(string, error) {
			mu.Lock()
			fatals++
			mu.Unlock()
		},
	})

	q.Enqueue(Operation{Name: "flaky", Run: func(context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts == 1 {
			// The op noticed connectivity go away mid-flight.
			q.Suspend()
			return transient
		}
		return nil
	}})

	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, 1, attempts, "no retry may execute while suspended")
	assert.Zero(t, fatals, "an offline transient failure must not escalate")
	mu.Unlock()

	q.Resume()
	waitIdle(t, q)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, attempts)
	assert.Zero(t, fatals)
}

func TestQueue_CancelAllNotifiesAbandonedOperations(t *testing.T) {
	transient := errors.New("temporarily unavailable")
	q := newTestQueue(t, Config{
		MaxAttempts: 5,
		BaseDelay:   50 * time.Millisecond,
		MaxDelay:    time.Second,
		IsTransient: func(err error) bool { return errors.Is(err, transient) },
	})

	var once sync.Once
	started := make(chan struct{})
	cancelled := make(chan string, 8)
	q.Enqueue(Operation{
		Name: "retrying",
		Run: func(context.Context) error {
			once.Do(func() { close(started) })
			return transient
		},
		Cancel: func() { cancelled <- "retrying" },
	})
	<-started // first attempt failed; the op is sleeping in its backoff

	q.Suspend()
	q.Enqueue(Operation{
		Name:   "held",
		Run:    func(context.Context) error { return nil },
		Cancel: func() { cancelled <- "held" },
	})

	q.CancelAll()
	q.Resume()
	waitIdle(t, q)

	got := map[string]bool{}
	deadline := time.After(5 * time.Second)
	for len(got) < 2 {
		select {
		case name := <-cancelled:
			got[name] = true
		case <-deadline:
			t.Fatalf("cancel hooks not invoked, got %v", got)
		}
	}
	assert.True(t, got["retrying"], "operation abandoned mid-backoff must be notified")
	assert.True(t, got["held"], "discarded queued operation must be notified")
}

func TestQueue_ExhaustedRetriesReportFatal(t *testing.T) {
	transient := errors.New("still down")
	fatal := make(chan error, 1)
	q := newTestQueue(t, Config{
		MaxAttempts: 2,
		IsTransient: func(err error) bool { return errors.Is(err, transient) },
		OnFatal:     func(_ string, err error) { fatal <- err },
	})

	q.Enqueue(Operation{Name: "hopeless", Run: func(context.Context) error {
		return transient
	}})

	select {
	case err := <-fatal:
		assert.ErrorIs(t, err, transient)
	case <-time.After(5 * time.Second):
		t.Fatal("fatal callback not invoked")
	}
}

func TestQueue_PermanentErrorNotRetried(t *testing.T) {
	permanent := errors.New("bad request")
	fatal := make(chan error, 1)

	var mu sync.Mutex
	attempts := 0
	q := newTestQueue(t, Config{
		MaxAttempts: 5,
		IsTransient: func(error) bool { return false },
		OnFatal:     func(_ string, err error) { fatal <- err },
	})

	q.Enqueue(Operation{Name: "broken", Run: func(context.Context) error {
		mu.Lock()
		attempts++
		mu.Unlock()
		return permanent
	}})

	select {
	case err := <-fatal:
		assert.ErrorIs(t, err, permanent)
	case <-time.After(5 * time.Second):
		t.Fatal("fatal callback not invoked")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, attempts)
}

func TestQueue_RetryAfterHintRaisesDelay(t *testing.T) {
	transient := errors.New("rate limited")
	q := newTestQueue(t, Config{
		MaxAttempts: 2,
		IsTransient: func(err error) bool { return errors.Is(err, transient) },
	})

	var mu sync.Mutex
	var stamps []time.Time
	q.Enqueue(Operation{Name: "limited", Run: func(context.Context) error {
		mu.Lock()
		stamps = append(stamps, time.Now())
		mu.Unlock()
		if len(stamps) == 1 {
			return &RetryAfterError{Err: transient, RetryAfter: 100 * time.Millisecond}
		}
		return nil
	}})
	waitIdle(t, q)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, stamps, 2)
	assert.GreaterOrEqual(t, stamps[1].Sub(stamps[0]), 100*time.Millisecond)
}

func TestQueue_EnqueueAfterCloseIsNoop(t *testing.T) {
	q := New(Config{Logger: logger.Nop()})
	q.Close()

	assert.NotPanics(t, func() {
		q.Enqueue(Operation{Name: "late", Run: func(context.Context) error { return nil }})
	})
	assert.Equal(t, 0, q.Len())
}
