// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The shelfsync authors

// Package queue provides the serialized operation queue the sync engine runs
// on. Operations execute strictly one at a time in FIFO order on a single
// worker goroutine; the queue can be suspended, resumed, and drained, and
// transient failures are retried with exponential backoff.
package queue

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/shelfsync/shelfsync/internal/logger"
)

// Operation is one unit of work. Run must honor ctx cancellation: when the
// queue cancels an in-flight operation its results must be discarded by the
// operation itself before returning.
type Operation struct {
	Name string
	Run  func(ctx context.Context) error

	// Cancel, if non-nil, is notified when the queue abandons the
	// operation without completing Run: discarded while queued, dropped
	// as stale after CancelAll, or cancelled between retry attempts. It
	// may fire more than once and concurrently with Run; implementations
	// must tolerate both.
	Cancel func()
}

// RetryAfterError wraps a transient error that carries a server-suggested
// delay. The queue waits at least RetryAfter before the next attempt. Any
// error in the chain exposing RetryAfterDelay() is honored the same way.
type RetryAfterError struct {
	Err        error
	RetryAfter time.Duration
}

func (e *RetryAfterError) Error() string                  { return e.Err.Error() }
func (e *RetryAfterError) Unwrap() error                  { return e.Err }
func (e *RetryAfterError) RetryAfterDelay() time.Duration { return e.RetryAfter }

// Config configures a Queue. IsTransient decides whether a failed attempt is
// retried; everything else is fatal and reported through OnFatal.
type Config struct {
	Logger      *logger.Logger
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	IsTransient func(error) bool
	// OnFatal is called from the worker goroutine after an operation fails
	// permanently or exhausts its attempts. May be nil.
	OnFatal func(opName string, err error)
}

const (
	defaultMaxAttempts = 5
	defaultBaseDelay   = 500 * time.Millisecond
	defaultMaxDelay    = 2 * time.Minute
)

type item struct {
	op  Operation
	gen uint64
}

func (it item) cancelOp() {
	if it.op.Cancel != nil {
		it.op.Cancel()
	}
}

// Queue is a serialized FIFO operation queue. Construct with New; the zero
// value is not usable.
type Queue struct {
	cfg Config
	log *logger.Logger

	mu        sync.Mutex
	cond      *sync.Cond
	items     []item
	gen       uint64
	suspended bool
	closed    bool
	inflight  context.CancelFunc
	current   *item
	idle      chan struct{}

	done chan struct{}
}

// New creates the queue and starts its worker goroutine.
func New(cfg Config) *Queue {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = defaultBaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = defaultMaxDelay
	}
	if cfg.IsTransient == nil {
		cfg.IsTransient = func(error) bool { return false }
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}

	q := &Queue{
		cfg:  cfg,
		log:  &logger.Logger{Logger: cfg.Logger.With().Str("component", "queue").Logger()},
		done: make(chan struct{}),
	}
	q.cond = sync.NewCond(&q.mu)
	go q.worker()
	return q
}

// Enqueue appends an operation. Enqueued operations survive Suspend and run
// after Resume; CancelAll discards them. Enqueue after Close is a no-op.
func (q *Queue) Enqueue(op Operation) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.log.Warn().Str("op", op.Name).Msg("enqueue on closed queue ignored")
		return
	}
	q.items = append(q.items, item{op: op, gen: q.gen})
	q.cond.Broadcast()
}

// Suspend pauses processing. The in-flight attempt (if any) finishes, but
// further retries of that operation hold until Resume. Already queued
// operations are kept.
func (q *Queue) Suspend() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.suspended = true
	q.log.Debug().Msg("queue suspended")
}

// Resume unpauses processing.
func (q *Queue) Resume() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.suspended = false
	q.cond.Broadcast()
	q.log.Debug().Msg("queue resumed")
}

// CancelAll discards every queued operation and cancels the in-flight one.
// The in-flight operation's error, if any, is not reported: its generation
// is stale by the time it returns. Cancel hooks of discarded and in-flight
// operations fire before CancelAll returns.
func (q *Queue) CancelAll() {
	q.mu.Lock()
	q.gen++
	abandoned := q.items
	q.items = nil
	if q.current != nil {
		abandoned = append(abandoned, *q.current)
	}
	if q.inflight != nil {
		q.inflight()
	}
	q.cond.Broadcast()
	q.mu.Unlock()

	for _, it := range abandoned {
		it.cancelOp()
	}
	q.log.Debug().Msg("queue cancelled")
}

// Len reports the number of queued (not in-flight) operations.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// WaitIdle blocks until the queue has no queued or in-flight work, the queue
// closes, or ctx expires. Intended for tests and shutdown paths.
func (q *Queue) WaitIdle(ctx context.Context) error {
	for {
		q.mu.Lock()
		if (len(q.items) == 0 && q.inflight == nil) || q.closed {
			q.mu.Unlock()
			return nil
		}
		ch := make(chan struct{})
		q.idle = ch
		q.mu.Unlock()

		select {
		case <-ch:
		case <-q.done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close stops the worker after the in-flight operation finishes and discards
// queued operations. It blocks until the worker has exited.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	dropped := q.items
	q.items = nil
	if q.inflight != nil {
		q.inflight()
	}
	q.cond.Broadcast()
	q.mu.Unlock()

	for _, it := range dropped {
		it.cancelOp()
	}
	<-q.done
}

func (q *Queue) worker() {
	defer close(q.done)

	for {
		q.mu.Lock()
		for (len(q.items) == 0 || q.suspended) && !q.closed {
			q.signalIdle()
			q.cond.Wait()
		}
		if q.closed {
			q.mu.Unlock()
			return
		}

		it := q.items[0]
		q.items = q.items[1:]
		if it.gen != q.gen {
			q.mu.Unlock()
			it.cancelOp()
			continue
		}

		ctx, cancel := context.WithCancel(context.Background())
		q.inflight = cancel
		q.current = &it
		q.mu.Unlock()

		err := q.runWithRetry(ctx, it)
		cancel()

		q.mu.Lock()
		q.inflight = nil
		q.current = nil
		stale := it.gen != q.gen
		q.signalIdle()
		q.mu.Unlock()

		if err != nil && !stale {
			q.log.Error().Err(err).Str("op", it.op.Name).Msg("operation failed")
			if q.cfg.OnFatal != nil {
				q.cfg.OnFatal(it.op.Name, err)
			}
		}
	}
}

// signalIdle is called with q.mu held.
func (q *Queue) signalIdle() {
	if q.idle != nil && len(q.items) == 0 && q.inflight == nil {
		close(q.idle)
		q.idle = nil
	}
}

func (q *Queue) runWithRetry(ctx context.Context, it item) error {
	var err error
	for attempt := 1; ; attempt++ {
		waited, ok := q.waitResumed(ctx)
		if !ok {
			it.cancelOp()
			return nil
		}
		if waited {
			// Connectivity came back: failures before the suspension
			// don't count against this operation anymore.
			attempt = 1
		}

		err = it.op.Run(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, context.Canceled) {
			it.cancelOp()
			return nil
		}
		if !q.cfg.IsTransient(err) {
			return err
		}
		if attempt >= q.cfg.MaxAttempts {
			return err
		}

		delay := q.backoff(attempt, err)
		q.log.Warn().Err(err).
			Str("op", it.op.Name).
			Int("attempt", attempt).
			Dur("delay", delay).
			Msg("transient failure, retrying")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			it.cancelOp()
			return nil
		}
	}
}

// waitResumed blocks while the queue is suspended, so retries of an
// operation that went in-flight before connectivity was lost issue no
// remote calls until Resume. waited reports that a suspension was actually
// observed; ok is false when the queue closed or the operation was
// cancelled while waiting.
func (q *Queue) waitResumed(ctx context.Context) (waited, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.suspended && !q.closed && ctx.Err() == nil {
		waited = true
		q.cond.Wait()
	}
	return waited, !q.closed && ctx.Err() == nil
}

// backoff computes the delay before the next attempt: exponential growth
// with ±50% jitter, capped at MaxDelay, never below a server-provided
// retry-after hint.
func (q *Queue) backoff(attempt int, err error) time.Duration {
	delay := q.cfg.BaseDelay << (attempt - 1)
	if delay > q.cfg.MaxDelay || delay <= 0 {
		delay = q.cfg.MaxDelay
	}
	delay = delay/2 + time.Duration(rand.Int63n(int64(delay)))

	var hint interface{ RetryAfterDelay() time.Duration }
	if errors.As(err, &hint) && hint.RetryAfterDelay() > delay {
		delay = hint.RetryAfterDelay()
	}
	return delay
}
