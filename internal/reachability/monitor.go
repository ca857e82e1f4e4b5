// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The shelfsync authors

// Package reachability tracks whether the record service can be reached and
// notifies subscribers on transitions. The sync coordinator suspends its
// operation queue while the service is unreachable and catches up in both
// directions once connectivity returns.
package reachability

import (
	"context"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/shelfsync/shelfsync/internal/logger"
)

const (
	defaultInterval  = 30 * time.Second
	defaultProbeTime = 5 * time.Second
)

// Prober answers one reachability question. The default implementation dials
// the service host; tests substitute their own.
type Prober interface {
	Probe(ctx context.Context) bool
}

// dialProber probes by opening (and immediately closing) a TCP connection to
// the service address. A TLS handshake is deliberately skipped: the question
// is "is the network up", not "is the service healthy".
type dialProber struct {
	address string
	timeout time.Duration
}

func (p *dialProber) Probe(ctx context.Context) bool {
	dialer := net.Dialer{Timeout: p.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", p.address)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// Monitor polls a Prober and fans transition events out to subscribers.
// Construct with New; the zero value is not usable.
type Monitor struct {
	logger   *logger.Logger
	prober   Prober
	interval time.Duration

	mu          sync.Mutex
	available   bool
	subscribers map[int]func(available bool)
	nextID      int
	cancel      context.CancelFunc
	done        chan struct{}
}

// New builds a monitor probing serviceURL every interval. The monitor starts
// optimistic (available) and does not poll until Start is called.
func New(serviceURL string, interval time.Duration, log *logger.Logger) (*Monitor, error) {
	u, err := url.Parse(serviceURL)
	if err != nil {
		return nil, err
	}
	host := u.Host
	if u.Port() == "" {
		switch u.Scheme {
		case "https":
			host = net.JoinHostPort(u.Hostname(), "443")
		default:
			host = net.JoinHostPort(u.Hostname(), "80")
		}
	}
	if interval <= 0 {
		interval = defaultInterval
	}

	return &Monitor{
		logger:      &logger.Logger{Logger: log.With().Str("component", "reachability").Logger()},
		prober:      &dialProber{address: host, timeout: defaultProbeTime},
		interval:    interval,
		available:   true,
		subscribers: make(map[int]func(bool)),
	}, nil
}

// NewWithProber builds a monitor over a custom prober.
func NewWithProber(p Prober, interval time.Duration, log *logger.Logger) *Monitor {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Monitor{
		logger:      &logger.Logger{Logger: log.With().Str("component", "reachability").Logger()},
		prober:      p,
		interval:    interval,
		available:   true,
		subscribers: make(map[int]func(bool)),
	}
}

// Start begins polling. Idempotent.
func (m *Monitor) Start() {
	m.mu.Lock()
	if m.cancel != nil {
		m.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	done := make(chan struct{})
	m.done = done
	m.mu.Unlock()

	go m.poll(ctx, done)
}

// Stop halts polling and waits for the poll goroutine to exit. Idempotent.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	done := m.done
	m.cancel = nil
	m.done = nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Available reports the last observed state.
func (m *Monitor) Available() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.available
}

// Subscribe registers fn for transition events. fn runs on the poll
// goroutine; keep it short or hand the work off. The returned cancel
// removes the subscription.
func (m *Monitor) Subscribe(fn func(available bool)) (cancel func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subscribers[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subscribers, id)
		m.mu.Unlock()
	}
}

func (m *Monitor) poll(ctx context.Context, done chan struct{}) {
	defer close(done)

	// Probe immediately so a daemon starting offline suspends before the
	// first interval elapses.
	m.observe(m.prober.Probe(ctx))

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.observe(m.prober.Probe(ctx))
		}
	}
}

// observe records the probe result and notifies subscribers on a transition.
func (m *Monitor) observe(available bool) {
	m.mu.Lock()
	if available == m.available {
		m.mu.Unlock()
		return
	}
	m.available = available
	fns := make([]func(bool), 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	if available {
		m.logger.Info().Msg("record service reachable")
	} else {
		m.logger.Warn().Msg("record service unreachable")
	}
	for _, fn := range fns {
		fn(available)
	}
}
