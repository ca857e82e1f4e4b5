// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The shelfsync authors

package reachability

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfsync/shelfsync/internal/logger"
)

// flakyProber returns a scripted sequence of probe results, repeating the
// last one once the script runs out.
type flakyProber struct {
	mu      sync.Mutex
	script  []bool
	current int
}

func (p *flakyProber) Probe(context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current < len(p.script)-1 {
		result := p.script[p.current]
		p.current++
		return result
	}
	return p.script[len(p.script)-1]
}

func TestMonitor_NotifiesOnTransitionsOnly(t *testing.T) {
	prober := &flakyProber{script: []bool{true, true, false, false, true}}
	m := NewWithProber(prober, time.Millisecond, logger.Nop())

	var mu sync.Mutex
	var events []bool
	cancel := m.Subscribe(func(available bool) {
		mu.Lock()
		events = append(events, available)
		mu.Unlock()
	})
	defer cancel()

	m.Start()
	defer m.Stop()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(events) >= 2
	}, 5*time.Second, time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	// Repeated identical probe results collapse into single transitions.
	assert.Equal(t, []bool{false, true}, events[:2])
}

func TestMonitor_AvailableTracksProbe(t *testing.T) {
	prober := &flakyProber{script: []bool{false}}
	m := NewWithProber(prober, time.Millisecond, logger.Nop())

	assert.True(t, m.Available(), "monitor starts optimistic")
	m.Start()
	defer m.Stop()

	require.Eventually(t, func() bool { return !m.Available() }, 5*time.Second, time.Millisecond)
}

func TestMonitor_StopIsIdempotent(t *testing.T) {
	m := NewWithProber(&flakyProber{script: []bool{true}}, time.Millisecond, logger.Nop())
	m.Start()
	m.Stop()
	m.Stop()

	// Restart works after a stop.
	m.Start()
	m.Stop()
}

func TestMonitor_UnsubscribeStopsEvents(t *testing.T) {
	prober := &flakyProber{script: []bool{false}}
	m := NewWithProber(prober, time.Millisecond, logger.Nop())

	fired := make(chan bool, 16)
	cancel := m.Subscribe(func(available bool) { fired <- available })
	cancel()

	m.Start()
	defer m.Stop()

	require.Eventually(t, func() bool { return !m.Available() }, 5*time.Second, time.Millisecond)
	assert.Empty(t, fired, "cancelled subscription must not receive events")
}

func TestNew_DefaultsPortFromScheme(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{name: "explicit port kept", url: "http://localhost:8080", want: "localhost:8080"},
		{name: "https defaults to 443", url: "https://sync.example.com", want: "sync.example.com:443"},
		{name: "http defaults to 80", url: "http://sync.example.com", want: "sync.example.com:80"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.url, time.Second, logger.Nop())
			require.NoError(t, err)
			dp, ok := m.prober.(*dialProber)
			require.True(t, ok)
			assert.Equal(t, tt.want, dp.address)
		})
	}
}
