package workers

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingDriver struct {
	mu       sync.Mutex
	fetches  int
	notifies int
}

func (d *countingDriver) FetchRemoteChanges(func(error)) {
	d.mu.Lock()
	d.fetches++
	d.mu.Unlock()
}

func (d *countingDriver) NotifyLocalChange() {
	d.mu.Lock()
	d.notifies++
	d.mu.Unlock()
}

func (d *countingDriver) counts() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fetches, d.notifies
}

func TestSyncScheduler_TicksDriveFetchAndPush(t *testing.T) {
	driver := &countingDriver{}
	s := NewSyncScheduler(driver, 10*time.Millisecond)

	s.Run()
	defer s.Stop()

	require.Eventually(t, func() bool {
		fetches, notifies := driver.counts()
		return fetches >= 2 && notifies >= 2
	}, 2*time.Second, 5*time.Millisecond)
}

func TestSyncScheduler_StopHaltsTicks(t *testing.T) {
	driver := &countingDriver{}
	s := NewSyncScheduler(driver, 5*time.Millisecond)

	s.Run()
	require.Eventually(t, func() bool {
		fetches, _ := driver.counts()
		return fetches >= 1
	}, 2*time.Second, time.Millisecond)

	s.Stop()
	fetchesAtStop, _ := driver.counts()

	time.Sleep(30 * time.Millisecond)
	fetchesAfter, _ := driver.counts()
	assert.Equal(t, fetchesAtStop, fetchesAfter)

	// Stop again is a no-op.
	s.Stop()
}

func TestSyncScheduler_RunRestarts(t *testing.T) {
	driver := &countingDriver{}
	s := NewSyncScheduler(driver, 5*time.Millisecond)

	s.Run()
	s.Run() // restart, not a second goroutine
	defer s.Stop()

	require.Eventually(t, func() bool {
		fetches, _ := driver.counts()
		return fetches >= 1
	}, 2*time.Second, time.Millisecond)
}

func TestSyncScheduler_DefaultInterval(t *testing.T) {
	s := NewSyncScheduler(&countingDriver{}, 0)
	assert.Equal(t, defaultSyncInterval, s.interval)
}

type recordingWorker struct {
	ran, stopped bool
}

func (w *recordingWorker) Run()  { w.ran = true }
func (w *recordingWorker) Stop() { w.stopped = true }

func TestWorkers_RunAndStopAll(t *testing.T) {
	w1 := &recordingWorker{}
	w2 := &recordingWorker{}

	ws := NewWorkers(w1, w2)
	ws.Run()
	ws.Stop()

	for i, w := range []*recordingWorker{w1, w2} {
		assert.True(t, w.ran, "worker %d not run", i)
		assert.True(t, w.stopped, "worker %d not stopped", i)
	}
}
