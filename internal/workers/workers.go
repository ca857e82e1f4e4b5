package workers

// Workers aggregates background jobs so callers start and stop them as one.
type Workers struct {
	workers []Worker
}

func NewWorkers(workers ...Worker) *Workers {
	return &Workers{workers: workers}
}

func (w *Workers) Run() {
	for _, worker := range w.workers {
		worker.Run()
	}
}

func (w *Workers) Stop() {
	for _, worker := range w.workers {
		worker.Stop()
	}
}
