// Package workers runs the client's background jobs: the periodic sync
// ticker and anything else that needs a lifecycle independent of the UI.
package workers

// Worker is a background job with its own goroutine lifecycle. Run starts
// the job and returns immediately; Stop blocks until the job has exited.
type Worker interface {
	Run()
	Stop()
}

// SyncDriver is the slice of the sync coordinator the scheduler drives.
type SyncDriver interface {
	// FetchRemoteChanges queues a differential fetch. done may be nil.
	FetchRemoteChanges(done func(error))

	// NotifyLocalChange queues an upload pass over the pending change log.
	NotifyLocalChange()
}
