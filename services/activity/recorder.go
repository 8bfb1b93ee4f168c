// Package activity appends admin mutations to the audit trail without
// blocking the request path. Recording failures are logged and swallowed;
// they never surface to the caller.
package activity

import (
	"log"
	"sync"

	"streamvault/models"
)

type store interface {
	Insert(a *models.AdminActivity) error
}

// Recorder buffers activity records and writes them from a single
// background goroutine.
type Recorder struct {
	store store

	entries chan models.AdminActivity
	done    chan struct{}
	once    sync.Once
}

// NewRecorder starts the background writer.
func NewRecorder(s store) *Recorder {
	r := &Recorder{
		store:   s,
		entries: make(chan models.AdminActivity, 256),
		done:    make(chan struct{}),
	}
	go r.run()
	return r
}

// Record enqueues an activity without blocking. When the buffer is full the
// entry is dropped with a log line; the audit trail is best-effort.
func (r *Recorder) Record(a models.AdminActivity) {
	select {
	case r.entries <- a:
	default:
		log.Printf("[activity] buffer full, dropping record action=%s resource=%s/%s",
			a.Action, a.ResourceType, a.ResourceID)
	}
}

// Close stops accepting records and drains the buffer.
func (r *Recorder) Close() {
	r.once.Do(func() {
		close(r.entries)
		<-r.done
	})
}

func (r *Recorder) run() {
	defer close(r.done)
	for a := range r.entries {
		if err := r.store.Insert(&a); err != nil {
			log.Printf("[activity] failed to record %s %s/%s: %v",
				a.Action, a.ResourceType, a.ResourceID, err)
		}
	}
}
