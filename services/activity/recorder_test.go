package activity

import (
	"errors"
	"sync"
	"testing"

	"streamvault/models"
)

type captureStore struct {
	mu       sync.Mutex
	inserted []models.AdminActivity
	err      error
}

func (s *captureStore) Insert(a *models.AdminActivity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.inserted = append(s.inserted, *a)
	return nil
}

func (s *captureStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inserted)
}

func TestRecorderDrainsOnClose(t *testing.T) {
	store := &captureStore{}
	r := NewRecorder(store)

	for i := 0; i < 10; i++ {
		r.Record(models.AdminActivity{Action: models.AdminActionCreate, ResourceType: "movie"})
	}
	r.Close()

	if store.count() != 10 {
		t.Errorf("expected 10 records after Close, got %d", store.count())
	}
}

func TestRecorderSwallowsInsertErrors(t *testing.T) {
	store := &captureStore{err: errors.New("disk full")}
	r := NewRecorder(store)

	// Must not panic or block the caller.
	r.Record(models.AdminActivity{Action: models.AdminActionDelete})
	r.Close()

	if store.count() != 0 {
		t.Errorf("expected no records, got %d", store.count())
	}
}

func TestRecorderCloseIsIdempotent(t *testing.T) {
	r := NewRecorder(&captureStore{})
	r.Close()
	r.Close()
}
