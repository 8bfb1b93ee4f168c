package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gorilla/mux"

	"streamvault/models"
)

type stubActivityStore struct {
	entries   []models.AdminActivity
	total     int
	lastPage  int
	lastLimit int
}

func (s *stubActivityStore) List(page, limit int) ([]models.AdminActivity, int, error) {
	s.lastPage = page
	s.lastLimit = limit
	return s.entries, s.total, nil
}

func activityRouter(h *ActivityHandler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/admin/activity", h.List).Methods(http.MethodGet)
	return r
}

func TestActivityList_Defaults(t *testing.T) {
	store := &stubActivityStore{
		entries: []models.AdminActivity{{ID: "a1", Action: models.AdminActionCreate}},
		total:   101,
	}
	h := NewActivityHandler(store)

	rr := doRequest(t, activityRouter(h), http.MethodGet, "/admin/activity", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if store.lastPage != 1 || store.lastLimit != 50 {
		t.Errorf("expected default paging 1/50, got %d/%d", store.lastPage, store.lastLimit)
	}

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Items       []models.AdminActivity `json:"items"`
			Total       int                    `json:"total"`
			CurrentPage int                    `json:"currentPage"`
			TotalPages  int                    `json:"totalPages"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Total != 101 || resp.Data.TotalPages != 3 {
		t.Errorf("expected total=101 totalPages=3, got %+v", resp.Data)
	}
}

func TestActivityList_ClampsParams(t *testing.T) {
	store := &stubActivityStore{}
	h := NewActivityHandler(store)
	router := activityRouter(h)

	doRequest(t, router, http.MethodGet, "/admin/activity?page=-2&limit=9999", "")
	if store.lastPage != 1 || store.lastLimit != 50 {
		t.Errorf("expected clamped 1/50, got %d/%d", store.lastPage, store.lastLimit)
	}

	doRequest(t, router, http.MethodGet, "/admin/activity?page=3&limit=25", "")
	if store.lastPage != 3 || store.lastLimit != 25 {
		t.Errorf("expected 3/25, got %d/%d", store.lastPage, store.lastLimit)
	}
}
