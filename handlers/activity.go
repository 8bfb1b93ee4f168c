package handlers

import (
	"net/http"

	"streamvault/internal/database"
	"streamvault/models"
)

type activityStore interface {
	List(page, limit int) ([]models.AdminActivity, int, error)
}

var _ activityStore = (*database.ActivityRepository)(nil)

// ActivityHandler serves the admin audit trail. Read-only; records are
// written by the mutation handlers through the recorder.
type ActivityHandler struct {
	Store activityStore
}

func NewActivityHandler(store activityStore) *ActivityHandler {
	return &ActivityHandler{Store: store}
}

func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := atoiDefault(q.Get("page"), 1)
	limit := atoiDefault(q.Get("limit"), 50)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	entries, total, err := h.Store.List(page, limit)
	if err != nil {
		writeAdminError(w, http.StatusInternalServerError, "failed to list activity")
		return
	}
	if entries == nil {
		entries = []models.AdminActivity{}
	}

	writeAdminOK(w, "admin activity", map[string]any{
		"items":       entries,
		"total":       total,
		"currentPage": page,
		"totalPages":  (total + limit - 1) / limit,
	})
}
