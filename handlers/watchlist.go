package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"streamvault/internal/database"
	"streamvault/models"

	"github.com/gorilla/mux"
)

type watchlistStore interface {
	Upsert(item *models.WatchlistItem) error
	List(userID string) ([]models.WatchlistItem, error)
	Remove(userID, mediaType string, mediaID int64) (bool, error)
	RecordHistory(entry *models.WatchHistoryEntry) error
	ListHistory(userID string) ([]models.WatchHistoryEntry, error)
}

var _ watchlistStore = (*database.WatchlistRepository)(nil)

type WatchlistHandler struct {
	Store watchlistStore
}

func NewWatchlistHandler(store watchlistStore) *WatchlistHandler {
	return &WatchlistHandler{Store: store}
}

func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	items, err := h.Store.List(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list watchlist")
		return
	}
	if items == nil {
		items = []models.WatchlistItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *WatchlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var body models.WatchlistUpsert
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.MediaID < 1 || !validMediaType(body.MediaType) {
		writeError(w, http.StatusBadRequest, "mediaId and mediaType (movie|tv) are required")
		return
	}

	item := models.WatchlistItem{
		UserID:    userID,
		MediaType: body.MediaType,
		MediaID:   body.MediaID,
		Status:    body.Status,
		Progress:  body.Progress,
	}
	if err := h.Store.Upsert(&item); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save watchlist entry")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *WatchlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	mediaType := vars["mediaType"]
	mediaID, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil || !validMediaType(mediaType) {
		writeError(w, http.StatusBadRequest, "invalid media reference")
		return
	}

	removed, err := h.Store.Remove(userID, mediaType, mediaID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to remove watchlist entry")
		return
	}
	if !removed {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *WatchlistHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	entries, err := h.Store.ListHistory(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list history")
		return
	}
	if entries == nil {
		entries = []models.WatchHistoryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *WatchlistHandler) RecordHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var body struct {
		MediaType string  `json:"mediaType"`
		MediaID   int64   `json:"mediaId"`
		Progress  float64 `json:"progress"`
		Completed bool    `json:"completed"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.MediaID < 1 || !validMediaType(body.MediaType) {
		writeError(w, http.StatusBadRequest, "mediaId and mediaType (movie|tv) are required")
		return
	}

	entry := models.WatchHistoryEntry{
		UserID:    userID,
		MediaType: body.MediaType,
		MediaID:   body.MediaID,
		Progress:  body.Progress,
		Completed: body.Completed,
	}
	if err := h.Store.RecordHistory(&entry); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to record history")
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (h *WatchlistHandler) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(mux.Vars(r)["userID"])
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user id is required")
		return "", false
	}
	return userID, true
}

func validMediaType(t string) bool {
	return t == "movie" || t == "tv"
}
