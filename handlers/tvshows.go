package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"streamvault/internal/auth"
	"streamvault/internal/database"
	"streamvault/models"
	"streamvault/services/catalog"

	"github.com/gorilla/mux"
)

type tvShowCatalog interface {
	ListTVShows(params models.ListParams) (*models.TVShowList, error)
	GetTVShow(id int64) (*models.TVShow, error)
	InvalidateTVShows()
}

type tvShowStore interface {
	Create(s *models.TVShow) error
	Update(id int64, u models.TVShowUpdate) error
	Delete(id int64) error
	GetByID(id int64) (*models.TVShow, error)
	ListEpisodes(showID int64) ([]models.Episode, error)
}

var (
	_ tvShowCatalog = (*catalog.Service)(nil)
	_ tvShowStore   = (*database.TVShowRepository)(nil)
)

type TVShowsHandler struct {
	Catalog  tvShowCatalog
	Store    tvShowStore
	Activity activityRecorder
}

func NewTVShowsHandler(cat tvShowCatalog, store tvShowStore, rec activityRecorder) *TVShowsHandler {
	return &TVShowsHandler{Catalog: cat, Store: store, Activity: rec}
}

func (h *TVShowsHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Catalog.ListTVShows(parseListParams(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list shows")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *TVShowsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid show id")
		return
	}

	show, err := h.Catalog.GetTVShow(id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "show not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get show")
		return
	}
	writeJSON(w, http.StatusOK, show)
}

// Episodes returns the stored episode list for one show, ordered by season
// and episode number.
func (h *TVShowsHandler) Episodes(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid show id")
		return
	}

	if _, err := h.Store.GetByID(id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "show not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get show")
		return
	}

	episodes, err := h.Store.ListEpisodes(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list episodes")
		return
	}
	writeJSON(w, http.StatusOK, episodes)
}

func (h *TVShowsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body models.TVShow
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeAdminError(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.TMDBID == 0 || body.Name == "" {
		writeAdminError(w, http.StatusBadRequest, "tmdbId and name are required")
		return
	}

	err := h.Store.Create(&body)
	h.record(r, models.AdminActionCreate, fmt.Sprint(body.ID),
		fmt.Sprintf("created show %q", body.Name), err)
	if err != nil {
		writeAdminError(w, statusForError(err), err.Error())
		return
	}

	h.Catalog.InvalidateTVShows()
	writeJSON(w, http.StatusCreated, adminResponse{Success: true, Message: "show created", Data: body})
}

func (h *TVShowsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		writeAdminError(w, http.StatusBadRequest, "invalid show id")
		return
	}

	var body models.TVShowUpdate
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeAdminError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := h.Store.Update(id, body)
	h.record(r, models.AdminActionUpdate, fmt.Sprint(id),
		fmt.Sprintf("updated show %d", id), err)
	if err != nil {
		writeAdminError(w, statusForError(err), err.Error())
		return
	}

	h.Catalog.InvalidateTVShows()
	show, err := h.Store.GetByID(id)
	if err != nil {
		writeAdminError(w, statusForError(err), err.Error())
		return
	}
	writeAdminOK(w, "show updated", show)
}

func (h *TVShowsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		writeAdminError(w, http.StatusBadRequest, "invalid show id")
		return
	}

	err := h.Store.Delete(id)
	h.record(r, models.AdminActionDelete, fmt.Sprint(id),
		fmt.Sprintf("deleted show %d", id), err)
	if err != nil {
		writeAdminError(w, statusForError(err), err.Error())
		return
	}

	h.Catalog.InvalidateTVShows()
	writeAdminOK(w, "show deleted", nil)
}

func (h *TVShowsHandler) ToggleAvailability(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		writeAdminError(w, http.StatusBadRequest, "invalid show id")
		return
	}

	show, err := h.Store.GetByID(id)
	if err != nil {
		writeAdminError(w, statusForError(err), err.Error())
		return
	}

	next := !show.IsAvailable
	err = h.Store.Update(id, models.TVShowUpdate{IsAvailable: &next})
	h.record(r, models.AdminActionToggleAvail, fmt.Sprint(id),
		fmt.Sprintf("set show %d availability to %t", id, next), err)
	if err != nil {
		writeAdminError(w, statusForError(err), err.Error())
		return
	}

	h.Catalog.InvalidateTVShows()
	writeAdminOK(w, "availability updated", map[string]any{"id": id, "isAvailable": next})
}

func (h *TVShowsHandler) record(r *http.Request, action models.AdminAction, resourceID, desc string, err error) {
	a := models.AdminActivity{
		Actor:        auth.GetActor(r),
		Action:       action,
		ResourceType: "tvshow",
		ResourceID:   resourceID,
		Description:  desc,
		Success:      err == nil,
		IPAddress:    clientIP(r),
		UserAgent:    r.UserAgent(),
	}
	if err != nil {
		a.ErrorMessage = err.Error()
	}
	h.Activity.Record(a)
}
