package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"streamvault/internal/auth"
	"streamvault/internal/database"
	"streamvault/models"
	"streamvault/services/activity"
	"streamvault/services/catalog"

	"github.com/gorilla/mux"
)

type movieCatalog interface {
	ListMovies(params models.ListParams) (*models.MovieList, error)
	GetMovie(id int64) (*models.Movie, error)
	InvalidateMovies()
}

type movieStore interface {
	Create(m *models.Movie) error
	Update(id int64, u models.MovieUpdate) error
	Delete(id int64) error
	GetByID(id int64) (*models.Movie, error)
}

type activityRecorder interface {
	Record(a models.AdminActivity)
}

var (
	_ movieCatalog     = (*catalog.Service)(nil)
	_ movieStore       = (*database.MovieRepository)(nil)
	_ activityRecorder = (*activity.Recorder)(nil)
)

type MoviesHandler struct {
	Catalog  movieCatalog
	Store    movieStore
	Activity activityRecorder
}

func NewMoviesHandler(cat movieCatalog, store movieStore, rec activityRecorder) *MoviesHandler {
	return &MoviesHandler{Catalog: cat, Store: store, Activity: rec}
}

func (h *MoviesHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Catalog.ListMovies(parseListParams(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list movies")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *MoviesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid movie id")
		return
	}

	movie, err := h.Catalog.GetMovie(id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "movie not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get movie")
		return
	}
	writeJSON(w, http.StatusOK, movie)
}

func (h *MoviesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body models.Movie
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeAdminError(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.TMDBID == 0 || body.Title == "" {
		writeAdminError(w, http.StatusBadRequest, "tmdbId and title are required")
		return
	}

	err := h.Store.Create(&body)
	h.record(r, models.AdminActionCreate, "movie", fmt.Sprint(body.ID),
		fmt.Sprintf("created movie %q", body.Title), err)
	if err != nil {
		writeAdminError(w, statusForError(err), err.Error())
		return
	}

	h.Catalog.InvalidateMovies()
	writeJSON(w, http.StatusCreated, adminResponse{Success: true, Message: "movie created", Data: body})
}

func (h *MoviesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		writeAdminError(w, http.StatusBadRequest, "invalid movie id")
		return
	}

	var body models.MovieUpdate
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeAdminError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := h.Store.Update(id, body)
	h.record(r, models.AdminActionUpdate, "movie", fmt.Sprint(id),
		fmt.Sprintf("updated movie %d", id), err)
	if err != nil {
		writeAdminError(w, statusForError(err), err.Error())
		return
	}

	h.Catalog.InvalidateMovies()
	movie, err := h.Store.GetByID(id)
	if err != nil {
		writeAdminError(w, statusForError(err), err.Error())
		return
	}
	writeAdminOK(w, "movie updated", movie)
}

func (h *MoviesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		writeAdminError(w, http.StatusBadRequest, "invalid movie id")
		return
	}

	err := h.Store.Delete(id)
	h.record(r, models.AdminActionDelete, "movie", fmt.Sprint(id),
		fmt.Sprintf("deleted movie %d", id), err)
	if err != nil {
		writeAdminError(w, statusForError(err), err.Error())
		return
	}

	h.Catalog.InvalidateMovies()
	writeAdminOK(w, "movie deleted", nil)
}

// ToggleAvailability flips the is_available flag, which controls whether a
// movie appears in public listings.
func (h *MoviesHandler) ToggleAvailability(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		writeAdminError(w, http.StatusBadRequest, "invalid movie id")
		return
	}

	movie, err := h.Store.GetByID(id)
	if err != nil {
		writeAdminError(w, statusForError(err), err.Error())
		return
	}

	next := !movie.IsAvailable
	err = h.Store.Update(id, models.MovieUpdate{IsAvailable: &next})
	h.record(r, models.AdminActionToggleAvail, "movie", fmt.Sprint(id),
		fmt.Sprintf("set movie %d availability to %t", id, next), err)
	if err != nil {
		writeAdminError(w, statusForError(err), err.Error())
		return
	}

	h.Catalog.InvalidateMovies()
	writeAdminOK(w, "availability updated", map[string]any{"id": id, "isAvailable": next})
}

func (h *MoviesHandler) record(r *http.Request, action models.AdminAction, resourceType, resourceID, desc string, err error) {
	a := models.AdminActivity{
		Actor:        auth.GetActor(r),
		Action:       action,
		ResourceType: resourceType,
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
