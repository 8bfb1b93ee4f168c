package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"streamvault/internal/auth"
	"streamvault/internal/database"
	"streamvault/models"
	"streamvault/services/catalog"

	"github.com/gorilla/mux"
)

type genreCatalog interface {
	ListGenres() ([]models.Genre, error)
	InvalidateMovies()
	InvalidateTVShows()
}

type genreStore interface {
	Delete(id int64) error
}

var (
	_ genreCatalog = (*catalog.Service)(nil)
	_ genreStore   = (*database.GenreRepository)(nil)
)

type GenresHandler struct {
	Catalog  genreCatalog
	Store    genreStore
	Activity activityRecorder
}

func NewGenresHandler(cat genreCatalog, store genreStore, rec activityRecorder) *GenresHandler {
	return &GenresHandler{Catalog: cat, Store: store, Activity: rec}
}

func (h *GenresHandler) List(w http.ResponseWriter, r *http.Request) {
	genres, err := h.Catalog.ListGenres()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list genres")
		return
	}
	if genres == nil {
		genres = []models.Genre{}
	}
	writeJSON(w, http.StatusOK, genres)
}

// Delete removes a genre. Refused while any movie or show still references
// it; the response carries the reference count.
func (h *GenresHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(mux.Vars(r), "id")
	if !ok {
		writeAdminError(w, http.StatusBadRequest, "invalid genre id")
		return
	}

	err := h.Store.Delete(id)

	a := models.AdminActivity{
		Actor:        auth.GetActor(r),
		Action:       models.AdminActionDelete,
		ResourceType: "genre",
		ResourceID:   fmt.Sprint(id),
		Description:  fmt.Sprintf("deleted genre %d", id),
		Success:      err == nil,
		IPAddress:    clientIP(r),
		UserAgent:    r.UserAgent(),
	}
	if err != nil {
		a.ErrorMessage = err.Error()
	}
	h.Activity.Record(a)

	if err != nil {
		var refErr *database.GenreReferencedError
		if errors.As(err, &refErr) {
			writeJSON(w, http.StatusConflict, adminResponse{
				Success: false,
				Message: err.Error(),
				Data:    map[string]any{"genreId": refErr.GenreID, "references": refErr.References},
			})
			return
		}
		writeAdminError(w, statusForError(err), err.Error())
		return
	}

	h.Catalog.InvalidateMovies()
	h.Catalog.InvalidateTVShows()
	writeAdminOK(w, "genre deleted", nil)
}
