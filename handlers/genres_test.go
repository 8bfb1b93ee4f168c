package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gorilla/mux"

	"streamvault/internal/database"
	"streamvault/models"
)

type stubGenreCatalog struct {
	genres        []models.Genre
	err           error
	movieInvalids int
	tvInvalids    int
}

func (s *stubGenreCatalog) ListGenres() ([]models.Genre, error) { return s.genres, s.err }
func (s *stubGenreCatalog) InvalidateMovies()                   { s.movieInvalids++ }
func (s *stubGenreCatalog) InvalidateTVShows()                  { s.tvInvalids++ }

type stubGenreStore struct {
	deleteErr error
	deleted   []int64
}

func (s *stubGenreStore) Delete(id int64) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func genresRouter(h *GenresHandler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/genres", h.List).Methods(http.MethodGet)
	r.HandleFunc("/admin/genres/{id}", h.Delete).Methods(http.MethodDelete)
	return r
}

func TestGenresList(t *testing.T) {
	cat := &stubGenreCatalog{genres: []models.Genre{{ID: 1, TMDBID: 28, Name: "Action"}}}
	h := NewGenresHandler(cat, &stubGenreStore{}, &stubRecorder{})

	rr := doRequest(t, genresRouter(h), http.MethodGet, "/genres", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var genres []models.Genre
	if err := json.Unmarshal(rr.Body.Bytes(), &genres); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(genres) != 1 || genres[0].Name != "Action" {
		t.Errorf("unexpected genres: %+v", genres)
	}
}

func TestGenresList_EmptyIsArray(t *testing.T) {
	h := NewGenresHandler(&stubGenreCatalog{}, &stubGenreStore{}, &stubRecorder{})

	rr := doRequest(t, genresRouter(h), http.MethodGet, "/genres", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got := rr.Body.String(); got != "[]\n" {
		t.Errorf("expected empty JSON array, got %q", got)
	}
}

func TestGenresDelete_Success(t *testing.T) {
	cat := &stubGenreCatalog{}
	store := &stubGenreStore{}
	rec := &stubRecorder{}
	h := NewGenresHandler(cat, store, rec)

	rr := doRequest(t, genresRouter(h), http.MethodDelete, "/admin/genres/5", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if len(store.deleted) != 1 || store.deleted[0] != 5 {
		t.Errorf("delete not forwarded: %+v", store.deleted)
	}
	// Genres appear in both listings, so both caches are purged.
	if cat.movieInvalids != 1 || cat.tvInvalids != 1 {
		t.Errorf("expected both caches purged, got movies=%d tv=%d", cat.movieInvalids, cat.tvInvalids)
	}
	records := rec.all()
	if len(records) != 1 || !records[0].Success || records[0].ResourceType != "genre" {
		t.Errorf("unexpected audit record: %+v", records)
	}
}

func TestGenresDelete_Referenced(t *testing.T) {
	cat := &stubGenreCatalog{}
	store := &stubGenreStore{deleteErr: &database.GenreReferencedError{GenreID: 5, References: 12}}
	rec := &stubRecorder{}
	h := NewGenresHandler(cat, store, rec)

	rr := doRequest(t, genresRouter(h), http.MethodDelete, "/admin/genres/5", "")

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Data    struct {
			GenreID    int64 `json:"genreId"`
			References int   `json:"references"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Success {
		t.Error("expected success=false")
	}
	if resp.Data.GenreID != 5 || resp.Data.References != 12 {
		t.Errorf("expected reference details in payload, got %+v", resp.Data)
	}

	if cat.movieInvalids != 0 || cat.tvInvalids != 0 {
		t.Error("caches must not be purged on refused delete")
	}
	records := rec.all()
	if len(records) != 1 || records[0].Success {
		t.Errorf("expected a failed audit record, got %+v", records)
	}
}

func TestGenresDelete_InvalidID(t *testing.T) {
	h := NewGenresHandler(&stubGenreCatalog{}, &stubGenreStore{}, &stubRecorder{})

	rr := doRequest(t, genresRouter(h), http.MethodDelete, "/admin/genres/0", "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rr.Code)
	}
}
