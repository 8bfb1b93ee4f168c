package database

import (
	"errors"
	"path/filepath"
	"testing"

	"streamvault/models"
)

func setupTestGenreRepo(t *testing.T) (*GenreRepository, *MovieRepository, *TVShowRepository) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := NewDB(Config{DatabasePath: dbPath})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewGenreRepository(db.Connection()),
		NewMovieRepository(db.Connection()),
		NewTVShowRepository(db.Connection())
}

func TestGenreUpsert_InsertAndRename(t *testing.T) {
	repo, _, _ := setupTestGenreRepo(t)

	g := models.Genre{TMDBID: 28, Name: "Action"}
	if err := repo.Upsert(&g); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if g.ID == 0 {
		t.Fatal("expected non-zero ID")
	}
	firstID := g.ID

	renamed := models.Genre{TMDBID: 28, Name: "Action & Adventure"}
	if err := repo.Upsert(&renamed); err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}
	if renamed.ID != firstID {
		t.Errorf("expected same row id %d, got %d", firstID, renamed.ID)
	}

	all, err := repo.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 genre, got %d", len(all))
	}
	if all[0].Name != "Action & Adventure" {
		t.Errorf("expected renamed genre, got %q", all[0].Name)
	}
}

func TestGenreFindIDsByName_CaseInsensitive(t *testing.T) {
	repo, _, _ := setupTestGenreRepo(t)

	g := models.Genre{TMDBID: 18, Name: "Drama"}
	if err := repo.Upsert(&g); err != nil {
		t.Fatal(err)
	}

	ids, err := repo.FindIDsByName("dRaMa")
	if err != nil {
		t.Fatalf("FindIDsByName failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != g.ID {
		t.Fatalf("expected [%d], got %v", g.ID, ids)
	}

	ids, err = repo.FindIDsByName("Comedy")
	if err != nil {
		t.Fatalf("FindIDsByName failed: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected no match, got %v", ids)
	}
}

func TestGenreTMDBIDMap(t *testing.T) {
	repo, _, _ := setupTestGenreRepo(t)

	a := models.Genre{TMDBID: 28, Name: "Action"}
	b := models.Genre{TMDBID: 18, Name: "Drama"}
	for _, g := range []*models.Genre{&a, &b} {
		if err := repo.Upsert(g); err != nil {
			t.Fatal(err)
		}
	}

	m, err := repo.TMDBIDMap()
	if err != nil {
		t.Fatalf("TMDBIDMap failed: %v", err)
	}
	if m[28] != a.ID || m[18] != b.ID {
		t.Fatalf("unexpected map %v", m)
	}
}

func TestGenreDelete_BlockedWhileReferenced(t *testing.T) {
	repo, movies, _ := setupTestGenreRepo(t)

	g := models.Genre{TMDBID: 28, Name: "Action"}
	if err := repo.Upsert(&g); err != nil {
		t.Fatal(err)
	}

	m := testMovie(1, "Die Hard")
	m.Genres = []models.Genre{g}
	if err := movies.Create(m); err != nil {
		t.Fatal(err)
	}

	err := repo.Delete(g.ID)
	var refErr *GenreReferencedError
	if !errors.As(err, &refErr) {
		t.Fatalf("expected GenreReferencedError, got %v", err)
	}
	if refErr.References != 1 {
		t.Errorf("expected 1 reference, got %d", refErr.References)
	}

	// Unlink and retry.
	if err := movies.Delete(m.ID); err != nil {
		t.Fatal(err)
	}
	if err := repo.Delete(g.ID); err != nil {
		t.Fatalf("expected delete to succeed once unreferenced, got %v", err)
	}
	if _, err := repo.GetByID(g.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestGenreDelete_NotFound(t *testing.T) {
	repo, _, _ := setupTestGenreRepo(t)

	if err := repo.Delete(99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
