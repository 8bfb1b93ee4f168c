package database

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"streamvault/models"
)

// setupTestMovieRepo creates a test database with movie and genre repositories.
func setupTestMovieRepo(t *testing.T) (*MovieRepository, *GenreRepository) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := NewDB(Config{DatabasePath: dbPath})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewMovieRepository(db.Connection()), NewGenreRepository(db.Connection())
}

func testGenre(t *testing.T, genres *GenreRepository, tmdbID int64, name string) models.Genre {
	t.Helper()
	g := models.Genre{TMDBID: tmdbID, Name: name}
	if err := genres.Upsert(&g); err != nil {
		t.Fatalf("upsert genre: %v", err)
	}
	return g
}

func testMovie(tmdbID int64, title string) *models.Movie {
	release := time.Date(2021, 6, 12, 0, 0, 0, 0, time.UTC)
	return &models.Movie{
		TMDBID:      tmdbID,
		Title:       title,
		Overview:    "overview for " + title,
		ReleaseDate: &release,
		VoteAverage: 7.2,
		VoteCount:   100,
		Popularity:  50,
		IsAvailable: true,
		EmbedURL:    "https://vidsrc.xyz/embed/movie?tmdb=1",
	}
}

func TestMovieCreate_Success(t *testing.T) {
	repo, genres := setupTestMovieRepo(t)

	g := testGenre(t, genres, 28, "Action")
	m := testMovie(550, "Fight Club")
	m.Genres = []models.Genre{g}

	if err := repo.Create(m); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if m.ID == 0 {
		t.Error("expected non-zero ID after insert")
	}

	got, err := repo.GetByID(m.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Title != "Fight Club" {
		t.Errorf("expected title Fight Club, got %q", got.Title)
	}
	if len(got.Genres) != 1 || got.Genres[0].Name != "Action" {
		t.Errorf("expected genre Action, got %+v", got.Genres)
	}
}

func TestMovieCreate_DuplicateTMDBID(t *testing.T) {
	repo, _ := setupTestMovieRepo(t)

	if err := repo.Create(testMovie(550, "Fight Club")); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	err := repo.Create(testMovie(550, "Fight Club again"))
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	n, err := repo.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 movie, got %d", n)
	}
}

func TestMovieUpsertByTMDBID_RefreshesInPlace(t *testing.T) {
	repo, genres := setupTestMovieRepo(t)

	g1 := testGenre(t, genres, 28, "Action")
	g2 := testGenre(t, genres, 18, "Drama")

	m := testMovie(550, "Fight Club")
	m.Genres = []models.Genre{g1}
	if err := repo.Create(m); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	firstID := m.ID

	updated := testMovie(550, "Fight Club (remastered)")
	updated.VoteAverage = 8.4
	updated.Genres = []models.Genre{g2}
	if err := repo.UpsertByTMDBID(updated); err != nil {
		t.Fatalf("UpsertByTMDBID failed: %v", err)
	}
	if updated.ID != firstID {
		t.Errorf("expected upsert to keep id %d, got %d", firstID, updated.ID)
	}

	got, err := repo.GetByTMDBID(550)
	if err != nil {
		t.Fatalf("GetByTMDBID failed: %v", err)
	}
	if got.Title != "Fight Club (remastered)" {
		t.Errorf("expected refreshed title, got %q", got.Title)
	}
	if got.VoteAverage != 8.4 {
		t.Errorf("expected refreshed rating, got %g", got.VoteAverage)
	}
	if len(got.Genres) != 1 || got.Genres[0].Name != "Drama" {
		t.Errorf("expected genre links replaced, got %+v", got.Genres)
	}
}

func TestMovieExistsByTMDBID(t *testing.T) {
	repo, _ := setupTestMovieRepo(t)

	exists, err := repo.ExistsByTMDBID(550)
	if err != nil {
		t.Fatalf("ExistsByTMDBID failed: %v", err)
	}
	if exists {
		t.Error("expected false before insert")
	}

	if err := repo.Create(testMovie(550, "Fight Club")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	exists, err = repo.ExistsByTMDBID(550)
	if err != nil {
		t.Fatalf("ExistsByTMDBID failed: %v", err)
	}
	if !exists {
		t.Error("expected true after insert")
	}
}

func TestMovieGetByID_NotFound(t *testing.T) {
	repo, _ := setupTestMovieRepo(t)

	_, err := repo.GetByID(999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMovieList_FiltersUnavailable(t *testing.T) {
	repo, _ := setupTestMovieRepo(t)

	visible := testMovie(1, "Visible")
	hidden := testMovie(2, "Hidden")
	hidden.IsAvailable = false
	if err := repo.Create(visible); err != nil {
		t.Fatal(err)
	}
	if err := repo.Create(hidden); err != nil {
		t.Fatal(err)
	}

	items, total, err := repo.List(ListQuery{Page: 1, Limit: 20, SortBy: "popularity", Order: "DESC"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("expected 1 visible movie, got total=%d len=%d", total, len(items))
	}
	if items[0].Title != "Visible" {
		t.Errorf("expected Visible, got %q", items[0].Title)
	}
}

func TestMovieList_GenreAndYearFilter(t *testing.T) {
	repo, genres := setupTestMovieRepo(t)

	action := testGenre(t, genres, 28, "Action")
	drama := testGenre(t, genres, 18, "Drama")

	m1 := testMovie(1, "Die Hard")
	m1.Genres = []models.Genre{action}
	release1988 := time.Date(1988, 7, 15, 0, 0, 0, 0, time.UTC)
	m1.ReleaseDate = &release1988

	m2 := testMovie(2, "Marriage Story")
	m2.Genres = []models.Genre{drama}

	for _, m := range []*models.Movie{m1, m2} {
		if err := repo.Create(m); err != nil {
			t.Fatal(err)
		}
	}

	items, total, err := repo.List(ListQuery{
		Page: 1, Limit: 20, GenreIDs: []int64{action.ID},
		SortBy: "popularity", Order: "DESC",
	})
	if err != nil {
		t.Fatalf("List by genre failed: %v", err)
	}
	if total != 1 || items[0].Title != "Die Hard" {
		t.Fatalf("expected only Die Hard, got total=%d items=%+v", total, items)
	}

	items, total, err = repo.List(ListQuery{
		Page: 1, Limit: 20, Year: 1988,
		SortBy: "popularity", Order: "DESC",
	})
	if err != nil {
		t.Fatalf("List by year failed: %v", err)
	}
	if total != 1 || items[0].Title != "Die Hard" {
		t.Fatalf("expected only Die Hard for 1988, got total=%d", total)
	}
}

func TestMovieList_SearchLiteralSubstring(t *testing.T) {
	repo, _ := setupTestMovieRepo(t)

	exact := testMovie(1, "a.b*c movie")
	other := testMovie(2, "axbzc movie")
	if err := repo.Create(exact); err != nil {
		t.Fatal(err)
	}
	if err := repo.Create(other); err != nil {
		t.Fatal(err)
	}

	// Metacharacters in the query must match literally, not as wildcards.
	items, total, err := repo.List(ListQuery{
		Page: 1, Limit: 20, Search: "a.b*c",
		SortBy: "popularity", Order: "DESC",
	})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 1 || items[0].Title != "a.b*c movie" {
		t.Fatalf("expected literal match only, got total=%d items=%+v", total, items)
	}

	// Percent signs in the query are escaped too.
	pct := testMovie(3, "100% fresh")
	if err := repo.Create(pct); err != nil {
		t.Fatal(err)
	}
	_, total, err = repo.List(ListQuery{
		Page: 1, Limit: 20, Search: "100%",
		SortBy: "popularity", Order: "DESC",
	})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected %% to match literally, got total=%d", total)
	}
}

func TestMovieList_SortAndPagination(t *testing.T) {
	repo, _ := setupTestMovieRepo(t)

	for i := int64(1); i <= 5; i++ {
		m := testMovie(i, "Movie")
		m.VoteAverage = float64(i)
		if err := repo.Create(m); err != nil {
			t.Fatal(err)
		}
	}

	items, total, err := repo.List(ListQuery{
		Page: 1, Limit: 2, SortBy: "vote_average", Order: "DESC",
	})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 5 {
		t.Fatalf("expected total 5, got %d", total)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items on page, got %d", len(items))
	}
	if items[0].VoteAverage != 5 || items[1].VoteAverage != 4 {
		t.Errorf("expected descending ratings, got %g then %g", items[0].VoteAverage, items[1].VoteAverage)
	}

	items, _, err = repo.List(ListQuery{
		Page: 3, Limit: 2, SortBy: "vote_average", Order: "DESC",
	})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 1 || items[0].VoteAverage != 1 {
		t.Errorf("expected last page with one item, got %+v", items)
	}
}

func TestMovieList_GenresOnEveryRow(t *testing.T) {
	repo, genres := setupTestMovieRepo(t)

	action := testGenre(t, genres, 28, "Action")
	for i := int64(1); i <= 6; i++ {
		m := testMovie(i, "Movie")
		m.Genres = []models.Genre{action}
		if err := repo.Create(m); err != nil {
			t.Fatal(err)
		}
	}

	items, total, err := repo.List(ListQuery{Page: 1, Limit: 20, SortBy: "popularity", Order: "DESC"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 6 {
		t.Fatalf("expected total 6, got %d", total)
	}
	for i, m := range items {
		if len(m.Genres) != 1 || m.Genres[0].Name != "Action" {
			t.Errorf("item %d: expected genre Action, got %+v", i, m.Genres)
		}
	}
}

func TestMovieUpdate_PartialFields(t *testing.T) {
	repo, genres := setupTestMovieRepo(t)

	g := testGenre(t, genres, 28, "Action")
	m := testMovie(550, "Fight Club")
	if err := repo.Create(m); err != nil {
		t.Fatal(err)
	}

	title := "Renamed"
	avail := false
	err := repo.Update(m.ID, models.MovieUpdate{
		Title:       &title,
		IsAvailable: &avail,
		GenreIDs:    []int64{g.ID},
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := repo.GetByID(m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Renamed" {
		t.Errorf("expected renamed title, got %q", got.Title)
	}
	if got.IsAvailable {
		t.Error("expected movie to be unavailable")
	}
	if got.Overview != m.Overview {
		t.Errorf("expected untouched overview, got %q", got.Overview)
	}
	if len(got.Genres) != 1 || got.Genres[0].ID != g.ID {
		t.Errorf("expected genre links replaced, got %+v", got.Genres)
	}
}

func TestMovieUpdate_NotFound(t *testing.T) {
	repo, _ := setupTestMovieRepo(t)

	title := "x"
	err := repo.Update(42, models.MovieUpdate{Title: &title})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMovieDelete(t *testing.T) {
	repo, _ := setupTestMovieRepo(t)

	m := testMovie(550, "Fight Club")
	if err := repo.Create(m); err != nil {
		t.Fatal(err)
	}
	if err := repo.Delete(m.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.GetByID(m.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.Delete(m.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
