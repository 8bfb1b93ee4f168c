package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streamvault/internal/database"
	"streamvault/models"
)

type stubMovieStore struct {
	listCalls int
	lastQuery database.ListQuery
	items     []models.Movie
	total     int
}

func (s *stubMovieStore) List(q database.ListQuery) ([]models.Movie, int, error) {
	s.listCalls++
	s.lastQuery = q
	return s.items, s.total, nil
}

func (s *stubMovieStore) GetByID(id int64) (*models.Movie, error) {
	for i := range s.items {
		if s.items[i].ID == id {
			return &s.items[i], nil
		}
	}
	return nil, database.ErrNotFound
}

type stubTVStore struct {
	listCalls int
	items     []models.TVShow
	total     int
}

func (s *stubTVStore) List(q database.ListQuery) ([]models.TVShow, int, error) {
	s.listCalls++
	return s.items, s.total, nil
}

func (s *stubTVStore) GetByID(id int64) (*models.TVShow, error) {
	return nil, database.ErrNotFound
}

type stubGenreStore struct {
	genres    map[string][]int64
	nameCalls int
}

func (s *stubGenreStore) List() ([]models.Genre, error) { return nil, nil }

func (s *stubGenreStore) FindIDsByName(name string) ([]int64, error) {
	s.nameCalls++
	return s.genres[name], nil
}

func newTestService(movies *stubMovieStore, shows *stubTVStore, genres *stubGenreStore, ttl time.Duration) *Service {
	if movies == nil {
		movies = &stubMovieStore{}
	}
	if shows == nil {
		shows = &stubTVStore{}
	}
	if genres == nil {
		genres = &stubGenreStore{}
	}
	return NewService(movies, shows, genres, Options{CacheTTL: ttl, CacheSize: 16})
}

func TestListMovies_CacheHit(t *testing.T) {
	store := &stubMovieStore{items: []models.Movie{{ID: 1, Title: "A"}}, total: 1}
	svc := newTestService(store, nil, nil, time.Minute)

	params := models.ListParams{Page: 1, Limit: 20}
	first, err := svc.ListMovies(params)
	require.NoError(t, err)
	second, err := svc.ListMovies(params)
	require.NoError(t, err)

	assert.Equal(t, 1, store.listCalls, "second identical request should hit the cache")
	assert.Equal(t, first.Items, second.Items)
}

func TestListMovies_DistinctParamsMissCache(t *testing.T) {
	store := &stubMovieStore{total: 0}
	svc := newTestService(store, nil, nil, time.Minute)

	_, err := svc.ListMovies(models.ListParams{Page: 1})
	require.NoError(t, err)
	_, err = svc.ListMovies(models.ListParams{Page: 2})
	require.NoError(t, err)
	_, err = svc.ListMovies(models.ListParams{Page: 1, Search: "x"})
	require.NoError(t, err)

	assert.Equal(t, 3, store.listCalls)
}

func TestListMovies_CacheExpiry(t *testing.T) {
	store := &stubMovieStore{total: 0}
	svc := newTestService(store, nil, nil, 30*time.Millisecond)

	_, err := svc.ListMovies(models.ListParams{})
	require.NoError(t, err)
	time.Sleep(60 * time.Millisecond)
	_, err = svc.ListMovies(models.ListParams{})
	require.NoError(t, err)

	assert.Equal(t, 2, store.listCalls, "expired entry should be refetched")
}

func TestInvalidateMovies_PurgesCache(t *testing.T) {
	store := &stubMovieStore{total: 0}
	svc := newTestService(store, nil, nil, time.Minute)

	_, err := svc.ListMovies(models.ListParams{})
	require.NoError(t, err)
	svc.InvalidateMovies()
	_, err = svc.ListMovies(models.ListParams{})
	require.NoError(t, err)

	assert.Equal(t, 2, store.listCalls)
}

func TestListMovies_NormalizesParams(t *testing.T) {
	store := &stubMovieStore{total: 0}
	svc := newTestService(store, nil, nil, time.Minute)

	list, err := svc.ListMovies(models.ListParams{Page: -3, Limit: 10000, SortBy: "bogus", Order: "sideways"})
	require.NoError(t, err)

	assert.Equal(t, 1, list.CurrentPage)
	assert.Equal(t, 1, store.lastQuery.Page)
	assert.Equal(t, 100, store.lastQuery.Limit)
	assert.Equal(t, "popularity", store.lastQuery.SortBy)
	assert.Equal(t, "DESC", store.lastQuery.Order)
}

func TestListMovies_SortWhitelist(t *testing.T) {
	store := &stubMovieStore{total: 0}
	svc := newTestService(store, nil, nil, time.Minute)

	_, err := svc.ListMovies(models.ListParams{SortBy: "voteAverage", Order: "asc"})
	require.NoError(t, err)

	assert.Equal(t, "vote_average", store.lastQuery.SortBy)
	assert.Equal(t, "ASC", store.lastQuery.Order)
}

func TestListMovies_GenreByNumericID(t *testing.T) {
	store := &stubMovieStore{total: 0}
	genres := &stubGenreStore{}
	svc := newTestService(store, nil, genres, time.Minute)

	_, err := svc.ListMovies(models.ListParams{Genre: "12"})
	require.NoError(t, err)

	assert.Equal(t, []int64{12}, store.lastQuery.GenreIDs)
	assert.Zero(t, genres.nameCalls, "numeric genre should not hit name lookup")
}

func TestListMovies_GenreByName(t *testing.T) {
	store := &stubMovieStore{items: []models.Movie{{ID: 1}}, total: 1}
	genres := &stubGenreStore{genres: map[string][]int64{"Action": {3}}}
	svc := newTestService(store, nil, genres, time.Minute)

	_, err := svc.ListMovies(models.ListParams{Genre: "Action"})
	require.NoError(t, err)

	assert.Equal(t, []int64{3}, store.lastQuery.GenreIDs)
}

func TestListMovies_UnknownGenreNameShortCircuits(t *testing.T) {
	store := &stubMovieStore{items: []models.Movie{{ID: 1}}, total: 1}
	genres := &stubGenreStore{}
	svc := newTestService(store, nil, genres, time.Minute)

	list, err := svc.ListMovies(models.ListParams{Genre: "Nope"})
	require.NoError(t, err)

	assert.Zero(t, store.listCalls, "no store query when the genre matches nothing")
	assert.Empty(t, list.Items)
	assert.Zero(t, list.Total)
}

func TestListMovies_TotalPages(t *testing.T) {
	store := &stubMovieStore{items: []models.Movie{{ID: 1}}, total: 45}
	svc := newTestService(store, nil, nil, time.Minute)

	list, err := svc.ListMovies(models.ListParams{Page: 1, Limit: 20})
	require.NoError(t, err)

	assert.Equal(t, 45, list.Total)
	assert.Equal(t, 3, list.TotalPages)
}

func TestListTVShows_SeparateCache(t *testing.T) {
	movieStore := &stubMovieStore{total: 0}
	tvStore := &stubTVStore{total: 0}
	svc := newTestService(movieStore, tvStore, nil, time.Minute)

	_, err := svc.ListMovies(models.ListParams{})
	require.NoError(t, err)
	_, err = svc.ListTVShows(models.ListParams{})
	require.NoError(t, err)

	assert.Equal(t, 1, movieStore.listCalls)
	assert.Equal(t, 1, tvStore.listCalls)
}

func TestListTVShows_TVSortMapping(t *testing.T) {
	tvStore := &stubTVStore{total: 0}
	svc := newTestService(nil, tvStore, nil, time.Minute)

	list, err := svc.ListTVShows(models.ListParams{SortBy: "firstAirDate"})
	require.NoError(t, err)
	assert.NotNil(t, list)
}

func TestGetMovie_Uncached(t *testing.T) {
	store := &stubMovieStore{items: []models.Movie{{ID: 5, Title: "Heat"}}}
	svc := newTestService(store, nil, nil, time.Minute)

	m, err := svc.GetMovie(5)
	require.NoError(t, err)
	assert.Equal(t, "Heat", m.Title)

	_, err = svc.GetMovie(6)
	assert.ErrorIs(t, err, database.ErrNotFound)
}
