// Package catalog serves filtered, paginated, sorted reads over the catalog
// store through a short-TTL read-through cache. Sync writes are not
// invalidated and go stale until TTL expiry; admin mutations purge the
// affected cache explicitly.
package catalog

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"streamvault/internal/database"
	"streamvault/models"
)

// Store dependencies, narrowed to what this layer reads. The database
// repositories satisfy them; tests substitute counting stubs.
type movieStore interface {
	List(q database.ListQuery) ([]models.Movie, int, error)
	GetByID(id int64) (*models.Movie, error)
}

type tvShowStore interface {
	List(q database.ListQuery) ([]models.TVShow, int, error)
	GetByID(id int64) (*models.TVShow, error)
}

type genreStore interface {
	List() ([]models.Genre, error)
	FindIDsByName(name string) ([]int64, error)
}

var (
	_ movieStore  = (*database.MovieRepository)(nil)
	_ tvShowStore = (*database.TVShowRepository)(nil)
	_ genreStore  = (*database.GenreRepository)(nil)
)

// Options configures cache behavior.
type Options struct {
	CacheTTL  time.Duration
	CacheSize int
}

// Service is the query/cache layer.
type Service struct {
	movies movieStore
	shows  tvShowStore
	genres genreStore

	movieCache *expirable.LRU[string, models.MovieList]
	tvCache    *expirable.LRU[string, models.TVShowList]
}

// NewService creates the layer with a TTL-bounded, size-capped cache.
func NewService(movies movieStore, shows tvShowStore, genres genreStore, opts Options) *Service {
	if opts.CacheSize < 1 {
		opts.CacheSize = 512
	}
	return &Service{
		movies:     movies,
		shows:      shows,
		genres:     genres,
		movieCache: expirable.NewLRU[string, models.MovieList](opts.CacheSize, nil, opts.CacheTTL),
		tvCache:    expirable.NewLRU[string, models.TVShowList](opts.CacheSize, nil, opts.CacheTTL),
	}
}

var movieSortColumns = map[string]string{
	"title":       "title",
	"releaseDate": "release_date",
	"voteAverage": "vote_average",
	"popularity":  "popularity",
	"createdAt":   "created_at",
}

var tvSortColumns = map[string]string{
	"title":        "name",
	"name":         "name",
	"firstAirDate": "first_air_date",
	"voteAverage":  "vote_average",
	"popularity":   "popularity",
	"createdAt":    "created_at",
}

// ListMovies serves a movie listing, from cache when a fresh entry exists.
func (s *Service) ListMovies(params models.ListParams) (*models.MovieList, error) {
	params = normalize(params)
	key := cacheKey("movies", params)
	if cached, ok := s.movieCache.Get(key); ok {
		return &cached, nil
	}

	q, empty, err := s.buildQuery(params, movieSortColumns)
	if err != nil {
		return nil, err
	}
	result := models.MovieList{Items: []models.Movie{}, CurrentPage: params.Page}
	if !empty {
		items, total, err := s.movies.List(q)
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []models.Movie{}
		}
		result.Items = items
		result.Total = total
		result.TotalPages = totalPages(total, params.Limit)
	}

	s.movieCache.Add(key, result)
	return &result, nil
}

// ListTVShows serves a series listing, from cache when a fresh entry exists.
func (s *Service) ListTVShows(params models.ListParams) (*models.TVShowList, error) {
	params = normalize(params)
	key := cacheKey("tvshows", params)
	if cached, ok := s.tvCache.Get(key); ok {
		return &cached, nil
	}

	q, empty, err := s.buildQuery(params, tvSortColumns)
	if err != nil {
		return nil, err
	}
	result := models.TVShowList{Items: []models.TVShow{}, CurrentPage: params.Page}
	if !empty {
		items, total, err := s.shows.List(q)
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []models.TVShow{}
		}
		result.Items = items
		result.Total = total
		result.TotalPages = totalPages(total, params.Limit)
	}

	s.tvCache.Add(key, result)
	return &result, nil
}

// GetMovie returns one movie by store id; details are never cached.
func (s *Service) GetMovie(id int64) (*models.Movie, error) {
	return s.movies.GetByID(id)
}

// GetTVShow returns one show with its episodes.
func (s *Service) GetTVShow(id int64) (*models.TVShow, error) {
	return s.shows.GetByID(id)
}

// ListGenres returns the full genre taxonomy.
func (s *Service) ListGenres() ([]models.Genre, error) {
	return s.genres.List()
}

// InvalidateMovies drops every cached movie listing. Called after any write
// that could change list results.
func (s *Service) InvalidateMovies() {
	s.movieCache.Purge()
}

// InvalidateTVShows drops every cached show listing.
func (s *Service) InvalidateTVShows() {
	s.tvCache.Purge()
}

// buildQuery converts normalized params into a repository query. The empty
// flag is set when a genre name matched nothing, which cannot produce rows.
func (s *Service) buildQuery(params models.ListParams, sortColumns map[string]string) (database.ListQuery, bool, error) {
	sortCol := sortColumns[params.SortBy]
	if sortCol == "" {
		// Sort field valid for the other media kind; fall back.
		sortCol = "popularity"
	}
	q := database.ListQuery{
		Page:      params.Page,
		Limit:     params.Limit,
		Year:      params.Year,
		MinRating: params.MinRating,
		Search:    params.Search,
		SortBy:    sortCol,
		Order:     strings.ToUpper(params.Order),
	}

	if g := strings.TrimSpace(params.Genre); g != "" {
		if id, err := strconv.ParseInt(g, 10, 64); err == nil {
			q.GenreIDs = []int64{id}
		} else {
			ids, err := s.genres.FindIDsByName(g)
			if err != nil {
				return q, false, err
			}
			if len(ids) == 0 {
				return q, true, nil
			}
			q.GenreIDs = ids
		}
	}
	return q, false, nil
}

// normalize clamps pagination, whitelists sort parameters, and applies
// defaults. Unknown sort fields fall back to popularity.
func normalize(params models.ListParams) models.ListParams {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = 20
	}
	if params.Limit > 100 {
		params.Limit = 100
	}
	if _, ok := movieSortColumns[params.SortBy]; !ok {
		if _, ok := tvSortColumns[params.SortBy]; !ok {
			params.SortBy = "popularity"
		}
	}
	switch strings.ToLower(params.Order) {
	case "asc":
		params.Order = "asc"
	default:
		params.Order = "desc"
	}
	params.Search = strings.TrimSpace(params.Search)
	params.Genre = strings.TrimSpace(params.Genre)
	return params
}

// cacheKey is a deterministic serialization of the normalized parameters.
func cacheKey(kind string, p models.ListParams) string {
	return fmt.Sprintf("%s|p=%d|l=%d|g=%s|y=%d|r=%g|q=%s|s=%s|o=%s",
		kind, p.Page, p.Limit, strings.ToLower(p.Genre), p.Year, p.MinRating,
		strings.ToLower(p.Search), p.SortBy, p.Order)
}

func totalPages(total, limit int) int {
	if total == 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
