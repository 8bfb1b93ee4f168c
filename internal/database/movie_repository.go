package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"streamvault/models"
)

// MovieRepository persists movies and their genre links.
type MovieRepository struct {
	db *sql.DB
}

func NewMovieRepository(db *sql.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

const movieColumns = `id, tmdb_id, imdb_id, title, original_title, overview, release_date,
	poster_path, backdrop_path, runtime, vote_average, vote_count, popularity,
	is_available, embed_url, created_at, updated_at`

// Create inserts a new movie with its genre links. Returns ErrDuplicate if a
// movie with the same TMDB id already exists.
func (r *MovieRepository) Create(m *models.Movie) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	res, err := tx.Exec(`INSERT INTO movies
		(tmdb_id, imdb_id, title, original_title, overview, release_date,
		 poster_path, backdrop_path, runtime, vote_average, vote_count, popularity,
		 is_available, embed_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.TMDBID, m.IMDBID, m.Title, m.OriginalTitle, m.Overview, m.ReleaseDate,
		m.PosterPath, m.BackdropPath, m.Runtime, m.VoteAverage, m.VoteCount, m.Popularity,
		m.IsAvailable, m.EmbedURL, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert movie: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	for _, g := range m.Genres {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO movie_genres (movie_id, genre_id) VALUES (?, ?)`,
			id, g.ID); err != nil {
			return fmt.Errorf("link movie genre: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	m.ID = id
	m.CreatedAt = now
	m.UpdatedAt = now
	return nil
}

// UpsertByTMDBID inserts the movie or, when a row with the same TMDB id
// already exists, refreshes its metadata and genre links in place.
func (r *MovieRepository) UpsertByTMDBID(m *models.Movie) error {
	err := r.Create(m)
	if err == nil || err != ErrDuplicate {
		return err
	}

	existing, err := r.GetByTMDBID(m.TMDBID)
	if err != nil {
		return err
	}

	tx, txErr := r.db.Begin()
	if txErr != nil {
		return txErr
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	if _, err := tx.Exec(`UPDATE movies SET
		imdb_id = ?, title = ?, original_title = ?, overview = ?, release_date = ?,
		poster_path = ?, backdrop_path = ?, runtime = ?, vote_average = ?, vote_count = ?,
		popularity = ?, embed_url = ?, updated_at = ?
		WHERE id = ?`,
		m.IMDBID, m.Title, m.OriginalTitle, m.Overview, m.ReleaseDate,
		m.PosterPath, m.BackdropPath, m.Runtime, m.VoteAverage, m.VoteCount,
		m.Popularity, m.EmbedURL, now, existing.ID); err != nil {
		return fmt.Errorf("update movie: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM movie_genres WHERE movie_id = ?`, existing.ID); err != nil {
		return err
	}
	for _, g := range m.Genres {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO movie_genres (movie_id, genre_id) VALUES (?, ?)`,
			existing.ID, g.ID); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	m.ID = existing.ID
	m.CreatedAt = existing.CreatedAt
	m.UpdatedAt = now
	return nil
}

// ExistsByTMDBID reports whether a movie with the given external id is present.
func (r *MovieRepository) ExistsByTMDBID(tmdbID int64) (bool, error) {
	var one int
	err := r.db.QueryRow(`SELECT 1 FROM movies WHERE tmdb_id = ?`, tmdbID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetByID returns a movie with its genres, or ErrNotFound.
func (r *MovieRepository) GetByID(id int64) (*models.Movie, error) {
	row := r.db.QueryRow(`SELECT `+movieColumns+` FROM movies WHERE id = ?`, id)
	m, err := scanMovie(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadGenres([]*models.Movie{m}); err != nil {
		return nil, err
	}
	return m, nil
}

// GetByTMDBID returns a movie by external id, or ErrNotFound.
func (r *MovieRepository) GetByTMDBID(tmdbID int64) (*models.Movie, error) {
	row := r.db.QueryRow(`SELECT `+movieColumns+` FROM movies WHERE tmdb_id = ?`, tmdbID)
	m, err := scanMovie(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadGenres([]*models.Movie{m}); err != nil {
		return nil, err
	}
	return m, nil
}

// List returns a page of available movies matching the query, plus the total
// match count.
func (r *MovieRepository) List(q ListQuery) ([]models.Movie, int, error) {
	where, args := r.buildWhere(q)

	var total int
	countSQL := `SELECT COUNT(DISTINCT m.id) FROM movies m` + where
	if err := r.db.QueryRow(countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count movies: %w", err)
	}

	querySQL := `SELECT DISTINCT ` + prefixColumns("m", movieColumns) + ` FROM movies m` + where +
		fmt.Sprintf(` ORDER BY m.%s %s, m.id ASC LIMIT ? OFFSET ?`, q.SortBy, q.Order)
	args = append(args, q.Limit, q.offset())

	rows, err := r.db.Query(querySQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list movies: %w", err)
	}
	defer rows.Close()

	var ptrs []*models.Movie
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, 0, err
		}
		ptrs = append(ptrs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := r.loadGenres(ptrs); err != nil {
		return nil, 0, err
	}

	items := make([]models.Movie, len(ptrs))
	for i, m := range ptrs {
		items[i] = *m
	}
	return items, total, nil
}

func (r *MovieRepository) buildWhere(q ListQuery) (string, []any) {
	conds := []string{"m.is_available = 1"}
	var args []any

	if len(q.GenreIDs) > 0 {
		conds = append(conds, fmt.Sprintf(
			`m.id IN (SELECT movie_id FROM movie_genres WHERE genre_id IN (%s))`,
			placeholders(len(q.GenreIDs))))
		for _, id := range q.GenreIDs {
			args = append(args, id)
		}
	}
	if q.Year > 0 {
		conds = append(conds, `CAST(strftime('%Y', m.release_date) AS INTEGER) = ?`)
		args = append(args, q.Year)
	}
	if q.MinRating > 0 {
		conds = append(conds, `m.vote_average >= ?`)
		args = append(args, q.MinRating)
	}
	if q.Search != "" {
		pattern := "%" + escapeLike(q.Search) + "%"
		conds = append(conds, `(m.title LIKE ? ESCAPE '\' OR m.original_title LIKE ? ESCAPE '\' OR m.overview LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern)
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}

// Update applies an admin edit. Nil fields in the update are left untouched.
func (r *MovieRepository) Update(id int64, u models.MovieUpdate) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}
	if u.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *u.Title)
	}
	if u.Overview != nil {
		sets = append(sets, "overview = ?")
		args = append(args, *u.Overview)
	}
	if u.IsAvailable != nil {
		sets = append(sets, "is_available = ?")
		args = append(args, *u.IsAvailable)
	}
	if u.EmbedURL != nil {
		sets = append(sets, "embed_url = ?")
		args = append(args, *u.EmbedURL)
	}
	if u.VoteAverage != nil {
		sets = append(sets, "vote_average = ?")
		args = append(args, *u.VoteAverage)
	}
	args = append(args, id)

	res, err := tx.Exec(`UPDATE movies SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update movie: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	if u.GenreIDs != nil {
		if _, err := tx.Exec(`DELETE FROM movie_genres WHERE movie_id = ?`, id); err != nil {
			return err
		}
		for _, gid := range u.GenreIDs {
			if _, err := tx.Exec(`INSERT OR IGNORE INTO movie_genres (movie_id, genre_id) VALUES (?, ?)`,
				id, gid); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

// Delete removes a movie and its genre links.
func (r *MovieRepository) Delete(id int64) error {
	res, err := r.db.Exec(`DELETE FROM movies WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the total number of movie rows.
func (r *MovieRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM movies`).Scan(&n)
	return n, err
}

// CountByGenre returns how many movies reference the given genre.
func (r *MovieRepository) CountByGenre(genreID int64) (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM movie_genres WHERE genre_id = ?`, genreID).Scan(&n)
	return n, err
}

func (r *MovieRepository) loadGenres(movies []*models.Movie) error {
	if len(movies) == 0 {
		return nil
	}
	byID := make(map[int64]*models.Movie, len(movies))
	ids := make([]any, 0, len(movies))
	for _, m := range movies {
		byID[m.ID] = m
		ids = append(ids, m.ID)
	}

	rows, err := r.db.Query(`SELECT mg.movie_id, g.id, g.tmdb_id, g.name
		FROM movie_genres mg JOIN genres g ON g.id = mg.genre_id
		WHERE mg.movie_id IN (`+placeholders(len(ids))+`) ORDER BY g.name`, ids...)
	if err != nil {
		return fmt.Errorf("load movie genres: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var movieID int64
		var g models.Genre
		if err := rows.Scan(&movieID, &g.ID, &g.TMDBID, &g.Name); err != nil {
			return err
		}
		if m := byID[movieID]; m != nil {
			m.Genres = append(m.Genres, g)
		}
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMovie(row rowScanner) (*models.Movie, error) {
	var m models.Movie
	var imdbID sql.NullString
	var releaseDate sql.NullTime
	err := row.Scan(&m.ID, &m.TMDBID, &imdbID, &m.Title, &m.OriginalTitle, &m.Overview,
		&releaseDate, &m.PosterPath, &m.BackdropPath, &m.Runtime, &m.VoteAverage,
		&m.VoteCount, &m.Popularity, &m.IsAvailable, &m.EmbedURL, &m.CreatedAt, &m.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if imdbID.Valid {
		m.IMDBID = &imdbID.String
	}
	if releaseDate.Valid {
		t := releaseDate.Time
		m.ReleaseDate = &t
	}
	return &m, nil
}

// prefixColumns qualifies each column in a comma-separated list with the
// given table alias.
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
