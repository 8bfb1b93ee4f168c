package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"streamvault/models"
)

// TVShowRepository persists shows, their genre links, and their episodes.
// Episodes are owned by the show and cascade on delete.
type TVShowRepository struct {
	db *sql.DB
}

func NewTVShowRepository(db *sql.DB) *TVShowRepository {
	return &TVShowRepository{db: db}
}

const tvShowColumns = `id, tmdb_id, imdb_id, name, original_name, overview,
	first_air_date, last_air_date, poster_path, backdrop_path,
	number_of_seasons, number_of_episodes, status, networks, created_by, seasons,
	vote_average, vote_count, popularity, is_available, embed_url, created_at, updated_at`

// Create inserts a new show with its genre links. Returns ErrDuplicate if a
// show with the same TMDB id already exists.
func (r *TVShowRepository) Create(s *models.TVShow) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	networks, createdBy, seasons, err := marshalShowJSON(s)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	res, err := tx.Exec(`INSERT INTO tv_shows
		(tmdb_id, imdb_id, name, original_name, overview, first_air_date, last_air_date,
		 poster_path, backdrop_path, number_of_seasons, number_of_episodes, status,
		 networks, created_by, seasons, vote_average, vote_count, popularity,
		 is_available, embed_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.TMDBID, s.IMDBID, s.Name, s.OriginalName, s.Overview, s.FirstAirDate, s.LastAirDate,
		s.PosterPath, s.BackdropPath, s.NumberOfSeasons, s.NumberOfEpisodes, s.Status,
		networks, createdBy, seasons, s.VoteAverage, s.VoteCount, s.Popularity,
		s.IsAvailable, s.EmbedURL, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert tv show: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	for _, g := range s.Genres {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO tv_show_genres (show_id, genre_id) VALUES (?, ?)`,
			id, g.ID); err != nil {
			return fmt.Errorf("link show genre: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	s.ID = id
	s.CreatedAt = now
	s.UpdatedAt = now
	return nil
}

// ExistsByTMDBID reports whether a show with the given external id is present.
func (r *TVShowRepository) ExistsByTMDBID(tmdbID int64) (bool, error) {
	var one int
	err := r.db.QueryRow(`SELECT 1 FROM tv_shows WHERE tmdb_id = ?`, tmdbID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetByID returns a show with its genres and episodes, or ErrNotFound.
func (r *TVShowRepository) GetByID(id int64) (*models.TVShow, error) {
	row := r.db.QueryRow(`SELECT `+tvShowColumns+` FROM tv_shows WHERE id = ?`, id)
	s, err := scanTVShow(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadGenres([]*models.TVShow{s}); err != nil {
		return nil, err
	}
	episodes, err := r.ListEpisodes(s.ID)
	if err != nil {
		return nil, err
	}
	s.Episodes = episodes
	return s, nil
}

// GetByTMDBID returns a show by external id, or ErrNotFound.
func (r *TVShowRepository) GetByTMDBID(tmdbID int64) (*models.TVShow, error) {
	row := r.db.QueryRow(`SELECT `+tvShowColumns+` FROM tv_shows WHERE tmdb_id = ?`, tmdbID)
	s, err := scanTVShow(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadGenres([]*models.TVShow{s}); err != nil {
		return nil, err
	}
	return s, nil
}

// List returns a page of available shows matching the query, plus the total
// match count.
func (r *TVShowRepository) List(q ListQuery) ([]models.TVShow, int, error) {
	where, args := r.buildWhere(q)

	var total int
	if err := r.db.QueryRow(`SELECT COUNT(DISTINCT s.id) FROM tv_shows s`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tv shows: %w", err)
	}

	querySQL := `SELECT DISTINCT ` + prefixColumns("s", tvShowColumns) + ` FROM tv_shows s` + where +
		fmt.Sprintf(` ORDER BY s.%s %s, s.id ASC LIMIT ? OFFSET ?`, q.SortBy, q.Order)
	args = append(args, q.Limit, q.offset())

	rows, err := r.db.Query(querySQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list tv shows: %w", err)
	}
	defer rows.Close()

	var ptrs []*models.TVShow
	for rows.Next() {
		s, err := scanTVShow(rows)
		if err != nil {
			return nil, 0, err
		}
		ptrs = append(ptrs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := r.loadGenres(ptrs); err != nil {
		return nil, 0, err
	}

	items := make([]models.TVShow, len(ptrs))
	for i, s := range ptrs {
		items[i] = *s
	}
	return items, total, nil
}

func (r *TVShowRepository) buildWhere(q ListQuery) (string, []any) {
	conds := []string{"s.is_available = 1"}
	var args []any

	if len(q.GenreIDs) > 0 {
		conds = append(conds, fmt.Sprintf(
			`s.id IN (SELECT show_id FROM tv_show_genres WHERE genre_id IN (%s))`,
			placeholders(len(q.GenreIDs))))
		for _, id := range q.GenreIDs {
			args = append(args, id)
		}
	}
	if q.Year > 0 {
		conds = append(conds, `CAST(strftime('%Y', s.first_air_date) AS INTEGER) = ?`)
		args = append(args, q.Year)
	}
	if q.MinRating > 0 {
		conds = append(conds, `s.vote_average >= ?`)
		args = append(args, q.MinRating)
	}
	if q.Search != "" {
		pattern := "%" + escapeLike(q.Search) + "%"
		conds = append(conds, `(s.name LIKE ? ESCAPE '\' OR s.original_name LIKE ? ESCAPE '\' OR s.overview LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern)
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}

// Update applies an admin edit. Nil fields in the update are left untouched.
func (r *TVShowRepository) Update(id int64, u models.TVShowUpdate) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}
	if u.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *u.Name)
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
	if u.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *u.Status)
	}
	args = append(args, id)

	res, err := tx.Exec(`UPDATE tv_shows SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update tv show: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	if u.GenreIDs != nil {
		if _, err := tx.Exec(`DELETE FROM tv_show_genres WHERE show_id = ?`, id); err != nil {
			return err
		}
		for _, gid := range u.GenreIDs {
			if _, err := tx.Exec(`INSERT OR IGNORE INTO tv_show_genres (show_id, genre_id) VALUES (?, ?)`,
				id, gid); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

// Delete removes a show; episodes and genre links cascade.
func (r *TVShowRepository) Delete(id int64) error {
	res, err := r.db.Exec(`DELETE FROM tv_shows WHERE id = ?`, id)
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

// Count returns the total number of show rows.
func (r *TVShowRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM tv_shows`).Scan(&n)
	return n, err
}

// CountByGenre returns how many shows reference the given genre.
func (r *TVShowRepository) CountByGenre(genreID int64) (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM tv_show_genres WHERE genre_id = ?`, genreID).Scan(&n)
	return n, err
}

// UpsertEpisode inserts an episode or updates it in place when the
// (show, season, episode) key already exists.
func (r *TVShowRepository) UpsertEpisode(e *models.Episode) error {
	_, err := r.db.Exec(`INSERT INTO episodes
		(show_id, season_number, episode_number, name, overview, air_date, runtime, still_path, embed_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(show_id, season_number, episode_number) DO UPDATE SET
		name = excluded.name, overview = excluded.overview, air_date = excluded.air_date,
		runtime = excluded.runtime, still_path = excluded.still_path, embed_url = excluded.embed_url`,
		e.ShowID, e.SeasonNumber, e.EpisodeNumber, e.Name, e.Overview, e.AirDate,
		e.Runtime, e.StillPath, e.EmbedURL)
	if err != nil {
		return fmt.Errorf("upsert episode: %w", err)
	}
	return r.db.QueryRow(`SELECT id FROM episodes WHERE show_id = ? AND season_number = ? AND episode_number = ?`,
		e.ShowID, e.SeasonNumber, e.EpisodeNumber).Scan(&e.ID)
}

// ListEpisodes returns a show's episodes ordered by season and episode number.
func (r *TVShowRepository) ListEpisodes(showID int64) ([]models.Episode, error) {
	rows, err := r.db.Query(`SELECT id, show_id, season_number, episode_number, name, overview,
		air_date, runtime, still_path, embed_url
		FROM episodes WHERE show_id = ? ORDER BY season_number, episode_number`, showID)
	if err != nil {
		return nil, fmt.Errorf("list episodes: %w", err)
	}
	defer rows.Close()

	var episodes []models.Episode
	for rows.Next() {
		var e models.Episode
		var airDate sql.NullTime
		if err := rows.Scan(&e.ID, &e.ShowID, &e.SeasonNumber, &e.EpisodeNumber, &e.Name,
			&e.Overview, &airDate, &e.Runtime, &e.StillPath, &e.EmbedURL); err != nil {
			return nil, err
		}
		if airDate.Valid {
			t := airDate.Time
			e.AirDate = &t
		}
		episodes = append(episodes, e)
	}
	return episodes, rows.Err()
}

func (r *TVShowRepository) loadGenres(shows []*models.TVShow) error {
	if len(shows) == 0 {
		return nil
	}
	byID := make(map[int64]*models.TVShow, len(shows))
	ids := make([]any, 0, len(shows))
	for _, s := range shows {
		byID[s.ID] = s
		ids = append(ids, s.ID)
	}

	rows, err := r.db.Query(`SELECT sg.show_id, g.id, g.tmdb_id, g.name
		FROM tv_show_genres sg JOIN genres g ON g.id = sg.genre_id
		WHERE sg.show_id IN (`+placeholders(len(ids))+`) ORDER BY g.name`, ids...)
	if err != nil {
		return fmt.Errorf("load show genres: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var showID int64
		var g models.Genre
		if err := rows.Scan(&showID, &g.ID, &g.TMDBID, &g.Name); err != nil {
			return err
		}
		if s := byID[showID]; s != nil {
			s.Genres = append(s.Genres, g)
		}
	}
	return rows.Err()
}

func marshalShowJSON(s *models.TVShow) (networks, createdBy, seasons string, err error) {
	nb, err := json.Marshal(orEmpty(s.Networks))
	if err != nil {
		return "", "", "", err
	}
	cb, err := json.Marshal(orEmpty(s.CreatedBy))
	if err != nil {
		return "", "", "", err
	}
	if s.Seasons == nil {
		s.Seasons = []models.SeasonSummary{}
	}
	sb, err := json.Marshal(s.Seasons)
	if err != nil {
		return "", "", "", err
	}
	return string(nb), string(cb), string(sb), nil
}

func orEmpty(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func scanTVShow(row rowScanner) (*models.TVShow, error) {
	var s models.TVShow
	var imdbID sql.NullString
	var firstAir, lastAir sql.NullTime
	var networks, createdBy, seasons string
	err := row.Scan(&s.ID, &s.TMDBID, &imdbID, &s.Name, &s.OriginalName, &s.Overview,
		&firstAir, &lastAir, &s.PosterPath, &s.BackdropPath,
		&s.NumberOfSeasons, &s.NumberOfEpisodes, &s.Status, &networks, &createdBy, &seasons,
		&s.VoteAverage, &s.VoteCount, &s.Popularity, &s.IsAvailable, &s.EmbedURL,
		&s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if imdbID.Valid {
		s.IMDBID = &imdbID.String
	}
	if firstAir.Valid {
		t := firstAir.Time
		s.FirstAirDate = &t
	}
	if lastAir.Valid {
		t := lastAir.Time
		s.LastAirDate = &t
	}
	if err := json.Unmarshal([]byte(networks), &s.Networks); err != nil {
		return nil, fmt.Errorf("decode networks: %w", err)
	}
	if err := json.Unmarshal([]byte(createdBy), &s.CreatedBy); err != nil {
		return nil, fmt.Errorf("decode created_by: %w", err)
	}
	if err := json.Unmarshal([]byte(seasons), &s.Seasons); err != nil {
		return nil, fmt.Errorf("decode seasons: %w", err)
	}
	return &s, nil
}
