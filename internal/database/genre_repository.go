package database

import (
	"database/sql"
	"fmt"
	"strings"

	"streamvault/models"
)

// GenreRepository persists the genre taxonomy. Deletion is guarded here at
// the application layer: the store itself does not restrict the join tables.
type GenreRepository struct {
	db *sql.DB
}

func NewGenreRepository(db *sql.DB) *GenreRepository {
	return &GenreRepository{db: db}
}

// Upsert inserts a genre or renames it in place when the TMDB id exists.
func (r *GenreRepository) Upsert(g *models.Genre) error {
	_, err := r.db.Exec(`INSERT INTO genres (tmdb_id, name) VALUES (?, ?)
		ON CONFLICT(tmdb_id) DO UPDATE SET name = excluded.name`, g.TMDBID, g.Name)
	if err != nil {
		return fmt.Errorf("upsert genre: %w", err)
	}
	return r.db.QueryRow(`SELECT id FROM genres WHERE tmdb_id = ?`, g.TMDBID).Scan(&g.ID)
}

// List returns all genres ordered by name.
func (r *GenreRepository) List() ([]models.Genre, error) {
	rows, err := r.db.Query(`SELECT id, tmdb_id, name FROM genres ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	defer rows.Close()

	var genres []models.Genre
	for rows.Next() {
		var g models.Genre
		if err := rows.Scan(&g.ID, &g.TMDBID, &g.Name); err != nil {
			return nil, err
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}

// GetByID returns a genre, or ErrNotFound.
func (r *GenreRepository) GetByID(id int64) (*models.Genre, error) {
	var g models.Genre
	err := r.db.QueryRow(`SELECT id, tmdb_id, name FROM genres WHERE id = ?`, id).
		Scan(&g.ID, &g.TMDBID, &g.Name)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// FindIDsByName returns the store ids of genres whose name matches
// case-insensitively.
func (r *GenreRepository) FindIDsByName(name string) ([]int64, error) {
	rows, err := r.db.Query(`SELECT id FROM genres WHERE name = ? COLLATE NOCASE`,
		strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// TMDBIDMap returns the external-id to store-id mapping for all genres.
func (r *GenreRepository) TMDBIDMap() (map[int64]int64, error) {
	rows, err := r.db.Query(`SELECT tmdb_id, id FROM genres`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	m := make(map[int64]int64)
	for rows.Next() {
		var tmdbID, id int64
		if err := rows.Scan(&tmdbID, &id); err != nil {
			return nil, err
		}
		m[tmdbID] = id
	}
	return m, rows.Err()
}

// Delete removes a genre. It fails with GenreReferencedError while any movie
// or show still references the genre, reporting the combined count.
func (r *GenreRepository) Delete(id int64) error {
	var refs int
	err := r.db.QueryRow(`SELECT
		(SELECT COUNT(*) FROM movie_genres WHERE genre_id = ?) +
		(SELECT COUNT(*) FROM tv_show_genres WHERE genre_id = ?)`, id, id).Scan(&refs)
	if err != nil {
		return err
	}
	if refs > 0 {
		return &GenreReferencedError{GenreID: id, References: refs}
	}

	res, err := r.db.Exec(`DELETE FROM genres WHERE id = ?`, id)
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
