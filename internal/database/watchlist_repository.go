package database

import (
	"database/sql"
	"fmt"
	"time"

	"streamvault/models"
)

// WatchlistRepository persists per-user watchlist and watch-history entries.
// Both tables are unique on (user, media type, media id).
type WatchlistRepository struct {
	db *sql.DB
}

func NewWatchlistRepository(db *sql.DB) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

// Upsert adds an entry or updates status/progress on the existing pair.
func (r *WatchlistRepository) Upsert(item *models.WatchlistItem) error {
	now := time.Now().UTC()
	_, err := r.db.Exec(`INSERT INTO watchlist
		(user_id, media_type, media_id, status, progress, added_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, media_type, media_id) DO UPDATE SET
		status = excluded.status, progress = excluded.progress, updated_at = excluded.updated_at`,
		item.UserID, item.MediaType, item.MediaID, item.Status, item.Progress, now, now)
	if err != nil {
		return fmt.Errorf("upsert watchlist item: %w", err)
	}
	return r.db.QueryRow(`SELECT id, added_at, updated_at FROM watchlist
		WHERE user_id = ? AND media_type = ? AND media_id = ?`,
		item.UserID, item.MediaType, item.MediaID).
		Scan(&item.ID, &item.AddedAt, &item.UpdatedAt)
}

// List returns a user's watchlist, most recently added first.
func (r *WatchlistRepository) List(userID string) ([]models.WatchlistItem, error) {
	rows, err := r.db.Query(`SELECT id, user_id, media_type, media_id, status, progress, added_at, updated_at
		FROM watchlist WHERE user_id = ? ORDER BY added_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list watchlist: %w", err)
	}
	defer rows.Close()

	var items []models.WatchlistItem
	for rows.Next() {
		var it models.WatchlistItem
		if err := rows.Scan(&it.ID, &it.UserID, &it.MediaType, &it.MediaID,
			&it.Status, &it.Progress, &it.AddedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Remove deletes a watchlist entry, reporting whether a row was removed.
func (r *WatchlistRepository) Remove(userID, mediaType string, mediaID int64) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM watchlist WHERE user_id = ? AND media_type = ? AND media_id = ?`,
		userID, mediaType, mediaID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RecordHistory upserts a watch-history entry for the pair.
func (r *WatchlistRepository) RecordHistory(entry *models.WatchHistoryEntry) error {
	now := time.Now().UTC()
	_, err := r.db.Exec(`INSERT INTO watch_history
		(user_id, media_type, media_id, progress, completed, watched_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, media_type, media_id) DO UPDATE SET
		progress = excluded.progress, completed = excluded.completed, watched_at = excluded.watched_at`,
		entry.UserID, entry.MediaType, entry.MediaID, entry.Progress, entry.Completed, now)
	if err != nil {
		return fmt.Errorf("record watch history: %w", err)
	}
	return r.db.QueryRow(`SELECT id, watched_at FROM watch_history
		WHERE user_id = ? AND media_type = ? AND media_id = ?`,
		entry.UserID, entry.MediaType, entry.MediaID).Scan(&entry.ID, &entry.WatchedAt)
}

// ListHistory returns a user's watch history, most recent first.
func (r *WatchlistRepository) ListHistory(userID string) ([]models.WatchHistoryEntry, error) {
	rows, err := r.db.Query(`SELECT id, user_id, media_type, media_id, progress, completed, watched_at
		FROM watch_history WHERE user_id = ? ORDER BY watched_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list watch history: %w", err)
	}
	defer rows.Close()

	var entries []models.WatchHistoryEntry
	for rows.Next() {
		var e models.WatchHistoryEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.MediaType, &e.MediaID,
			&e.Progress, &e.Completed, &e.WatchedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
