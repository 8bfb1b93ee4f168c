package models

import "time"

// WatchlistItem is a (user, media) pair. Uniqueness on the pair is enforced
// by the store; re-adding an existing pair updates it in place.
type WatchlistItem struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"userId"`
	MediaType string    `json:"mediaType"` // "movie" or "tv"
	MediaID   int64     `json:"mediaId"`
	Status    string    `json:"status,omitempty"` // planned|watching|completed|dropped
	Progress  float64   `json:"progress"`
	AddedAt   time.Time `json:"addedAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// WatchlistUpsert is the request body for adding or updating a watchlist entry.
type WatchlistUpsert struct {
	MediaType string  `json:"mediaType"`
	MediaID   int64   `json:"mediaId"`
	Status    string  `json:"status,omitempty"`
	Progress  float64 `json:"progress,omitempty"`
}

// WatchHistoryEntry records playback progress for a (user, media) pair.
type WatchHistoryEntry struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"userId"`
	MediaType string    `json:"mediaType"`
	MediaID   int64     `json:"mediaId"`
	Progress  float64   `json:"progress"`
	Completed bool      `json:"completed"`
	WatchedAt time.Time `json:"watchedAt"`
}
