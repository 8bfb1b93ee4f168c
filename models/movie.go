package models

import "time"

// Movie is a catalog entry mirrored from the external media source.
// TMDBID is the identity key; a movie is never inserted twice for the
// same TMDB id.
type Movie struct {
	ID            int64      `json:"id"`
	TMDBID        int64      `json:"tmdbId"`
	IMDBID        *string    `json:"imdbId,omitempty"`
	Title         string     `json:"title"`
	OriginalTitle string     `json:"originalTitle,omitempty"`
	Overview      string     `json:"overview,omitempty"`
	ReleaseDate   *time.Time `json:"releaseDate,omitempty"`
	PosterPath    string     `json:"posterPath,omitempty"`
	BackdropPath  string     `json:"backdropPath,omitempty"`
	Runtime       int        `json:"runtime,omitempty"`
	VoteAverage   float64    `json:"voteAverage"`
	VoteCount     int        `json:"voteCount"`
	Popularity    float64    `json:"popularity"`
	IsAvailable   bool       `json:"isAvailable"`
	EmbedURL      string     `json:"embedUrl,omitempty"`
	Genres        []Genre    `json:"genres,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// MovieUpdate carries the admin-editable subset of a movie. Nil fields are
// left untouched.
type MovieUpdate struct {
	Title       *string  `json:"title,omitempty"`
	Overview    *string  `json:"overview,omitempty"`
	IsAvailable *bool    `json:"isAvailable,omitempty"`
	EmbedURL    *string  `json:"embedUrl,omitempty"`
	GenreIDs    []int64  `json:"genreIds,omitempty"`
	VoteAverage *float64 `json:"voteAverage,omitempty"`
}
