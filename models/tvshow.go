package models

import "time"

// TVShow mirrors a series from the external media source. Identity is the
// TMDB id, same as movies. Season summaries and network/creator info are
// denormalized onto the row; episodes live in their own table and cascade
// with the show.
type TVShow struct {
	ID               int64           `json:"id"`
	TMDBID           int64           `json:"tmdbId"`
	IMDBID           *string         `json:"imdbId,omitempty"`
	Name             string          `json:"name"`
	OriginalName     string          `json:"originalName,omitempty"`
	Overview         string          `json:"overview,omitempty"`
	FirstAirDate     *time.Time      `json:"firstAirDate,omitempty"`
	LastAirDate      *time.Time      `json:"lastAirDate,omitempty"`
	PosterPath       string          `json:"posterPath,omitempty"`
	BackdropPath     string          `json:"backdropPath,omitempty"`
	NumberOfSeasons  int             `json:"numberOfSeasons"`
	NumberOfEpisodes int             `json:"numberOfEpisodes"`
	Status           string          `json:"status,omitempty"`
	Networks         []string        `json:"networks,omitempty"`
	CreatedBy        []string        `json:"createdBy,omitempty"`
	Seasons          []SeasonSummary `json:"seasons,omitempty"`
	VoteAverage      float64         `json:"voteAverage"`
	VoteCount        int             `json:"voteCount"`
	Popularity       float64         `json:"popularity"`
	IsAvailable      bool            `json:"isAvailable"`
	EmbedURL         string          `json:"embedUrl,omitempty"`
	Genres           []Genre         `json:"genres,omitempty"`
	Episodes         []Episode       `json:"episodes,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// SeasonSummary is the per-season rollup embedded in a show document.
type SeasonSummary struct {
	SeasonNumber int        `json:"seasonNumber"`
	EpisodeCount int        `json:"episodeCount"`
	AirDate      *time.Time `json:"airDate,omitempty"`
	Name         string     `json:"name,omitempty"`
}

// Episode belongs to exactly one show and is identified by
// (show, season number, episode number).
type Episode struct {
	ID            int64      `json:"id"`
	ShowID        int64      `json:"showId"`
	SeasonNumber  int        `json:"seasonNumber"`
	EpisodeNumber int        `json:"episodeNumber"`
	Name          string     `json:"name,omitempty"`
	Overview      string     `json:"overview,omitempty"`
	AirDate       *time.Time `json:"airDate,omitempty"`
	Runtime       int        `json:"runtime,omitempty"`
	StillPath     string     `json:"stillPath,omitempty"`
	EmbedURL      string     `json:"embedUrl,omitempty"`
}

// TVShowUpdate carries the admin-editable subset of a show.
type TVShowUpdate struct {
	Name        *string `json:"name,omitempty"`
	Overview    *string `json:"overview,omitempty"`
	IsAvailable *bool   `json:"isAvailable,omitempty"`
	EmbedURL    *string `json:"embedUrl,omitempty"`
	GenreIDs    []int64 `json:"genreIds,omitempty"`
	Status      *string `json:"status,omitempty"`
}
