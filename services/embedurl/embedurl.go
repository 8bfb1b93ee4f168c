// Package embedurl builds player embed URLs for third-party providers.
// Everything here is pure string templating over net/url; no provider is
// ever called.
package embedurl

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrMissingIdentifier is returned when neither a TMDB id nor an IMDB id is
// supplied. Every provider needs at least one of the two.
var ErrMissingIdentifier = errors.New("embedurl: tmdb or imdb identifier required")

const (
	vidsrcBase     = "https://vidsrc.xyz/embed"
	vidsrcProBase  = "https://vidsrc.pro/embed"
	superEmbedBase = "https://multiembed.mov/"
)

// Options identifies the media to embed. At least one of TMDBID or IMDBID is
// required; the rest is provider-dependent and optional.
type Options struct {
	TMDBID   int64
	IMDBID   string
	Autoplay bool
	Locale   string
}

func (o Options) validate() error {
	if o.TMDBID <= 0 && strings.TrimSpace(o.IMDBID) == "" {
		return ErrMissingIdentifier
	}
	return nil
}

// NormalizeIMDBID returns the canonical tt-prefixed form of an IMDB id, or
// empty for blank input.
func NormalizeIMDBID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}
	if !strings.HasPrefix(id, "tt") {
		id = "tt" + id
	}
	return id
}

// VidsrcMovie builds a vidsrc movie embed URL.
func VidsrcMovie(o Options) (string, error) {
	if err := o.validate(); err != nil {
		return "", err
	}
	q := url.Values{}
	addIdentifiers(q, o)
	if o.Autoplay {
		q.Set("autoplay", "1")
	}
	if o.Locale != "" {
		q.Set("ds_lang", o.Locale)
	}
	return vidsrcBase + "/movie?" + q.Encode(), nil
}

// VidsrcEpisode builds a vidsrc embed URL for one episode of a series.
func VidsrcEpisode(o Options, season, episode int) (string, error) {
	if err := o.validate(); err != nil {
		return "", err
	}
	q := url.Values{}
	addIdentifiers(q, o)
	q.Set("season", fmt.Sprintf("%d", season))
	q.Set("episode", fmt.Sprintf("%d", episode))
	if o.Autoplay {
		q.Set("autoplay", "1")
	}
	if o.Locale != "" {
		q.Set("ds_lang", o.Locale)
	}
	return vidsrcBase + "/tv?" + q.Encode(), nil
}

// VidsrcProMovie builds a vidsrc.pro movie embed URL. The provider takes the
// id in the path, preferring the TMDB id.
func VidsrcProMovie(o Options) (string, error) {
	if err := o.validate(); err != nil {
		return "", err
	}
	return vidsrcProBase + "/movie/" + pathIdentifier(o), nil
}

// VidsrcProEpisode builds a vidsrc.pro episode embed URL.
func VidsrcProEpisode(o Options, season, episode int) (string, error) {
	if err := o.validate(); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/tv/%s/%d/%d", vidsrcProBase, pathIdentifier(o), season, episode), nil
}

// SuperEmbedMovie builds a superembed movie URL. The provider keys on one
// video_id parameter, with tmdb=1 flagging a TMDB id.
func SuperEmbedMovie(o Options) (string, error) {
	if err := o.validate(); err != nil {
		return "", err
	}
	q := url.Values{}
	if imdb := NormalizeIMDBID(o.IMDBID); imdb != "" {
		q.Set("video_id", imdb)
	} else {
		q.Set("video_id", fmt.Sprintf("%d", o.TMDBID))
		q.Set("tmdb", "1")
	}
	return superEmbedBase + "?" + q.Encode(), nil
}

// SuperEmbedEpisode builds a superembed episode URL.
func SuperEmbedEpisode(o Options, season, episode int) (string, error) {
	u, err := SuperEmbedMovie(o)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s&s=%d&e=%d", u, season, episode), nil
}

func addIdentifiers(q url.Values, o Options) {
	if o.TMDBID > 0 {
		q.Set("tmdb", fmt.Sprintf("%d", o.TMDBID))
	}
	if imdb := NormalizeIMDBID(o.IMDBID); imdb != "" {
		q.Set("imdb", imdb)
	}
}

func pathIdentifier(o Options) string {
	if o.TMDBID > 0 {
		return fmt.Sprintf("%d", o.TMDBID)
	}
	return NormalizeIMDBID(o.IMDBID)
}
