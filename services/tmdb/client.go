package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
)

// Errors returned by the client. Sync treats both as non-fatal for the run:
// ErrNotFound items are skipped without retry, ErrUpstreamUnavailable items
// are retried here and then skipped.
var (
	ErrNotFound            = errors.New("tmdb: not found")
	ErrUpstreamUnavailable = errors.New("tmdb: upstream unavailable")
)

const defaultBaseURL = "https://api.themoviedb.org/3"

// ValidMovieCategories are the list endpoints supported for movies.
var ValidMovieCategories = []string{"popular", "top_rated", "upcoming", "now_playing"}

// ValidTVCategories are the list endpoints supported for series.
var ValidTVCategories = []string{"popular", "top_rated", "on_the_air", "airing_today"}

// Client is a minimal TMDB v3 client covering the list, detail, season and
// genre endpoints the sync engine needs. Requests are throttled to a minimum
// interval; transient failures are retried with backoff.
type Client struct {
	apiKey  string
	baseURL string
	httpc   *http.Client

	throttleMu  sync.Mutex
	lastRequest time.Time
	minInterval time.Duration
}

// NewClient creates a Client. baseURL may be empty for the production API;
// tests point it at a stub server.
func NewClient(apiKey, baseURL string, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:      apiKey,
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpc:       httpc,
		minInterval: 25 * time.Millisecond,
	}
}

// MovieList fetches one page of a movie category.
func (c *Client) MovieList(ctx context.Context, category string, page int) (*MoviePage, error) {
	var result MoviePage
	q := url.Values{"page": {fmt.Sprintf("%d", page)}}
	if err := c.get(ctx, "/movie/"+url.PathEscape(category), q, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// TVList fetches one page of a series category.
func (c *Client) TVList(ctx context.Context, category string, page int) (*TVPage, error) {
	var result TVPage
	q := url.Values{"page": {fmt.Sprintf("%d", page)}}
	if err := c.get(ctx, "/tv/"+url.PathEscape(category), q, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// MovieDetail fetches the full record for one movie, with external ids
// appended in the same response.
func (c *Client) MovieDetail(ctx context.Context, id int64) (*MovieDetail, error) {
	var result MovieDetail
	q := url.Values{"append_to_response": {"external_ids"}}
	if err := c.get(ctx, fmt.Sprintf("/movie/%d", id), q, &result); err != nil {
		return nil, err
	}
	if result.IMDBID == "" {
		result.IMDBID = result.ExternalIDs.IMDBID
	}
	return &result, nil
}

// TVDetail fetches the full record for one series.
func (c *Client) TVDetail(ctx context.Context, id int64) (*TVDetail, error) {
	var result TVDetail
	q := url.Values{"append_to_response": {"external_ids"}}
	if err := c.get(ctx, fmt.Sprintf("/tv/%d", id), q, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SeasonDetail fetches one season's episode list for a series.
func (c *Client) SeasonDetail(ctx context.Context, showID int64, seasonNumber int) (*SeasonDetail, error) {
	var result SeasonDetail
	if err := c.get(ctx, fmt.Sprintf("/tv/%d/season/%d", showID, seasonNumber), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// MovieGenres fetches the movie genre taxonomy.
func (c *Client) MovieGenres(ctx context.Context) ([]Genre, error) {
	var result genreListResponse
	if err := c.get(ctx, "/genre/movie/list", nil, &result); err != nil {
		return nil, err
	}
	return result.Genres, nil
}

// TVGenres fetches the series genre taxonomy.
func (c *Client) TVGenres(ctx context.Context) ([]Genre, error) {
	var result genreListResponse
	if err := c.get(ctx, "/genre/tv/list", nil, &result); err != nil {
		return nil, err
	}
	return result.Genres, nil
}

// get performs a throttled GET with API-key auth, retrying transient
// failures. 404 maps to ErrNotFound without retry; network errors and 5xx
// map to ErrUpstreamUnavailable.
func (c *Client) get(ctx context.Context, path string, q url.Values, v any) error {
	if q == nil {
		q = url.Values{}
	}
	q.Set("api_key", c.apiKey)
	u := c.baseURL + path + "?" + q.Encode()

	return retry.Do(
		func() error { return c.doOnce(ctx, u, v) },
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(300*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, ErrUpstreamUnavailable)
		}),
	)
}

func (c *Client) doOnce(ctx context.Context, u string, v any) error {
	c.throttleMu.Lock()
	if since := time.Since(c.lastRequest); since < c.minInterval {
		time.Sleep(c.minInterval - since)
	}
	c.lastRequest = time.Now()
	c.throttleMu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		io.Copy(io.Discard, resp.Body)
		return ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("%w: %s: %s", ErrUpstreamUnavailable, resp.Status, strings.TrimSpace(string(body)))
	case resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("tmdb get %s failed: %s: %s", redactKey(u), resp.Status, strings.TrimSpace(string(body)))
	}

	return json.NewDecoder(resp.Body).Decode(v)
}

// redactKey strips the api_key parameter from a URL for logs and errors.
func redactKey(u string) string {
	parsed, err := url.Parse(u)
	if err != nil {
		return u
	}
	q := parsed.Query()
	if q.Has("api_key") {
		q.Set("api_key", "REDACTED")
		parsed.RawQuery = q.Encode()
	}
	return parsed.String()
}
