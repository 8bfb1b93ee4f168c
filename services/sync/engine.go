package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/pool"
	"golang.org/x/time/rate"

	"streamvault/internal/database"
	"streamvault/models"
	"streamvault/services/embedurl"
	"streamvault/services/tmdb"
)

// ErrAlreadyRunning is returned when a job with the same name is still in
// flight. The scheduler logs and skips; ad-hoc callers surface it as a 409.
var ErrAlreadyRunning = errors.New("sync: job already running")

// Options configures one engine instance. BatchSize bounds in-flight detail
// fetches; BatchDelay is the pacing interval originally applied between
// batches, here enforced as a leaky bucket with the same throughput ceiling.
type Options struct {
	MovieCategories []string
	TVCategories    []string
	PageCap         int
	BatchSize       int
	BatchDelay      time.Duration
	// Refresh re-fetches items already present instead of skipping them.
	Refresh bool
}

// Summary is the result of one run.
type Summary struct {
	Job       string        `json:"job"`
	Processed int           `json:"processed"`
	Inserted  int           `json:"inserted"`
	Skipped   int           `json:"skipped"`
	Failed    int           `json:"failed"`
	Paused    bool          `json:"paused,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// Engine orchestrates paginated fetch-and-upsert cycles against the catalog
// store. One instance per process, handed to the scheduler and HTTP layer;
// it holds its own running state rather than a package singleton.
type Engine struct {
	client *tmdb.Client
	movies *database.MovieRepository
	shows  *database.TVShowRepository
	genres *database.GenreRepository
	jobs   *database.SyncJobRepository
	opts   Options
	log    *slog.Logger

	mu      sync.Mutex
	running map[string]bool

	genreMu  sync.RWMutex
	genreMap map[int64]int64 // tmdb genre id -> store id
}

// NewEngine wires an engine from its dependencies.
func NewEngine(client *tmdb.Client, movies *database.MovieRepository, shows *database.TVShowRepository,
	genres *database.GenreRepository, jobs *database.SyncJobRepository, opts Options) *Engine {
	if opts.BatchSize < 1 {
		opts.BatchSize = 10
	}
	if opts.PageCap < 1 {
		opts.PageCap = 5
	}
	if opts.BatchDelay <= 0 {
		opts.BatchDelay = time.Second
	}
	if len(opts.MovieCategories) == 0 {
		opts.MovieCategories = []string{"popular"}
	}
	if len(opts.TVCategories) == 0 {
		opts.TVCategories = []string{"popular"}
	}
	return &Engine{
		client:   client,
		movies:   movies,
		shows:    shows,
		genres:   genres,
		jobs:     jobs,
		opts:     opts,
		log:      slog.Default().With("component", "sync"),
		running:  make(map[string]bool),
		genreMap: make(map[int64]int64),
	}
}

// IsRunning reports whether the named job is currently in flight in this
// process.
func (e *Engine) IsRunning(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running[name]
}

func (e *Engine) tryStart(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running[name] {
		return false
	}
	e.running[name] = true
	return true
}

func (e *Engine) finish(name string) {
	e.mu.Lock()
	delete(e.running, name)
	e.mu.Unlock()
}

// Run executes the job of the given type synchronously and returns its
// summary. Job names are the type strings, one persisted row each.
func (e *Engine) Run(ctx context.Context, jobType models.SyncJobType) (*Summary, error) {
	switch jobType {
	case models.SyncJobTypeGenres:
		return e.SyncGenres(ctx)
	case models.SyncJobTypeMovies:
		return e.SyncMovies(ctx)
	case models.SyncJobTypeTVShows:
		return e.SyncTVShows(ctx)
	case models.SyncJobTypeAll:
		return e.SyncAll(ctx)
	default:
		return nil, fmt.Errorf("sync: unknown job type %q", jobType)
	}
}

// Pause flags a running job as paused. The engine checkpoints out between
// batches; in-flight fetches complete.
func (e *Engine) Pause(name string) error {
	job, err := e.jobs.GetByName(name)
	if err != nil {
		return err
	}
	if job.Status != models.SyncJobRunning {
		return fmt.Errorf("sync: job %s is %s, not running", name, job.Status)
	}
	return e.jobs.SetStatus(name, models.SyncJobPaused)
}

// Resume re-runs a paused job in the background. The dedup check makes the
// repeated pages cheap.
func (e *Engine) Resume(ctx context.Context, name string) error {
	job, err := e.jobs.GetByName(name)
	if err != nil {
		return err
	}
	if job.Status != models.SyncJobPaused {
		return fmt.Errorf("sync: job %s is %s, not paused", name, job.Status)
	}
	go func() {
		if _, err := e.Run(ctx, job.Type); err != nil && !errors.Is(err, ErrAlreadyRunning) {
			e.log.Error("resume failed", "job", name, "error", err)
		}
	}()
	return nil
}

// SyncGenres refreshes the genre taxonomy and rebuilds the id map consulted
// by movie and show sync. Runs first in a combined run.
func (e *Engine) SyncGenres(ctx context.Context) (*Summary, error) {
	const name = string(models.SyncJobTypeGenres)
	if !e.tryStart(name) {
		return nil, ErrAlreadyRunning
	}
	defer e.finish(name)

	if _, err := e.jobs.GetOrCreate(name, models.SyncJobTypeGenres); err != nil {
		return nil, err
	}
	if err := e.jobs.MarkRunning(name); err != nil {
		return nil, err
	}

	start := time.Now()
	summary := &Summary{Job: name}

	movieGenres, err := e.client.MovieGenres(ctx)
	if err != nil {
		e.jobs.MarkFailed(name, err.Error())
		return nil, fmt.Errorf("fetch movie genres: %w", err)
	}
	tvGenres, err := e.client.TVGenres(ctx)
	if err != nil {
		e.jobs.MarkFailed(name, err.Error())
		return nil, fmt.Errorf("fetch tv genres: %w", err)
	}

	seen := make(map[int64]bool)
	for _, g := range append(movieGenres, tvGenres...) {
		if seen[g.ID] {
			summary.Skipped++
			continue
		}
		seen[g.ID] = true
		genre := &models.Genre{TMDBID: g.ID, Name: g.Name}
		if err := e.genres.Upsert(genre); err != nil {
			e.log.Warn("genre upsert failed", "tmdb_id", g.ID, "error", err)
			summary.Failed++
			continue
		}
		summary.Inserted++
	}
	summary.Processed = len(seen)
	summary.Duration = time.Since(start)

	if err := e.reloadGenreMap(); err != nil {
		e.jobs.MarkFailed(name, err.Error())
		return nil, err
	}

	if err := e.jobs.UpdateProgress(name, 100, summary.Processed, summary.Processed); err != nil {
		e.log.Warn("progress update failed", "job", name, "error", err)
	}
	if err := e.jobs.MarkCompleted(name); err != nil {
		return nil, err
	}
	e.log.Info("genre sync complete", "processed", summary.Processed, "failed", summary.Failed)
	return summary, nil
}

// SyncMovies pages through the configured movie categories, enriching and
// inserting items not yet in the store.
func (e *Engine) SyncMovies(ctx context.Context) (*Summary, error) {
	return e.syncMovies(ctx, "")
}

func (e *Engine) syncMovies(ctx context.Context, parent string) (*Summary, error) {
	return e.runCatalogJob(ctx, string(models.SyncJobTypeMovies), parent, models.SyncJobTypeMovies,
		e.opts.MovieCategories, e.movieCategoryPass)
}

// SyncTVShows pages through the configured series categories.
func (e *Engine) SyncTVShows(ctx context.Context) (*Summary, error) {
	return e.syncTVShows(ctx, "")
}

func (e *Engine) syncTVShows(ctx context.Context, parent string) (*Summary, error) {
	return e.runCatalogJob(ctx, string(models.SyncJobTypeTVShows), parent, models.SyncJobTypeTVShows,
		e.opts.TVCategories, e.tvCategoryPass)
}

// SyncAll runs genres, movies and shows in order under one job record.
func (e *Engine) SyncAll(ctx context.Context) (*Summary, error) {
	const name = string(models.SyncJobTypeAll)
	if !e.tryStart(name) {
		return nil, ErrAlreadyRunning
	}
	defer e.finish(name)

	if _, err := e.jobs.GetOrCreate(name, models.SyncJobTypeAll); err != nil {
		return nil, err
	}
	if err := e.jobs.MarkRunning(name); err != nil {
		return nil, err
	}

	start := time.Now()
	total := &Summary{Job: name}
	parts := []func(context.Context) (*Summary, error){
		e.SyncGenres,
		func(ctx context.Context) (*Summary, error) { return e.syncMovies(ctx, name) },
		func(ctx context.Context) (*Summary, error) { return e.syncTVShows(ctx, name) },
	}
	for _, part := range parts {
		s, err := part(ctx)
		if err != nil {
			e.jobs.MarkFailed(name, err.Error())
			return nil, err
		}
		total.Processed += s.Processed
		total.Inserted += s.Inserted
		total.Skipped += s.Skipped
		total.Failed += s.Failed
		if s.Paused {
			total.Paused = true
			break
		}
	}
	total.Duration = time.Since(start)

	if total.Paused {
		// A pause request may target this row directly; settle it so the
		// record matches the stopped run.
		if job, err := e.jobs.GetByName(name); err == nil && job.Status == models.SyncJobRunning {
			if err := e.jobs.SetStatus(name, models.SyncJobPaused); err != nil {
				e.log.Warn("pause status update failed", "job", name, "error", err)
			}
		}
		e.log.Info("full sync paused", "processed", total.Processed)
		return total, nil
	}
	// A pause can land between the last checkpoint and here; a paused row
	// must never flip to completed.
	if job, err := e.jobs.GetByName(name); err == nil && job.Status == models.SyncJobPaused {
		total.Paused = true
		e.log.Info("full sync paused", "processed", total.Processed)
		return total, nil
	}
	if err := e.jobs.UpdateProgress(name, 100, total.Processed, total.Processed); err != nil {
		e.log.Warn("progress update failed", "job", name, "error", err)
	}
	if err := e.jobs.MarkCompleted(name); err != nil {
		return nil, err
	}
	e.log.Info("full sync complete", "processed", total.Processed,
		"inserted", total.Inserted, "skipped", total.Skipped, "failed", total.Failed)
	return total, nil
}

// runStats aggregates per-item outcomes across batch goroutines. totals
// accumulates the source-reported result counts, one add per category.
type runStats struct {
	processed atomic.Int64
	inserted  atomic.Int64
	skipped   atomic.Int64
	failed    atomic.Int64
	totals    atomic.Int64
}

type categoryPass func(ctx context.Context, name, parent, category string, limiter *rate.Limiter, stats *runStats) (paused bool, err error)

func (e *Engine) runCatalogJob(ctx context.Context, name, parent string, jobType models.SyncJobType,
	categories []string, pass categoryPass) (*Summary, error) {
	if !e.tryStart(name) {
		return nil, ErrAlreadyRunning
	}
	defer e.finish(name)

	if _, err := e.jobs.GetOrCreate(name, jobType); err != nil {
		return nil, err
	}
	if err := e.ensureGenreMap(ctx); err != nil {
		return nil, err
	}
	if err := e.jobs.MarkRunning(name); err != nil {
		return nil, err
	}

	start := time.Now()
	stats := &runStats{}
	limiter := e.newLimiter()

	paused := false
	for _, category := range categories {
		p, err := pass(ctx, name, parent, category, limiter, stats)
		if err != nil {
			// A category-level failure fails the run; item-level failures
			// never reach here.
			e.jobs.MarkFailed(name, err.Error())
			return nil, err
		}
		if p {
			paused = true
			break
		}
	}

	summary := &Summary{
		Job:       name,
		Processed: int(stats.processed.Load()),
		Inserted:  int(stats.inserted.Load()),
		Skipped:   int(stats.skipped.Load()),
		Failed:    int(stats.failed.Load()),
		Paused:    paused,
		Duration:  time.Since(start),
	}

	if paused {
		// A pause aimed at the parent job stops this run without touching
		// this row; settle it so the record matches the stopped run.
		if job, err := e.jobs.GetByName(name); err == nil && job.Status == models.SyncJobRunning {
			if err := e.jobs.SetStatus(name, models.SyncJobPaused); err != nil {
				e.log.Warn("pause status update failed", "job", name, "error", err)
			}
		}
		e.log.Info("sync paused", "job", name, "processed", summary.Processed)
		return summary, nil
	}

	// A pause can land between the last checkpoint and here; a paused row
	// must never flip to completed.
	if job, err := e.jobs.GetByName(name); err == nil && job.Status == models.SyncJobPaused {
		summary.Paused = true
		e.log.Info("sync paused", "job", name, "processed", summary.Processed)
		return summary, nil
	}
	if err := e.jobs.UpdateProgress(name, 100, summary.Processed, summary.Processed); err != nil {
		e.log.Warn("progress update failed", "job", name, "error", err)
	}
	if err := e.jobs.MarkCompleted(name); err != nil {
		return nil, err
	}
	e.log.Info("sync complete", "job", name, "processed", summary.Processed,
		"inserted", summary.Inserted, "skipped", summary.Skipped, "failed", summary.Failed,
		"duration", summary.Duration)
	return summary, nil
}

// newLimiter converts the batch-size/delay pair into a leaky bucket with the
// same throughput ceiling: BatchSize items per BatchDelay.
func (e *Engine) newLimiter() *rate.Limiter {
	interval := e.opts.BatchDelay / time.Duration(e.opts.BatchSize)
	if interval <= 0 {
		interval = time.Millisecond
	}
	return rate.NewLimiter(rate.Every(interval), e.opts.BatchSize)
}

// movieCategoryPass pages one movie category sequentially. Pages are never
// fetched in parallel; the source rate-limits concurrent pagination.
func (e *Engine) movieCategoryPass(ctx context.Context, name, parent, category string,
	limiter *rate.Limiter, stats *runStats) (bool, error) {
	for page := 1; page <= e.opts.PageCap; page++ {
		if stopped, err := e.checkpoint(ctx, name, parent); stopped || err != nil {
			return stopped, err
		}

		result, err := e.client.MovieList(ctx, category, page)
		if err != nil {
			// A failed page fetch ends this category, not the run.
			e.log.Warn("movie page fetch failed", "category", category, "page", page, "error", err)
			return false, nil
		}
		if len(result.Results) == 0 {
			return false, nil
		}
		if page == 1 {
			stats.totals.Add(int64(result.TotalResults))
		}

		e.processBatches(ctx, len(result.Results), func(i int) {
			e.processMovie(ctx, result.Results[i], limiter, stats)
		})

		e.reportProgress(name, category, page, result.TotalPages, stats)
		if page >= result.TotalPages {
			return false, nil
		}
	}
	return false, nil
}

// tvCategoryPass pages one series category sequentially.
func (e *Engine) tvCategoryPass(ctx context.Context, name, parent, category string,
	limiter *rate.Limiter, stats *runStats) (bool, error) {
	for page := 1; page <= e.opts.PageCap; page++ {
		if stopped, err := e.checkpoint(ctx, name, parent); stopped || err != nil {
			return stopped, err
		}

		result, err := e.client.TVList(ctx, category, page)
		if err != nil {
			e.log.Warn("tv page fetch failed", "category", category, "page", page, "error", err)
			return false, nil
		}
		if len(result.Results) == 0 {
			return false, nil
		}
		if page == 1 {
			stats.totals.Add(int64(result.TotalResults))
		}

		e.processBatches(ctx, len(result.Results), func(i int) {
			e.processTVShow(ctx, result.Results[i], limiter, stats)
		})

		e.reportProgress(name, category, page, result.TotalPages, stats)
		if page >= result.TotalPages {
			return false, nil
		}
	}
	return false, nil
}

// processBatches runs fn over n items with at most BatchSize in flight.
func (e *Engine) processBatches(ctx context.Context, n int, fn func(i int)) {
	p := pool.New().WithMaxGoroutines(e.opts.BatchSize)
	for i := 0; i < n; i++ {
		i := i
		p.Go(func() {
			if ctx.Err() != nil {
				return
			}
			fn(i)
		})
	}
	p.Wait()
}

// checkpoint reports whether the run should stop: the context is done, or
// any of the named jobs was flagged paused from outside. A pass running
// under a combined job checks both its own row and the parent's.
func (e *Engine) checkpoint(ctx context.Context, names ...string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return true, nil
	}
	for _, name := range names {
		if name == "" {
			continue
		}
		job, err := e.jobs.GetByName(name)
		if err != nil {
			return false, err
		}
		if job.Status == models.SyncJobPaused {
			return true, nil
		}
	}
	return false, nil
}

func (e *Engine) reportProgress(name, category string, page, totalPages int, stats *runStats) {
	cappedPages := totalPages
	if cappedPages > e.opts.PageCap {
		cappedPages = e.opts.PageCap
	}
	progress := 0
	if cappedPages > 0 {
		progress = page * 100 / cappedPages
	}
	if progress > 99 {
		progress = 99 // 100 is reserved for run completion
	}
	processed := int(stats.processed.Load())
	if err := e.jobs.UpdateProgress(name, progress, processed, int(stats.totals.Load())); err != nil {
		e.log.Warn("progress update failed", "job", name, "error", err)
	}
	e.log.Debug("page complete", "job", name, "category", category, "page", page, "processed", processed)
}

// processMovie handles a single list entry: dedup check, detail fetch,
// enrichment, insert. Failures are counted, never propagated.
func (e *Engine) processMovie(ctx context.Context, item tmdb.MovieSummary, limiter *rate.Limiter, stats *runStats) {
	stats.processed.Add(1)

	if !e.opts.Refresh {
		exists, err := e.movies.ExistsByTMDBID(item.ID)
		if err != nil {
			e.log.Warn("movie exists check failed", "tmdb_id", item.ID, "error", err)
			stats.failed.Add(1)
			return
		}
		if exists {
			stats.skipped.Add(1)
			return
		}
	}

	if err := limiter.Wait(ctx); err != nil {
		stats.failed.Add(1)
		return
	}

	detail, err := e.client.MovieDetail(ctx, item.ID)
	if err != nil {
		if errors.Is(err, tmdb.ErrNotFound) {
			stats.skipped.Add(1)
			return
		}
		e.log.Warn("movie detail fetch failed", "tmdb_id", item.ID, "error", err)
		stats.failed.Add(1)
		return
	}

	movie := e.buildMovie(detail)
	var storeErr error
	if e.opts.Refresh {
		storeErr = e.movies.UpsertByTMDBID(movie)
	} else {
		storeErr = e.movies.Create(movie)
	}
	switch {
	case storeErr == nil:
		stats.inserted.Add(1)
	case errors.Is(storeErr, database.ErrDuplicate):
		// Lost an upsert race; the row is there, which is what we wanted.
		stats.skipped.Add(1)
	default:
		e.log.Warn("movie insert failed", "tmdb_id", item.ID, "error", storeErr)
		stats.failed.Add(1)
	}
}

// processTVShow handles a single series list entry, including episode
// ingestion for newly inserted shows.
func (e *Engine) processTVShow(ctx context.Context, item tmdb.TVSummary, limiter *rate.Limiter, stats *runStats) {
	stats.processed.Add(1)

	if !e.opts.Refresh {
		exists, err := e.shows.ExistsByTMDBID(item.ID)
		if err != nil {
			e.log.Warn("show exists check failed", "tmdb_id", item.ID, "error", err)
			stats.failed.Add(1)
			return
		}
		if exists {
			stats.skipped.Add(1)
			return
		}
	}

	if err := limiter.Wait(ctx); err != nil {
		stats.failed.Add(1)
		return
	}

	detail, err := e.client.TVDetail(ctx, item.ID)
	if err != nil {
		if errors.Is(err, tmdb.ErrNotFound) {
			stats.skipped.Add(1)
			return
		}
		e.log.Warn("tv detail fetch failed", "tmdb_id", item.ID, "error", err)
		stats.failed.Add(1)
		return
	}

	show := e.buildTVShow(detail)
	if err := e.shows.Create(show); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			stats.skipped.Add(1)
			return
		}
		e.log.Warn("show insert failed", "tmdb_id", item.ID, "error", err)
		stats.failed.Add(1)
		return
	}
	stats.inserted.Add(1)

	e.ingestEpisodes(ctx, show, detail, limiter)
}

// ingestEpisodes upserts every episode of a newly inserted show. Episode
// failures count against nothing; the show itself already succeeded.
func (e *Engine) ingestEpisodes(ctx context.Context, show *models.TVShow, detail *tmdb.TVDetail, limiter *rate.Limiter) {
	for _, season := range detail.Seasons {
		if season.SeasonNumber < 1 || season.EpisodeCount == 0 {
			continue
		}
		if err := limiter.Wait(ctx); err != nil {
			return
		}
		sd, err := e.client.SeasonDetail(ctx, detail.ID, season.SeasonNumber)
		if err != nil {
			e.log.Warn("season fetch failed", "tmdb_id", detail.ID,
				"season", season.SeasonNumber, "error", err)
			continue
		}
		for _, ep := range sd.Episodes {
			episode := &models.Episode{
				ShowID:        show.ID,
				SeasonNumber:  ep.SeasonNumber,
				EpisodeNumber: ep.EpisodeNumber,
				Name:          ep.Name,
				Overview:      ep.Overview,
				AirDate:       parseDate(ep.AirDate),
				Runtime:       ep.Runtime,
				StillPath:     ep.StillPath,
			}
			opts := embedurl.Options{TMDBID: detail.ID, IMDBID: detail.ExternalIDs.IMDBID}
			if u, err := embedurl.VidsrcEpisode(opts, ep.SeasonNumber, ep.EpisodeNumber); err == nil {
				episode.EmbedURL = u
			}
			if err := e.shows.UpsertEpisode(episode); err != nil {
				e.log.Warn("episode upsert failed", "show", show.TMDBID,
					"season", ep.SeasonNumber, "episode", ep.EpisodeNumber, "error", err)
			}
		}
	}
}

func (e *Engine) buildMovie(d *tmdb.MovieDetail) *models.Movie {
	m := &models.Movie{
		TMDBID:        d.ID,
		Title:         d.Title,
		OriginalTitle: d.OriginalTitle,
		Overview:      d.Overview,
		ReleaseDate:   parseDate(d.ReleaseDate),
		PosterPath:    d.PosterPath,
		BackdropPath:  d.BackdropPath,
		Runtime:       d.Runtime,
		VoteAverage:   d.VoteAverage,
		VoteCount:     d.VoteCount,
		Popularity:    d.Popularity,
		IsAvailable:   true,
		Genres:        e.resolveGenres(d.Genres),
	}
	if imdb := embedurl.NormalizeIMDBID(d.IMDBID); imdb != "" {
		m.IMDBID = &imdb
	}
	if u, err := embedurl.VidsrcMovie(embedurl.Options{TMDBID: d.ID, IMDBID: d.IMDBID}); err == nil {
		m.EmbedURL = u
	}
	return m
}

func (e *Engine) buildTVShow(d *tmdb.TVDetail) *models.TVShow {
	s := &models.TVShow{
		TMDBID:           d.ID,
		Name:             d.Name,
		OriginalName:     d.OriginalName,
		Overview:         d.Overview,
		FirstAirDate:     parseDate(d.FirstAirDate),
		LastAirDate:      parseDate(d.LastAirDate),
		PosterPath:       d.PosterPath,
		BackdropPath:     d.BackdropPath,
		NumberOfSeasons:  d.NumberOfSeasons,
		NumberOfEpisodes: d.NumberOfEpisodes,
		Status:           d.Status,
		VoteAverage:      d.VoteAverage,
		VoteCount:        d.VoteCount,
		Popularity:       d.Popularity,
		IsAvailable:      true,
		Genres:           e.resolveGenres(d.Genres),
	}
	for _, n := range d.Networks {
		s.Networks = append(s.Networks, n.Name)
	}
	for _, c := range d.CreatedBy {
		s.CreatedBy = append(s.CreatedBy, c.Name)
	}
	for _, season := range d.Seasons {
		s.Seasons = append(s.Seasons, models.SeasonSummary{
			SeasonNumber: season.SeasonNumber,
			EpisodeCount: season.EpisodeCount,
			AirDate:      parseDate(season.AirDate),
			Name:         season.Name,
		})
	}
	if imdb := embedurl.NormalizeIMDBID(d.ExternalIDs.IMDBID); imdb != "" {
		s.IMDBID = &imdb
	}
	if u, err := embedurl.VidsrcEpisode(embedurl.Options{TMDBID: d.ID, IMDBID: d.ExternalIDs.IMDBID}, 1, 1); err == nil {
		s.EmbedURL = u
	}
	return s
}

// resolveGenres maps external genre ids to store rows. Ids missing from the
// map are dropped silently.
func (e *Engine) resolveGenres(genres []tmdb.Genre) []models.Genre {
	e.genreMu.RLock()
	defer e.genreMu.RUnlock()

	var resolved []models.Genre
	for _, g := range genres {
		storeID, ok := e.genreMap[g.ID]
		if !ok {
			continue
		}
		resolved = append(resolved, models.Genre{ID: storeID, TMDBID: g.ID, Name: g.Name})
	}
	return resolved
}

// ensureGenreMap loads the map from the store, running a genre sync when the
// taxonomy has never been fetched.
func (e *Engine) ensureGenreMap(ctx context.Context) error {
	e.genreMu.RLock()
	loaded := len(e.genreMap) > 0
	e.genreMu.RUnlock()
	if loaded {
		return nil
	}

	m, err := e.genres.TMDBIDMap()
	if err != nil {
		return err
	}
	if len(m) == 0 {
		if _, err := e.SyncGenres(ctx); err != nil && !errors.Is(err, ErrAlreadyRunning) {
			return err
		}
		return nil
	}

	e.genreMu.Lock()
	e.genreMap = m
	e.genreMu.Unlock()
	return nil
}

func (e *Engine) reloadGenreMap() error {
	m, err := e.genres.TMDBIDMap()
	if err != nil {
		return err
	}
	e.genreMu.Lock()
	e.genreMap = m
	e.genreMu.Unlock()
	return nil
}

func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}
