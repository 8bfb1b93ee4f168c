package main

import (
	"context"
	"flag"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"streamvault/api"
	"streamvault/config"
	"streamvault/handlers"
	"streamvault/internal/database"
	"streamvault/models"
	"streamvault/services/activity"
	"streamvault/services/catalog"
	"streamvault/services/sync"
	"streamvault/services/tmdb"
	"streamvault/utils"

	"golang.org/x/time/rate"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.NewManager(*configPath).Load()
	if err != nil {
		log.Fatalf("[main] config: %v", err)
	}

	setupLogging(cfg.Log)

	db, err := database.NewDB(database.Config{DatabasePath: cfg.Database.Path})
	if err != nil {
		log.Fatalf("[main] database: %v", err)
	}
	defer db.Close()

	conn := db.Connection()
	movieRepo := database.NewMovieRepository(conn)
	showRepo := database.NewTVShowRepository(conn)
	genreRepo := database.NewGenreRepository(conn)
	jobRepo := database.NewSyncJobRepository(conn)
	watchlistRepo := database.NewWatchlistRepository(conn)
	activityRepo := database.NewActivityRepository(conn)

	tmdbClient := tmdb.NewClient(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, nil)

	engine := sync.NewEngine(tmdbClient, movieRepo, showRepo, genreRepo, jobRepo, sync.Options{
		MovieCategories: cfg.Sync.MovieCategories,
		TVCategories:    cfg.Sync.TVCategories,
		PageCap:         cfg.Sync.PageCap,
		BatchSize:       cfg.Sync.BatchSize,
		BatchDelay:      cfg.Sync.BatchDelay,
	})

	catalogSvc := catalog.NewService(movieRepo, showRepo, genreRepo, catalog.Options{
		CacheTTL:  cfg.Cache.TTL,
		CacheSize: cfg.Cache.Size,
	})

	recorder := activity.NewRecorder(activityRepo)
	defer recorder.Close()

	scheduler := sync.NewScheduler(engine,
		[]models.SyncJobType{models.SyncJobTypeGenres, models.SyncJobTypeMovies, models.SyncJobTypeTVShows},
		cfg.Sync.CheckInterval, cfg.Sync.Frequency)
	if cfg.Sync.Enabled {
		if err := scheduler.Start(context.Background()); err != nil {
			log.Fatalf("[main] scheduler: %v", err)
		}
	}

	router := buildRouter(cfg, catalogSvc, movieRepo, showRepo, genreRepo, jobRepo, watchlistRepo, activityRepo, engine, recorder)

	srv := &http.Server{
		Addr:         cfg.Server.ListenAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("[main] listening on %s", cfg.Server.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[main] server: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Println("[main] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[main] server shutdown: %v", err)
	}
	if cfg.Sync.Enabled {
		if err := scheduler.Stop(shutdownCtx); err != nil {
			log.Printf("[main] scheduler stop: %v", err)
		}
	}
}

func buildRouter(
	cfg *config.Config,
	catalogSvc *catalog.Service,
	movieRepo *database.MovieRepository,
	showRepo *database.TVShowRepository,
	genreRepo *database.GenreRepository,
	jobRepo *database.SyncJobRepository,
	watchlistRepo *database.WatchlistRepository,
	activityRepo *database.ActivityRepository,
	engine *sync.Engine,
	recorder *activity.Recorder,
) http.Handler {
	movies := handlers.NewMoviesHandler(catalogSvc, movieRepo, recorder)
	shows := handlers.NewTVShowsHandler(catalogSvc, showRepo, recorder)
	genres := handlers.NewGenresHandler(catalogSvc, genreRepo, recorder)
	syncH := handlers.NewSyncHandler(engine, jobRepo, recorder)
	watchlist := handlers.NewWatchlistHandler(watchlistRepo)
	activityH := handlers.NewActivityHandler(activityRepo)

	r := utils.NewRouter(cfg.Server.AllowedOrigins)

	// 120 requests per minute per IP on the public surface.
	publicRL := api.NewIPRateLimiter(rate.Every(500*time.Millisecond), 30)

	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.Use(api.RateLimitMiddleware(publicRL))

	apiRouter.HandleFunc("/movies", movies.List).Methods(http.MethodGet)
	apiRouter.HandleFunc("/movies/{id}", movies.Get).Methods(http.MethodGet)
	apiRouter.HandleFunc("/tvshows", shows.List).Methods(http.MethodGet)
	apiRouter.HandleFunc("/tvshows/{id}", shows.Get).Methods(http.MethodGet)
	apiRouter.HandleFunc("/tvshows/{id}/episodes", shows.Episodes).Methods(http.MethodGet)
	apiRouter.HandleFunc("/genres", genres.List).Methods(http.MethodGet)

	users := apiRouter.PathPrefix("/users").Subrouter()
	users.Use(api.AuthMiddleware(cfg.Auth.JWTSecret))
	users.HandleFunc("/{userID}/watchlist", watchlist.List).Methods(http.MethodGet)
	users.HandleFunc("/{userID}/watchlist", watchlist.Add).Methods(http.MethodPost)
	users.HandleFunc("/{userID}/watchlist/{mediaType}/{id}", watchlist.Remove).Methods(http.MethodDelete)
	users.HandleFunc("/{userID}/history", watchlist.History).Methods(http.MethodGet)
	users.HandleFunc("/{userID}/history", watchlist.RecordHistory).Methods(http.MethodPost)

	admin := apiRouter.PathPrefix("/admin").Subrouter()
	admin.Use(api.AuthMiddleware(cfg.Auth.JWTSecret), api.AdminOnlyMiddleware())
	admin.HandleFunc("/movies", movies.Create).Methods(http.MethodPost)
	admin.HandleFunc("/movies/{id}", movies.Update).Methods(http.MethodPut)
	admin.HandleFunc("/movies/{id}", movies.Delete).Methods(http.MethodDelete)
	admin.HandleFunc("/movies/{id}/availability", movies.ToggleAvailability).Methods(http.MethodPatch)
	admin.HandleFunc("/tvshows", shows.Create).Methods(http.MethodPost)
	admin.HandleFunc("/tvshows/{id}", shows.Update).Methods(http.MethodPut)
	admin.HandleFunc("/tvshows/{id}", shows.Delete).Methods(http.MethodDelete)
	admin.HandleFunc("/tvshows/{id}/availability", shows.ToggleAvailability).Methods(http.MethodPatch)
	admin.HandleFunc("/genres/{id}", genres.Delete).Methods(http.MethodDelete)
	admin.HandleFunc("/sync/jobs", syncH.Jobs).Methods(http.MethodGet)
	admin.HandleFunc("/sync/jobs/{type}", syncH.Job).Methods(http.MethodGet)
	admin.HandleFunc("/sync/{type}", syncH.Start).Methods(http.MethodPost)
	admin.HandleFunc("/sync/{type}/pause", syncH.Pause).Methods(http.MethodPost)
	admin.HandleFunc("/sync/{type}/resume", syncH.Resume).Methods(http.MethodPost)
	admin.HandleFunc("/activity", activityH.List).Methods(http.MethodGet)

	return r
}

// setupLogging routes both the classic logger and slog to stdout, with
// rotation via lumberjack when a log file is configured.
func setupLogging(cfg config.LogConfig) {
	var out io.Writer = os.Stdout
	if cfg.File != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		})
	}
	log.SetOutput(out)
	slog.SetDefault(slog.New(slog.NewTextHandler(out, nil)))
}
