package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"streamvault/internal/auth"
	"streamvault/internal/database"
	"streamvault/models"
	"streamvault/services/sync"

	"github.com/gorilla/mux"
)

type syncEngine interface {
	Run(ctx context.Context, jobType models.SyncJobType) (*sync.Summary, error)
	Pause(name string) error
	Resume(ctx context.Context, name string) error
	IsRunning(name string) bool
}

type syncJobStore interface {
	List() ([]models.SyncJob, error)
	GetByName(name string) (*models.SyncJob, error)
}

var (
	_ syncEngine   = (*sync.Engine)(nil)
	_ syncJobStore = (*database.SyncJobRepository)(nil)
)

type SyncHandler struct {
	Engine   syncEngine
	Store    syncJobStore
	Activity activityRecorder

	log *slog.Logger
}

func NewSyncHandler(engine syncEngine, jobs syncJobStore, rec activityRecorder) *SyncHandler {
	return &SyncHandler{
		Engine:   engine,
		Store:    jobs,
		Activity: rec,
		log:      slog.Default().With("component", "sync-handler"),
	}
}

var validJobTypes = map[string]models.SyncJobType{
	"movies":  models.SyncJobTypeMovies,
	"tvshows": models.SyncJobTypeTVShows,
	"genres":  models.SyncJobTypeGenres,
	"all":     models.SyncJobTypeAll,
}

// Start kicks off a sync job in the background. Returns 409 when the named
// job is already in flight.
func (h *SyncHandler) Start(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["type"]
	jobType, ok := validJobTypes[name]
	if !ok {
		writeAdminError(w, http.StatusBadRequest, fmt.Sprintf("unknown sync type %q", name))
		return
	}

	if h.Engine.IsRunning(name) {
		h.record(r, models.AdminActionSyncStart, name, sync.ErrAlreadyRunning)
		writeAdminError(w, http.StatusConflict, "sync already running")
		return
	}

	h.record(r, models.AdminActionSyncStart, name, nil)
	go func() {
		// Detached from the request context so the job outlives it.
		summary, err := h.Engine.Run(context.Background(), jobType)
		if err != nil && !errors.Is(err, sync.ErrAlreadyRunning) {
			h.log.Error("sync run failed", "job", name, "error", err)
			return
		}
		if summary != nil {
			h.log.Info("sync run finished",
				"job", summary.Job, "processed", summary.Processed,
				"inserted", summary.Inserted, "skipped", summary.Skipped,
				"failed", summary.Failed, "paused", summary.Paused)
		}
	}()

	writeJSON(w, http.StatusAccepted, adminResponse{
		Success: true,
		Message: fmt.Sprintf("sync %s started", name),
		Data:    map[string]string{"job": name},
	})
}

func (h *SyncHandler) Pause(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["type"]
	if _, ok := validJobTypes[name]; !ok {
		writeAdminError(w, http.StatusBadRequest, fmt.Sprintf("unknown sync type %q", name))
		return
	}

	err := h.Engine.Pause(name)
	h.record(r, models.AdminActionSyncPause, name, err)
	if err != nil {
		status := http.StatusConflict
		if errors.Is(err, database.ErrNotFound) {
			status = http.StatusNotFound
		}
		writeAdminError(w, status, err.Error())
		return
	}
	writeAdminOK(w, fmt.Sprintf("sync %s paused", name), nil)
}

func (h *SyncHandler) Resume(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["type"]
	if _, ok := validJobTypes[name]; !ok {
		writeAdminError(w, http.StatusBadRequest, fmt.Sprintf("unknown sync type %q", name))
		return
	}

	err := h.Engine.Resume(context.Background(), name)
	h.record(r, models.AdminActionSyncResume, name, err)
	if err != nil {
		status := http.StatusConflict
		if errors.Is(err, database.ErrNotFound) {
			status = http.StatusNotFound
		}
		writeAdminError(w, status, err.Error())
		return
	}
	writeAdminOK(w, fmt.Sprintf("sync %s resumed", name), nil)
}

func (h *SyncHandler) Jobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.Store.List()
	if err != nil {
		writeAdminError(w, http.StatusInternalServerError, "failed to list sync jobs")
		return
	}
	if jobs == nil {
		jobs = []models.SyncJob{}
	}
	writeAdminOK(w, "sync jobs", jobs)
}

func (h *SyncHandler) Job(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["type"]
	job, err := h.Store.GetByName(name)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeAdminError(w, http.StatusNotFound, "sync job not found")
			return
		}
		writeAdminError(w, http.StatusInternalServerError, "failed to load sync job")
		return
	}
	writeAdminOK(w, "sync job", job)
}

func (h *SyncHandler) record(r *http.Request, action models.AdminAction, job string, err error) {
	a := models.AdminActivity{
		Actor:        auth.GetActor(r),
		Action:       action,
		ResourceType: "sync_job",
		ResourceID:   job,
		Description:  fmt.Sprintf("%s %s", action, job),
		Success:      err == nil,
		IPAddress:    clientIP(r),
		UserAgent:    r.UserAgent(),
	}
	if err != nil {
		a.ErrorMessage = err.Error()
	}
	h.Activity.Record(a)
}
