package sync

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"streamvault/models"
)

// Scheduler triggers recurring sync runs. Runs never overlap: if a prior run
// of the same job is still in flight when one comes due, the trigger is
// skipped with a logged warning.
type Scheduler struct {
	engine        *Engine
	jobTypes      []models.SyncJobType
	checkInterval time.Duration
	frequency     time.Duration

	mu      sync.Mutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler that re-runs each job type once per
// frequency window, checking for due jobs every checkInterval.
func NewScheduler(engine *Engine, jobTypes []models.SyncJobType, checkInterval, frequency time.Duration) *Scheduler {
	if checkInterval < time.Second {
		checkInterval = time.Minute
	}
	if frequency < time.Minute {
		frequency = 6 * time.Hour
	}
	return &Scheduler{
		engine:        engine,
		jobTypes:      jobTypes,
		checkInterval: checkInterval,
		frequency:     frequency,
	}
}

// Start begins the scheduler background loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.running = true

	s.wg.Add(1)
	go s.loop()

	log.Println("[scheduler] started")
	return nil
}

// Stop gracefully stops the scheduler, waiting for in-flight runs up to the
// context deadline.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("[scheduler] stopped gracefully")
	case <-ctx.Done():
		log.Println("[scheduler] stopped (timeout)")
	}

	s.running = false
	return nil
}

func (s *Scheduler) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	// Run an immediate check on start so a cold catalog fills without
	// waiting a full interval.
	s.checkAndRun()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.checkAndRun()
		}
	}
}

func (s *Scheduler) checkAndRun() {
	for _, jobType := range s.jobTypes {
		name := string(jobType)
		if s.engine.IsRunning(name) {
			log.Printf("[scheduler] skipping %s: previous run still in flight", name)
			continue
		}
		if !s.isDue(name, jobType) {
			continue
		}

		s.wg.Add(1)
		go func(jt models.SyncJobType) {
			defer s.wg.Done()
			if _, err := s.engine.Run(s.ctx, jt); err != nil {
				if errors.Is(err, ErrAlreadyRunning) {
					log.Printf("[scheduler] skipping %s: already running", jt)
					return
				}
				log.Printf("[scheduler] %s run failed: %v", jt, err)
			}
		}(jobType)
	}
}

// isDue reports whether the job has never run or its frequency window has
// elapsed. Paused jobs are never resumed by the scheduler.
func (s *Scheduler) isDue(name string, jobType models.SyncJobType) bool {
	job, err := s.engine.jobs.GetOrCreate(name, jobType)
	if err != nil {
		log.Printf("[scheduler] failed to load job %s: %v", name, err)
		return false
	}
	if job.Status == models.SyncJobPaused {
		return false
	}
	if job.LastRunAt == nil {
		return true
	}
	return time.Since(*job.LastRunAt) >= s.frequency
}
