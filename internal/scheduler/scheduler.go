package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	log "github.com/sirupsen/logrus"

	"github.com/i474232898/statewise/internal/snapshot"
)

// runTimeout bounds one job run across all states.
const runTimeout = 2 * time.Minute

// Builder is the part of snapshot.Service the scheduler needs.
type Builder interface {
	BuildSnapshot(ctx context.Context, stateQuery string) (snapshot.Result, error)
}

// Scheduler builds a snapshot for each configured state once a day.
type Scheduler struct {
	scheduler *gocron.Scheduler
	builder   Builder
	states    []string
	at        string
}

// New creates a new Scheduler. at is a UTC "HH:MM" time of day.
func New(states []string, at string, builder Builder) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		builder:   builder,
		states:    states,
		at:        at,
	}
}

// Start schedules the daily job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.states) == 0 {
		log.Info("scheduler: no states configured; nothing to schedule")
		return nil
	}

	_, err := s.scheduler.Every(1).Day().At(s.at).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		s.RunOnce(ctx)
	})
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{"states": s.states, "at": s.at}).Info("scheduler: daily snapshots scheduled")
	s.scheduler.StartAsync()
	return nil
}

// RunOnce builds one snapshot per configured state, concurrently, and returns
// the number that were saved. Failures are logged and do not stop the others.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	log.Info("scheduler: running snapshot job")

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		saved int
	)
	for _, state := range s.states {
		wg.Add(1)
		go func(state string) {
			defer wg.Done()

			res, err := s.builder.BuildSnapshot(ctx, state)
			if err != nil {
				log.WithError(err).WithField("state", state).Error("scheduler: snapshot failed")
				return
			}
			log.WithFields(log.Fields{"state": state, "savedId": res.SavedID}).Debug("scheduler: snapshot saved")

			mu.Lock()
			saved++
			mu.Unlock()
		}(state)
	}
	wg.Wait()

	log.WithFields(log.Fields{"saved": saved, "total": len(s.states)}).Info("scheduler: completed snapshot job")
	return saved
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
