// Package scheduler runs periodic background jobs until its context ends.
package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/musharraf10/MediMate/internal/metrics"
)

// Schedule yields the next run time strictly after a given instant.
type Schedule interface {
	Next(after time.Time) time.Time
}

// Daily fires once a day at Hour:Minute in Location (time.Local if nil).
type Daily struct {
	Hour, Minute int
	Location     *time.Location
}

func (d Daily) Next(after time.Time) time.Time {
	loc := d.Location
	if loc == nil {
		loc = time.Local
	}
	t := after.In(loc)
	next := time.Date(t.Year(), t.Month(), t.Day(), d.Hour, d.Minute, 0, 0, loc)
	if !next.After(t) {
		next = time.Date(t.Year(), t.Month(), t.Day()+1, d.Hour, d.Minute, 0, 0, loc)
	}
	return next
}

// Hourly fires at the top of every hour in Location (time.Local if nil).
type Hourly struct {
	Location *time.Location
}

func (h Hourly) Next(after time.Time) time.Time {
	loc := h.Location
	if loc == nil {
		loc = time.Local
	}
	t := after.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour()+1, 0, 0, 0, loc)
}

// Job is a named unit of periodic work.
type Job struct {
	Name     string
	Schedule Schedule
	Run      func(ctx context.Context) error
}

type Scheduler struct {
	jobs    []Job
	log     *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// New builds a scheduler. m may be nil.
func New(log *zap.Logger, m *metrics.Metrics, jobs ...Job) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{jobs: jobs, log: log, metrics: m, now: time.Now}
}

// Run blocks until ctx is done, running every job on its schedule. Job
// failures are logged and never stop the scheduler.
func (s *Scheduler) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, job := range s.jobs {
		job := job
		g.Go(func() error {
			s.loop(ctx, job)
			return nil
		})
	}
	return g.Wait()
}

func (s *Scheduler) loop(ctx context.Context, job Job) {
	for {
		next := job.Schedule.Next(s.now())
		s.log.Debug("job scheduled", zap.String("job", job.Name), zap.Time("next", next))
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.RunOnce(ctx, job)
		}
	}
}

// RunOnce executes job immediately, recovering panics.
func (s *Scheduler) RunOnce(ctx context.Context, job Job) (err error) {
	start := s.now()
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("job panic",
				zap.String("job", job.Name),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
			err = fmt.Errorf("job %s panicked: %v", job.Name, r)
		}
		s.metrics.ObserveJob(job.Name, err)
		if err != nil {
			s.log.Error("job failed", zap.String("job", job.Name), zap.Error(err))
			return
		}
		s.log.Info("job done", zap.String("job", job.Name), zap.Duration("dur", s.now().Sub(start)))
	}()
	return job.Run(ctx)
}
