// Package scheduler runs housekeeping jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is a unit of recurring work
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// JobFunc adapts a function to Job
type JobFunc struct {
	JobName string
	Fn      func(ctx context.Context) error
}

// Name returns the job name
func (f JobFunc) Name() string { return f.JobName }

// Run calls Fn
func (f JobFunc) Run(ctx context.Context) error { return f.Fn(ctx) }

// Config holds scheduler settings
type Config struct {
	Location   *time.Location
	JobTimeout time.Duration
}

// Scheduler wraps a cron runner. Each run gets its own timeout and a
// job never overlaps with its previous run.
type Scheduler struct {
	cron    *cron.Cron
	logger  *zap.Logger
	timeout time.Duration

	mu      sync.Mutex
	names   map[string]cron.EntryID
	started bool
	baseCtx context.Context
	cancel  context.CancelFunc
}

// New creates a scheduler evaluating schedules in cfg.Location
func New(cfg Config, logger *zap.Logger) *Scheduler {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	timeout := cfg.JobTimeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		logger:  logger.Named("scheduler"),
		timeout: timeout,
		names:   make(map[string]cron.EntryID),
		baseCtx: ctx,
		cancel:  cancel,
	}
}

// Register schedules job on a standard 5-field cron expression or a
// descriptor such as "@every 10m".
func (s *Scheduler) Register(spec string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}
	if _, ok := s.names[job.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, job.Name())
	}

	id, err := s.cron.AddFunc(spec, func() { s.RunNow(job) })
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidSchedule, spec, err)
	}
	s.names[job.Name()] = id

	s.logger.Info("Job registered", zap.String("job", job.Name()), zap.String("schedule", spec))
	return nil
}

// RunNow executes job synchronously with the configured timeout
func (s *Scheduler) RunNow(job Job) {
	ctx, cancel := context.WithTimeout(s.baseCtx, s.timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Job panicked", zap.String("job", job.Name()), zap.Any("panic", r))
		}
	}()

	if err := job.Run(ctx); err != nil {
		s.logger.Error("Job failed",
			zap.String("job", job.Name()),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return
	}
	s.logger.Debug("Job finished", zap.String("job", job.Name()), zap.Duration("elapsed", time.Since(start)))
}

// Next returns the next activation of the named job, or zero if unknown
// or not started.
func (s *Scheduler) Next(name string) time.Time {
	s.mu.Lock()
	id, ok := s.names[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(id).Next
}

// Start begins dispatching jobs in the background
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.cron.Start()
	s.logger.Info("Scheduler started", zap.Int("jobs", len(s.names)))
}

// Stop cancels running jobs and waits for them to return or ctx to expire
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()

	s.cancel()
	if !started {
		return nil
	}

	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out")
		return ctx.Err()
	}
}
