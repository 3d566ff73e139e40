package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lendaro/loanledger/internal/middleware"
)

// JobFunc is a single execution of a background job. The context carries the
// per-run timeout and a job-scoped logger.
type JobFunc func(ctx context.Context) error

type job struct {
	name     string
	interval time.Duration
	fn       JobFunc
}

// Scheduler runs registered jobs on fixed intervals. Each job gets its own
// ticker goroutine; runs are bounded by the configured timeout and survive
// panics in the job body.
type Scheduler struct {
	logger     *slog.Logger
	runTimeout time.Duration

	mu   sync.Mutex
	jobs []job
	wg   sync.WaitGroup
}

// New creates a Scheduler. runTimeout bounds every individual job run.
func New(logger *slog.Logger, runTimeout time.Duration) *Scheduler {
	return &Scheduler{
		logger:     logger,
		runTimeout: runTimeout,
	}
}

// Register adds a named job to the schedule table. It must be called before
// Start.
func (s *Scheduler) Register(name string, interval time.Duration, fn JobFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job{name: name, interval: interval, fn: fn})
}

// Start launches one goroutine per registered job and returns. The goroutines
// stop when ctx is cancelled; call Wait to block until they have drained.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	jobs := make([]job, len(s.jobs))
	copy(jobs, s.jobs)
	s.mu.Unlock()

	for _, j := range jobs {
		s.wg.Add(1)
		go func(j job) {
			defer s.wg.Done()
			s.loop(ctx, j)
		}(j)
	}
}

// Wait blocks until all job goroutines have exited.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, j job) {
	logger := s.logger.With(slog.String("job", j.name))
	logger.Info("Job scheduled", slog.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Job loop stopped")
			return
		case <-ticker.C:
			s.runOnce(ctx, j, logger)
		}
	}
}

// runOnce executes a single job run with its own timeout context and panic
// recovery, and records the outcome metric.
func (s *Scheduler) runOnce(ctx context.Context, j job, logger *slog.Logger) {
	runCtx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()
	runCtx = middleware.WithLogger(runCtx, logger)

	start := time.Now()
	outcome := "success"

	defer func() {
		if r := recover(); r != nil {
			outcome = "panic"
			logger.Error("Job panicked", slog.Any("panic", r))
		}
		middleware.SchedulerRunsTotal.WithLabelValues(j.name, outcome).Inc()
		logger.Info("Job run finished",
			slog.String("outcome", outcome),
			slog.Duration("duration", time.Since(start)),
		)
	}()

	if err := j.fn(runCtx); err != nil {
		outcome = "error"
		logger.Error("Job run failed", slog.Any("error", err))
	}
}
