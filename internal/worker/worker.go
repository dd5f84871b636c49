// Package worker hosts agent job execution: one process serves many calls,
// each call running as one job in a bounded pool.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Process carries state shared by every job the worker runs, such as models
// loaded once at startup.
type Process struct {
	mu       sync.RWMutex
	userdata map[string]interface{}
}

// Set stores a shared value under key.
func (p *Process) Set(key string, v interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.userdata[key] = v
}

// Get returns the shared value stored under key.
func (p *Process) Get(key string) (interface{}, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.userdata[key]
	return v, ok
}

// Job is one call assignment.
type Job struct {
	ID       string
	Room     string
	Identity string
}

// Entrypoint runs one job to completion.
type Entrypoint func(ctx context.Context, proc *Process, job Job) error

// Options configures a worker.
type Options struct {
	// Prewarm runs once before the worker accepts jobs, to load shared
	// models into the process.
	Prewarm func(proc *Process) error
	// Entrypoint handles each job.
	Entrypoint Entrypoint
	// MaxJobs bounds concurrent jobs. Zero or negative means 10.
	MaxJobs int
}

// Worker executes jobs in parallel with a semaphore-based pool. A panicking
// job is contained and logged; other jobs keep running.
type Worker struct {
	opts   Options
	proc   *Process
	pool   chan struct{}
	logger *zap.Logger

	mu      sync.Mutex
	running map[string]Job
	wg      sync.WaitGroup
	closed  bool
}

// New creates a worker and runs the prewarm hook.
func New(opts Options, logger *zap.Logger) (*Worker, error) {
	if opts.Entrypoint == nil {
		return nil, fmt.Errorf("entrypoint is required")
	}
	poolSize := opts.MaxJobs
	if poolSize <= 0 {
		poolSize = 10
	}

	w := &Worker{
		opts:    opts,
		proc:    &Process{userdata: make(map[string]interface{})},
		pool:    make(chan struct{}, poolSize),
		running: make(map[string]Job),
		logger:  logger,
	}

	if opts.Prewarm != nil {
		if err := opts.Prewarm(w.proc); err != nil {
			return nil, fmt.Errorf("prewarm: %w", err)
		}
		logger.Info("worker prewarmed")
	}
	return w, nil
}

// Process returns the shared process state.
func (w *Worker) Process() *Process {
	return w.proc
}

// Submit schedules a job. It returns the assigned job id immediately; the
// job runs when a pool slot frees up.
func (w *Worker) Submit(ctx context.Context, job Job) (string, error) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return "", fmt.Errorf("worker is stopped")
	}
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	w.wg.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.wg.Done()
		w.pool <- struct{}{}        // acquire slot
		defer func() { <-w.pool }() // release slot
		w.run(ctx, job)
	}()

	return job.ID, nil
}

func (w *Worker) run(ctx context.Context, job Job) {
	w.mu.Lock()
	w.running[job.ID] = job
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		delete(w.running, job.ID)
		w.mu.Unlock()
	}()

	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("job panicked",
				zap.String("job", job.ID),
				zap.String("room", job.Room),
				zap.Any("panic", r))
		}
	}()

	start := time.Now()
	w.logger.Info("job started",
		zap.String("job", job.ID),
		zap.String("room", job.Room))

	if err := w.opts.Entrypoint(ctx, w.proc, job); err != nil {
		w.logger.Error("job failed",
			zap.String("job", job.ID),
			zap.String("room", job.Room),
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}
	w.logger.Info("job finished",
		zap.String("job", job.ID),
		zap.Duration("duration", time.Since(start)))
}

// Running returns the jobs currently executing or queued.
func (w *Worker) Running() []Job {
	w.mu.Lock()
	defer w.mu.Unlock()
	jobs := make([]Job, 0, len(w.running))
	for _, j := range w.running {
		jobs = append(jobs, j)
	}
	return jobs
}

// Stop refuses new jobs and waits up to timeout for running jobs to finish.
func (w *Worker) Stop(timeout time.Duration) error {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("worker stop timed out after %s", timeout)
	}
}
