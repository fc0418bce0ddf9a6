package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tOgg1/trackline/internal/logging"
)

// Watcher errors.
var (
	ErrWatcherAlreadyRunning = errors.New("watcher already running")
	ErrWatcherNotRunning     = errors.New("watcher not running")
)

// Source lists the jobs the watcher supervises.
type Source interface {
	List(ctx context.Context) ([]*Job, error)
}

// Processor advances one job: starting a queued job, reporting progress on
// a running one. It returns the job's updated state.
type Processor interface {
	Process(ctx context.Context, jobID string) (State, error)
}

// WatcherConfig contains configuration for the job watcher.
type WatcherConfig struct {
	// RunningInterval is how often to poll running jobs.
	// Default: 500ms
	RunningInterval time.Duration

	// QueuedInterval is how often to poll queued jobs.
	// Default: 2s
	QueuedInterval time.Duration

	// MaxConcurrent limits concurrent Process calls.
	// Default: 4
	MaxConcurrent int

	// MaxAttempts bounds how many processing passes a single job gets
	// before the watcher gives up on it. Default: 240
	MaxAttempts int
}

// DefaultWatcherConfig returns sensible defaults.
func DefaultWatcherConfig() WatcherConfig {
	return WatcherConfig{
		RunningInterval: 500 * time.Millisecond,
		QueuedInterval:  2 * time.Second,
		MaxConcurrent:   4,
		MaxAttempts:     240,
	}
}

// jobPollState tracks polling state for one job.
type jobPollState struct {
	jobID        string
	lastPolledAt time.Time
	lastState    State
	attempts     int
}

// Watcher periodically drives every non-terminal job through the processor.
type Watcher struct {
	config    WatcherConfig
	source    Source
	processor Processor
	logger    zerolog.Logger

	mu         sync.RWMutex
	running    bool
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	pollSem    chan struct{}
	pollStates map[string]*jobPollState
}

// NewWatcher creates a job Watcher.
func NewWatcher(config WatcherConfig, source Source, processor Processor) *Watcher {
	if config.RunningInterval <= 0 {
		config.RunningInterval = DefaultWatcherConfig().RunningInterval
	}
	if config.QueuedInterval <= 0 {
		config.QueuedInterval = DefaultWatcherConfig().QueuedInterval
	}
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = DefaultWatcherConfig().MaxConcurrent
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultWatcherConfig().MaxAttempts
	}

	return &Watcher{
		config:     config,
		source:     source,
		processor:  processor,
		logger:     logging.Component("job-watcher"),
		pollSem:    make(chan struct{}, config.MaxConcurrent),
		pollStates: make(map[string]*jobPollState),
	}
}

// Start begins the watch loop.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return ErrWatcherAlreadyRunning
	}

	w.ctx, w.cancel = context.WithCancel(ctx)
	w.running = true

	w.logger.Info().
		Dur("running_interval", w.config.RunningInterval).
		Dur("queued_interval", w.config.QueuedInterval).
		Int("max_concurrent", w.config.MaxConcurrent).
		Msg("job watcher starting")

	w.wg.Add(1)
	go w.runLoop()

	return nil
}

// Stop halts the watch loop and waits for in-flight processing.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return ErrWatcherNotRunning
	}

	w.logger.Info().Msg("job watcher stopping")
	w.cancel()
	w.running = false
	w.mu.Unlock()

	w.wg.Wait()
	w.logger.Info().Msg("job watcher stopped")
	return nil
}

// IsRunning returns true if the watcher is running.
func (w *Watcher) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// runLoop is the main watch loop.
func (w *Watcher) runLoop() {
	defer w.wg.Done()

	// Use the shortest interval as the tick interval
	ticker := time.NewTicker(w.config.RunningInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.pollTick()
		}
	}
}

// pollTick performs one watch cycle.
func (w *Watcher) pollTick() {
	ctx := w.ctx

	all, err := w.source.List(ctx)
	if err != nil {
		w.logger.Error().Err(err).Msg("failed to list jobs")
		return
	}

	now := time.Now()

	for _, job := range all {
		if w.shouldPoll(job, now) {
			w.pollJob(job.ID)
		}
	}
}

// shouldPoll decides whether a job is due based on its state.
func (w *Watcher) shouldPoll(job *Job, now time.Time) bool {
	if job.State.Terminal() {
		return false
	}

	w.mu.RLock()
	state, exists := w.pollStates[job.ID]
	w.mu.RUnlock()

	if exists && state.attempts >= w.config.MaxAttempts {
		return false
	}

	var interval time.Duration
	if job.State == StateRunning {
		interval = w.config.RunningInterval
	} else {
		interval = w.config.QueuedInterval
	}

	if !exists {
		return true
	}

	return now.Sub(state.lastPolledAt) >= interval
}

// pollJob triggers processing for one job.
func (w *Watcher) pollJob(jobID string) {
	// Acquire semaphore
	select {
	case w.pollSem <- struct{}{}:
	default:
		// Max concurrent reached, skip this one
		return
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() { <-w.pollSem }()

		w.doPoll(jobID)
	}()
}

// doPoll runs the processor for one job and records the result.
func (w *Watcher) doPoll(jobID string) {
	ctx := w.ctx

	state, err := w.processor.Process(ctx, jobID)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		w.logger.Warn().Err(err).Str("job_id", jobID).Msg("job processing failed")
		return
	}

	w.mu.Lock()
	if w.pollStates[jobID] == nil {
		w.pollStates[jobID] = &jobPollState{jobID: jobID}
	}
	w.pollStates[jobID].lastPolledAt = time.Now()
	w.pollStates[jobID].lastState = state
	w.pollStates[jobID].attempts++
	exhausted := w.pollStates[jobID].attempts >= w.config.MaxAttempts && !state.Terminal()
	w.mu.Unlock()

	if exhausted {
		w.logger.Warn().Str("job_id", jobID).Int("attempts", w.config.MaxAttempts).
			Msg("giving up on job after max attempts")
	}

	w.logger.Debug().
		Str("job_id", jobID).
		Str("state", string(state)).
		Msg("processed job")
}

// PollNow triggers an immediate processing pass for one job.
func (w *Watcher) PollNow(jobID string) error {
	w.mu.RLock()
	running := w.running
	w.mu.RUnlock()

	if !running {
		return ErrWatcherNotRunning
	}

	w.pollJob(jobID)
	return nil
}

// LastPollTime returns when a job was last processed.
func (w *Watcher) LastPollTime(jobID string) (time.Time, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	state, exists := w.pollStates[jobID]
	if !exists {
		return time.Time{}, false
	}
	return state.lastPolledAt, true
}

// ClearPollState forgets a job, e.g. after it is deleted.
func (w *Watcher) ClearPollState(jobID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.pollStates, jobID)
}
