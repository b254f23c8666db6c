package control

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	"github.com/canopylabs/canopy-core/internal/infrastructure/config"
	"github.com/canopylabs/canopy-core/internal/infrastructure/store"
)

// userWorker is one user's serialized control lane: a cadence ticker,
// an on-demand trigger, and a circuit breaker guarding the cycle.
type userWorker struct {
	userID    string
	stationID string
	mappings  []Mapping
	trigger   chan struct{}
	breaker   *gobreaker.CircuitBreaker
}

// Scheduler runs control cycles on a fixed cadence and on demand.
//
// Thread Safety: each user gets exactly one worker goroutine, so no
// two cycles for the same user ever overlap. Cycles for different
// users run concurrently. Transient store failures are retried with
// exponential backoff inside the cycle's time budget; repeated cycle
// failures trip a per-user circuit breaker so a broken store is probed
// rather than hammered.
type Scheduler struct {
	controller   *Controller
	interval     time.Duration
	cycleTimeout time.Duration
	retryInitial time.Duration
	retryElapsed time.Duration
	workers      map[string]*userWorker
	logger       Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	started bool
	stopped bool
}

// NewScheduler creates a scheduler from control configuration.
func NewScheduler(cfg config.ControlConfig, controller *Controller) *Scheduler {
	s := &Scheduler{
		controller:   controller,
		interval:     time.Duration(cfg.Interval) * time.Second,
		cycleTimeout: time.Duration(cfg.CycleTimeout) * time.Second,
		retryInitial: time.Duration(cfg.Retry.InitialDelay) * time.Second,
		retryElapsed: time.Duration(cfg.Retry.MaxElapsed) * time.Second,
		workers:      make(map[string]*userWorker, len(cfg.Users)),
		logger:       noopLogger{},
	}

	for _, u := range cfg.Users {
		w := &userWorker{
			userID:    u.UserID,
			stationID: u.StationID,
			mappings:  make([]Mapping, 0, len(u.Mappings)),
			trigger:   make(chan struct{}, 1),
		}
		for _, m := range u.Mappings {
			w.mappings = append(w.mappings, Mapping{
				Quantity:   Quantity(m.Quantity),
				ActuatorID: m.ActuatorID,
				Polarity:   Polarity(m.Polarity),
			})
		}
		w.breaker = newBreaker(u.UserID, cfg.Breaker, s)
		s.workers[u.UserID] = w
	}
	return s
}

// SetLogger sets the logger for the scheduler.
func (s *Scheduler) SetLogger(logger Logger) {
	s.logger = logger
}

// newBreaker builds the per-user circuit breaker.
func newBreaker(userID string, cfg config.BreakerConfig, s *Scheduler) *gobreaker.CircuitBreaker {
	failures := uint32(cfg.Failures)
	if failures == 0 {
		failures = 5
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "control-" + userID,
		MaxRequests: 1,
		Timeout:     time.Duration(cfg.OpenFor) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			s.logger.Warn("control breaker state change",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

// Start launches one worker per configured user. Workers run until
// Stop is called or the parent context is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return errors.New("control: scheduler already started")
	}
	if s.stopped {
		return ErrSchedulerStopped
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)
	for _, w := range s.workers {
		s.wg.Add(1)
		go s.runWorker(ctx, w)
	}
	s.logger.Info("control scheduler started",
		"users", len(s.workers), "interval", s.interval.String())
	return nil
}

// Stop cancels all workers and waits for in-flight cycles to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started || s.stopped {
		s.stopped = true
		s.mu.Unlock()
		return
	}
	s.stopped = true
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
	s.logger.Info("control scheduler stopped")
}

// Trigger requests an immediate cycle for a user, on top of the fixed
// cadence. A trigger arriving while one is already pending coalesces
// with it; a trigger during a running cycle schedules exactly one more.
func (s *Scheduler) Trigger(userID string) error {
	w, ok := s.workers[userID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownUser, userID)
	}
	select {
	case w.trigger <- struct{}{}:
	default:
		// A cycle is already pending for this user.
	}
	return nil
}

// runWorker is the single goroutine serializing one user's cycles.
func (s *Scheduler) runWorker(ctx context.Context, w *userWorker) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx, w)
		case <-w.trigger:
			s.runOnce(ctx, w)
		}
	}
}

// runOnce executes one guarded, retried control cycle.
func (s *Scheduler) runOnce(ctx context.Context, w *userWorker) {
	_, err := w.breaker.Execute(func() (any, error) {
		return nil, s.cycleWithRetry(ctx, w)
	})
	if err == nil {
		return
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		s.logger.Debug("control cycle skipped, breaker open", "user", w.userID)
		return
	}
	// A failed cycle leaves actuator state untouched; the next
	// scheduled cycle re-evaluates from scratch.
	s.logger.Error("control cycle failed", "user", w.userID, "error", err)
}

// cycleWithRetry runs one cycle, retrying transient store failures
// with exponential backoff inside the cycle's time budget.
func (s *Scheduler) cycleWithRetry(ctx context.Context, w *userWorker) error {
	ctx, cancel := context.WithTimeout(ctx, s.cycleTimeout)
	defer cancel()

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.retryInitial
	policy.MaxElapsedTime = s.retryElapsed

	return backoff.Retry(func() error {
		err := s.controller.RunCycle(ctx, w.userID, w.stationID, w.mappings)
		if err == nil {
			return nil
		}

		// A partial failure changed physical state; retrying the whole
		// cycle could actuate twice, so it is never retried as a unit.
		var pf *PartialFailureError
		if errors.As(err, &pf) {
			return backoff.Permanent(err)
		}
		if errors.Is(err, store.ErrUnavailable) {
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(policy, ctx))
}
