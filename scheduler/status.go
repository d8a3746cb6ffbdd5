package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alex-pricope/online-voting-system/logging"
	"github.com/alex-pricope/online-voting-system/storage"
	"github.com/jonboulle/clockwork"
)

const DefaultInterval = time.Minute

var ErrAlreadyRunning = errors.New("status scheduler is already running")

type SweepResult struct {
	RanAt   time.Time
	Started int
	Ended   int
}

// StatusScheduler moves polls forward through their lifecycle on a fixed
// interval: not_started polls whose window opened become in_progress and
// polls whose end time passed become ended.
type StatusScheduler struct {
	polls    storage.PollStorage
	clock    clockwork.Clock
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewStatusScheduler(polls storage.PollStorage, clock clockwork.Clock, interval time.Duration) *StatusScheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &StatusScheduler{
		polls:    polls,
		clock:    clock,
		interval: interval,
	}
}

// Start runs one sweep right away and then one per interval until ctx is
// cancelled or Stop is called.
func (s *StatusScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	ticker := s.clock.NewTicker(s.interval)
	go s.loop(ctx, ticker, s.done)

	logging.Log.Infof("SWEEP: scheduler started with interval %s", s.interval)
	return nil
}

// Stop cancels the loop and waits for an in-flight sweep to finish.
func (s *StatusScheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	logging.Log.Info("SWEEP: scheduler stopped")
}

func (s *StatusScheduler) loop(ctx context.Context, ticker clockwork.Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.tick(ctx)
		}
	}
}

func (s *StatusScheduler) tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			logging.Log.Errorf("SWEEP: recovered from panic: %v", r)
		}
	}()

	if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
		logging.Log.Errorf("SWEEP: run failed, retrying next tick: %v", err)
	}
}

// RunOnce performs a single sweep at the clock's current time. The end pass
// runs even when the start pass fails.
func (s *StatusScheduler) RunOnce(ctx context.Context) (SweepResult, error) {
	now := s.clock.Now().UTC()
	result := SweepResult{RanAt: now}

	var errs []error
	started, err := s.polls.StartDue(ctx, now)
	if err != nil {
		errs = append(errs, fmt.Errorf("start due polls: %w", err))
	}
	result.Started = started

	ended, err := s.polls.EndDue(ctx, now)
	if err != nil {
		errs = append(errs, fmt.Errorf("end due polls: %w", err))
	}
	result.Ended = ended

	if result.Started > 0 || result.Ended > 0 {
		logging.Log.Infof("SWEEP: at %s started %d and ended %d polls", now.Format(time.RFC3339), result.Started, result.Ended)
	} else {
		logging.Log.Debugf("SWEEP: at %s nothing to update", now.Format(time.RFC3339))
	}
	return result, errors.Join(errs...)
}
