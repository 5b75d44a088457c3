package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/lumenpulse/anchor/ports"
)

// DefaultSweepInterval is how often expired challenges are evicted.
const DefaultSweepInterval = time.Minute

// Sweeper periodically evicts expired challenges from the store. Expiry is
// also enforced synchronously at verification time, so the sweep only
// bounds memory; a failed sweep is logged and retried on the next tick.
type Sweeper struct {
	store    ports.ChallengeStore
	logger   *zap.Logger
	interval time.Duration

	stop chan struct{}
	done chan struct{}
}

// NewSweeper constructs a sweeper. It does not start sweeping until Start
// is called.
func NewSweeper(store ports.ChallengeStore, interval time.Duration, logger *zap.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{
		store:    store,
		logger:   logger,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the background sweep loop.
func (s *Sweeper) Start() {
	go s.run()
}

// Stop terminates the sweep loop and waits for it to exit.
func (s *Sweeper) Stop() {
	close(s.stop)
	<-s.done
}

func (s *Sweeper) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// sweep runs one eviction pass. A panicking store must not take the
// process down with it.
func (s *Sweeper) sweep() {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("challenge sweep panicked", zap.Any("panic", r))
		}
	}()

	removed, err := s.store.SweepExpired(context.Background())
	if err != nil {
		s.logger.Warn("challenge sweep failed", zap.Error(err))
		return
	}
	if removed > 0 {
		s.logger.Debug("evicted expired challenges", zap.Int("count", removed))
	}
}
