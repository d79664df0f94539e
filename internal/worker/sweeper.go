// Package worker hosts the background tasks of the chat backend.
// Currently that is only the liveness sweeper.
package worker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Store is the part of the hub the sweeper needs.
type Store interface {
	// EvictIdle removes members idle since before cutoff and deletes
	// rooms that lost their host or all their members. Returns evicted
	// member and deleted room counts.
	EvictIdle(cutoff time.Time) (int, int)
}

// Sweeper periodically evicts idle members and the rooms they leave
// behind. It runs on a fixed period independent of request traffic and
// is the only path that reclaims rooms.
type Sweeper struct {
	store       Store
	interval    time.Duration
	idleTimeout time.Duration
	log         *logrus.Entry
}

// NewSweeper creates a sweeper that runs every interval and evicts
// members idle for longer than idleTimeout.
func NewSweeper(store Store, interval, idleTimeout time.Duration, logger *logrus.Logger) *Sweeper {
	if store == nil {
		panic("Store cannot be nil for Sweeper")
	}
	if logger == nil {
		panic("logger cannot be nil for Sweeper")
	}
	return &Sweeper{
		store:       store,
		interval:    interval,
		idleTimeout: idleTimeout,
		log:         logger.WithField("component", "sweeper"),
	}
}

// Run sweeps on every tick until ctx is cancelled. A sweep pass never
// propagates a failure into the loop.
func (s *Sweeper) Run(ctx context.Context) error {
	s.log.WithFields(logrus.Fields{
		"interval":     s.interval.String(),
		"idle_timeout": s.idleTimeout.String(),
	}).Info("Sweeper running")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			s.Sweep(now)
		case <-ctx.Done():
			s.log.Info("Sweeper stopped")
			return nil
		}
	}
}

// Sweep performs a single eviction pass as of now.
func (s *Sweeper) Sweep(now time.Time) {
	members, rooms := s.store.EvictIdle(now.Add(-s.idleTimeout))
	if members > 0 || rooms > 0 {
		s.log.WithFields(logrus.Fields{
			"members_evicted": members,
			"rooms_removed":   rooms,
		}).Info("Sweep pass complete")
	}
}
