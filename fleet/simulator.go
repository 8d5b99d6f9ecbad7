package fleet

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
)

// now is swapped in tests
var now = time.Now

// Simulator owns the live roster and advances it on every tick.
type Simulator struct {
	policy Policy

	mu        sync.Mutex
	rng       RandomSource
	listeners []func(Roster)

	current  atomic.Pointer[Roster]
	ticks    atomic.Uint64
	lastTick atomic.Int64
}

// NewSimulator starts from a copy of initial.
func NewSimulator(initial Roster, policy Policy, rng RandomSource) *Simulator {
	if rng == nil {
		rng = NewSeededSource(now().UnixNano())
	}
	s := &Simulator{
		policy: policy.withDefaults(),
		rng:    rng,
	}
	r := initial.Clone()
	s.current.Store(&r)
	return s
}

// Policy returns the effective policy.
func (s *Simulator) Policy() Policy {
	return s.policy
}

// Snapshot returns the latest roster. Callers must treat it as read-only.
func (s *Simulator) Snapshot() Roster {
	return *s.current.Load()
}

// Ticks returns how many ticks have run.
func (s *Simulator) Ticks() uint64 {
	return s.ticks.Load()
}

// LastTick returns the time of the latest tick, zero before the first.
func (s *Simulator) LastTick() time.Time {
	ns := s.lastTick.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// OnTick registers fn to receive every new roster.
func (s *Simulator) OnTick(fn func(Roster)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Tick advances the roster once and publishes it.
func (s *Simulator) Tick() Roster {
	s.mu.Lock()
	next := Step(s.Snapshot(), s.policy, s.rng)
	s.current.Store(&next)
	s.ticks.Add(1)
	s.lastTick.Store(now().UnixNano())
	listeners := append([]func(Roster){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(next)
	}
	return next
}

// Run ticks on the policy interval until ctx is cancelled.
func (s *Simulator) Run(ctx context.Context) {
	ticker := time.NewTicker(s.policy.TickInterval)
	defer ticker.Stop()

	log.WithFields(log.Fields{
		"vehicles": len(s.Snapshot()),
		"interval": s.policy.TickInterval,
	}).Info("fleet simulator started")

	for {
		select {
		case <-ctx.Done():
			log.WithField("ticks", s.Ticks()).Info("fleet simulator stopped")
			return
		case <-ticker.C:
			r := s.Tick()
			log.WithField("statuses", r.CountByStatus()).Debug("fleet tick")
		}
	}
}
