package replay

import (
	"context"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/theoremus-urban-solutions/fleetreplay/tracking"
)

var (
	// ErrSessionNotFound is returned for unknown or closed session ids.
	ErrSessionNotFound = errors.New("replay session not found")
	// ErrTooManySessions is returned by Open when the session limit is reached.
	ErrTooManySessions = errors.New("too many open replay sessions")
)

// RegistryOption configures a SessionRegistry.
type RegistryOption func(*SessionRegistry)

// WithMaxSessions caps the number of open sessions. Zero means no cap.
func WithMaxSessions(n int) RegistryOption {
	return func(r *SessionRegistry) { r.maxSessions = n }
}

// WithIdleTimeout closes sessions that see no transport action or snapshot
// read for d. Zero disables expiry.
func WithIdleTimeout(d time.Duration) RegistryOption {
	return func(r *SessionRegistry) { r.idleTimeout = d }
}

type entry struct {
	session *Session
	release func()
}

// SessionRegistry opens and tracks replay sessions by id.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]entry
	paths    *tracking.PathCache
	opts     AnimatorOptions
	frames   func() FrameSource

	maxSessions int
	idleTimeout time.Duration
}

// NewSessionRegistry creates a registry. When frames is nil sessions are not
// driven automatically and callers feed them with Session.Frame.
func NewSessionRegistry(paths *tracking.PathCache, opts AnimatorOptions, frames func() FrameSource, options ...RegistryOption) *SessionRegistry {
	r := &SessionRegistry{
		sessions: make(map[string]entry),
		paths:    paths,
		opts:     opts,
		frames:   frames,
	}
	for _, o := range options {
		o(r)
	}
	return r
}

// Open generates (or reuses) the path for the pair and starts a new session.
// Idle sessions are expired first so their slots count as free. The path stays
// pinned in the cache until the session is closed. The frame loop lives until
// ctx is done or the session is closed.
func (r *SessionRegistry) Open(ctx context.Context, vehicleID, date string) (*Session, error) {
	path, release, err := r.paths.Acquire(vehicleID, date)
	if err != nil {
		return nil, err
	}
	s := NewSession(path, r.opts)

	r.mu.Lock()
	expired := r.takeIdleLocked(now())
	if r.maxSessions > 0 && len(r.sessions) >= r.maxSessions {
		open := len(r.sessions)
		r.mu.Unlock()
		closeEntries(expired)
		release()
		log.WithField("open", open).Warn("replay session limit reached")
		return nil, ErrTooManySessions
	}
	r.sessions[s.ID()] = entry{session: s, release: release}
	r.mu.Unlock()
	closeEntries(expired)

	if r.frames != nil {
		go func() {
			if err := s.Run(ctx, r.frames()); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).WithField("session", s.ID()).Warn("replay frame loop stopped")
			}
		}()
	}

	log.WithFields(log.Fields{
		"session": s.ID(),
		"vehicle": vehicleID,
		"date":    date,
	}).Info("replay session opened")
	return s, nil
}

// Get looks up an open session.
func (r *SessionRegistry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e.session, nil
}

// Close stops and forgets a session.
func (r *SessionRegistry) Close(id string) error {
	r.mu.Lock()
	e, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	closeEntries([]entry{e})
	return nil
}

// CloseAll stops every session.
func (r *SessionRegistry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]entry)
	r.mu.Unlock()
	for _, e := range sessions {
		closeEntries([]entry{e})
	}
}

// ExpireIdle closes every session idle for at least the idle timeout and
// returns how many were closed.
func (r *SessionRegistry) ExpireIdle() int {
	r.mu.Lock()
	expired := r.takeIdleLocked(now())
	r.mu.Unlock()
	closeEntries(expired)
	return len(expired)
}

// RunExpiry calls ExpireIdle every interval until ctx is done. It returns
// immediately when expiry is disabled.
func (r *SessionRegistry) RunExpiry(ctx context.Context, interval time.Duration) {
	if r.idleTimeout <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.ExpireIdle(); n > 0 {
				log.WithField("closed", n).Info("expired idle replay sessions")
			}
		}
	}
}

// Len returns the number of open sessions.
func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *SessionRegistry) takeIdleLocked(at time.Time) []entry {
	if r.idleTimeout <= 0 {
		return nil
	}
	var expired []entry
	for id, e := range r.sessions {
		if at.Sub(e.session.LastActive()) >= r.idleTimeout {
			expired = append(expired, e)
			delete(r.sessions, id)
		}
	}
	return expired
}

func closeEntries(entries []entry) {
	for _, e := range entries {
		e.session.Close()
		e.release()
	}
}
