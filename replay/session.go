package replay

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/theoremus-urban-solutions/fleetreplay/tracking"
)

// ErrSessionClosed is returned by Run once the session has been closed.
var ErrSessionClosed = errors.New("replay session closed")

var now = time.Now

// Snapshot is a consistent read of a session.
type Snapshot struct {
	ID         string             `json:"id"`
	VehicleID  string             `json:"vehicleId"`
	Date       string             `json:"date"`
	Samples    int                `json:"samples"`
	State      State              `json:"state"`
	Parameters PlaybackParameters `json:"parameters"`
	Labels     PlaybackLabels     `json:"labels"`
}

// Session owns the path, animator and transport of one replay.
//
// Thread safety: all methods are safe for concurrent use. Callbacks registered
// with Subscribe and OnComplete run outside the session lock.
type Session struct {
	mu        sync.Mutex
	id        string
	path      tracking.Path
	animator  *Animator
	transport *Transport

	subscribers []func(State)
	completions []func()
	completed   bool

	// wake is signalled after every transport action so a parked frame loop re-checks playback
	wake       chan struct{}
	lastActive time.Time

	cancel context.CancelFunc
	closed bool
}

// NewSession creates a paused session at progress 0.
func NewSession(path tracking.Path, opts AnimatorOptions) *Session {
	s := &Session{
		id:         uuid.New().String(),
		path:       path,
		wake:       make(chan struct{}, 1),
		lastActive: now(),
	}
	if opts.OnComplete != nil {
		s.completions = append(s.completions, opts.OnComplete)
	}
	opts.OnComplete = func() { s.completed = true }
	s.animator = NewAnimator(path.Waypoints, opts)
	s.transport = NewTransport(s.animator)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Path returns the waypoint sequence being replayed.
func (s *Session) Path() tracking.Path {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// Subscribe registers fn to receive the state after every processed frame.
func (s *Session) Subscribe(fn func(State)) {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}

// OnComplete registers fn to run once each time playback reaches the end.
func (s *Session) OnComplete(fn func()) {
	s.mu.Lock()
	s.completions = append(s.completions, fn)
	s.mu.Unlock()
}

// Transport runs fn with exclusive access to the transport.
func (s *Session) Transport(fn func(t *Transport)) Snapshot {
	s.mu.Lock()
	fn(s.transport)
	s.lastActive = now()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return snap
}

// Snapshot returns the current state, parameters and labels together.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = now()
	return s.snapshotLocked()
}

// LastActive returns the time of the latest transport action or snapshot read.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func (s *Session) playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.animator.Playing()
}

func (s *Session) snapshotLocked() Snapshot {
	st := s.animator.State()
	return Snapshot{
		ID:         s.id,
		VehicleID:  s.path.VehicleID,
		Date:       s.path.Date,
		Samples:    s.animator.Samples(),
		State:      st,
		Parameters: s.transport.Parameters(),
		Labels:     Labels(st, s.path),
	}
}

// Reload swaps the path and resets the animator with it.
func (s *Session) Reload(path tracking.Path) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.path = path
	s.transport.Pause()
	s.animator.SetWaypoints(path.Waypoints)
	s.animator.Reset()
}

// Frame processes one frame and notifies subscribers.
func (s *Session) Frame(at time.Duration) State {
	s.mu.Lock()
	s.completed = false
	st := s.animator.Frame(at)
	subs := append([]func(State){}, s.subscribers...)
	var done []func()
	if s.completed {
		done = append(done, s.completions...)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(st)
	}
	for _, fn := range done {
		fn()
	}
	return st
}

// Run pumps frames from src until ctx is cancelled, the source is exhausted or
// the session is closed. The source is only subscribed to while the animator
// is playing: on pause or completion the loop cancels it and parks until the
// next transport action starts playback again.
func (s *Session) Run(ctx context.Context, src FrameSource) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	defer cancel()

	for {
		if !s.playing() {
			s.clearOrigin()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-s.wake:
				continue
			}
		}

		exhausted, err := s.pump(ctx, src)
		if err != nil {
			s.clearOrigin()
			return err
		}
		if exhausted {
			return nil
		}
	}
}

// pump feeds frames until playback stops, the source closes or ctx ends.
func (s *Session) pump(ctx context.Context, src FrameSource) (exhausted bool, err error) {
	frameCtx, stop := context.WithCancel(ctx)
	defer stop()

	frames := src.Frames(frameCtx)
	for {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-s.wake:
			if !s.playing() {
				return false, nil
			}
		case at, ok := <-frames:
			if !ok {
				return true, nil
			}
			s.Frame(at)
			if !s.playing() {
				return false, nil
			}
		}
	}
}

// Close cancels the frame loop and clears the timing origin. It is safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.transport.Pause()
	s.animator.ClearOrigin()
	log.WithField("session", s.id).Debug("replay session closed")
}

func (s *Session) clearOrigin() {
	s.mu.Lock()
	s.animator.ClearOrigin()
	s.mu.Unlock()
}
