package replay

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/fleetreplay/tracking"
)

func shortPath() tracking.Path {
	return tracking.Path{VehicleID: "bus-1", Date: "2024-03-01", Waypoints: line(4)}
}

func TestSession_RunWithManualFrames(t *testing.T) {
	completed := make(chan struct{})
	s := NewSession(shortPath(), AnimatorOptions{
		ReferenceDuration: time.Second,
		OnComplete:        func() { close(completed) },
	})
	var states []State
	s.Subscribe(func(st State) { states = append(states, st) })
	s.Transport(func(tr *Transport) { tr.Play() })

	frames := NewManualFrames(8)
	for _, at := range []time.Duration{0, 250 * time.Millisecond, 500 * time.Millisecond, time.Second, 2 * time.Second} {
		frames.Push(at)
	}

	runErr := make(chan error, 1)
	go func() { runErr <- s.Run(context.Background(), frames) }()

	select {
	case <-completed:
	case <-time.After(5 * time.Second):
		t.Fatal("replay did not complete")
	}
	require.Len(t, states, 4)
	assert.Equal(t, 0.0, states[0].Progress)
	assert.InDelta(t, 0.25, states[1].Progress, 1e-12)
	assert.True(t, states[3].Complete)
	// the loop stops reading frames once playback is complete
	assert.Len(t, frames.ch, 1)

	snap := s.Snapshot()
	assert.False(t, snap.Parameters.Playing)
	assert.Equal(t, 100.0, snap.Labels.Percent)
	assert.Equal(t, "bus-1", snap.VehicleID)
	assert.Equal(t, 4, snap.Samples)

	s.Close()
	assert.ErrorIs(t, <-runErr, context.Canceled)
}

func TestSession_RunReturnsWhenSourceExhausted(t *testing.T) {
	s := NewSession(shortPath(), AnimatorOptions{})
	s.Transport(func(tr *Transport) { tr.Play() })

	frames := NewManualFrames(2)
	frames.Push(0)
	frames.Push(time.Second)
	frames.Finish()

	require.NoError(t, s.Run(context.Background(), frames))
	assert.InDelta(t, 1.0/20, s.Snapshot().State.Progress, 1e-12)
}

type recordingFrames struct {
	subscribed chan context.Context
}

func (r *recordingFrames) Frames(ctx context.Context) <-chan time.Duration {
	r.subscribed <- ctx
	return make(chan time.Duration)
}

func TestSession_FrameLoopParksWhilePaused(t *testing.T) {
	s := NewSession(shortPath(), AnimatorOptions{})
	src := &recordingFrames{subscribed: make(chan context.Context, 4)}

	runErr := make(chan error, 1)
	go func() { runErr <- s.Run(context.Background(), src) }()

	waitFor := func(ch <-chan struct{}, what string) {
		t.Helper()
		select {
		case <-ch:
		case <-time.After(5 * time.Second):
			t.Fatal(what)
		}
	}
	nextSubscription := func() context.Context {
		t.Helper()
		select {
		case ctx := <-src.subscribed:
			return ctx
		case <-time.After(5 * time.Second):
			t.Fatal("frame source was not subscribed")
			return nil
		}
	}

	// paused sessions do not hold a frame source
	select {
	case <-src.subscribed:
		t.Fatal("frame source subscribed while paused")
	case <-time.After(20 * time.Millisecond):
	}

	s.Transport(func(tr *Transport) { tr.Play() })
	first := nextSubscription()

	s.Transport(func(tr *Transport) { tr.Pause() })
	waitFor(first.Done(), "frame source kept running after pause")

	s.Transport(func(tr *Transport) { tr.Restart() })
	second := nextSubscription()

	s.Transport(func(tr *Transport) { tr.Seek(1) })
	waitFor(second.Done(), "frame source kept running after seek")

	s.Close()
	assert.ErrorIs(t, <-runErr, context.Canceled)
}

func TestSession_CloseStopsRun(t *testing.T) {
	s := NewSession(shortPath(), AnimatorOptions{})
	s.Transport(func(tr *Transport) { tr.Play() })
	frames := NewManualFrames(1)

	var wg sync.WaitGroup
	var runErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		runErr = s.Run(context.Background(), frames)
	}()

	// wait for the loop to consume a frame so Run has installed its cancel func
	frames.Push(0)
	frames.Push(time.Millisecond)
	s.Close()
	wg.Wait()

	assert.True(t, errors.Is(runErr, context.Canceled))
	assert.ErrorIs(t, s.Run(context.Background(), frames), ErrSessionClosed)
	assert.False(t, s.Snapshot().Parameters.Playing)
}

func TestSession_RunStopsOnContext(t *testing.T) {
	s := NewSession(shortPath(), AnimatorOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.Run(ctx, NewManualFrames(0))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSession_ReloadResets(t *testing.T) {
	s := NewSession(shortPath(), AnimatorOptions{})
	s.Transport(func(tr *Transport) { tr.Seek(0.7) })

	next := tracking.Path{VehicleID: "bus-1", Date: "2024-03-02", Waypoints: waypoints([2]float64{5, 5}, [2]float64{5, 6})}
	s.Reload(next)

	snap := s.Snapshot()
	assert.Equal(t, 0.0, snap.State.Progress)
	assert.Equal(t, Position{Lat: 5, Lng: 5}, snap.State.Position)
	assert.Equal(t, "2024-03-02", snap.Date)
	assert.Equal(t, 2, snap.Samples)
}

func TestSession_TickerFrames(t *testing.T) {
	s := NewSession(shortPath(), AnimatorOptions{ReferenceDuration: 50 * time.Millisecond})
	done := make(chan struct{})
	s.OnComplete(func() { close(done) })
	s.Transport(func(tr *Transport) { tr.Play() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go func() { _ = s.Run(ctx, TickerFrames{FPS: 200}) }()

	select {
	case <-done:
	case <-ctx.Done():
		t.Fatal("replay did not complete")
	}
	assert.True(t, s.Snapshot().State.Complete)
	s.Close()
}

func TestSession_LastActiveTracksReadsAndActions(t *testing.T) {
	clock := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	restore := now
	now = func() time.Time { return clock }
	defer func() { now = restore }()

	s := NewSession(shortPath(), AnimatorOptions{})
	assert.Equal(t, clock, s.LastActive())

	clock = clock.Add(time.Minute)
	s.Frame(0)
	assert.Equal(t, clock.Add(-time.Minute), s.LastActive(), "frames are not client activity")

	s.Snapshot()
	assert.Equal(t, clock, s.LastActive())

	clock = clock.Add(time.Minute)
	s.Transport(func(tr *Transport) { tr.Play() })
	assert.Equal(t, clock, s.LastActive())
}

func TestSessionIDsAreUnique(t *testing.T) {
	a := NewSession(shortPath(), AnimatorOptions{})
	b := NewSession(shortPath(), AnimatorOptions{})
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Len(t, a.ID(), 36)
}
