/*
Package replay animates a vehicle marker along a generated path.

The Animator is a frame-driven state machine. Each rendering callback hands it
a monotonic frame timestamp and receives the interpolated position, smoothed
bearing and normalized progress for that frame. Nothing in the animator reads a
wall clock, so tests can drive it by passing durations directly.

The Transport sits on top of an Animator and translates user intents (play,
pause, restart, seek, step, cycle speed) into animator changes. Labels derives
the elapsed/total/clock read-outs from an animator state and its path.

A Session ties one path, animator and transport together with a frame loop:

	reg := replay.NewSessionRegistry(cache, replay.AnimatorOptions{}, replay.TickerFrameFactory(60),
		replay.WithMaxSessions(64), replay.WithIdleTimeout(10*time.Minute))
	s, err := reg.Open(ctx, "truck-7", "2024-03-01")
	if err != nil {
		return err
	}
	s.Transport(func(t *replay.Transport) { t.Play() })

The frame loop only holds a frame source while the animator is playing; a
paused or completed session parks until the next transport action. Sessions
with no transport action or snapshot read within the idle timeout are closed
by the registry. Closing a session cancels its pending frame loop and clears
the timing origin.
*/
package replay
