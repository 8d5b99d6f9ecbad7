package replay

import (
	"time"

	"github.com/theoremus-urban-solutions/fleetreplay/geo"
	"github.com/theoremus-urban-solutions/fleetreplay/tracking"
	"github.com/theoremus-urban-solutions/fleetreplay/utils"
)

const (
	minSpeed = 0.5
	maxSpeed = 4.0
)

// PlaybackParameters are the user-controlled playback settings.
type PlaybackParameters struct {
	Playing         bool    `json:"playing"`
	SpeedMultiplier float64 `json:"speedMultiplier"`
}

// Transport is the control surface over an Animator.
type Transport struct {
	animator *Animator
	params   PlaybackParameters
}

// NewTransport takes ownership of the animator's playback parameters.
func NewTransport(a *Animator) *Transport {
	t := &Transport{
		animator: a,
		params:   PlaybackParameters{Playing: a.Playing(), SpeedMultiplier: a.Speed()},
	}
	a.onFinish = func() { t.params.Playing = false }
	return t
}

// Parameters returns the current playback parameters.
func (t *Transport) Parameters() PlaybackParameters {
	return t.params
}

// Play starts playback. It does nothing once the path is complete until Restart or a seek.
func (t *Transport) Play() {
	t.animator.SetPlaying(true)
	t.params.Playing = t.animator.Playing()
}

// Pause stops playback.
func (t *Transport) Pause() {
	t.animator.SetPlaying(false)
	t.params.Playing = false
}

// Restart rewinds to the first waypoint and plays.
func (t *Transport) Restart() {
	t.animator.Reset()
	t.Play()
}

// Seek jumps to a fraction of the path and pauses.
func (t *Transport) Seek(fraction float64) {
	t.Pause()
	t.animator.SetProgress(fraction)
}

// Step moves by count samples (negative steps back). Like Seek it always
// pauses, even when playback was running. Paths with fewer than two samples
// have nowhere to step to, but playback still pauses.
func (t *Transport) Step(count int) {
	t.Pause()
	n := t.animator.Samples()
	if n < 2 {
		return
	}
	delta := float64(count) / float64(n-1)
	t.animator.SetProgress(geo.Clamp(t.animator.State().Progress+delta, 0, 1))
}

// CycleSpeed doubles the multiplier, wrapping from 4x back to 0.5x, and returns the new value.
func (t *Transport) CycleSpeed() float64 {
	next := t.params.SpeedMultiplier * 2
	if t.params.SpeedMultiplier >= maxSpeed {
		next = minSpeed
	}
	t.animator.SetSpeed(next)
	t.params.SpeedMultiplier = t.animator.Speed()
	return t.params.SpeedMultiplier
}

// SetSpeed sets an explicit multiplier; invalid values are ignored.
func (t *Transport) SetSpeed(speed float64) {
	t.animator.SetSpeed(speed)
	t.params.SpeedMultiplier = t.animator.Speed()
}

// PlaybackLabels are the read-outs shown next to the scrubber.
type PlaybackLabels struct {
	Elapsed string  `json:"elapsed"`
	Total   string  `json:"total"`
	Clock   string  `json:"clock"`
	Percent float64 `json:"percent"`
}

// Labels derives the read-outs from a state and its path.
func Labels(state State, path tracking.Path) PlaybackLabels {
	total := path.Duration()
	elapsed := time.Duration(float64(total) * state.Progress)

	clock := time.Time{}
	if first, ok := path.FirstTimestamp(); ok {
		clock = first.Add(elapsed)
	}

	return PlaybackLabels{
		Elapsed: utils.FormatHMS(elapsed),
		Total:   utils.FormatHMS(total),
		Clock:   utils.FormatClock(clock),
		Percent: state.Progress * 100,
	}
}
