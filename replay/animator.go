package replay

import (
	"math"
	"time"

	"github.com/theoremus-urban-solutions/fleetreplay/geo"
	"github.com/theoremus-urban-solutions/fleetreplay/tracking"
)

const (
	defaultReferenceDuration = 20 * time.Second
	defaultSmoothingGain     = 8.0
)

// Position is an interpolated marker location.
type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// State is the projection of the animator's progress onto its waypoints.
type State struct {
	Position     Position `json:"position"`
	Bearing      float64  `json:"bearing"`
	Progress     float64  `json:"progress"`
	SegmentIndex int      `json:"segmentIndex"`
	Complete     bool     `json:"complete"`
}

// AnimatorOptions configures an Animator. Zero values are replaced by defaults.
type AnimatorOptions struct {
	// ReferenceDuration is how long a full traversal takes at speed 1 (default 20s).
	ReferenceDuration time.Duration
	// SmoothingGain is the bearing smoothing rate per second (default 8).
	SmoothingGain float64
	// Fallback is reported when there are no waypoints.
	Fallback Position
	// OnComplete is called once when frame advancement reaches the end.
	OnComplete func()
}

// Animator advances progress along a waypoint sequence one frame at a time.
// It is not safe for concurrent use; Session serializes access.
type Animator struct {
	opts   AnimatorOptions
	points []geo.Point

	playing bool
	speed   float64

	progress float64
	state    State

	hasOrigin bool
	lastFrame time.Duration

	completionFired bool
	onFinish        func()
}

// NewAnimator creates a paused animator at progress 0.
func NewAnimator(waypoints []tracking.Waypoint, opts AnimatorOptions) *Animator {
	if opts.ReferenceDuration <= 0 {
		opts.ReferenceDuration = defaultReferenceDuration
	}
	if opts.SmoothingGain <= 0 || math.IsNaN(opts.SmoothingGain) {
		opts.SmoothingGain = defaultSmoothingGain
	}
	a := &Animator{opts: opts, speed: 1}
	a.points = toPoints(waypoints)
	a.Reset()
	return a
}

func toPoints(waypoints []tracking.Waypoint) []geo.Point {
	pts := make([]geo.Point, len(waypoints))
	for i, w := range waypoints {
		pts[i] = w.Point()
	}
	return pts
}

// Samples returns the number of waypoints.
func (a *Animator) Samples() int {
	return len(a.points)
}

// State returns the current projection.
func (a *Animator) State() State {
	return a.state
}

// Playing reports whether frames advance progress.
func (a *Animator) Playing() bool {
	return a.playing
}

// Speed returns the current speed multiplier.
func (a *Animator) Speed() float64 {
	return a.speed
}

// SetPlaying starts or pauses advancement. Starting when already complete is a no-op.
func (a *Animator) SetPlaying(playing bool) {
	if playing {
		if a.state.Complete {
			return
		}
		if !a.playing {
			a.hasOrigin = false
		}
		a.playing = true
		return
	}
	a.playing = false
	a.hasOrigin = false
}

// SetSpeed sets the multiplier. Non-positive and non-finite values are ignored.
func (a *Animator) SetSpeed(speed float64) {
	if speed <= 0 || math.IsNaN(speed) || math.IsInf(speed, 0) {
		return
	}
	a.speed = speed
}

// SetProgress jumps to a fraction of the path, clamped to [0,1] (NaN becomes 0).
// The bearing snaps to the segment's heading. Playing state is left untouched.
func (a *Animator) SetProgress(fraction float64) {
	if math.IsNaN(fraction) {
		fraction = 0
	}
	a.progress = geo.Clamp(fraction, 0, 1)
	if len(a.points) == 0 {
		a.progress = 0
	}
	if a.progress < 1 {
		a.completionFired = false
	}
	a.project()
	a.state.Bearing = a.targetBearing(a.state.SegmentIndex)
}

// Reset returns to progress 0 with the first segment's bearing and clears the
// timing origin. Calling it repeatedly has no further effect.
func (a *Animator) Reset() {
	a.progress = 0
	a.hasOrigin = false
	a.completionFired = false
	a.project()
	a.state.Bearing = a.targetBearing(0)
}

// SetWaypoints swaps the sequence. Progress is kept as is, so callers are expected
// to Reset alongside it.
func (a *Animator) SetWaypoints(waypoints []tracking.Waypoint) {
	a.points = toPoints(waypoints)
	if len(a.points) == 0 {
		a.progress = 0
	}
	bearing := a.state.Bearing
	a.project()
	a.state.Bearing = bearing
}

// ClearOrigin forgets the last frame timestamp so the next frame only re-establishes it.
func (a *Animator) ClearOrigin() {
	a.hasOrigin = false
}

// Frame processes one rendering callback at the monotonic timestamp at.
// The first frame after a start, resume, reset or close only records the origin.
func (a *Animator) Frame(at time.Duration) State {
	if !a.playing || len(a.points) == 0 {
		return a.state
	}
	if !a.hasOrigin {
		a.hasOrigin = true
		a.lastFrame = at
		return a.state
	}

	dt := (at - a.lastFrame).Seconds()
	a.lastFrame = at
	if dt <= 0 {
		return a.state
	}

	rate := 1 / a.opts.ReferenceDuration.Seconds()
	a.progress = math.Min(1, a.progress+rate*a.speed*dt)
	a.project()

	// smoothing uses the segment projected in this same frame
	target := a.targetBearing(a.state.SegmentIndex)
	factor := math.Min(1, dt*a.opts.SmoothingGain)
	a.state.Bearing = geo.NormalizeDegrees(a.state.Bearing + geo.SignedDelta(a.state.Bearing, target)*factor)

	if a.progress >= 1 {
		a.playing = false
		a.hasOrigin = false
		if !a.completionFired {
			a.completionFired = true
			if a.onFinish != nil {
				a.onFinish()
			}
			if a.opts.OnComplete != nil {
				a.opts.OnComplete()
			}
		}
	}
	return a.state
}

// project recomputes position, segment and completion from progress. Bearing is left
// for the caller to settle.
func (a *Animator) project() {
	n := len(a.points)
	switch n {
	case 0:
		a.state = State{Position: a.opts.Fallback, Bearing: a.state.Bearing}
		return
	case 1:
		a.state = State{
			Position: Position{Lat: a.points[0].Lat, Lng: a.points[0].Lng},
			Progress: a.progress,
			Complete: a.progress >= 1,
			Bearing:  a.state.Bearing,
		}
		return
	}

	seg, local := segmentAt(a.progress, n)
	p := geo.LerpPoint(a.points[seg], a.points[seg+1], geo.EaseInOutCubic(local))
	a.state = State{
		Position:     Position{Lat: p.Lat, Lng: p.Lng},
		Bearing:      a.state.Bearing,
		Progress:     a.progress,
		SegmentIndex: seg,
		Complete:     a.progress >= 1,
	}
}

// segmentAt maps progress to min(floor(p*(n-1)), n-2) and the fraction within it.
func segmentAt(progress float64, n int) (int, float64) {
	scaled := progress * float64(n-1)
	seg := int(math.Floor(scaled))
	if seg > n-2 {
		seg = n - 2
	}
	if seg < 0 {
		seg = 0
	}
	return seg, geo.Clamp(scaled-float64(seg), 0, 1)
}

// targetBearing is the heading of segment i. Zero-length segments inherit the
// nearest earlier heading, then the nearest later one, then 0.
func (a *Animator) targetBearing(i int) float64 {
	if len(a.points) < 2 {
		return 0
	}
	for j := i; j >= 0; j-- {
		if !a.points[j].Equal(a.points[j+1]) {
			return geo.Bearing(a.points[j], a.points[j+1])
		}
	}
	for j := i + 1; j < len(a.points)-1; j++ {
		if !a.points[j].Equal(a.points[j+1]) {
			return geo.Bearing(a.points[j], a.points[j+1])
		}
	}
	return 0
}
