package fleet

import (
	"math"
	"math/rand"
	"time"

	"github.com/theoremus-urban-solutions/fleetreplay/geo"
)

// RandomSource yields uniform values in [0,1).
type RandomSource interface {
	Float64() float64
}

// NewSeededSource returns a reproducible random source. It is not safe for
// concurrent use; Simulator serializes its calls.
func NewSeededSource(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Policy bounds the per-tick perturbation.
type Policy struct {
	TickInterval            time.Duration
	StatusChangeProbability float64
	MaxHeadingDelta         float64
	// PositionScale converts speed (km/h) into degrees moved per tick.
	PositionScale float64
	SpeedJitter   float64
	MinSpeed      float64
	MaxSpeed      float64

	Center      geo.Point
	HalfSpanLat float64
	HalfSpanLng float64
}

// DefaultPolicy returns the reference tuning around center.
func DefaultPolicy(center geo.Point) Policy {
	return Policy{
		TickInterval:            2 * time.Second,
		StatusChangeProbability: 0.05,
		MaxHeadingDelta:         15,
		PositionScale:           0.00002,
		SpeedJitter:             2,
		MinSpeed:                5,
		MaxSpeed:                45,
		Center:                  center,
		HalfSpanLat:             0.05,
		HalfSpanLng:             0.05,
	}
}

// withDefaults fills zero fields from DefaultPolicy.
func (p Policy) withDefaults() Policy {
	d := DefaultPolicy(p.Center)
	if p.TickInterval <= 0 {
		p.TickInterval = d.TickInterval
	}
	if p.StatusChangeProbability < 0 || p.StatusChangeProbability > 1 {
		p.StatusChangeProbability = d.StatusChangeProbability
	}
	if p.MaxHeadingDelta <= 0 {
		p.MaxHeadingDelta = d.MaxHeadingDelta
	}
	if p.PositionScale <= 0 {
		p.PositionScale = d.PositionScale
	}
	if p.SpeedJitter < 0 {
		p.SpeedJitter = d.SpeedJitter
	}
	if p.MaxSpeed <= 0 {
		p.MinSpeed, p.MaxSpeed = d.MinSpeed, d.MaxSpeed
	}
	if p.MinSpeed > p.MaxSpeed {
		p.MinSpeed = p.MaxSpeed
	}
	if p.HalfSpanLat <= 0 {
		p.HalfSpanLat = d.HalfSpanLat
	}
	if p.HalfSpanLng <= 0 {
		p.HalfSpanLng = d.HalfSpanLng
	}
	return p
}

// Contains reports whether pt lies inside the bounding box.
func (p Policy) Contains(pt geo.Point) bool {
	return math.Abs(pt.Lat-p.Center.Lat) <= p.HalfSpanLat &&
		math.Abs(pt.Lng-p.Center.Lng) <= p.HalfSpanLng
}

// Step computes the next roster. The input is not modified; every record in the
// result is freshly built.
func Step(roster Roster, policy Policy, rng RandomSource) Roster {
	next := make(Roster, len(roster))
	for i, v := range roster {
		next[i] = stepVehicle(v, policy, rng)
	}
	return next
}

func stepVehicle(v Vehicle, p Policy, rng RandomSource) Vehicle {
	if v.Status == StatusOffline {
		return v
	}

	if rng.Float64() < p.StatusChangeProbability {
		idx := int(rng.Float64() * float64(len(resampleStatuses)))
		if idx >= len(resampleStatuses) {
			idx = len(resampleStatuses) - 1
		}
		v.Status = resampleStatuses[idx]
	}

	switch v.Status {
	case StatusIdle:
		v.Speed = 0
		return v
	case StatusMoving:
	default:
		return v
	}

	v.Bearing = geo.NormalizeDegrees(v.Bearing + (rng.Float64()*2-1)*p.MaxHeadingDelta)

	dist := v.Speed * p.PositionScale
	rad := v.Bearing * math.Pi / 180
	v.Position.Lat += math.Cos(rad) * dist
	v.Position.Lng += math.Sin(rad) * dist

	// out of the box on an axis: jump to a random spot on that axis rather than stick to the edge
	if math.Abs(v.Position.Lat-p.Center.Lat) > p.HalfSpanLat {
		v.Position.Lat = p.Center.Lat + (rng.Float64()*2-1)*p.HalfSpanLat
	}
	if math.Abs(v.Position.Lng-p.Center.Lng) > p.HalfSpanLng {
		v.Position.Lng = p.Center.Lng + (rng.Float64()*2-1)*p.HalfSpanLng
	}

	v.Speed = geo.Clamp(v.Speed+(rng.Float64()*2-1)*p.SpeedJitter, p.MinSpeed, p.MaxSpeed)
	return v
}
