package tracking

import (
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/theoremus-urban-solutions/fleetreplay/geo"
)

// Waypoint is a single synthesized sample with an RFC3339 UTC timestamp.
type Waypoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp string  `json:"timestamp"`
}

// Point returns the waypoint coordinates.
func (w Waypoint) Point() geo.Point {
	return geo.Point{Lat: w.Latitude, Lng: w.Longitude}
}

// Time parses the waypoint timestamp. ok is false when the timestamp is malformed.
func (w Waypoint) Time() (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, w.Timestamp)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Path is the generator output for one vehicle on one service date.
type Path struct {
	VehicleID string     `json:"vehicleId"`
	Date      string     `json:"date"`
	Waypoints []Waypoint `json:"waypoints"`
}

// Len returns the number of waypoints.
func (p Path) Len() int {
	return len(p.Waypoints)
}

// Points returns the waypoint coordinates in order.
func (p Path) Points() []geo.Point {
	out := make([]geo.Point, len(p.Waypoints))
	for i, w := range p.Waypoints {
		out[i] = w.Point()
	}
	return out
}

// FirstTimestamp returns the time of the first waypoint.
func (p Path) FirstTimestamp() (time.Time, bool) {
	if len(p.Waypoints) == 0 {
		return time.Time{}, false
	}
	return p.Waypoints[0].Time()
}

// LastTimestamp returns the time of the last waypoint.
func (p Path) LastTimestamp() (time.Time, bool) {
	if len(p.Waypoints) == 0 {
		return time.Time{}, false
	}
	return p.Waypoints[len(p.Waypoints)-1].Time()
}

// Duration is the span between the first and last waypoint timestamps.
// Paths with fewer than two parseable timestamps have zero duration.
func (p Path) Duration() time.Duration {
	first, ok := p.FirstTimestamp()
	if !ok {
		return 0
	}
	last, ok := p.LastTimestamp()
	if !ok || last.Before(first) {
		return 0
	}
	return last.Sub(first)
}

// LengthMeters sums the great-circle length of every segment.
func (p Path) LengthMeters() float64 {
	total := 0.0
	for i := 1; i < len(p.Waypoints); i++ {
		total += geo.HaversineMeters(p.Waypoints[i-1].Point(), p.Waypoints[i].Point())
	}
	return total
}

// GeoJSON converts the path to a feature collection holding the full track as a
// LineString followed by one Point feature per waypoint.
func (p Path) GeoJSON() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	line := make(orb.LineString, 0, len(p.Waypoints))
	for _, w := range p.Waypoints {
		line = append(line, orb.Point{w.Longitude, w.Latitude})
	}
	track := geojson.NewFeature(line)
	track.Properties["vehicleId"] = p.VehicleID
	track.Properties["date"] = p.Date
	track.Properties["lengthMeters"] = p.LengthMeters()
	fc.Append(track)

	for i, w := range p.Waypoints {
		f := geojson.NewFeature(orb.Point{w.Longitude, w.Latitude})
		f.Properties["index"] = i
		f.Properties["timestamp"] = w.Timestamp
		fc.Append(f)
	}
	return fc
}
