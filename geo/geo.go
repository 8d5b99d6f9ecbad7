package geo

import "math"

const earthRadiusMeters = 6371000.0

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Equal reports whether both coordinates are identical.
func (p Point) Equal(o Point) bool {
	return p.Lat == o.Lat && p.Lng == o.Lng
}

// Bearing calculates the initial bearing from one point to another in degrees [0,360).
// Coincident points return 0.
func Bearing(from, to Point) float64 {
	if from.Equal(to) {
		return 0
	}
	phi1 := toRadians(from.Lat)
	phi2 := toRadians(to.Lat)
	deltaLambda := toRadians(to.Lng - from.Lng)

	x := math.Sin(deltaLambda) * math.Cos(phi2)
	y := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(deltaLambda)

	return NormalizeDegrees(math.Atan2(x, y) * 180 / math.Pi)
}

// Lerp linearly interpolates between a and b. t is not clamped.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// LerpPoint interpolates both axes of a point.
func LerpPoint(a, b Point, t float64) Point {
	return Point{Lat: Lerp(a.Lat, b.Lat, t), Lng: Lerp(a.Lng, b.Lng, t)}
}

// EaseInOutCubic reshapes t so that velocity is near zero at both ends.
// Monotonic on [0,1] with fixed points at 0 and 1.
func EaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	v := -2*t + 2
	return 1 - v*v*v/2
}

// NormalizeDegrees wraps an angle into [0,360).
func NormalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg = 0
	}
	return deg
}

// SignedDelta returns the shortest signed rotation from one heading to another, in [-180,180].
func SignedDelta(from, to float64) float64 {
	d := math.Mod(to-from, 360)
	if d > 180 {
		d -= 360
	} else if d < -180 {
		d += 360
	}
	return d
}

// Clamp constrains a value between lo and hi
func Clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

// HaversineMeters calculates the great-circle distance between two points in meters
func HaversineMeters(a, b Point) float64 {
	phi1 := toRadians(a.Lat)
	phi2 := toRadians(b.Lat)
	deltaPhi := toRadians(b.Lat - a.Lat)
	deltaLambda := toRadians(b.Lng - a.Lng)

	h := math.Sin(deltaPhi/2)*math.Sin(deltaPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(deltaLambda/2)*math.Sin(deltaLambda/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

// Destination returns the point reached by travelling distanceMeters along bearing from origin.
func Destination(origin Point, bearing, distanceMeters float64) Point {
	delta := distanceMeters / earthRadiusMeters
	theta := toRadians(bearing)
	phi1 := toRadians(origin.Lat)
	lambda1 := toRadians(origin.Lng)

	phi2 := math.Asin(math.Sin(phi1)*math.Cos(delta) + math.Cos(phi1)*math.Sin(delta)*math.Cos(theta))
	lambda2 := lambda1 + math.Atan2(
		math.Sin(theta)*math.Sin(delta)*math.Cos(phi1),
		math.Cos(delta)-math.Sin(phi1)*math.Sin(phi2),
	)

	return Point{Lat: toDegrees(phi2), Lng: math.Mod(toDegrees(lambda2)+540, 360) - 180}
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func toDegrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
