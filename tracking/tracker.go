package tracking

import (
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/theoremus-urban-solutions/fleetreplay/geo"
)

const dateLayout = "2006-01-02"

var (
	// ErrInvalidDate is returned when the service date is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")
	// ErrEmptyVehicleID is returned when no vehicle id is supplied.
	ErrEmptyVehicleID = errors.New("vehicle id is required")
)

// GeneratorOptions tunes the synthesized track.
type GeneratorOptions struct {
	Origin           geo.Point
	Samples          int
	Interval         time.Duration
	StartOfDay       time.Duration
	StepMeters       float64
	MaxTurnDegrees   float64
	DwellProbability float64
}

// DefaultGeneratorOptions returns the options used when none are configured.
func DefaultGeneratorOptions() GeneratorOptions {
	return GeneratorOptions{
		Origin:           geo.Point{Lat: 25.0330, Lng: 121.5654},
		Samples:          50,
		Interval:         5 * time.Minute,
		StartOfDay:       6 * time.Hour,
		StepMeters:       180,
		MaxTurnDegrees:   25,
		DwellProbability: 0.1,
	}
}

// Generator synthesizes waypoint sequences. Output depends only on the
// options and the (vehicle, date) pair.
type Generator struct {
	opts GeneratorOptions
}

// NewGenerator creates a generator, filling zero-valued options with defaults.
func NewGenerator(opts GeneratorOptions) *Generator {
	def := DefaultGeneratorOptions()
	if opts.Origin == (geo.Point{}) {
		opts.Origin = def.Origin
	}
	if opts.Samples <= 0 {
		opts.Samples = def.Samples
	}
	if opts.Interval <= 0 {
		opts.Interval = def.Interval
	}
	if opts.StartOfDay < 0 || opts.StartOfDay >= 24*time.Hour {
		opts.StartOfDay = def.StartOfDay
	}
	if opts.StepMeters <= 0 {
		opts.StepMeters = def.StepMeters
	}
	if opts.MaxTurnDegrees <= 0 {
		opts.MaxTurnDegrees = def.MaxTurnDegrees
	}
	if opts.DwellProbability < 0 || opts.DwellProbability >= 1 {
		opts.DwellProbability = def.DwellProbability
	}
	return &Generator{opts: opts}
}

// Options returns the effective options.
func (g *Generator) Options() GeneratorOptions {
	return g.opts
}

// GeneratePath produces the waypoint sequence for a vehicle on a service date.
// Calling it twice with the same arguments yields identical paths.
func (g *Generator) GeneratePath(vehicleID, date string) (Path, error) {
	if vehicleID == "" {
		return Path{}, ErrEmptyVehicleID
	}
	day, err := time.ParseInLocation(dateLayout, date, time.UTC)
	if err != nil {
		return Path{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}

	rng := rand.New(rand.NewSource(pathSeed(vehicleID, date)))

	// Spread vehicles around the origin so that paths for different vehicles don't overlap
	start := geo.Destination(g.opts.Origin, rng.Float64()*360, 500+rng.Float64()*1500)
	heading := rng.Float64() * 360
	startTime := day.Add(g.opts.StartOfDay)

	waypoints := make([]Waypoint, 0, g.opts.Samples)
	pos := start
	for i := 0; i < g.opts.Samples; i++ {
		if i > 0 && rng.Float64() >= g.opts.DwellProbability {
			heading = geo.NormalizeDegrees(heading + (rng.Float64()*2-1)*g.opts.MaxTurnDegrees)
			step := g.opts.StepMeters * (0.5 + rng.Float64())
			pos = geo.Destination(pos, heading, step)
		}
		waypoints = append(waypoints, Waypoint{
			Latitude:  pos.Lat,
			Longitude: pos.Lng,
			Timestamp: startTime.Add(time.Duration(i) * g.opts.Interval).UTC().Format(time.RFC3339),
		})
	}

	log.WithFields(log.Fields{
		"vehicle": vehicleID,
		"date":    date,
		"samples": len(waypoints),
	}).Debug("generated path")

	return Path{VehicleID: vehicleID, Date: date, Waypoints: waypoints}, nil
}

func pathSeed(vehicleID, date string) int64 {
	h := fnv.New64a()
	h.Write([]byte(vehicleID))
	h.Write([]byte{0})
	h.Write([]byte(date))
	return int64(h.Sum64())
}
