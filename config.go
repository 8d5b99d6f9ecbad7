package fleetreplay

import (
	"github.com/theoremus-urban-solutions/fleetreplay/config"
	"github.com/theoremus-urban-solutions/fleetreplay/fleet"
	"github.com/theoremus-urban-solutions/fleetreplay/geo"
	"github.com/theoremus-urban-solutions/fleetreplay/replay"
	"github.com/theoremus-urban-solutions/fleetreplay/tracking"
)

// Config is the global application configuration
var Config config.AppConfig

// LoadAppConfig loads and validates the configuration into Config. An empty
// path searches the default locations.
func LoadAppConfig(path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	Config = cfg
	return nil
}

// GeneratorOptions maps replay settings onto the path generator
func GeneratorOptions(cfg config.ReplayConfig) tracking.GeneratorOptions {
	opts := tracking.DefaultGeneratorOptions()
	opts.Origin = geo.Point{Lat: cfg.OriginLat, Lng: cfg.OriginLng}
	opts.Samples = cfg.Samples
	opts.Interval = cfg.Interval()
	opts.StartOfDay = cfg.StartOffset()
	opts.StepMeters = cfg.StepMeters
	return opts
}

// AnimatorOptions maps replay settings onto the animator
func AnimatorOptions(cfg config.ReplayConfig) replay.AnimatorOptions {
	return replay.AnimatorOptions{
		ReferenceDuration: cfg.ReferenceDuration(),
		SmoothingGain:     cfg.SmoothingGain,
		Fallback:          replay.Position{Lat: cfg.OriginLat, Lng: cfg.OriginLng},
	}
}

// SimulatorPolicy maps simulator settings onto the perturbation policy
func SimulatorPolicy(cfg config.SimulatorConfig) fleet.Policy {
	p := fleet.DefaultPolicy(geo.Point{Lat: cfg.CenterLat, Lng: cfg.CenterLng})
	p.TickInterval = cfg.TickInterval()
	p.StatusChangeProbability = cfg.StatusChangeProbability
	p.MaxHeadingDelta = cfg.MaxHeadingDelta
	p.SpeedJitter = cfg.SpeedJitter
	p.MinSpeed = cfg.MinSpeed
	p.MaxSpeed = cfg.MaxSpeed
	p.HalfSpanLat = cfg.HalfSpanDegrees
	p.HalfSpanLng = cfg.HalfSpanDegrees
	return p
}
