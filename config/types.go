package config

import "time"

// ServerConfig contains server configuration
type ServerConfig struct {
	Port              int `yaml:"port" validate:"gte=0,lte=65535"`
	ShutdownTimeoutMS int `yaml:"shutdownTimeoutMS" validate:"gte=0"`
}

// LoggingConfig contains log level and optional rotating file output
type LoggingConfig struct {
	Level      string `yaml:"level" validate:"omitempty,oneof=DEBUG INFO WARN ERROR"`
	FilePath   string `yaml:"filePath"`
	MaxSizeMB  int    `yaml:"maxSizeMB" validate:"gte=0"`
	MaxBackups int    `yaml:"maxBackups" validate:"gte=0"`
	MaxAgeDays int    `yaml:"maxAgeDays" validate:"gte=0"`
}

// ReplayConfig contains path generation and animation settings
type ReplayConfig struct {
	ReferenceDurationMS int     `yaml:"referenceDurationMS" validate:"gte=0"`
	SmoothingGain       float64 `yaml:"smoothingGain" validate:"gte=0"`
	FPS                 int     `yaml:"fps" validate:"gte=0,lte=240"`
	Samples             int     `yaml:"samples" validate:"gte=0,lte=10000"`
	IntervalSeconds     int     `yaml:"intervalSeconds" validate:"gte=0"`
	StartOfDay          string  `yaml:"startOfDay" validate:"omitempty,datetime=15:04"`
	StepMeters          float64 `yaml:"stepMeters" validate:"gte=0"`
	OriginLat           float64 `yaml:"originLat" validate:"gte=-90,lte=90"`
	OriginLng           float64 `yaml:"originLng" validate:"gte=-180,lte=180"`
	MaxSessions         int     `yaml:"maxSessions" validate:"gte=0"`
	IdleTimeoutSeconds  int     `yaml:"idleTimeoutSeconds" validate:"gte=0"`
	MaxCachedPaths      int     `yaml:"maxCachedPaths" validate:"gte=0"`
}

// SimulatorConfig contains fleet perturbation settings
type SimulatorConfig struct {
	TickIntervalMS          int     `yaml:"tickIntervalMS" validate:"gte=0"`
	StatusChangeProbability float64 `yaml:"statusChangeProbability" validate:"gte=0,lte=1"`
	MaxHeadingDelta         float64 `yaml:"maxHeadingDelta" validate:"gte=0,lte=180"`
	SpeedJitter             float64 `yaml:"speedJitter" validate:"gte=0"`
	MinSpeed                float64 `yaml:"minSpeed" validate:"gte=0"`
	MaxSpeed                float64 `yaml:"maxSpeed" validate:"gte=0"`
	CenterLat               float64 `yaml:"centerLat" validate:"gte=-90,lte=90"`
	CenterLng               float64 `yaml:"centerLng" validate:"gte=-180,lte=180"`
	HalfSpanDegrees         float64 `yaml:"halfSpanDegrees" validate:"gte=0,lte=10"`
	Seed                    int64   `yaml:"seed"`
}

// FeedConfig contains the optional GTFS-RT roster source and SIRI producer settings
type FeedConfig struct {
	VehiclePositionsURL string `yaml:"vehiclePositionsURL" validate:"omitempty,url"`
	TimeoutMS           int    `yaml:"timeoutMS" validate:"gte=0"`
	Codespace           string `yaml:"codespace"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Replay    ReplayConfig    `yaml:"replay"`
	Simulator SimulatorConfig `yaml:"simulator"`
	Feed      FeedConfig      `yaml:"feed"`
}

// ReferenceDuration returns the full traversal time at speed 1
func (r ReplayConfig) ReferenceDuration() time.Duration {
	return time.Duration(r.ReferenceDurationMS) * time.Millisecond
}

// Interval returns the spacing between generated waypoints
func (r ReplayConfig) Interval() time.Duration {
	return time.Duration(r.IntervalSeconds) * time.Second
}

// StartOffset returns StartOfDay as an offset from midnight
func (r ReplayConfig) StartOffset() time.Duration {
	t, err := time.Parse("15:04", r.StartOfDay)
	if err != nil {
		return 0
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute
}

// IdleTimeout returns how long a replay session may go without a transport
// action or snapshot read before it is closed
func (r ReplayConfig) IdleTimeout() time.Duration {
	return time.Duration(r.IdleTimeoutSeconds) * time.Second
}

// TickInterval returns the simulator cadence
func (s SimulatorConfig) TickInterval() time.Duration {
	return time.Duration(s.TickIntervalMS) * time.Millisecond
}

// Timeout returns the feed fetch timeout
func (f FeedConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutMS) * time.Millisecond
}
