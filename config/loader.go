package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultPaths are searched in order when no explicit path is given
var DefaultPaths = []string{"config.yml", "./config/config.yml"}

// Load reads, validates and defaults the configuration at path. An empty path
// searches DefaultPaths; when none exists the defaults are returned.
func Load(path string) (AppConfig, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return AppConfig{}, fmt.Errorf("failed to read config: %w", err)
		}
		return Parse(data)
	}
	for _, p := range DefaultPaths {
		data, err := os.ReadFile(p)
		if err == nil {
			return Parse(data)
		}
		if !errors.Is(err, os.ErrNotExist) {
			return AppConfig{}, fmt.Errorf("failed to read config %s: %w", p, err)
		}
	}
	return Parse(nil)
}

// Parse decodes YAML, validates it and applies defaults
func Parse(data []byte) (AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("failed to parse config: %w", err)
	}
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return AppConfig{}, fmt.Errorf("invalid config: %w", err)
	}
	applyDefaults(&cfg)
	if cfg.Simulator.MinSpeed > cfg.Simulator.MaxSpeed {
		return AppConfig{}, fmt.Errorf("invalid config: simulator minSpeed %.1f exceeds maxSpeed %.1f",
			cfg.Simulator.MinSpeed, cfg.Simulator.MaxSpeed)
	}
	return cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 16181
	}
	if cfg.Server.ShutdownTimeoutMS == 0 {
		cfg.Server.ShutdownTimeoutMS = 10000
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "INFO"
	}
	if cfg.Logging.MaxSizeMB == 0 {
		cfg.Logging.MaxSizeMB = 100
	}
	if cfg.Logging.MaxBackups == 0 {
		cfg.Logging.MaxBackups = 5
	}
	if cfg.Logging.MaxAgeDays == 0 {
		cfg.Logging.MaxAgeDays = 28
	}

	r := &cfg.Replay
	if r.ReferenceDurationMS == 0 {
		r.ReferenceDurationMS = 20000
	}
	if r.SmoothingGain == 0 {
		r.SmoothingGain = 8
	}
	if r.FPS == 0 {
		r.FPS = 60
	}
	if r.Samples == 0 {
		r.Samples = 50
	}
	if r.IntervalSeconds == 0 {
		r.IntervalSeconds = 300
	}
	if r.StartOfDay == "" {
		r.StartOfDay = "06:00"
	}
	if r.StepMeters == 0 {
		r.StepMeters = 180
	}
	if r.OriginLat == 0 && r.OriginLng == 0 {
		r.OriginLat, r.OriginLng = 25.0330, 121.5654
	}
	if r.MaxSessions == 0 {
		r.MaxSessions = 64
	}
	if r.IdleTimeoutSeconds == 0 {
		r.IdleTimeoutSeconds = 600
	}
	if r.MaxCachedPaths == 0 {
		r.MaxCachedPaths = 1024
	}

	s := &cfg.Simulator
	if s.TickIntervalMS == 0 {
		s.TickIntervalMS = 2000
	}
	if s.StatusChangeProbability == 0 {
		s.StatusChangeProbability = 0.05
	}
	if s.MaxHeadingDelta == 0 {
		s.MaxHeadingDelta = 15
	}
	if s.SpeedJitter == 0 {
		s.SpeedJitter = 2
	}
	if s.MaxSpeed == 0 {
		s.MaxSpeed = 45
		if s.MinSpeed == 0 {
			s.MinSpeed = 5
		}
	}
	if s.CenterLat == 0 && s.CenterLng == 0 {
		s.CenterLat, s.CenterLng = r.OriginLat, r.OriginLng
	}
	if s.HalfSpanDegrees == 0 {
		s.HalfSpanDegrees = 0.05
	}

	if cfg.Feed.TimeoutMS == 0 {
		cfg.Feed.TimeoutMS = 5000
	}
	if cfg.Feed.Codespace == "" {
		cfg.Feed.Codespace = "FLEET"
	}
}
