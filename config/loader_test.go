package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)

	assert.Equal(t, 16181, cfg.Server.Port)
	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, 20*time.Second, cfg.Replay.ReferenceDuration())
	assert.Equal(t, 5*time.Minute, cfg.Replay.Interval())
	assert.Equal(t, 6*time.Hour, cfg.Replay.StartOffset())
	assert.Equal(t, 50, cfg.Replay.Samples)
	assert.Equal(t, 64, cfg.Replay.MaxSessions)
	assert.Equal(t, 10*time.Minute, cfg.Replay.IdleTimeout())
	assert.Equal(t, 1024, cfg.Replay.MaxCachedPaths)
	assert.Equal(t, 2*time.Second, cfg.Simulator.TickInterval())
	assert.Equal(t, 0.05, cfg.Simulator.StatusChangeProbability)
	assert.Equal(t, 5.0, cfg.Simulator.MinSpeed)
	assert.Equal(t, 45.0, cfg.Simulator.MaxSpeed)
	assert.Equal(t, cfg.Replay.OriginLat, cfg.Simulator.CenterLat)
	assert.Equal(t, "FLEET", cfg.Feed.Codespace)
}

func TestParse_Overrides(t *testing.T) {
	yml := `
server:
  port: 8080
logging:
  level: DEBUG
  filePath: /tmp/fleet.log
replay:
  referenceDurationMS: 5000
  startOfDay: "07:30"
simulator:
  tickIntervalMS: 500
  minSpeed: 10
  maxSpeed: 30
  seed: 42
feed:
  vehiclePositionsURL: https://example.com/vp.pb
`
	cfg, err := Parse([]byte(yml))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, "/tmp/fleet.log", cfg.Logging.FilePath)
	assert.Equal(t, 5*time.Second, cfg.Replay.ReferenceDuration())
	assert.Equal(t, 7*time.Hour+30*time.Minute, cfg.Replay.StartOffset())
	assert.Equal(t, 500*time.Millisecond, cfg.Simulator.TickInterval())
	assert.Equal(t, 10.0, cfg.Simulator.MinSpeed)
	assert.Equal(t, 30.0, cfg.Simulator.MaxSpeed)
	assert.Equal(t, int64(42), cfg.Simulator.Seed)
	assert.Equal(t, "https://example.com/vp.pb", cfg.Feed.VehiclePositionsURL)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yml  string
	}{
		{"bad yaml", "server: [port"},
		{"bad level", "logging:\n  level: TRACE\n"},
		{"probability above one", "simulator:\n  statusChangeProbability: 1.5\n"},
		{"max below min", "simulator:\n  minSpeed: 30\n  maxSpeed: 10\n"},
		{"bad url", "feed:\n  vehiclePositionsURL: not a url\n"},
		{"bad start of day", "replay:\n  startOfDay: \"6 am\"\n"},
		{"bad port", "server:\n  port: 70000\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yml))
			assert.Error(t, err)
		})
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9000\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)

	_, err = Load(filepath.Join(dir, "missing.yml"))
	assert.Error(t, err)
}

func TestLoad_NoFileFallsBackToDefaults(t *testing.T) {
	old := DefaultPaths
	defer func() { DefaultPaths = old }()
	DefaultPaths = []string{filepath.Join(t.TempDir(), "nope.yml")}

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 16181, cfg.Server.Port)
}

func TestParse_MinSpeedOnly(t *testing.T) {
	cfg, err := Parse([]byte("simulator:\n  minSpeed: 10\n"))
	require.NoError(t, err)
	assert.Equal(t, 10.0, cfg.Simulator.MinSpeed)
	assert.Equal(t, 45.0, cfg.Simulator.MaxSpeed)
}
