package fleetreplay

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/theoremus-urban-solutions/fleetreplay/config"
	"github.com/theoremus-urban-solutions/fleetreplay/fleet"
	"github.com/theoremus-urban-solutions/fleetreplay/geo"
	"github.com/theoremus-urban-solutions/fleetreplay/gtfsrt"
	"github.com/theoremus-urban-solutions/fleetreplay/replay"
	"github.com/theoremus-urban-solutions/fleetreplay/tracking"
)

// ErrTooManySessions is returned when the replay session limit is reached
var ErrTooManySessions = replay.ErrTooManySessions

// Service ties the simulator, path cache and replay sessions together for the HTTP surface.
type Service struct {
	Cfg       config.AppConfig
	Simulator *fleet.Simulator
	Paths     *tracking.PathCache
	Sessions  *replay.SessionRegistry

	ctx       context.Context
	responses *ResponseCache
}

// NewService builds a service around an initial roster. Sessions opened through
// it live until ctx is done. A nil rng uses the configured seed, or the clock when
// the seed is zero.
func NewService(ctx context.Context, cfg config.AppConfig, roster fleet.Roster, rng fleet.RandomSource, frames func() replay.FrameSource) *Service {
	if rng == nil && cfg.Simulator.Seed != 0 {
		rng = fleet.NewSeededSource(cfg.Simulator.Seed)
	}
	paths := tracking.NewPathCache(tracking.NewGenerator(GeneratorOptions(cfg.Replay)), cfg.Replay.MaxCachedPaths)
	sim := fleet.NewSimulator(roster, SimulatorPolicy(cfg.Simulator), rng)
	sessions := replay.NewSessionRegistry(paths, AnimatorOptions(cfg.Replay), frames,
		replay.WithMaxSessions(cfg.Replay.MaxSessions),
		replay.WithIdleTimeout(cfg.Replay.IdleTimeout()))
	return &Service{
		Cfg:       cfg,
		Simulator: sim,
		Paths:     paths,
		Sessions:  sessions,
		ctx:       ctx,
		responses: NewResponseCache(sim),
	}
}

// Run drives the simulator and idle session expiry until ctx is cancelled,
// then closes every replay session.
func (s *Service) Run(ctx context.Context) {
	go s.Sessions.RunExpiry(ctx, expiryInterval(s.Cfg.Replay.IdleTimeout()))
	s.Simulator.Run(ctx)
	s.Sessions.CloseAll()
}

// OpenReplay starts a session for a vehicle and date within the session limit.
func (s *Service) OpenReplay(vehicleID, date string) (*replay.Session, error) {
	return s.Sessions.Open(s.ctx, vehicleID, date)
}

func expiryInterval(idle time.Duration) time.Duration {
	interval := idle / 4
	if interval < time.Second {
		interval = time.Second
	}
	return interval
}

// LoadInitialRoster fetches the configured GTFS-RT roster, falling back to the
// built-in mock fleet when no feed is configured or the fetch fails.
func LoadInitialRoster(ctx context.Context, cfg config.AppConfig) fleet.Roster {
	center := geo.Point{Lat: cfg.Simulator.CenterLat, Lng: cfg.Simulator.CenterLng}
	if cfg.Feed.VehiclePositionsURL == "" {
		return fleet.DefaultRoster(center)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Feed.Timeout()+time.Second)
	defer cancel()
	roster, err := gtfsrt.NewClient(cfg.Feed.Timeout()).FetchRoster(ctx, cfg.Feed.VehiclePositionsURL)
	if err != nil {
		log.WithError(err).Warn("could not load roster feed, using mock fleet")
		return fleet.DefaultRoster(center)
	}
	return roster
}
