package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	lib "github.com/theoremus-urban-solutions/fleetreplay"
	"github.com/theoremus-urban-solutions/fleetreplay/fleet"
	"github.com/theoremus-urban-solutions/fleetreplay/formatter"
	"github.com/theoremus-urban-solutions/fleetreplay/gtfsrt"
	"github.com/theoremus-urban-solutions/fleetreplay/replay"
	"github.com/theoremus-urban-solutions/fleetreplay/tracking"
)

func main() {
	configPath := flag.String("config", "", "path to config.yml (defaults to ./config.yml)")
	mode := flag.String("mode", "serve", "serve|replay|simulate")
	vehicle := flag.String("vehicle", "truck-01", "vehicle id to replay")
	date := flag.String("date", time.Now().Format("2006-01-02"), "replay date (YYYY-MM-DD)")
	speed := flag.Float64("speed", 1, "replay speed multiplier")
	ticks := flag.Int("ticks", 5, "number of simulator ticks to print")
	format := flag.String("format", "json", "json|xml|pb")
	roster := flag.String("roster", "", "GTFS-RT VehiclePositions URL or file for the initial fleet (overrides config)")
	flag.Parse()

	if err := lib.LoadAppConfig(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg := lib.Config
	if err := lib.InitLogging(cfg.Logging); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var err error
	switch *mode {
	case "serve":
		err = serve(ctx, cancel, *roster)
	case "replay":
		err = runReplay(ctx, *vehicle, *date, *speed, *format)
	case "simulate":
		err = simulate(ctx, *roster, *ticks, *format)
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil {
		log.WithError(err).Error("fleetreplay failed")
		os.Exit(1)
	}
}

func initialRoster(ctx context.Context, override string) (fleet.Roster, error) {
	cfg := lib.Config
	if override == "" {
		return lib.LoadInitialRoster(ctx, cfg), nil
	}
	return newFetcher(cfg.Feed.Timeout()).fetchRoster(ctx, override)
}

func serve(ctx context.Context, stop context.CancelFunc, rosterSource string) error {
	cfg := lib.Config
	roster, err := initialRoster(ctx, rosterSource)
	if err != nil {
		return err
	}

	svc := lib.NewService(ctx, cfg, roster, nil, replay.TickerFrameFactory(cfg.Replay.FPS))
	go svc.Run(ctx)
	lib.StartServer(svc)
	log.WithFields(log.Fields{"vehicles": len(roster), "tick": svc.Simulator.Policy().TickInterval}).Info("fleet simulator running")

	lib.HandleGracefulShutdown(stop, time.Duration(cfg.Server.ShutdownTimeoutMS)*time.Millisecond)
	return nil
}

func runReplay(ctx context.Context, vehicleID, date string, speed float64, format string) error {
	cfg := lib.Config
	path, err := tracking.NewGenerator(lib.GeneratorOptions(cfg.Replay)).GeneratePath(vehicleID, date)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	session := replay.NewSession(path, lib.AnimatorOptions(cfg.Replay))
	defer session.Close()

	frames := 0
	session.Subscribe(func(st replay.State) {
		frames++
		if frames%cfg.Replay.FPS != 0 {
			return
		}
		labels := replay.Labels(st, path)
		log.WithFields(log.Fields{
			"elapsed": labels.Elapsed,
			"clock":   labels.Clock,
			"percent": fmt.Sprintf("%.1f", labels.Percent),
			"bearing": fmt.Sprintf("%.0f", st.Bearing),
		}).Info("replay progress")
	})
	session.OnComplete(cancel)

	log.WithFields(log.Fields{
		"vehicle":  vehicleID,
		"date":     date,
		"samples":  path.Len(),
		"duration": path.Duration(),
		"speed":    speed,
	}).Info("replay started")
	session.Transport(func(t *replay.Transport) {
		t.SetSpeed(speed)
		t.Play()
	})

	if err := session.Run(ctx, replay.TickerFrames{FPS: cfg.Replay.FPS}); err != nil && err != context.Canceled {
		return err
	}

	snap := session.Snapshot()
	log.WithField("labels", snap.Labels).Info("replay finished")
	return writeReplay(snap, format)
}

func writeReplay(snap replay.Snapshot, format string) error {
	now := time.Now()
	switch format {
	case "json":
		return json.NewEncoder(os.Stdout).Encode(snap)
	case "xml":
		vm := lib.BuildReplayVehicleMonitoring(snap, now, lib.Config.Feed.Codespace)
		res := formatter.WrapVehicleMonitoringResponse(vm, now, lib.Config.Feed.Codespace)
		_, err := os.Stdout.Write(formatter.NewResponseBuilder().BuildXML(res))
		return err
	default:
		return fmt.Errorf("format %q is not supported for replay", format)
	}
}

func simulate(ctx context.Context, rosterSource string, ticks int, format string) error {
	cfg := lib.Config
	roster, err := initialRoster(ctx, rosterSource)
	if err != nil {
		return err
	}

	var rng fleet.RandomSource
	if cfg.Simulator.Seed != 0 {
		rng = fleet.NewSeededSource(cfg.Simulator.Seed)
	}
	sim := fleet.NewSimulator(roster, lib.SimulatorPolicy(cfg.Simulator), rng)

	for i := 0; i < ticks; i++ {
		snap := sim.Tick()
		if err := writeRoster(snap, sim.LastTick(), format, i == ticks-1); err != nil {
			return err
		}
	}
	return nil
}

// writeRoster prints one snapshot. The protobuf feed is binary, so only the last one is written.
func writeRoster(roster fleet.Roster, at time.Time, format string, last bool) error {
	codespace := lib.Config.Feed.Codespace
	switch format {
	case "json":
		vm := lib.BuildFleetVehicleMonitoring(roster, at, lib.Config.Simulator.TickInterval(), codespace)
		buf, err := formatter.NewResponseBuilder().BuildJSON(formatter.WrapVehicleMonitoringResponse(vm, at, codespace))
		if err != nil {
			return err
		}
		fmt.Println(string(buf))
	case "xml":
		vm := lib.BuildFleetVehicleMonitoring(roster, at, lib.Config.Simulator.TickInterval(), codespace)
		fmt.Println(string(formatter.NewResponseBuilder().BuildXML(formatter.WrapVehicleMonitoringResponse(vm, at, codespace))))
	case "pb":
		if !last {
			return nil
		}
		buf, err := gtfsrt.MarshalRoster(roster, at)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(buf)
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	return nil
}
