package fleetreplay

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
)

var (
	server *http.Server
)

// NewRouter registers every endpoint of the service
func NewRouter(s *Service) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/fleet/vehicles.json", s.handleFleetVehicles)
	mux.HandleFunc("GET /api/fleet/vehicle-positions.pb", s.handleVehiclePositionsPB)
	mux.HandleFunc("GET /api/siri/vehicle-monitoring.json", s.handleVehicleMonitoringJSON)
	mux.HandleFunc("GET /api/siri/vehicle-monitoring.xml", s.handleVehicleMonitoringXML)
	mux.HandleFunc("GET /api/paths", s.handlePath)
	mux.HandleFunc("POST /api/replay", s.handleOpenReplay)
	mux.HandleFunc("GET /api/replay/{id}", s.handleGetReplay)
	mux.HandleFunc("DELETE /api/replay/{id}", s.handleCloseReplay)
	mux.HandleFunc("POST /api/replay/{id}/{action}", s.handleReplayAction)
	mux.HandleFunc("GET /api/replay/{id}/vehicle-monitoring.json", s.handleReplayVehicleMonitoringJSON)
	mux.HandleFunc("GET /api/replay/{id}/vehicle-monitoring.xml", s.handleReplayVehicleMonitoringXML)
	return mux
}

// StartServer serves the service on the configured port in the background
func StartServer(s *Service) {
	addr := fmt.Sprintf(":%d", s.Cfg.Server.Port)
	server = &http.Server{
		Addr:              addr,
		Handler:           NewRouter(s),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()
	log.WithField("addr", addr).Info("server listening")
}

// HandleGracefulShutdown blocks until SIGINT/SIGTERM, stops background work via
// stop and shuts the server down within timeout.
func HandleGracefulShutdown(stop context.CancelFunc, timeout time.Duration) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Info("shutdown signal received")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if server != nil {
		if err := server.Shutdown(ctx); err != nil {
			log.WithError(err).Error("server shutdown error")
		} else {
			log.Info("server shut down successfully")
		}
	}
}
