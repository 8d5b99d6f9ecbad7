package fleetreplay

import (
	"encoding/json"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/theoremus-urban-solutions/fleetreplay/fleet"
	"github.com/theoremus-urban-solutions/fleetreplay/formatter"
	"github.com/theoremus-urban-solutions/fleetreplay/gtfsrt"
)

const (
	formatJSON = "json"
	formatXML  = "xml"
)

type rosterResponse struct {
	Timestamp string       `json:"timestamp"`
	Tick      uint64       `json:"tick"`
	Vehicles  fleet.Roster `json:"vehicles"`
}

func (s *Service) handleFleetVehicles(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	resp := rosterResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Tick:      s.Simulator.Ticks(),
		Vehicles:  s.Simulator.Snapshot(),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Service) handleVehiclePositionsPB(w http.ResponseWriter, r *http.Request) {
	buf, err := s.responses.Get(func(roster fleet.Roster) ([]byte, error) {
		return gtfsrt.MarshalRoster(roster, s.Simulator.LastTick())
	}, "gtfsrt")
	if err != nil {
		log.WithError(err).Error("failed to encode vehicle positions")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/x-protobuf")
	_, _ = w.Write(buf)
}

func (s *Service) handleVehicleMonitoringJSON(w http.ResponseWriter, r *http.Request) {
	s.serveVehicleMonitoring(w, r, formatJSON)
}

func (s *Service) handleVehicleMonitoringXML(w http.ResponseWriter, r *http.Request) {
	s.serveVehicleMonitoring(w, r, formatXML)
}

func (s *Service) serveVehicleMonitoring(w http.ResponseWriter, r *http.Request, format string) {
	vehicleRef, status, err := parseVehicleMonitoring(queryParams(r.URL.Query()))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	buf, err := s.responses.Get(func(roster fleet.Roster) ([]byte, error) {
		at := s.Simulator.LastTick()
		if at.IsZero() {
			at = time.Now()
		}
		vm := BuildFleetVehicleMonitoring(roster, at, s.Simulator.Policy().TickInterval, s.Cfg.Feed.Codespace)
		vm = formatter.FilterVehicleMonitoring(vm, vehicleRef, status)
		res := formatter.WrapVehicleMonitoringResponse(vm, at, s.Cfg.Feed.Codespace)
		rb := formatter.NewResponseBuilder()
		if format == formatXML {
			return rb.BuildXML(res), nil
		}
		return rb.BuildJSON(res)
	}, "vm", format, vehicleRef, status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if format == formatXML {
		w.Header().Set("Content-Type", "application/xml")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	_, _ = w.Write(buf)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buildErrorPayload(msg))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
