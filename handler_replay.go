package fleetreplay

import (
	"errors"
	"net/http"
	"time"

	"github.com/theoremus-urban-solutions/fleetreplay/formatter"
	"github.com/theoremus-urban-solutions/fleetreplay/replay"
	"github.com/theoremus-urban-solutions/fleetreplay/tracking"
	"github.com/theoremus-urban-solutions/fleetreplay/utils"
)

type pathResponse struct {
	VehicleID    string              `json:"vehicleId"`
	Date         string              `json:"date"`
	Samples      int                 `json:"samples"`
	Duration     string              `json:"duration"`
	Distance     string              `json:"distance"`
	LengthMeters float64             `json:"lengthMeters"`
	GeoJSON      interface{}         `json:"geojson"`
	Waypoints    []tracking.Waypoint `json:"waypoints"`
}

func (s *Service) handlePath(w http.ResponseWriter, r *http.Request) {
	vehicle, date, err := parseReplayTarget(queryParams(r.URL.Query()))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := s.Paths.Get(vehicle, date)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	length := p.LengthMeters()
	writeJSON(w, http.StatusOK, pathResponse{
		VehicleID:    p.VehicleID,
		Date:         p.Date,
		Samples:      p.Len(),
		Duration:     utils.FormatHMS(p.Duration()),
		Distance:     utils.PresentableDistance(length),
		LengthMeters: length,
		GeoJSON:      p.GeoJSON(),
		Waypoints:    p.Waypoints,
	})
}

func (s *Service) handleOpenReplay(w http.ResponseWriter, r *http.Request) {
	vehicle, date, err := parseReplayTarget(queryParams(r.URL.Query()))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	session, err := s.OpenReplay(vehicle, date)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	w.Header().Set("Location", "/api/replay/"+session.ID())
	writeJSON(w, http.StatusCreated, session.Snapshot())
}

func (s *Service) handleGetReplay(w http.ResponseWriter, r *http.Request) {
	session, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, session.Snapshot())
}

func (s *Service) handleCloseReplay(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Close(r.PathValue("id")); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleReplayAction(w http.ResponseWriter, r *http.Request) {
	session, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	params := queryParams(r.URL.Query())

	var action func(t *replay.Transport)
	switch r.PathValue("action") {
	case "play":
		action = (*replay.Transport).Play
	case "pause":
		action = (*replay.Transport).Pause
	case "restart":
		action = (*replay.Transport).Restart
	case "cycle-speed":
		action = func(t *replay.Transport) { t.CycleSpeed() }
	case "seek":
		fraction, err := parseFraction(params["fraction"])
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		action = func(t *replay.Transport) { t.Seek(fraction) }
	case "step":
		count, err := parseStepCount(params["count"])
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		action = func(t *replay.Transport) { t.Step(count) }
	default:
		writeError(w, http.StatusNotFound, "Unknown replay action: "+r.PathValue("action"))
		return
	}

	writeJSON(w, http.StatusOK, session.Transport(action))
}

func (s *Service) handleReplayVehicleMonitoringJSON(w http.ResponseWriter, r *http.Request) {
	s.serveReplayVehicleMonitoring(w, r, formatJSON)
}

func (s *Service) handleReplayVehicleMonitoringXML(w http.ResponseWriter, r *http.Request) {
	s.serveReplayVehicleMonitoring(w, r, formatXML)
}

func (s *Service) serveReplayVehicleMonitoring(w http.ResponseWriter, r *http.Request, format string) {
	session, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	now := time.Now()
	vm := BuildReplayVehicleMonitoring(session.Snapshot(), now, s.Cfg.Feed.Codespace)
	res := formatter.WrapVehicleMonitoringResponse(vm, now, s.Cfg.Feed.Codespace)
	rb := formatter.NewResponseBuilder()
	if format == formatXML {
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write(rb.BuildXML(res))
		return
	}
	buf, err := rb.BuildJSON(res)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(buf)
}

func (s *Service) lookupSession(w http.ResponseWriter, r *http.Request) (*replay.Session, bool) {
	session, err := s.Sessions.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return nil, false
	}
	return session, true
}

func statusForError(err error) int {
	var qe *QueryError
	switch {
	case errors.As(err, &qe),
		errors.Is(err, tracking.ErrInvalidDate),
		errors.Is(err, tracking.ErrEmptyVehicleID):
		return http.StatusBadRequest
	case errors.Is(err, replay.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrTooManySessions):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
