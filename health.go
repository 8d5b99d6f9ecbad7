package fleetreplay

import (
	"encoding/json"
	"net/http"

	"github.com/theoremus-urban-solutions/fleetreplay/utils"
)

type healthResponse struct {
	Status         string `json:"status"`
	Ticks          uint64 `json:"ticks"`
	LastTick       string `json:"last_tick,omitempty"`
	Vehicles       int    `json:"vehicles"`
	ReplaySessions int    `json:"replay_sessions"`
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	resp := healthResponse{
		Status:         "ok",
		Ticks:          s.Simulator.Ticks(),
		LastTick:       utils.Iso8601FromTime(s.Simulator.LastTick()),
		Vehicles:       len(s.Simulator.Snapshot()),
		ReplaySessions: s.Sessions.Len(),
	}
	_ = json.NewEncoder(w).Encode(resp)
}
