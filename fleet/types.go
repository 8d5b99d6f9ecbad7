package fleet

import (
	"fmt"

	"github.com/theoremus-urban-solutions/fleetreplay/geo"
)

// Status is a vehicle's operational state.
type Status string

const (
	StatusMoving  Status = "moving"
	StatusIdle    Status = "idle"
	StatusDumping Status = "dumping"
	StatusOffline Status = "offline"
)

// resampleStatuses are the states a vehicle can switch to; offline is never chosen.
var resampleStatuses = [...]Status{StatusMoving, StatusIdle, StatusDumping}

// ParseStatus maps a status name to a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusMoving, StatusIdle, StatusDumping, StatusOffline:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown vehicle status %q", s)
}

// Vehicle is one roster record. Speed is in km/h, Bearing in degrees.
type Vehicle struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Kind     string    `json:"kind"`
	Plate    string    `json:"plate"`
	Position geo.Point `json:"position"`
	Bearing  float64   `json:"bearing"`
	Speed    float64   `json:"speed"`
	Status   Status    `json:"status"`
}

// Roster is an ordered fleet snapshot.
type Roster []Vehicle

// Clone returns a copy that shares nothing with r.
func (r Roster) Clone() Roster {
	if r == nil {
		return nil
	}
	out := make(Roster, len(r))
	copy(out, r)
	return out
}

// Find returns the vehicle with the given id.
func (r Roster) Find(id string) (Vehicle, bool) {
	for _, v := range r {
		if v.ID == id {
			return v, true
		}
	}
	return Vehicle{}, false
}

// CountByStatus tallies vehicles per status.
func (r Roster) CountByStatus() map[Status]int {
	out := make(map[Status]int, 4)
	for _, v := range r {
		out[v.Status]++
	}
	return out
}

// DefaultRoster is the mock fleet used when no roster feed is configured.
func DefaultRoster(center geo.Point) Roster {
	type seed struct {
		kind    string
		dLat    float64
		dLng    float64
		bearing float64
		speed   float64
		status  Status
	}
	seeds := []seed{
		{"rear loader", 0.004, -0.006, 45, 22, StatusMoving},
		{"rear loader", -0.008, 0.003, 120, 18, StatusMoving},
		{"side loader", 0.011, 0.009, 270, 0, StatusIdle},
		{"roll-off", -0.015, -0.012, 200, 12, StatusDumping},
		{"side loader", 0.002, 0.017, 10, 30, StatusMoving},
		{"sweeper", -0.003, -0.019, 300, 9, StatusMoving},
		{"roll-off", 0.018, -0.002, 160, 0, StatusOffline},
		{"rear loader", -0.020, 0.014, 80, 26, StatusMoving},
	}
	out := make(Roster, len(seeds))
	for i, s := range seeds {
		out[i] = Vehicle{
			ID:       fmt.Sprintf("truck-%02d", i+1),
			Name:     fmt.Sprintf("Truck %02d", i+1),
			Kind:     s.kind,
			Plate:    fmt.Sprintf("KEA-%04d", 3101+i*7),
			Position: geo.Point{Lat: center.Lat + s.dLat, Lng: center.Lng + s.dLng},
			Bearing:  s.bearing,
			Speed:    s.speed,
			Status:   s.status,
		}
	}
	return out
}
