package siri

import transitTypes "github.com/theoremus-urban-solutions/transit-types/siri"

// VehicleMonitoring represents the VehicleMonitoring delivery
type VehicleMonitoring struct {
	ResponseTimestamp string                 `json:"ResponseTimestamp"`
	ValidUntil        string                 `json:"ValidUntil"`
	VehicleActivity   []VehicleActivityEntry `json:"VehicleActivity"`
}

// VehicleActivityEntry represents a single vehicle's activity
type VehicleActivityEntry struct {
	RecordedAtTime          string                  `json:"RecordedAtTime"`
	ValidUntilTime          string                  `json:"ValidUntilTime,omitempty"`
	MonitoredVehicleJourney MonitoredVehicleJourney `json:"MonitoredVehicleJourney"`
}

// MonitoredVehicleJourney contains details about a monitored vehicle journey
type MonitoredVehicleJourney struct {
	LineRef                 string                                `json:"LineRef"`
	FramedVehicleJourneyRef *transitTypes.FramedVehicleJourneyRef `json:"FramedVehicleJourneyRef,omitempty"`
	VehicleMode             string                                `json:"VehicleMode,omitempty"`
	PublishedLineName       string                                `json:"PublishedLineName,omitempty"`
	OperatorRef             string                                `json:"OperatorRef,omitempty"`
	Monitored               bool                                  `json:"Monitored"`
	DataSource              string                                `json:"DataSource"`
	VehicleLocation         VehicleLocation                       `json:"VehicleLocation"`
	Bearing                 *float64                              `json:"Bearing,omitempty"`
	Velocity                *int                                  `json:"Velocity,omitempty"` // km/h
	VehicleStatus           string                                `json:"VehicleStatus,omitempty"`
	ProgressStatus          string                                `json:"ProgressStatus,omitempty"`
	VehicleRef              string                                `json:"VehicleRef"`
	Extensions              *Extensions                           `json:"Extensions,omitempty"`
}

// VehicleLocation represents the geographical location of a vehicle
type VehicleLocation struct {
	Latitude  *float64 `json:"Latitude"`
	Longitude *float64 `json:"Longitude"`
}

// Extensions carries fleet fields SIRI has no element for
type Extensions struct {
	LicensePlate string   `json:"LicensePlate,omitempty"`
	VehicleKind  string   `json:"VehicleKind,omitempty"`
	Progress     *float64 `json:"Progress,omitempty"` // replay progress, percent
	PlaybackTime string   `json:"PlaybackTime,omitempty"`
}
