package gtfsrt

import (
	"errors"
	"fmt"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"

	"github.com/theoremus-urban-solutions/fleetreplay/fleet"
	"github.com/theoremus-urban-solutions/fleetreplay/geo"
)

const (
	gtfsRealtimeVersion = "2.0"
	kmhPerMps           = 3.6
)

// ErrEmptyFeed is returned when a feed carries no usable vehicle positions.
var ErrEmptyFeed = errors.New("feed has no vehicle positions")

// EncodeRoster builds a full-dataset FeedMessage from a roster snapshot.
func EncodeRoster(roster fleet.Roster, at time.Time) *gtfsrtpb.FeedMessage {
	ts := uint64(at.Unix())
	fm := &gtfsrtpb.FeedMessage{
		Header: &gtfsrtpb.FeedHeader{
			GtfsRealtimeVersion: proto.String(gtfsRealtimeVersion),
			Incrementality:      gtfsrtpb.FeedHeader_FULL_DATASET.Enum(),
			Timestamp:           proto.Uint64(ts),
		},
	}
	for _, v := range roster {
		if v.Status == fleet.StatusOffline {
			continue
		}
		fm.Entity = append(fm.Entity, &gtfsrtpb.FeedEntity{
			Id: proto.String(v.ID),
			Vehicle: &gtfsrtpb.VehiclePosition{
				Vehicle: &gtfsrtpb.VehicleDescriptor{
					Id:           proto.String(v.ID),
					Label:        proto.String(v.Name),
					LicensePlate: proto.String(v.Plate),
				},
				Position: &gtfsrtpb.Position{
					Latitude:  proto.Float32(float32(v.Position.Lat)),
					Longitude: proto.Float32(float32(v.Position.Lng)),
					Bearing:   proto.Float32(float32(v.Bearing)),
					Speed:     proto.Float32(float32(v.Speed / kmhPerMps)),
				},
				CurrentStatus: stopStatus(v.Status).Enum(),
				Timestamp:     proto.Uint64(ts),
			},
		})
	}
	return fm
}

// MarshalRoster encodes a roster snapshot to protobuf bytes.
func MarshalRoster(roster fleet.Roster, at time.Time) ([]byte, error) {
	b, err := proto.Marshal(EncodeRoster(roster, at))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal feed: %w", err)
	}
	return b, nil
}

// DecodeRoster extracts a roster from a feed. Entities without a vehicle id or
// position are skipped.
func DecodeRoster(fm *gtfsrtpb.FeedMessage) (fleet.Roster, error) {
	if fm == nil {
		return nil, ErrEmptyFeed
	}
	var roster fleet.Roster
	for _, e := range fm.Entity {
		vp := e.GetVehicle()
		if vp == nil || vp.Position == nil {
			continue
		}
		id := vp.GetVehicle().GetId()
		if id == "" {
			id = e.GetId()
		}
		if id == "" {
			continue
		}
		name := vp.GetVehicle().GetLabel()
		if name == "" {
			name = id
		}
		status := fleet.StatusMoving
		if vp.CurrentStatus != nil && vp.GetCurrentStatus() == gtfsrtpb.VehiclePosition_STOPPED_AT {
			status = fleet.StatusIdle
		}
		speed := float64(vp.Position.GetSpeed()) * kmhPerMps
		if status == fleet.StatusIdle {
			speed = 0
		}
		roster = append(roster, fleet.Vehicle{
			ID:    id,
			Name:  name,
			Kind:  "vehicle",
			Plate: vp.GetVehicle().GetLicensePlate(),
			Position: geo.Point{
				Lat: float64(vp.Position.GetLatitude()),
				Lng: float64(vp.Position.GetLongitude()),
			},
			Bearing: geo.NormalizeDegrees(float64(vp.Position.GetBearing())),
			Speed:   speed,
			Status:  status,
		})
	}
	if len(roster) == 0 {
		return nil, ErrEmptyFeed
	}
	return roster, nil
}

// UnmarshalRoster parses protobuf bytes into a roster.
func UnmarshalRoster(b []byte) (fleet.Roster, error) {
	var fm gtfsrtpb.FeedMessage
	if err := proto.Unmarshal(b, &fm); err != nil {
		return nil, fmt.Errorf("failed to parse protobuf: %w", err)
	}
	return DecodeRoster(&fm)
}

func stopStatus(s fleet.Status) gtfsrtpb.VehiclePosition_VehicleStopStatus {
	if s == fleet.StatusMoving {
		return gtfsrtpb.VehiclePosition_IN_TRANSIT_TO
	}
	return gtfsrtpb.VehiclePosition_STOPPED_AT
}
