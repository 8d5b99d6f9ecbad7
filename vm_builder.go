package fleetreplay

import (
	"math"
	"time"

	transitTypes "github.com/theoremus-urban-solutions/transit-types/siri"

	"github.com/theoremus-urban-solutions/fleetreplay/fleet"
	"github.com/theoremus-urban-solutions/fleetreplay/replay"
	"github.com/theoremus-urban-solutions/fleetreplay/siri"
	"github.com/theoremus-urban-solutions/fleetreplay/utils"
)

// BuildFleetVehicleMonitoring converts a roster snapshot into a VM delivery valid for one tick.
func BuildFleetVehicleMonitoring(roster fleet.Roster, at time.Time, validFor time.Duration, codespace string) siri.VehicleMonitoring {
	ts := utils.Iso8601FromTime(at)
	validUntil := utils.ValidUntilFrom(at, validFor)
	vm := siri.VehicleMonitoring{
		ResponseTimestamp: ts,
		ValidUntil:        validUntil,
		VehicleActivity:   make([]siri.VehicleActivityEntry, 0, len(roster)),
	}
	for _, v := range roster {
		vm.VehicleActivity = append(vm.VehicleActivity, siri.VehicleActivityEntry{
			RecordedAtTime:          ts,
			ValidUntilTime:          validUntil,
			MonitoredVehicleJourney: buildMVJ(v, at, codespace),
		})
	}
	return vm
}

func buildMVJ(v fleet.Vehicle, at time.Time, codespace string) siri.MonitoredVehicleJourney {
	lat, lng := v.Position.Lat, v.Position.Lng
	bearing := v.Bearing
	velocity := int(math.Round(v.Speed))
	mvj := siri.MonitoredVehicleJourney{
		LineRef: codespace + ":" + v.Kind,
		FramedVehicleJourneyRef: &transitTypes.FramedVehicleJourneyRef{
			DataFrameRef:           at.UTC().Format("2006-01-02"),
			DatedVehicleJourneyRef: v.ID,
		},
		PublishedLineName: v.Name,
		OperatorRef:       codespace,
		Monitored:         v.Status != fleet.StatusOffline,
		DataSource:        codespace,
		VehicleLocation:   siri.VehicleLocation{Latitude: &lat, Longitude: &lng},
		Bearing:           &bearing,
		Velocity:          &velocity,
		VehicleStatus:     string(v.Status),
		ProgressStatus:    progressStatus(v.Status),
		VehicleRef:        v.ID,
		Extensions:        &siri.Extensions{LicensePlate: v.Plate, VehicleKind: v.Kind},
	}
	return mvj
}

func progressStatus(s fleet.Status) string {
	switch s {
	case fleet.StatusMoving:
		return "inProgress"
	case fleet.StatusOffline:
		return "notExpected"
	default:
		return "noProgress"
	}
}

// BuildReplayVehicleMonitoring reports a replay session's marker as a single vehicle activity.
// The recorded time is the playback clock rather than the wall clock.
func BuildReplayVehicleMonitoring(snap replay.Snapshot, at time.Time, codespace string) siri.VehicleMonitoring {
	lat, lng := snap.State.Position.Lat, snap.State.Position.Lng
	bearing := snap.State.Bearing
	percent := snap.Labels.Percent

	status := "paused"
	switch {
	case snap.State.Complete:
		status = "complete"
	case snap.Parameters.Playing:
		status = "playing"
	}

	ts := utils.Iso8601FromTime(at)
	return siri.VehicleMonitoring{
		ResponseTimestamp: ts,
		VehicleActivity: []siri.VehicleActivityEntry{{
			RecordedAtTime: ts,
			MonitoredVehicleJourney: siri.MonitoredVehicleJourney{
				LineRef: codespace + ":replay",
				FramedVehicleJourneyRef: &transitTypes.FramedVehicleJourneyRef{
					DataFrameRef:           snap.Date,
					DatedVehicleJourneyRef: snap.ID,
				},
				Monitored:       true,
				DataSource:      codespace,
				VehicleLocation: siri.VehicleLocation{Latitude: &lat, Longitude: &lng},
				Bearing:         &bearing,
				VehicleStatus:   status,
				VehicleRef:      snap.VehicleID,
				Extensions:      &siri.Extensions{Progress: &percent, PlaybackTime: snap.Labels.Clock},
			},
		}},
	}
}
