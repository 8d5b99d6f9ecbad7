package fleetreplay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/fleetreplay/fleet"
	"github.com/theoremus-urban-solutions/fleetreplay/geo"
	"github.com/theoremus-urban-solutions/fleetreplay/replay"
)

func TestBuildFleetVehicleMonitoring(t *testing.T) {
	at := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	roster := fleet.Roster{
		{ID: "a", Name: "A", Kind: "sweeper", Plate: "P1", Position: geo.Point{Lat: 1, Lng: 2}, Bearing: 45, Speed: 22.6, Status: fleet.StatusMoving},
		{ID: "b", Name: "B", Kind: "roll-off", Status: fleet.StatusOffline},
	}

	vm := BuildFleetVehicleMonitoring(roster, at, 2*time.Second, "FLEET")

	assert.Equal(t, "2024-03-01T08:00:00Z", vm.ResponseTimestamp)
	assert.Equal(t, "2024-03-01T08:00:02Z", vm.ValidUntil)
	require.Len(t, vm.VehicleActivity, 2)

	a := vm.VehicleActivity[0].MonitoredVehicleJourney
	assert.Equal(t, "FLEET:sweeper", a.LineRef)
	assert.True(t, a.Monitored)
	assert.Equal(t, 23, *a.Velocity)
	assert.Equal(t, 1.0, *a.VehicleLocation.Latitude)
	assert.Equal(t, "inProgress", a.ProgressStatus)
	assert.Equal(t, "2024-03-01", a.FramedVehicleJourneyRef.DataFrameRef)
	assert.Equal(t, "P1", a.Extensions.LicensePlate)

	b := vm.VehicleActivity[1].MonitoredVehicleJourney
	assert.False(t, b.Monitored)
	assert.Equal(t, "notExpected", b.ProgressStatus)
}

func TestBuildReplayVehicleMonitoring(t *testing.T) {
	snap := replay.Snapshot{
		ID:         "sess",
		VehicleID:  "truck-01",
		Date:       "2024-03-01",
		State:      replay.State{Position: replay.Position{Lat: 1, Lng: 2}, Bearing: 90, Progress: 1, Complete: true},
		Parameters: replay.PlaybackParameters{SpeedMultiplier: 1},
		Labels:     replay.PlaybackLabels{Percent: 100, Clock: "10:05:00"},
	}
	vm := BuildReplayVehicleMonitoring(snap, time.Now(), "FLEET")
	require.Len(t, vm.VehicleActivity, 1)
	mvj := vm.VehicleActivity[0].MonitoredVehicleJourney
	assert.Equal(t, "complete", mvj.VehicleStatus)
	assert.Equal(t, "truck-01", mvj.VehicleRef)
	assert.Equal(t, "sess", mvj.FramedVehicleJourneyRef.DatedVehicleJourneyRef)
	assert.Equal(t, 100.0, *mvj.Extensions.Progress)
	assert.Equal(t, "10:05:00", mvj.Extensions.PlaybackTime)
}
