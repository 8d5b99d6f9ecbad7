package gtfsrt

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"github.com/theoremus-urban-solutions/fleetreplay/fleet"
	"github.com/theoremus-urban-solutions/fleetreplay/geo"
)

func init() {
	log.SetOutput(io.Discard)
}

var center = geo.Point{Lat: 25.0330, Lng: 121.5654}

func TestEncodeRoster(t *testing.T) {
	at := time.Unix(1700000000, 0)
	roster := fleet.DefaultRoster(center)

	fm := EncodeRoster(roster, at)

	require.NotNil(t, fm.Header)
	assert.Equal(t, "2.0", fm.Header.GetGtfsRealtimeVersion())
	assert.Equal(t, gtfsrtpb.FeedHeader_FULL_DATASET, fm.Header.GetIncrementality())
	assert.Equal(t, uint64(1700000000), fm.Header.GetTimestamp())
	// the offline truck is not published
	require.Len(t, fm.Entity, len(roster)-1)

	first := fm.Entity[0].GetVehicle()
	assert.Equal(t, "truck-01", first.GetVehicle().GetId())
	assert.Equal(t, "Truck 01", first.GetVehicle().GetLabel())
	assert.Equal(t, gtfsrtpb.VehiclePosition_IN_TRANSIT_TO, first.GetCurrentStatus())
	assert.InDelta(t, 22/3.6, first.GetPosition().GetSpeed(), 1e-4)
}

func TestRoundTrip(t *testing.T) {
	roster := fleet.Roster{
		{ID: "a", Name: "A", Plate: "P-1", Position: geo.Point{Lat: 25.01, Lng: 121.5}, Bearing: 80, Speed: 36, Status: fleet.StatusMoving},
		{ID: "b", Name: "B", Position: geo.Point{Lat: 25.02, Lng: 121.6}, Bearing: 180, Speed: 10, Status: fleet.StatusDumping},
		{ID: "c", Name: "C", Position: geo.Point{Lat: 25.03, Lng: 121.7}, Status: fleet.StatusOffline},
	}

	b, err := MarshalRoster(roster, time.Now())
	require.NoError(t, err)
	got, err := UnmarshalRoster(b)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "P-1", got[0].Plate)
	assert.Equal(t, fleet.StatusMoving, got[0].Status)
	assert.InDelta(t, 36, got[0].Speed, 1e-3)
	assert.InDelta(t, 25.01, got[0].Position.Lat, 1e-5)
	assert.InDelta(t, 80, got[0].Bearing, 1e-4)

	assert.Equal(t, fleet.StatusIdle, got[1].Status)
	assert.Equal(t, 0.0, got[1].Speed)
}

func TestDecodeRoster_SkipsIncompleteEntities(t *testing.T) {
	fm := &gtfsrtpb.FeedMessage{
		Header: &gtfsrtpb.FeedHeader{GtfsRealtimeVersion: proto.String("2.0")},
		Entity: []*gtfsrtpb.FeedEntity{
			{Id: proto.String("no-vehicle")},
			{Id: proto.String("no-position"), Vehicle: &gtfsrtpb.VehiclePosition{}},
			{Id: proto.String("entity-id"), Vehicle: &gtfsrtpb.VehiclePosition{
				Position: &gtfsrtpb.Position{Latitude: proto.Float32(1), Longitude: proto.Float32(2), Bearing: proto.Float32(-90)},
			}},
		},
	}

	roster, err := DecodeRoster(fm)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, "entity-id", roster[0].ID)
	assert.Equal(t, "entity-id", roster[0].Name)
	assert.Equal(t, 270.0, roster[0].Bearing)
}

func TestDecodeRoster_Empty(t *testing.T) {
	_, err := DecodeRoster(nil)
	assert.ErrorIs(t, err, ErrEmptyFeed)
	_, err = DecodeRoster(&gtfsrtpb.FeedMessage{})
	assert.ErrorIs(t, err, ErrEmptyFeed)
	_, err = UnmarshalRoster([]byte{0xff, 0xff, 0xff})
	assert.Error(t, err)
}

func TestClient_FetchRoster(t *testing.T) {
	payload, err := MarshalRoster(fleet.DefaultRoster(center), time.Now())
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/vp" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	c := NewClient(time.Second)
	roster, err := c.FetchRoster(context.Background(), srv.URL+"/vp")
	require.NoError(t, err)
	assert.Len(t, roster, 7)

	_, err = c.FetchRoster(context.Background(), srv.URL+"/missing")
	assert.Error(t, err)

	_, err = c.FetchRoster(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyFeed)
}
