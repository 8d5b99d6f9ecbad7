package fleet

import (
	"io"
	"math"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/fleetreplay/geo"
)

func init() {
	log.SetOutput(io.Discard)
}

// scripted replays fixed values, then 0.5 forever.
type scripted struct {
	values []float64
}

func (s *scripted) Float64() float64 {
	if len(s.values) == 0 {
		return 0.5
	}
	v := s.values[0]
	s.values = s.values[1:]
	return v
}

var testCenter = geo.Point{Lat: 25.0330, Lng: 121.5654}

func smallBoxPolicy() Policy {
	p := DefaultPolicy(testCenter)
	p.HalfSpanLat = 0.001
	p.HalfSpanLng = 0.0015
	p.PositionScale = 0.0001
	p.StatusChangeProbability = 0.2
	return p
}

func TestStep_StaysInsideSmallBox(t *testing.T) {
	policy := smallBoxPolicy()
	roster := Roster{
		{ID: "a", Position: testCenter, Speed: 45, Status: StatusMoving},
		{ID: "b", Position: testCenter, Bearing: 90, Speed: 20, Status: StatusMoving},
		{ID: "c", Position: testCenter, Bearing: 200, Speed: 10, Status: StatusIdle},
		{ID: "d", Position: testCenter, Bearing: 300, Speed: 30, Status: StatusDumping},
	}
	rng := NewSeededSource(42)

	const tol = 1e-9
	for tick := 0; tick < 10000; tick++ {
		roster = Step(roster, policy, rng)
		for _, v := range roster {
			if math.Abs(v.Position.Lat-testCenter.Lat) > policy.HalfSpanLat+tol ||
				math.Abs(v.Position.Lng-testCenter.Lng) > policy.HalfSpanLng+tol {
				t.Fatalf("tick %d: vehicle %s left the box at %+v", tick, v.ID, v.Position)
			}
			if v.Status == StatusMoving && (v.Speed < policy.MinSpeed || v.Speed > policy.MaxSpeed) {
				t.Fatalf("tick %d: vehicle %s speed %f out of range", tick, v.ID, v.Speed)
			}
			if v.Bearing < 0 || v.Bearing >= 360 {
				t.Fatalf("tick %d: vehicle %s bearing %f out of range", tick, v.ID, v.Bearing)
			}
		}
	}
}

func TestStep_OfflineNeverChanges(t *testing.T) {
	offline := Vehicle{ID: "x", Position: geo.Point{Lat: 1, Lng: 2}, Bearing: 33, Speed: 17, Status: StatusOffline}
	roster := Roster{offline, {ID: "y", Position: testCenter, Speed: 10, Status: StatusMoving}}
	policy := DefaultPolicy(testCenter)
	policy.StatusChangeProbability = 1
	rng := NewSeededSource(7)

	for i := 0; i < 1000; i++ {
		roster = Step(roster, policy, rng)
		require.Equal(t, offline, roster[0])
	}
}

func TestStep_FullReplacement(t *testing.T) {
	orig := Roster{{ID: "a", Position: testCenter, Speed: 10, Status: StatusMoving}}
	before := orig.Clone()

	policy := DefaultPolicy(testCenter)
	policy.StatusChangeProbability = 0
	next := Step(orig, policy, NewSeededSource(1))

	assert.Equal(t, before, orig, "input roster must not be modified")
	require.Len(t, next, 1)
	assert.NotSame(t, &orig[0], &next[0])
	assert.NotEqual(t, orig[0].Position, next[0].Position)
}

func TestStep_IdleAndDumping(t *testing.T) {
	policy := DefaultPolicy(testCenter)
	policy.StatusChangeProbability = 0
	roster := Roster{
		{ID: "idle", Position: testCenter, Bearing: 10, Speed: 25, Status: StatusIdle},
		{ID: "dump", Position: testCenter, Bearing: 20, Speed: 25, Status: StatusDumping},
	}

	next := Step(roster, policy, NewSeededSource(3))

	assert.Equal(t, 0.0, next[0].Speed)
	assert.Equal(t, testCenter, next[0].Position)
	assert.Equal(t, 10.0, next[0].Bearing)
	assert.Equal(t, 25.0, next[1].Speed)
	assert.Equal(t, testCenter, next[1].Position)
}

func TestStep_StatusResample(t *testing.T) {
	policy := DefaultPolicy(testCenter)
	v := Vehicle{ID: "a", Position: testCenter, Speed: 20, Status: StatusMoving}

	tests := []struct {
		draw float64
		want Status
	}{
		{0.1, StatusMoving},
		{0.4, StatusIdle},
		{0.9, StatusDumping},
	}
	for _, tt := range tests {
		// 0.01 < 0.05 triggers the resample, the second draw picks the status
		next := Step(Roster{v}, policy, &scripted{values: []float64{0.01, tt.draw}})
		assert.Equal(t, tt.want, next[0].Status)
	}
}

func TestStep_SnapsInsideBoxNotToEdge(t *testing.T) {
	policy := DefaultPolicy(testCenter)
	start := geo.Point{Lat: testCenter.Lat + policy.HalfSpanLat - 1e-6, Lng: testCenter.Lng}
	v := Vehicle{ID: "a", Position: start, Bearing: 0, Speed: 45, Status: StatusMoving}

	// no resample, zero heading delta, snap draw 0.75, zero speed delta
	next := Step(Roster{v}, policy, &scripted{values: []float64{0.9, 0.5, 0.75, 0.5}})

	assert.InDelta(t, testCenter.Lat+0.5*policy.HalfSpanLat, next[0].Position.Lat, 1e-12)
	assert.Equal(t, testCenter.Lng, next[0].Position.Lng)
	assert.Equal(t, 0.0, next[0].Bearing)
	assert.Equal(t, 45.0, next[0].Speed)
}

func TestStep_HeadingJitterBounded(t *testing.T) {
	policy := DefaultPolicy(testCenter)
	policy.StatusChangeProbability = 0
	v := Vehicle{ID: "a", Position: testCenter, Bearing: 355, Speed: 20, Status: StatusMoving}
	rng := NewSeededSource(11)

	for i := 0; i < 500; i++ {
		next := Step(Roster{v}, policy, rng)
		assert.LessOrEqual(t, math.Abs(geo.SignedDelta(v.Bearing, next[0].Bearing)), policy.MaxHeadingDelta+1e-9)
	}
}

func TestStep_Deterministic(t *testing.T) {
	roster := DefaultRoster(testCenter)
	policy := DefaultPolicy(testCenter)
	a, b := roster, roster
	ra, rb := NewSeededSource(99), NewSeededSource(99)
	for i := 0; i < 50; i++ {
		a = Step(a, policy, ra)
		b = Step(b, policy, rb)
	}
	assert.Equal(t, a, b)
}

func TestDefaultRoster(t *testing.T) {
	r := DefaultRoster(testCenter)
	require.Len(t, r, 8)
	policy := DefaultPolicy(testCenter)
	for _, v := range r {
		assert.True(t, policy.Contains(v.Position), v.ID)
	}
	counts := r.CountByStatus()
	assert.Equal(t, 1, counts[StatusOffline])

	v, ok := r.Find("truck-03")
	require.True(t, ok)
	assert.Equal(t, StatusIdle, v.Status)
	_, ok = r.Find("nope")
	assert.False(t, ok)
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("dumping")
	require.NoError(t, err)
	assert.Equal(t, StatusDumping, s)
	_, err = ParseStatus("parked")
	assert.Error(t, err)
}
