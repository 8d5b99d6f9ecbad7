package fleetreplay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/fleetreplay/fleet"
	"github.com/theoremus-urban-solutions/fleetreplay/geo"
)

func TestResponseCache_InvalidatesOnTick(t *testing.T) {
	center := geo.Point{Lat: 25, Lng: 121}
	sim := fleet.NewSimulator(fleet.DefaultRoster(center), fleet.DefaultPolicy(center), fleet.NewSeededSource(2))
	rc := NewResponseCache(sim)

	builds := 0
	build := func(r fleet.Roster) ([]byte, error) {
		builds++
		return []byte{byte(len(r))}, nil
	}

	b, err := rc.Get(build, "vm", "json")
	require.NoError(t, err)
	assert.Equal(t, []byte{8}, b)
	_, _ = rc.Get(build, "vm", "json")
	assert.Equal(t, 1, builds)

	_, _ = rc.Get(build, "vm", "xml")
	assert.Equal(t, 2, builds)
	assert.Equal(t, 2, rc.Len())

	sim.Tick()
	_, _ = rc.Get(build, "vm", "json")
	assert.Equal(t, 3, builds)
	assert.Equal(t, 1, rc.Len())
}

func TestResponseCache_MemoKey(t *testing.T) {
	rc := &ResponseCache{}
	assert.Equal(t, "vm|json||", rc.memoKey("vm", "json", "", ""))
	assert.NotEqual(t, rc.memoKey("vm", "json", "truck-01", ""), rc.memoKey("vm", "json", "", "truck-01"))
}
