package fleetreplay

import (
	"bytes"
	"sync"

	"github.com/theoremus-urban-solutions/fleetreplay/fleet"
)

// ResponseCache memoizes encoded fleet responses until the simulator ticks again.
type ResponseCache struct {
	sim *fleet.Simulator

	mu       sync.Mutex
	tick     uint64
	response map[string][]byte
}

// NewResponseCache creates an empty cache bound to sim's tick counter
func NewResponseCache(sim *fleet.Simulator) *ResponseCache {
	return &ResponseCache{sim: sim, response: map[string][]byte{}}
}

func (rc *ResponseCache) memoKey(args ...string) string {
	var b bytes.Buffer
	for i, a := range args {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(a)
	}
	return b.String()
}

// Get returns the cached bytes for key parts, calling build on a miss.
// Errors are not cached.
func (rc *ResponseCache) Get(build func(fleet.Roster) ([]byte, error), parts ...string) ([]byte, error) {
	key := rc.memoKey(parts...)

	rc.mu.Lock()
	defer rc.mu.Unlock()

	if t := rc.sim.Ticks(); t != rc.tick {
		rc.tick = t
		rc.response = map[string][]byte{}
	}
	if b, ok := rc.response[key]; ok {
		return b, nil
	}
	b, err := build(rc.sim.Snapshot())
	if err != nil {
		return nil, err
	}
	rc.response[key] = b
	return b, nil
}

// Len returns the number of cached responses for the current tick
func (rc *ResponseCache) Len() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return len(rc.response)
}
