package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/theoremus-urban-solutions/fleetreplay/fleet"
	"github.com/theoremus-urban-solutions/fleetreplay/gtfsrt"
)

// fetcher loads a GTFS-RT VehiclePositions roster from a URL or a local file.
// This is CLI-specific logic and is not part of the core library.
type fetcher struct {
	client *gtfsrt.Client
}

func newFetcher(timeout time.Duration) *fetcher {
	return &fetcher{client: gtfsrt.NewClient(timeout)}
}

// fetchRoster returns nil without error when urlOrPath is empty.
func (f *fetcher) fetchRoster(ctx context.Context, urlOrPath string) (fleet.Roster, error) {
	if urlOrPath == "" {
		return nil, nil
	}

	if !strings.HasPrefix(urlOrPath, "http://") && !strings.HasPrefix(urlOrPath, "https://") {
		b, err := os.ReadFile(urlOrPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", urlOrPath, err)
		}
		return gtfsrt.UnmarshalRoster(b)
	}

	return f.client.FetchRoster(ctx, urlOrPath)
}
