package gtfsrt

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/theoremus-urban-solutions/fleetreplay/fleet"
)

// Client is a simple HTTP client for fetching GTFS-RT protobuf data.
// This is a CLI helper - library users should fetch data themselves.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a new GTFS-RT HTTP client. A non-positive timeout means no timeout.
func NewClient(timeout time.Duration) *Client {
	c := &http.Client{}
	if timeout > 0 {
		c.Timeout = timeout
	}
	return &Client{httpClient: c}
}

// Fetch fetches a single GTFS-RT feed from a URL and returns raw protobuf bytes.
// Returns nil if url is empty (allows optional feeds).
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	return io.ReadAll(resp.Body)
}

// FetchRoster downloads a VehiclePositions feed and decodes it into a roster.
func (c *Client) FetchRoster(ctx context.Context, url string) (fleet.Roster, error) {
	b, err := c.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrEmptyFeed
	}
	roster, err := UnmarshalRoster(b)
	if err != nil {
		return nil, fmt.Errorf("vehicle positions: %w", err)
	}
	log.WithFields(log.Fields{"url": url, "vehicles": len(roster)}).Info("loaded roster from GTFS-RT feed")
	return roster, nil
}
