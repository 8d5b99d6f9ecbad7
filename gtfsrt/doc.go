// Package gtfsrt converts fleet rosters to and from GTFS-Realtime VehiclePositions feeds.
//
// Encoding publishes the live simulator snapshot so that standard GTFS-RT
// consumers can display it. Decoding turns a fetched feed into an initial
// roster for the simulator. The status mapping is lossy in both directions:
//   - moving is IN_TRANSIT_TO, idle and dumping are STOPPED_AT
//   - offline vehicles have no live position and are left out of the feed
//   - a decoded STOPPED_AT vehicle becomes idle
//
// The Client is a thin HTTP helper for the CLI; library users can fetch bytes themselves.
package gtfsrt
