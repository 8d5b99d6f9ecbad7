// Package tracking provides the synthesized vehicle paths that replay sessions animate.
//
// This package handles:
// - Generating a deterministic, time-stamped waypoint sequence for a (vehicle, date) pair
// - Caching generated paths so a sequence stays immutable once produced
// - Deriving path metadata such as duration and travelled length
// - Exporting a path as GeoJSON for map layers
//
// A Path is read-only once generated. Only the replay session that owns it may
// swap it for another, and it must reset its animator when it does.
package tracking
