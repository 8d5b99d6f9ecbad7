// Package config loads the fleet replay service settings from YAML.
//
// Sections cover the HTTP server, logging, replay sessions (path generation
// and animation timing), the live fleet simulator and the optional GTFS-RT
// roster feed. Zero values are replaced by defaults after validation, so an
// empty file yields a runnable configuration.
package config
