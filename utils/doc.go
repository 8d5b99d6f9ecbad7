// Package utils provides internal utility functions shared by the replay engine
// and the HTTP surface.
//
// It contains:
//   - ISO8601 timestamp helpers
//   - Playback clock labels (HH:MM:SS)
//   - Human readable distance formatting
package utils
