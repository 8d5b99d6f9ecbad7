// Package fleet simulates a live fleet by perturbing every vehicle's heading,
// position, speed and status on a fixed cadence.
//
// Each tick builds a complete new Roster; readers always see a whole snapshot
// and never a partially updated one. The random source is injected so that
// runs can be reproduced in tests.
package fleet
