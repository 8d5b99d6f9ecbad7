// Package formatter wraps VehicleMonitoring deliveries in a SIRI
// ServiceDelivery and serializes them as JSON or XML.
//
// The same writers serve the live fleet snapshot and single-vehicle replay
// sessions. FilterVehicleMonitoring narrows a delivery by vehicle or status
// before it is wrapped. XML is written by hand to keep element order fixed.
package formatter
