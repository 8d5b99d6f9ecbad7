// Package siri defines the SIRI (Service Interface for Real-time Information)
// VehicleMonitoring types used to publish fleet and replay positions.
//
// SIRI is a European standard (CEN/TS 15531) for real-time public transport information.
// Only the VehicleMonitoringDelivery (VM) module is modelled here: the fleet has
// no stop calls or service alerts to report.
//
// All types include JSON struct tags; XML is written by the formatter package.
package siri
