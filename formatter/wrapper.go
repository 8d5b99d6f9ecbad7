package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/theoremus-urban-solutions/fleetreplay/siri"
	"github.com/theoremus-urban-solutions/fleetreplay/utils"
)

type responseBuilder struct{}

// NewResponseBuilder returns the serializer shared by the JSON and XML endpoints
func NewResponseBuilder() *responseBuilder {
	return &responseBuilder{}
}

// BuildJSON encodes res without HTML escaping and without a trailing newline
func (rb *responseBuilder) BuildJSON(res *siri.SiriResponse) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(res); err != nil {
		return nil, fmt.Errorf("failed to encode siri response: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// BuildServiceDelivery creates a standardized ServiceDelivery wrapper
// with ResponseTimestamp and ProducerRef (codespace)
func BuildServiceDelivery(at time.Time, codespace string) siri.ServiceDelivery {
	if codespace == "" {
		codespace = "UNKNOWN"
	}
	return siri.ServiceDelivery{
		ResponseTimestamp: utils.Iso8601FromTime(at),
		ProducerRef:       codespace,
	}
}

// WrapVehicleMonitoringResponse wraps a VM delivery in a complete SIRI response
func WrapVehicleMonitoringResponse(vm siri.VehicleMonitoring, at time.Time, codespace string) *siri.SiriResponse {
	sd := BuildServiceDelivery(at, codespace)
	sd.VehicleMonitoringDelivery = []siri.VehicleMonitoring{vm}
	return &siri.SiriResponse{
		Siri: siri.SiriServiceDelivery{
			ServiceDelivery: sd,
		},
	}
}

// FilterVehicleMonitoring keeps activities matching the vehicle ref and status.
// Empty filters match everything; comparison is case-insensitive.
func FilterVehicleMonitoring(vm siri.VehicleMonitoring, vehicleRef, status string) siri.VehicleMonitoring {
	vehicleRef = strings.ToLower(strings.TrimSpace(vehicleRef))
	status = strings.ToLower(strings.TrimSpace(status))
	if vehicleRef == "" && status == "" {
		return vm
	}

	filtered := siri.VehicleMonitoring{
		ResponseTimestamp: vm.ResponseTimestamp,
		ValidUntil:        vm.ValidUntil,
		VehicleActivity:   []siri.VehicleActivityEntry{},
	}
	for _, va := range vm.VehicleActivity {
		mvj := va.MonitoredVehicleJourney
		if vehicleRef != "" && strings.ToLower(mvj.VehicleRef) != vehicleRef {
			continue
		}
		if status != "" && strings.ToLower(mvj.VehicleStatus) != status {
			continue
		}
		filtered.VehicleActivity = append(filtered.VehicleActivity, va)
	}
	return filtered
}
