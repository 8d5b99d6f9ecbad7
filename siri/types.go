package siri

// SiriResponse is the top-level SIRI response structure
type SiriResponse struct {
	Siri SiriServiceDelivery `json:"Siri"`
}

// SiriServiceDelivery wraps the ServiceDelivery element
type SiriServiceDelivery struct {
	ServiceDelivery ServiceDelivery `json:"ServiceDelivery"`
}

// ServiceDelivery carries the VehicleMonitoring deliveries
type ServiceDelivery struct {
	ResponseTimestamp         string              `json:"ResponseTimestamp"`
	ProducerRef               string              `json:"ProducerRef,omitempty"`
	VehicleMonitoringDelivery []VehicleMonitoring `json:"VehicleMonitoringDelivery"`
}

// VehicleCount returns the number of vehicle activities across all deliveries
func (r *SiriResponse) VehicleCount() int {
	n := 0
	for _, vm := range r.Siri.ServiceDelivery.VehicleMonitoringDelivery {
		n += len(vm.VehicleActivity)
	}
	return n
}
