package fleetreplay

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/theoremus-urban-solutions/fleetreplay/fleet"
)

type QueryError struct{ Msg string }

func (e *QueryError) Error() string { return e.Msg }

// queryParams flattens the first value of every parameter, keyed in lower case
func queryParams(values map[string][]string) map[string]string {
	m := map[string]string{}
	for k, v := range values {
		if len(v) > 0 {
			m[strings.ToLower(k)] = strings.TrimSpace(v[0])
		}
	}
	return m
}

func parseVehicleMonitoring(params map[string]string) (vehicleRef, status string, err error) {
	vehicleRef = params["vehicleref"]
	status = params["vehiclestatus"]
	if status != "" {
		if _, err := fleet.ParseStatus(strings.ToLower(status)); err != nil {
			return "", "", &QueryError{Msg: "VehicleStatus must be one of moving, idle, dumping, offline."}
		}
	}
	return vehicleRef, status, nil
}

func parseReplayTarget(params map[string]string) (vehicle, date string, err error) {
	vehicle = params["vehicle"]
	date = params["date"]
	if vehicle == "" {
		return "", "", &QueryError{Msg: "You must provide a vehicle."}
	}
	if date == "" {
		return "", "", &QueryError{Msg: "You must provide a date (YYYY-MM-DD)."}
	}
	return vehicle, date, nil
}

func parseFraction(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &QueryError{Msg: "fraction must be a number between 0 and 1."}
	}
	return v, nil
}

func parseStepCount(s string) (int, error) {
	if s == "" {
		return 1, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, &QueryError{Msg: "count must be an integer."}
	}
	return v, nil
}

func buildErrorPayload(msg string) []byte {
	type siriErr struct {
		Siri struct {
			ServiceDelivery struct {
				ErrorCondition struct {
					Description string `json:"Description"`
				} `json:"ErrorCondition"`
			} `json:"ServiceDelivery"`
		} `json:"Siri"`
	}
	var e siriErr
	e.Siri.ServiceDelivery.ErrorCondition.Description = msg
	b, _ := json.Marshal(e)
	return b
}
