package utils

import (
	"fmt"
	"math"
)

// PresentableDistance formats a path length for display
func PresentableDistance(meters float64) string {
	if math.IsNaN(meters) || meters <= 0 {
		return "0 m"
	}
	if meters < 1000 {
		return fmt.Sprintf("%d m", int(math.Round(meters)))
	}
	km := meters / 1000
	return fmt.Sprintf("%.1f km", km)
}

// PresentableSpeed formats a speed in km/h, "stopped" for zero
func PresentableSpeed(kmh float64) string {
	return ternary(kmh <= 0, "stopped", fmt.Sprintf("%d km/h", int(math.Round(kmh))))
}

func ternary[T any](cond bool, a, b T) T {
	if cond {
		return a
	}
	return b
}
