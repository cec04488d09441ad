// Package validation provides input validation for the HTTP transport
// boundary. The simulation core itself performs no bounds checking, so
// rejection of bad input happens here, before a request reaches the engine.
package validation

import (
	"fmt"
	"math"
	"regexp"
)

// Limits for transport-level input
const (
	MaxVesselIDLen = 64
	// MaxCoordinate bounds accepted target and spawn coordinates. The
	// engine handles any finite value; this guards operators against
	// fat-fingered exponents.
	MaxCoordinate = 1e9
	MaxSpeed      = 1e6
)

// Allow alphanumeric, hyphens, underscores and dots for vessel identifiers.
var validVesselIDChars = regexp.MustCompile(`^[a-zA-Z0-9\-_.]+$`)

// ValidateVesselID checks an identifier supplied by a client.
func ValidateVesselID(id string) error {
	if id == "" {
		return fmt.Errorf("vessel id cannot be empty")
	}
	if len(id) > MaxVesselIDLen {
		return fmt.Errorf("vessel id too long: %d characters (max %d)", len(id), MaxVesselIDLen)
	}
	if !validVesselIDChars.MatchString(id) {
		return fmt.Errorf("vessel id contains invalid characters (only alphanumeric, hyphens, underscores and dots allowed)")
	}
	return nil
}

// ValidateCoordinate checks a single coordinate component.
func ValidateCoordinate(name string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%s must be a finite number", name)
	}
	if math.Abs(value) > MaxCoordinate {
		return fmt.Errorf("%s out of range: %g (max magnitude %g)", name, value, float64(MaxCoordinate))
	}
	return nil
}

// ValidateTarget checks a retarget request's coordinate pair.
func ValidateTarget(x, y float64) error {
	if err := ValidateCoordinate("target x", x); err != nil {
		return err
	}
	return ValidateCoordinate("target y", y)
}

// ValidateSpeed checks a vessel speed at registration time.
func ValidateSpeed(speed float64) error {
	if math.IsNaN(speed) || math.IsInf(speed, 0) {
		return fmt.Errorf("speed must be a finite number")
	}
	if speed < 0 {
		return fmt.Errorf("speed cannot be negative: %g", speed)
	}
	if speed > MaxSpeed {
		return fmt.Errorf("speed too large: %g (max %g)", speed, float64(MaxSpeed))
	}
	return nil
}

// ValidateHeading checks a vessel heading at registration time. Any finite
// value is accepted; the engine normalizes it into [0, 360).
func ValidateHeading(heading float64) error {
	if math.IsNaN(heading) || math.IsInf(heading, 0) {
		return fmt.Errorf("heading must be a finite number")
	}
	return nil
}
