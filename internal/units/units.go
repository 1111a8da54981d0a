// Package units provides shared constants and validation for distance units
package units

// Unit constants
const (
	Meters     = "m"
	Kilometers = "km"
	Feet       = "ft"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{Meters, Kilometers, Feet}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "m, km, ft"
}

// ConvertDistance converts a distance from metres to the target units.
// Coordinates and eps are stored in metres.
func ConvertDistance(meters float64, targetUnits string) float64 {
	switch targetUnits {
	case Kilometers:
		return meters / 1000.0
	case Feet:
		return meters * 3.28084 // m to ft
	case Meters:
		return meters
	default:
		return meters // default to metres if unknown unit
	}
}
