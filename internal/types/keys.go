package types

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var zipPattern = regexp.MustCompile(`^\d{5}$`)

// vinLength is the fixed length of a North American VIN.
const vinLength = 17

// ValidateZIP checks that zip is exactly five digits.
func ValidateZIP(zip string) error {
	if !zipPattern.MatchString(zip) {
		return &ServiceError{
			Code:    "INVALID_ZIP",
			Message: fmt.Sprintf("invalid ZIP code: %s (must be exactly 5 digits)", zip),
			Details: map[string]interface{}{"zip": zip},
		}
	}
	return nil
}

// ValidateVIN checks that vin is exactly 17 characters.
func ValidateVIN(vin string) error {
	if len(vin) != vinLength {
		return &ServiceError{
			Code:    "INVALID_VIN",
			Message: fmt.Sprintf("invalid VIN: must be exactly %d characters, got %d", vinLength, len(vin)),
			Details: map[string]interface{}{"vin": vin},
		}
	}
	return nil
}

// ValidateVehicle checks the make/model/year triple used by vehicle-keyed sources.
func ValidateVehicle(make, model string, year int) error {
	if strings.TrimSpace(make) == "" {
		return &ServiceError{Code: "INVALID_VEHICLE", Message: "make is required"}
	}
	if strings.TrimSpace(model) == "" {
		return &ServiceError{Code: "INVALID_VEHICLE", Message: "model is required"}
	}
	if year < 1900 || year > 2100 {
		return &ServiceError{
			Code:    "INVALID_VEHICLE",
			Message: fmt.Sprintf("invalid model year: %d", year),
			Details: map[string]interface{}{"year": year},
		}
	}
	return nil
}

// VehicleKey composes the normalized lookup key for vehicle-keyed sources.
// Make and model are lowercased and trimmed before composition.
func VehicleKey(make, model string, year int) string {
	return strings.ToLower(strings.TrimSpace(make)) + "|" +
		strings.ToLower(strings.TrimSpace(model)) + "|" +
		strconv.Itoa(year)
}

// VINKey returns the normalized lookup key for VIN-keyed sources.
func VINKey(vin string) string {
	return strings.ToUpper(strings.TrimSpace(vin))
}
