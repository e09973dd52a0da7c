package domain

import (
	"regexp"
	"strings"
)

var platePattern = regexp.MustCompile(`^[A-Z0-9-]{2,12}$`)

// NormalizePlate uppercases a license plate and strips internal whitespace so
// "abc 123" and "ABC123" identify the same vehicle.
func NormalizePlate(raw string) (string, error) {
	plate := strings.ToUpper(strings.Join(strings.Fields(raw), ""))
	if plate == "" {
		return "", Validationf("plate is required")
	}
	if !platePattern.MatchString(plate) {
		return "", Validationf("invalid plate %q", plate)
	}
	return plate, nil
}
