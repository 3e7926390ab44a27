package phone

import (
	"fmt"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is the region used to parse numbers submitted without a
// country prefix. The console serves Indian salons, so it defaults to IN.
const DefaultRegion = "IN"

// Normalize normalizes a phone number to E.164 format.
func Normalize(phone, region string) (string, error) {
	if phone == "" {
		return "", fmt.Errorf("phone number cannot be empty")
	}

	if region == "" {
		region = DefaultRegion
	}

	parsed, err := phonenumbers.Parse(phone, region)
	if err != nil {
		return "", fmt.Errorf("failed to parse phone number: %w", err)
	}

	if !phonenumbers.IsValidNumber(parsed) {
		return "", fmt.Errorf("invalid phone number")
	}

	return phonenumbers.Format(parsed, phonenumbers.E164), nil
}

// IsValid reports whether the number parses and is valid for the region.
func IsValid(phone, region string) bool {
	if region == "" {
		region = DefaultRegion
	}

	parsed, err := phonenumbers.Parse(phone, region)
	if err != nil {
		return false
	}
	return phonenumbers.IsValidNumber(parsed)
}

// National formats an E.164 number the way callers expect to see it on the
// dialer screen.
func National(phone string) string {
	parsed, err := phonenumbers.Parse(phone, DefaultRegion)
	if err != nil {
		return phone
	}
	return phonenumbers.Format(parsed, phonenumbers.NATIONAL)
}
