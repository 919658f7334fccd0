// Package sanitizer normalizes user-supplied turf and account fields before
// validation and storage. All functions are idempotent and handle invalid
// input by returning empty values rather than errors.
package sanitizer

import (
	"strings"
	"unicode"

	"github.com/nyaruka/phonenumbers"
)

var supportedRegions = []string{
	"TH",
	"IN",
	"US",
}

// TrimAndNormalize trims the string and collapses internal whitespace runs
// to a single space.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

// NormalizeLocation lowercases a turf location so city filters match
// regardless of how the owner typed it.
func NormalizeLocation(location string) string {
	return strings.ToLower(TrimAndNormalize(location))
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizePhone converts a phone number to E.164, trying each supported
// region in order. Unparseable numbers come back empty.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)

	if phone == "" {
		return ""
	}

	for _, region := range supportedRegions {
		parsedNumber, err := phonenumbers.Parse(phone, region)
		if err == nil && phonenumbers.IsValidNumber(parsedNumber) {
			return phonenumbers.Format(parsedNumber, phonenumbers.E164)
		}
	}
	return ""
}

// NormalizePrice clamps a per-slot price to a sane non-negative range.
func NormalizePrice(price int64) int64 {
	const maxPrice = 1_000_000
	if price < 0 {
		return 0
	}
	if price > maxPrice {
		return maxPrice
	}
	return price
}
