package utils

import (
	"regexp"
	"strings"
)

var nonDigits = regexp.MustCompile(`\D`)

// NormalizePhoneNumber strips formatting, keeping a leading + for
// international numbers.
func NormalizePhoneNumber(phoneNumber string) string {
	phoneNumber = strings.TrimSpace(phoneNumber)
	digits := nonDigits.ReplaceAllString(phoneNumber, "")
	if digits == "" {
		return ""
	}

	if strings.HasPrefix(phoneNumber, "+") {
		return "+" + digits
	}
	return digits
}

// ValidatePhoneNumber accepts 8 to 15 digits (E.164 upper bound).
func ValidatePhoneNumber(phoneNumber string) bool {
	digits := nonDigits.ReplaceAllString(phoneNumber, "")
	return len(digits) >= 8 && len(digits) <= 15
}
