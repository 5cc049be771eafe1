package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	emailRegex  = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex  = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
	policyRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9\-/]{2,39}$`)
	digitRegex  = regexp.MustCompile(`^[0-9A-Za-z]$`)
	controlChar = regexp.MustCompile(`[\x00-\x1f\x7f]`)
	phoneStrip  = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")
)

// ValidateEmail validates an email address
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

// NormalizePhone strips common separators from a phone number
func NormalizePhone(phone string) string {
	return phoneStrip.Replace(strings.TrimSpace(phone))
}

// ValidatePhone validates a phone number after normalization. An optional
// leading + is allowed, followed by 10 to 15 digits.
func ValidatePhone(phone string) error {
	if !phoneRegex.MatchString(NormalizePhone(phone)) {
		return fmt.Errorf("invalid phone number: %s", phone)
	}
	return nil
}

// ValidatePolicyNumber validates an insurer policy number
func ValidatePolicyNumber(policy string) error {
	if !policyRegex.MatchString(policy) {
		return fmt.Errorf("invalid policy number: %s", policy)
	}
	return nil
}

// ValidateCheckDigit validates a single-character policy check digit.
// An empty check digit is accepted.
func ValidateCheckDigit(digit string) error {
	if digit == "" {
		return nil
	}
	if !digitRegex.MatchString(digit) {
		return fmt.Errorf("check digit must be a single character: %s", digit)
	}
	return nil
}

// SanitizeString removes control characters and surrounding whitespace
func SanitizeString(s string) string {
	return strings.TrimSpace(controlChar.ReplaceAllString(s, ""))
}
