package utils

import (
	"regexp"
	"strings"
	"unicode"
)

// clientPhonePattern is the national prefix rule for client phone numbers.
var clientPhonePattern = regexp.MustCompile(`^\+972\d{7,9}$`)

// NormalizeString trims whitespace from user-entered text.
func NormalizeString(s string) string {
	return strings.TrimSpace(s)
}

// NormalizePhone strips everything but digits, keeping a leading +.
func NormalizePhone(phone string) string {
	cleaned := strings.TrimSpace(phone)
	if cleaned == "" {
		return ""
	}

	var result strings.Builder
	for i, r := range cleaned {
		if i == 0 && r == '+' {
			result.WriteRune(r)
		} else if unicode.IsDigit(r) {
			result.WriteRune(r)
		}
	}

	return result.String()
}

// IsValidClientPhone reports whether a phone number matches the +972
// national prefix pattern after normalization.
func IsValidClientPhone(phone string) bool {
	return clientPhonePattern.MatchString(NormalizePhone(phone))
}

// NormalizeLookupPhone normalizes a phone given as a search query. An
// unencoded + decodes to a space in query strings, so a bare national
// number (972 plus 7-9 digits) gets its leading + restored.
func NormalizeLookupPhone(phone string) string {
	p := NormalizePhone(phone)
	if !strings.HasPrefix(p, "+") && strings.HasPrefix(p, "972") && len(p) >= 10 && len(p) <= 12 {
		return "+" + p
	}
	return p
}

// PhoneDigits strips every non-digit character. Messaging provider
// recipients are bare digit strings without the leading +.
func PhoneDigits(phone string) string {
	var result strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}
