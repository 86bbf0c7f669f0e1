package session

import (
	"strings"
	"unicode"
)

// Reserved validation-error keys that are not field names.
const (
	ErrorKeyGDPR   = "gdpr"
	ErrorKeySubmit = "submit"
)

// ValidEmail checks for an "@" followed by a domain containing a dot.
// Deliberately permissive; the CRM does the authoritative check.
func ValidEmail(v string) bool {
	at := strings.Index(v, "@")
	if at <= 0 || at == len(v)-1 {
		return false
	}
	domain := v[at+1:]
	dot := strings.Index(domain, ".")
	return dot > 0 && dot < len(domain)-1
}

// ValidPhone accepts at least 8 characters drawn from digits, spaces and
// the + - ( ) set.
func ValidPhone(v string) bool {
	if len(v) < 8 {
		return false
	}
	for _, r := range v {
		if unicode.IsDigit(r) || r == ' ' || r == '+' || r == '-' || r == '(' || r == ')' {
			continue
		}
		return false
	}
	return true
}

// ValidPLZ accepts exactly five digits (German postal code).
func ValidPLZ(v string) bool {
	if len(v) != 5 {
		return false
	}
	for _, r := range v {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
