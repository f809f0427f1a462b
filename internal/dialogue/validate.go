package dialogue

import (
	"strings"
	"unicode"
)

// ValidEmail checks the local@domain.tld shape: exactly one "@", no
// whitespace, and a dotted domain with no empty labels.
func ValidEmail(s string) bool {
	if s == "" || strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return false
	}
	if strings.Count(s, "@") != 1 {
		return false
	}
	local, domain, _ := strings.Cut(s, "@")
	if local == "" || !strings.Contains(domain, ".") {
		return false
	}
	for _, label := range strings.Split(domain, ".") {
		if label == "" {
			return false
		}
	}
	return true
}

// ValidPhone accepts non-empty text made only of digits, spaces, hyphens and
// parentheses.
func ValidPhone(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == ' ', r == '-', r == '(', r == ')':
		default:
			return false
		}
	}
	return true
}

func containsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
