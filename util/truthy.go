package util

import "strings"

// Truthy reports whether s reads as an enabled switch, as in SENTRY_DEBUG=on.
func Truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}
