package slug

import "strings"

// Make derives a URL-safe identifier from an English display name: lowercase,
// runs of non-alphanumeric characters collapsed to a single '-', leading and
// trailing '-' stripped.
func Make(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	lastDash := true // suppress a leading dash
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}

// Valid reports whether s is a well-formed slug.
func Valid(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') && c != '-' {
			return false
		}
	}
	return true
}
