package slug

import (
	"strings"
	"unicode"
)

// Make turns an arbitrary display name into a lowercase hyphenated URL key.
// "Acme Deals, Inc." -> "acme-deals-inc".
func Make(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// Key normalizes a name for case-insensitive matching.
func Key(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
