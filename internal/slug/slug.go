// Package slug derives URL-safe identifiers from display names.
package slug

import "strings"

// Make lowercases name and collapses every non-alphanumeric run into a
// single hyphen. The caller appends the entity id to guarantee uniqueness.
func Make(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	prevHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevHyphen = false
		default:
			if !prevHyphen {
				b.WriteByte('-')
				prevHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
