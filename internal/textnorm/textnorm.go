// Package textnorm canonicalizes profile text so that dedup keys are stable
// across cosmetic differences in case, punctuation and whitespace.
package textnorm

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"unicode"
)

// Normalize lower-cases the input, replaces every run of non-alphanumeric
// runes with a single space and collapses the result. It is total over any
// string and idempotent.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	space := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
			continue
		}
		space = true
	}

	return b.String()
}

// Hash returns the SHA-256 hex digest of the normalized input. Two inputs
// differing only in case, punctuation or whitespace density hash identically.
func Hash(s string) string {
	sum := sha256.Sum256([]byte(Normalize(s)))
	return fmt.Sprintf("%x", sum[:])
}
