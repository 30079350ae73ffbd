// Package normalize cleans free-text name fields before they are written into
// a payment message. Banks reject or mangle accented and punctuated names, so
// only ASCII letters, digits and spaces survive.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Name decomposes text (NFD), drops the combining marks and then removes
// every rune that is not an ASCII letter, ASCII digit or space.
//
//	Name("Ángel-López 2!") == "AngelLopez 2"
func Name(text string) string {
	if text == "" {
		return ""
	}

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(t, text)
	if err != nil {
		folded = text
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if isKept(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isKept(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == ' ':
		return true
	}
	return false
}
