// Package textindex implements the bag-of-words primitives behind event
// similarity: tokenization, a TF-IDF index, vocabulary vectors and cosine
// similarity.
package textindex

import (
	"strings"
	"unicode"
)

// Tokenize lower-cases text, drops every rune that is not an ASCII letter,
// digit or whitespace, and splits on whitespace runs. No stemming, no
// stopwords.
func Tokenize(text string) []string {
	if text == "" {
		return []string{}
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	tokens := strings.Fields(b.String())
	if tokens == nil {
		return []string{}
	}
	return tokens
}
