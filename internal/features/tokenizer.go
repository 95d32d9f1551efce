package features

import (
	"strings"
	"unicode"
)

// Tokenize lowercases s and splits it into runs of letters and digits.
// "UBER *RIDE #4821" becomes ["uber", "ride", "4821"].
func Tokenize(s string) []string {
	s = strings.ToLower(s)
	var tokens []string
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		tokens = append(tokens, b.String())
	}
	return tokens
}

// Ngrams expands tokens into all n-grams of length 1..max, joined by a
// single space. max below 1 is treated as 1.
func Ngrams(tokens []string, max int) []string {
	if max < 1 {
		max = 1
	}
	var grams []string
	for n := 1; n <= max; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			grams = append(grams, strings.Join(tokens[i:i+n], " "))
		}
	}
	return grams
}
