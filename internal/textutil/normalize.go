package textutil

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// minTokenRunes is the shortest token kept by Tokenize.
const minTokenRunes = 2

// Fold lower-cases text and strips combining marks so "Kujō" and "Kujo" compare equal.
func Fold(text string) string {
	if text == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		folded = text
	}
	return strings.ToLower(folded)
}

// Tokenize splits text into folded tokens in order of appearance. Words are
// split on punctuation, camel case, and letter/digit boundaries. Tokens
// shorter than two runes, purely numeric tokens, and stopwords are dropped.
// Duplicates are preserved; use TokenSet for a unique sorted view.
func Tokenize(text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{}
	}
	var tokens []string
	for _, word := range splitWords(text) {
		for _, part := range splitCamel(word) {
			token := Fold(part)
			if !keepToken(token) {
				continue
			}
			tokens = append(tokens, token)
		}
	}
	if tokens == nil {
		return []string{}
	}
	return tokens
}

// TokenSet returns the unique tokens of text sorted lexicographically.
func TokenSet(text string) []string {
	return SortedUnique(Tokenize(text))
}

// SortedUnique returns a sorted copy of values without duplicates or empty strings.
func SortedUnique(values []string) []string {
	if len(values) == 0 {
		return []string{}
	}
	out := make([]string, 0, len(values))
	for _, value := range values {
		if value == "" {
			continue
		}
		out = append(out, value)
	}
	sort.Strings(out)
	unique := out[:0]
	for i, value := range out {
		if i > 0 && value == out[i-1] {
			continue
		}
		unique = append(unique, value)
	}
	return unique
}

// Condense folds text and keeps only letters and digits, e.g.
// "Raiden Shogun" -> "raidenshogun".
func Condense(text string) string {
	folded := Fold(text)
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Normalize folds text and collapses every run of non-alphanumeric runes to a
// single space.
func Normalize(text string) string {
	return strings.Join(splitWords(Fold(text)), " ")
}

func keepToken(token string) bool {
	if len([]rune(token)) < minTokenRunes {
		return false
	}
	if IsStopword(token) {
		return false
	}
	for _, r := range token {
		if !unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func splitWords(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// splitCamel breaks "HuTaoBody2" into ["Hu", "Tao", "Body", "2"] and
// "HTMLParser" into ["HTML", "Parser"].
func splitCamel(word string) []string {
	rs := []rune(word)
	if len(rs) < 2 {
		return []string{word}
	}
	var parts []string
	start := 0
	for i := 1; i < len(rs); i++ {
		prev, cur := rs[i-1], rs[i]
		split := false
		switch {
		case unicode.IsLower(prev) && unicode.IsUpper(cur):
			split = true
		case unicode.IsLetter(prev) && unicode.IsDigit(cur):
			split = true
		case unicode.IsDigit(prev) && unicode.IsLetter(cur):
			split = true
		case unicode.IsUpper(prev) && unicode.IsUpper(cur) && i+1 < len(rs) && unicode.IsLower(rs[i+1]):
			split = true
		}
		if split {
			parts = append(parts, string(rs[start:i]))
			start = i
		}
	}
	parts = append(parts, string(rs[start:]))
	return parts
}
