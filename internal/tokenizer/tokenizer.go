// Package tokenizer provides the text normalization pipeline shared by index
// build and query parsing. The same pipeline must run on both sides: token i
// of the returned sequence is position i everywhere downstream, so any
// asymmetry makes vocabulary lookups silently miss.
//
// Normalization rules: lower-casing, possessive stripping, thousands-separator
// removal in numbers, abbreviation collapsing (u.s. -> us), hyphen splitting,
// and Snowball stemming. Stop words are kept so positions stay dense.
package tokenizer

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/kljensen/snowball"
)

var (
	abbrevRe    = regexp.MustCompile(`^[a-z]\.[a-z]\.$`)
	thousandsRe = regexp.MustCompile(`\d{1,3}(?:,\d{3})+`)
)

// Tokenize normalizes text into an ordered token sequence. The result is
// deterministic: equal input always yields equal output.
func Tokenize(text string) []string {
	text = preprocess(text)
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '.'
	})
	tokens := make([]string, 0, len(words))
	for _, word := range words {
		tokens = append(tokens, normalize(word)...)
	}
	return tokens
}

// preprocess lower-cases the text, strips possessives, and removes the commas
// from thousands-grouped numbers so "1,000,000" indexes as one token.
func preprocess(text string) string {
	text = strings.ToLower(text)
	text = strings.ReplaceAll(text, "'s", "")
	text = strings.ReplaceAll(text, "s'", "")
	text = thousandsRe.ReplaceAllStringFunc(text, func(m string) string {
		return strings.ReplaceAll(m, ",", "")
	})
	return text
}

// normalize maps one raw word to zero or more index terms.
func normalize(word string) []string {
	if abbrevRe.MatchString(word) {
		return []string{strings.ReplaceAll(word, ".", "")}
	}
	word = strings.Trim(word, ".-")
	if word == "" {
		return nil
	}
	if isDigits(word) {
		return []string{word}
	}
	if strings.Contains(word, "-") {
		return splitHyphenated(word)
	}
	if isAlnum(word) {
		return []string{stem(word)}
	}
	return nil
}

// splitHyphenated emits each alphanumeric part of a hyphenated compound as
// its own term. A short leading part (under three characters, as in "x-ray")
// keeps the compound whole instead.
func splitHyphenated(word string) []string {
	parts := strings.Split(word, "-")
	if len(parts[0]) < 3 {
		return []string{stem(word)}
	}
	terms := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" && isAlnum(part) {
			terms = append(terms, stem(part))
		}
	}
	return terms
}

// stem reduces a word to its Snowball stem. Words the stemmer cannot handle
// pass through unchanged.
func stem(word string) string {
	stemmed, err := snowball.Stem(word, "english", true)
	if err != nil || stemmed == "" {
		return word
	}
	return stemmed
}

func isDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

func isAlnum(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}
