package tokenizer

import (
	"regexp"
	"strings"
)

// nonLetterRegex matches every character that is neither an ASCII letter nor whitespace.
var nonLetterRegex = regexp.MustCompile(`[^a-zA-Z\s]`)

// whitespaceRegex matches runs of whitespace.
var whitespaceRegex = regexp.MustCompile(`\s+`)

// termRegex matches vectorizer terms: runs of two or more Unicode letters, marks,
// digits or underscores.
var termRegex = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]{2,}`)

// Normalize lowercases text, replaces everything outside [a-zA-Z] and whitespace
// with a space, collapses whitespace runs and trims the result.
// The output only contains lowercase letters and single spaces, and
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	// 1. Lowercase
	lowerText := strings.ToLower(text)

	// 2. Drop non-letters
	lettersOnly := nonLetterRegex.ReplaceAllString(lowerText, " ")

	// 3. Collapse whitespace and trim
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(lettersOnly, " "))
}

// Tokenize lowercases text and returns its vectorizer terms in order of appearance.
// Single-character terms are dropped.
func Tokenize(text string) []string {
	lowerText := strings.ToLower(text)

	tokens := termRegex.FindAllString(lowerText, -1)
	if tokens == nil {
		return make([]string, 0) // Initialize as empty slice, not nil
	}
	return tokens
}

// TokenizeWithoutStopWords is Tokenize with English stop words removed.
func TokenizeWithoutStopWords(text string) []string {
	tokens := Tokenize(text)

	result := tokens[:0]
	for _, token := range tokens {
		if IsStopWord(token) {
			continue
		}
		result = append(result, token)
	}
	return result
}
