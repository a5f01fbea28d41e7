package skills

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Extractor finds vocabulary entries in text.
type Extractor struct {
	vocab *Vocabulary
}

// NewExtractor creates an extractor. A nil vocabulary means DefaultVocabulary.
func NewExtractor(vocab *Vocabulary) *Extractor {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	return &Extractor{vocab: vocab}
}

// Vocabulary returns the vocabulary the extractor matches against.
func (e *Extractor) Vocabulary() *Vocabulary {
	return e.vocab
}

// Extract returns the entries that occur in text as whole words or phrases, in
// vocabulary order. Matching is case-insensitive; "java" does not match inside
// "javascript" but does match in "java, javascript".
func (e *Extractor) Extract(text string) []string {
	lower := strings.ToLower(text)
	found := make([]string, 0)
	for _, skill := range e.vocab.entries {
		if containsWord(lower, skill) {
			found = append(found, skill)
		}
	}
	return found
}

// containsWord reports whether needle occurs in haystack with no word character
// directly before or after it. Entries such as "node.js" and "ui/ux" carry
// punctuation, so this checks the neighbours instead of compiling a regexp per entry.
func containsWord(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	for offset := 0; offset <= len(haystack)-len(needle); {
		i := strings.Index(haystack[offset:], needle)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(needle)

		before, _ := utf8.DecodeLastRuneInString(haystack[:start])
		after, _ := utf8.DecodeRuneInString(haystack[end:])
		first, _ := utf8.DecodeRuneInString(needle)
		last, _ := utf8.DecodeLastRuneInString(needle)

		leftOK := start == 0 || !isWordRune(before) || !isWordRune(first)
		rightOK := end == len(haystack) || !isWordRune(after) || !isWordRune(last)
		if leftOK && rightOK {
			return true
		}
		offset = start + 1
	}
	return false
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

var defaultExtractor = NewExtractor(nil)

// Extract runs the default extractor over text.
func Extract(text string) []string {
	return defaultExtractor.Extract(text)
}

// Intersect returns the entries of a that are also in b, in the order of a,
// without duplicates.
func Intersect(a, b []string) []string {
	inB := make(map[string]struct{}, len(b))
	for _, s := range b {
		inB[s] = struct{}{}
	}
	seen := make(map[string]struct{}, len(a))
	out := make([]string, 0)
	for _, s := range a {
		if _, ok := inB[s]; !ok {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
