// Package tfidf builds TF-IDF vector spaces over small document batches.
package tfidf

import (
	"errors"
	"math"
	"sort"

	"github.com/gcbaptista/resumatch/internal/tokenizer"
)

// ErrEmptyVocabulary is returned when a corpus yields no terms after stop-word removal.
var ErrEmptyVocabulary = errors.New("empty vocabulary; perhaps the documents only contain stop words")

// Vectorizer maps texts onto a fitted term space. Weights are raw term counts times a
// smoothed inverse document frequency, and every vector is L2-normalised.
type Vectorizer struct {
	vocabulary map[string]int
	terms      []string
	idf        []float64
}

// Fit builds the term space from corpus. Terms are sorted so the vector layout is stable.
func Fit(corpus []string) (*Vectorizer, error) {
	if len(corpus) == 0 {
		return nil, ErrEmptyVocabulary
	}

	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range tokenizer.TokenizeWithoutStopWords(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	if len(df) == 0 {
		return nil, ErrEmptyVocabulary
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	v := &Vectorizer{
		vocabulary: make(map[string]int, len(terms)),
		terms:      terms,
		idf:        make([]float64, len(terms)),
	}
	n := float64(len(corpus))
	for i, term := range terms {
		v.vocabulary[term] = i
		// Smoothed IDF: as if one extra document contained every term once.
		v.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	return v, nil
}

// FitTransform fits corpus and returns one vector per corpus entry, in order.
func FitTransform(corpus []string) (*Vectorizer, [][]float64, error) {
	v, err := Fit(corpus)
	if err != nil {
		return nil, nil, err
	}
	matrix := make([][]float64, len(corpus))
	for i, text := range corpus {
		matrix[i] = v.Transform(text)
	}
	return v, matrix, nil
}

// Dimension returns the number of terms in the space.
func (v *Vectorizer) Dimension() int {
	return len(v.terms)
}

// Terms returns the sorted term list.
func (v *Vectorizer) Terms() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

// Transform projects text onto the fitted space. Unknown terms are ignored; a text with
// no known terms maps to the zero vector.
func (v *Vectorizer) Transform(text string) []float64 {
	vec := make([]float64, len(v.terms))
	for _, tok := range tokenizer.TokenizeWithoutStopWords(text) {
		if idx, ok := v.vocabulary[tok]; ok {
			vec[idx]++
		}
	}

	norm := 0.0
	for i := range vec {
		vec[i] *= v.idf[i]
		norm += vec[i] * vec[i]
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}

// Cosine returns the cosine similarity of two vectors of equal length.
// It returns 0 when either vector is zero.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
