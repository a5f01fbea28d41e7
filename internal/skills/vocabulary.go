// Package skills detects canonical skill names in free text.
package skills

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// defaultSkills is the built-in skill list, in reporting order.
var defaultSkills = []string{
	"python", "java", "javascript", "html", "css", "react", "angular", "vue",
	"node.js", "express", "django", "flask", "spring", "hibernate",
	"aws", "azure", "gcp", "docker", "kubernetes", "terraform", "jenkins", "git",
	"sql", "mysql", "postgresql", "mongodb", "redis", "elasticsearch",
	"machine learning", "deep learning", "nlp", "computer vision",
	"data analysis", "data visualization", "tableau", "power bi", "excel",
	"project management", "agile", "scrum", "product management",
	"ui/ux", "figma", "sketch",
}

// Vocabulary is an ordered, immutable set of lowercase skill names.
type Vocabulary struct {
	entries []string
}

// NewVocabulary builds a vocabulary from entries. Entries are lowercased and trimmed;
// blanks and duplicates are dropped while the first-seen order is kept.
func NewVocabulary(entries []string) (*Vocabulary, error) {
	seen := make(map[string]struct{}, len(entries))
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("skill vocabulary is empty")
	}
	return &Vocabulary{entries: out}, nil
}

var defaultVocabulary = func() *Vocabulary {
	v, err := NewVocabulary(defaultSkills)
	if err != nil {
		panic(err)
	}
	return v
}()

// DefaultVocabulary returns the built-in 44-entry vocabulary.
func DefaultVocabulary() *Vocabulary {
	return defaultVocabulary
}

// Len returns the number of entries.
func (v *Vocabulary) Len() int {
	return len(v.entries)
}

// Entries returns a copy of the entries in order.
func (v *Vocabulary) Entries() []string {
	out := make([]string, len(v.entries))
	copy(out, v.entries)
	return out
}

// Contains reports whether skill is in the vocabulary, ignoring case.
func (v *Vocabulary) Contains(skill string) bool {
	skill = strings.ToLower(strings.TrimSpace(skill))
	for _, e := range v.entries {
		if e == skill {
			return true
		}
	}
	return false
}

// vocabularyFile is the on-disk layout of a custom vocabulary.
type vocabularyFile struct {
	Skills []string `yaml:"skills"`
}

// LoadVocabularyFile reads a YAML file of the form
//
//	skills:
//	  - go
//	  - rust
func LoadVocabularyFile(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary file: %w", err)
	}

	var f vocabularyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse vocabulary file %s: %w", path, err)
	}

	v, err := NewVocabulary(f.Skills)
	if err != nil {
		return nil, fmt.Errorf("vocabulary file %s: %w", path, err)
	}
	return v, nil
}
