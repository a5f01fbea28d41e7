package model

import (
	"time"
)

// SectionName identifies a structural section of a document.
type SectionName string

const (
	SectionEducation  SectionName = "education"
	SectionExperience SectionName = "experience"
	SectionSkills     SectionName = "skills"
)

// SectionNames lists every section in its canonical order.
var SectionNames = []SectionName{SectionEducation, SectionExperience, SectionSkills}

// Sections maps each section name to the text accumulated under it.
type Sections map[SectionName]string

// NewSections returns a Sections value with every key present and empty.
func NewSections() Sections {
	s := make(Sections, len(SectionNames))
	for _, name := range SectionNames {
		s[name] = ""
	}
	return s
}

// Complete returns a copy of s that carries all section keys.
func (s Sections) Complete() Sections {
	out := NewSections()
	for name, text := range s {
		out[name] = text
	}
	return out
}

// DocumentRecord is an ingested document, enriched with its sections and skills.
// Records are never mutated after creation; re-ingestion under the same ID replaces them.
type DocumentRecord struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	Skills     []string  `json:"skills"`
	Sections   Sections  `json:"sections"`
	Format     string    `json:"format,omitempty"`
	IngestedAt time.Time `json:"ingested_at"`
}

// HasText reports whether the record carries any text to match against.
func (r DocumentRecord) HasText() bool {
	return r.Text != ""
}

// DocumentSummary is the listing view of a record.
type DocumentSummary struct {
	ID         string    `json:"id"`
	Format     string    `json:"format,omitempty"`
	Skills     []string  `json:"skills"`
	TextLength int       `json:"text_length"`
	IngestedAt time.Time `json:"ingested_at"`
}

// Summary returns the listing view of the record.
func (r DocumentRecord) Summary() DocumentSummary {
	return DocumentSummary{
		ID:         r.ID,
		Format:     r.Format,
		Skills:     r.Skills,
		TextLength: len(r.Text),
		IngestedAt: r.IngestedAt,
	}
}
