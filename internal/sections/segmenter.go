// Package sections splits raw document text into labeled structural sections.
package sections

import (
	"strings"

	"github.com/gcbaptista/resumatch/model"
)

// Rule switches the current section when a line contains Trigger.
type Rule struct {
	Trigger string
	Section model.SectionName
}

// DefaultRules are checked in order; the first matching trigger wins.
// "skill" also matches "skills".
var DefaultRules = []Rule{
	{Trigger: "education", Section: model.SectionEducation},
	{Trigger: "experience", Section: model.SectionExperience},
	{Trigger: "skill", Section: model.SectionSkills},
}

// Segmenter assigns lines to sections using an ordered rule list.
type Segmenter struct {
	rules []Rule
}

// NewSegmenter creates a segmenter. Nil or empty rules fall back to DefaultRules.
func NewSegmenter(rules []Rule) *Segmenter {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Segmenter{rules: rules}
}

// Segment splits text into lines. A line containing a trigger becomes a header and
// switches the current section; every other line is lowercased, trimmed and appended,
// followed by a space, to the current section. Lines before the first header are dropped.
// The result always carries every section key.
func (s *Segmenter) Segment(text string) model.Sections {
	accumulators := make(map[model.SectionName]*strings.Builder, len(model.SectionNames))
	var current model.SectionName

	for _, raw := range strings.Split(text, "\n") {
		line := strings.ToLower(strings.TrimSpace(raw))

		if section, ok := s.match(line); ok {
			current = section
			continue
		}
		if current == "" {
			continue
		}

		b, ok := accumulators[current]
		if !ok {
			b = &strings.Builder{}
			accumulators[current] = b
		}
		b.WriteString(line)
		b.WriteString(" ")
	}

	out := model.NewSections()
	for name, b := range accumulators {
		out[name] = b.String()
	}
	return out
}

func (s *Segmenter) match(line string) (model.SectionName, bool) {
	for _, rule := range s.rules {
		if strings.Contains(line, rule.Trigger) {
			return rule.Section, true
		}
	}
	return "", false
}

var defaultSegmenter = NewSegmenter(nil)

// Segment segments text with the default rules.
func Segment(text string) model.Sections {
	return defaultSegmenter.Segment(text)
}
