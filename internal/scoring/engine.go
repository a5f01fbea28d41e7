// Package scoring ranks documents against a query by combining lexical similarity,
// skill overlap and section presence.
package scoring

import (
	"sort"
	"strings"

	"github.com/gcbaptista/resumatch/config"
	internalErrors "github.com/gcbaptista/resumatch/internal/errors"
	"github.com/gcbaptista/resumatch/internal/skills"
	"github.com/gcbaptista/resumatch/internal/tfidf"
	"github.com/gcbaptista/resumatch/internal/tokenizer"
	"github.com/gcbaptista/resumatch/model"
)

// Engine scores a corpus against a query. It holds no per-call state and is safe
// for concurrent use.
type Engine struct {
	settings  config.ScoringSettings
	extractor *skills.Extractor
}

// NewEngine creates a scoring engine. Zero weights and an empty denominator take the
// defaults; a nil extractor uses the built-in vocabulary.
func NewEngine(settings config.ScoringSettings, extractor *skills.Extractor) *Engine {
	if settings.ContentWeight == 0 && settings.SkillWeight == 0 && settings.SectionWeight == 0 {
		settings.ContentWeight = config.DefaultContentWeight
		settings.SkillWeight = config.DefaultSkillWeight
		settings.SectionWeight = config.DefaultSectionWeight
	}
	if settings.SkillDenominator == "" {
		settings.SkillDenominator = config.DenominatorVocabulary
	}
	if extractor == nil {
		extractor = skills.NewExtractor(nil)
	}
	return &Engine{settings: settings, extractor: extractor}
}

// Settings returns the effective scoring settings.
func (e *Engine) Settings() config.ScoringSettings {
	return e.settings
}

// Score ranks corpus against query, best first. Documents with equal scores keep
// their corpus order. An empty corpus yields an empty result without building a
// vector space; a corpus with no usable terms yields a MatchingError.
func (e *Engine) Score(query string, corpus []model.DocumentRecord) ([]model.ScoreResult, error) {
	if len(corpus) == 0 {
		return []model.ScoreResult{}, nil
	}

	// The query is normalised; documents are vectorised from their raw text.
	texts := make([]string, 0, len(corpus)+1)
	texts = append(texts, tokenizer.Normalize(query))
	for _, doc := range corpus {
		texts = append(texts, doc.Text)
	}

	_, matrix, err := tfidf.FitTransform(texts)
	if err != nil {
		return nil, internalErrors.NewMatchingError(err)
	}

	querySkills := e.extractor.Extract(query)
	lowerQuery := strings.ToLower(query)

	results := make([]model.ScoreResult, len(corpus))
	for i, doc := range corpus {
		content := tfidf.Cosine(matrix[0], matrix[i+1])

		docSkills := doc.Skills
		if docSkills == nil {
			docSkills = e.extractor.Extract(doc.Text)
		}
		shared := skills.Intersect(docSkills, querySkills)

		components := model.ScoreComponents{
			Content: content,
			Skill:   e.skillScore(len(shared), len(querySkills)),
			Section: sectionScore(doc.Sections, lowerQuery),
		}

		results[i] = model.ScoreResult{
			ID:            doc.ID,
			Score:         e.combine(components),
			Components:    components,
			MatchedSkills: shared,
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results, nil
}

func (e *Engine) skillScore(shared, querySkills int) float64 {
	var denominator int
	switch e.settings.SkillDenominator {
	case config.DenominatorQuery:
		denominator = querySkills
	default:
		denominator = e.extractor.Vocabulary().Len()
	}
	if denominator == 0 {
		return 0
	}
	return float64(shared) / float64(denominator)
}

// sectionScore counts the sections that hold text and whose name appears in the
// lowercased query, over the number of section names.
func sectionScore(sections model.Sections, lowerQuery string) float64 {
	count := 0
	for _, name := range model.SectionNames {
		if sections[name] != "" && strings.Contains(lowerQuery, string(name)) {
			count++
		}
	}
	return float64(count) / float64(len(model.SectionNames))
}

func (e *Engine) combine(c model.ScoreComponents) float64 {
	return e.settings.ContentWeight*c.Content +
		e.settings.SkillWeight*c.Skill +
		e.settings.SectionWeight*c.Section
}
