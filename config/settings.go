// Package config provides configuration structures for the matching service.
// It defines scoring weights, quotas, storage backends and other runtime options.
package config

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// SkillDenominator selects what the number of shared skills is divided by.
type SkillDenominator string

const (
	// DenominatorVocabulary divides by the size of the skill vocabulary.
	DenominatorVocabulary SkillDenominator = "vocabulary"
	// DenominatorQuery divides by the number of skills found in the query.
	DenominatorQuery SkillDenominator = "query"
)

// Corpus backends.
const (
	CorpusBackendMemory   = "memory"
	CorpusBackendPostgres = "postgres"
)

// OCR backends.
const (
	OCRBackendPDFText = "pdftext" // local text layer of PDF files
	OCRBackendHTTP    = "http"    // remote recognition service
	OCRBackendNone    = "none"    // every OCR-backed format fails extraction
)

// Defaults mirror the limits of the hosted deployment the service was first built for.
const (
	DefaultContentWeight      = 0.6
	DefaultSkillWeight        = 0.3
	DefaultSectionWeight      = 0.1
	DefaultCorpusLimit        = 25
	DefaultOCRPages           = 1000
	DefaultTriggerInvocations = 1_000_000
	DefaultStorageBytes       = 5 << 30
	DefaultPreviewLength      = 300
	DefaultMaxUploadBytes     = 10 << 20
	DefaultWorkers            = 2
	DefaultBatchConcurrency   = 4
	DefaultAddr               = ":8080"
	DefaultDataDir            = "./data"
	DefaultOCRTimeout         = 30 * time.Second
)

// ScoringSettings controls how the composite score is assembled.
type ScoringSettings struct {
	ContentWeight    float64          `mapstructure:"content_weight" json:"content_weight"`       // Weight of TF-IDF cosine similarity
	SkillWeight      float64          `mapstructure:"skill_weight" json:"skill_weight"`           // Weight of skill overlap
	SectionWeight    float64          `mapstructure:"section_weight" json:"section_weight"`       // Weight of section presence
	SkillDenominator SkillDenominator `mapstructure:"skill_denominator" json:"skill_denominator"` // "vocabulary" (default) or "query"
}

// QuotaSettings caps metered resources. A limit of zero means the default.
type QuotaSettings struct {
	OCRPages           int64 `mapstructure:"ocr_pages" json:"ocr_pages"`
	TriggerInvocations int64 `mapstructure:"trigger_invocations" json:"trigger_invocations"`
	StorageBytes       int64 `mapstructure:"storage_bytes" json:"storage_bytes"`
}

// OCRSettings selects and configures the recognizer behind image and PDF extraction.
type OCRSettings struct {
	Backend    string        `mapstructure:"backend" json:"backend"`         // pdftext, http or none
	URL        string        `mapstructure:"url" json:"url"`                 // Endpoint of the http backend
	Timeout    time.Duration `mapstructure:"timeout" json:"timeout"`         // Per-request timeout of the http backend
	MaxRetries int           `mapstructure:"max_retries" json:"max_retries"` // Retries of the http backend on 5xx or transport errors
}

// LogSettings configures the process logger.
type LogSettings struct {
	JSON  bool `mapstructure:"json" json:"json"`
	Debug bool `mapstructure:"debug" json:"debug"`
}

// Settings is the full runtime configuration.
type Settings struct {
	Addr             string          `mapstructure:"addr" json:"addr"`                           // HTTP listen address
	DataDir          string          `mapstructure:"data_dir" json:"data_dir"`                   // Root of blobs and the persisted document store
	CorpusBackend    string          `mapstructure:"corpus_backend" json:"corpus_backend"`       // memory or postgres
	DatabaseURL      string          `mapstructure:"database_url" json:"-"`                      // Required by the postgres backend
	CorpusLimit      int             `mapstructure:"corpus_limit" json:"corpus_limit"`           // Max documents read per ranking call
	VocabularyFile   string          `mapstructure:"vocabulary_file" json:"vocabulary_file"`     // Optional YAML skill list replacing the built-in one
	Workers          int             `mapstructure:"workers" json:"workers"`                     // Concurrent background jobs
	BatchConcurrency int             `mapstructure:"batch_concurrency" json:"batch_concurrency"` // Parallel extractions inside one batch ingest
	MaxUploadBytes   int64           `mapstructure:"max_upload_bytes" json:"max_upload_bytes"`   // Request body limit for uploads
	PreviewLength    int             `mapstructure:"preview_length" json:"preview_length"`       // Runes of extracted text returned on upload
	Scoring          ScoringSettings `mapstructure:"scoring" json:"scoring"`
	Quota            QuotaSettings   `mapstructure:"quota" json:"quota"`
	OCR              OCRSettings     `mapstructure:"ocr" json:"ocr"`
	Log              LogSettings     `mapstructure:"log" json:"log"`
}

// Default returns settings with every default applied.
func Default() *Settings {
	s := &Settings{}
	s.ApplyDefaults()
	return s
}

// ApplyDefaults fills zero values with defaults.
func (settings *Settings) ApplyDefaults() {
	if settings.Addr == "" {
		settings.Addr = DefaultAddr
	}
	if settings.DataDir == "" {
		settings.DataDir = DefaultDataDir
	}
	if settings.CorpusBackend == "" {
		settings.CorpusBackend = CorpusBackendMemory
	}
	if settings.CorpusLimit == 0 {
		settings.CorpusLimit = DefaultCorpusLimit
	}
	if settings.Workers == 0 {
		settings.Workers = DefaultWorkers
	}
	if settings.BatchConcurrency == 0 {
		settings.BatchConcurrency = DefaultBatchConcurrency
	}
	if settings.MaxUploadBytes == 0 {
		settings.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if settings.PreviewLength == 0 {
		settings.PreviewLength = DefaultPreviewLength
	}

	// Weights are defaulted together so an explicit zero weight survives.
	sc := &settings.Scoring
	if sc.ContentWeight == 0 && sc.SkillWeight == 0 && sc.SectionWeight == 0 {
		sc.ContentWeight = DefaultContentWeight
		sc.SkillWeight = DefaultSkillWeight
		sc.SectionWeight = DefaultSectionWeight
	}
	if sc.SkillDenominator == "" {
		sc.SkillDenominator = DenominatorVocabulary
	}

	if settings.Quota.OCRPages == 0 {
		settings.Quota.OCRPages = DefaultOCRPages
	}
	if settings.Quota.TriggerInvocations == 0 {
		settings.Quota.TriggerInvocations = DefaultTriggerInvocations
	}
	if settings.Quota.StorageBytes == 0 {
		settings.Quota.StorageBytes = DefaultStorageBytes
	}

	if settings.OCR.Backend == "" {
		settings.OCR.Backend = OCRBackendPDFText
	}
	if settings.OCR.Timeout == 0 {
		settings.OCR.Timeout = DefaultOCRTimeout
	}
}

// Validate returns one message per problem found; an empty result means the settings are usable.
func (settings *Settings) Validate() []string {
	var problems []string

	if strings.TrimSpace(settings.DataDir) == "" {
		problems = append(problems, "data_dir cannot be empty")
	}

	switch settings.CorpusBackend {
	case CorpusBackendMemory:
	case CorpusBackendPostgres:
		if strings.TrimSpace(settings.DatabaseURL) == "" {
			problems = append(problems, "database_url is required when corpus_backend is 'postgres'")
		}
	default:
		problems = append(problems, fmt.Sprintf("corpus_backend '%s' is not supported (use 'memory' or 'postgres')", settings.CorpusBackend))
	}

	switch settings.OCR.Backend {
	case OCRBackendPDFText, OCRBackendNone:
	case OCRBackendHTTP:
		if strings.TrimSpace(settings.OCR.URL) == "" {
			problems = append(problems, "ocr.url is required when ocr.backend is 'http'")
		}
	default:
		problems = append(problems, fmt.Sprintf("ocr.backend '%s' is not supported (use 'pdftext', 'http' or 'none')", settings.OCR.Backend))
	}
	if settings.OCR.MaxRetries < 0 {
		problems = append(problems, "ocr.max_retries cannot be negative")
	}

	if settings.CorpusLimit < 0 {
		problems = append(problems, "corpus_limit cannot be negative")
	}
	if settings.Workers < 0 {
		problems = append(problems, "workers cannot be negative")
	}
	if settings.BatchConcurrency < 0 {
		problems = append(problems, "batch_concurrency cannot be negative")
	}
	if settings.MaxUploadBytes < 0 {
		problems = append(problems, "max_upload_bytes cannot be negative")
	}
	if settings.PreviewLength < 0 {
		problems = append(problems, "preview_length cannot be negative")
	}

	problems = append(problems, settings.Scoring.validate()...)

	if settings.Quota.OCRPages < 0 || settings.Quota.TriggerInvocations < 0 || settings.Quota.StorageBytes < 0 {
		problems = append(problems, "quota limits cannot be negative")
	}

	return problems
}

func (sc ScoringSettings) validate() []string {
	var problems []string

	weights := map[string]float64{
		"scoring.content_weight": sc.ContentWeight,
		"scoring.skill_weight":   sc.SkillWeight,
		"scoring.section_weight": sc.SectionWeight,
	}
	for _, name := range []string{"scoring.content_weight", "scoring.skill_weight", "scoring.section_weight"} {
		w := weights[name]
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			problems = append(problems, fmt.Sprintf("%s must be a finite, non-negative number", name))
		}
	}

	switch sc.SkillDenominator {
	case DenominatorVocabulary, DenominatorQuery:
	default:
		problems = append(problems, fmt.Sprintf("scoring.skill_denominator '%s' is not supported (use 'vocabulary' or 'query')", sc.SkillDenominator))
	}

	return problems
}
