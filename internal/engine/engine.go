// Package engine wires extraction, storage, quotas and scoring into the ingest and
// rank operations of the service.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/gcbaptista/resumatch/config"
	"github.com/gcbaptista/resumatch/internal/blobstore"
	"github.com/gcbaptista/resumatch/internal/extraction"
	"github.com/gcbaptista/resumatch/internal/extraction/ocr"
	"github.com/gcbaptista/resumatch/internal/jobs"
	"github.com/gcbaptista/resumatch/internal/logger"
	"github.com/gcbaptista/resumatch/internal/quota"
	"github.com/gcbaptista/resumatch/internal/scoring"
	"github.com/gcbaptista/resumatch/internal/sections"
	"github.com/gcbaptista/resumatch/internal/skills"
	"github.com/gcbaptista/resumatch/model"
	"github.com/gcbaptista/resumatch/services"
	"github.com/gcbaptista/resumatch/store"
	"github.com/gcbaptista/resumatch/store/postgres"
)

const (
	dataDirPerm = 0755
	blobsDir    = "blobs"
)

// Options overrides the components New would otherwise build from settings.
type Options struct {
	Settings   *config.Settings
	Records    services.RecordStore       // nil: memory store persisted under DataDir, or postgres
	Blobs      services.BlobStore         // nil: file store under DataDir/blobs
	Recognizer ocr.Recognizer             // nil: built from Settings.OCR
	Trigger    services.EnrichmentTrigger // nil: background job on the engine's job manager
	Logger     *zap.Logger
}

// Engine is the matching service. It implements services.Ranker,
// services.DocumentService and services.UsageReporter.
type Engine struct {
	settings  config.Settings
	records   services.RecordStore
	memStore  *store.DocumentStore // set when records live in memory
	pgStore   *postgres.Store      // set when records live in postgres
	blobs     services.BlobStore
	extractor *extraction.Extractor
	segmenter *sections.Segmenter
	skills    *skills.Extractor
	scorer    *scoring.Engine
	quota     *quota.Tracker
	jobs      *jobs.Manager
	trigger   services.EnrichmentTrigger
	logger    *zap.Logger

	persistMu sync.Mutex
	closeOnce sync.Once
}

// New builds an engine and restores persisted state from the data directory.
func New(ctx context.Context, opts Options) (*Engine, error) {
	settings := config.Default()
	if opts.Settings != nil {
		s := *opts.Settings
		s.ApplyDefaults()
		settings = &s
	}
	if problems := settings.Validate(); len(problems) > 0 {
		return nil, fmt.Errorf("invalid settings: %v", problems)
	}
	log := logger.OrNop(opts.Logger)

	if err := os.MkdirAll(settings.DataDir, dataDirPerm); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", settings.DataDir, err)
	}

	vocab := skills.DefaultVocabulary()
	if settings.VocabularyFile != "" {
		loaded, err := skills.LoadVocabularyFile(settings.VocabularyFile)
		if err != nil {
			return nil, err
		}
		vocab = loaded
	}
	skillExtractor := skills.NewExtractor(vocab)

	e := &Engine{
		settings:  *settings,
		segmenter: sections.NewSegmenter(nil),
		skills:    skillExtractor,
		scorer:    scoring.NewEngine(settings.Scoring, skillExtractor),
		quota:     quota.NewTracker(settings.Quota),
		jobs:      jobs.NewManager(settings.Workers, log),
		logger:    log,
	}

	recognizer := opts.Recognizer
	if recognizer == nil {
		recognizer = newRecognizer(settings.OCR, log)
	}
	if recognizer != nil {
		recognizer = ocr.NewMetered(recognizer, e.quota)
	}
	e.extractor = extraction.NewExtractor(recognizer, nil, log)

	if err := e.openRecords(ctx, opts.Records); err != nil {
		return nil, err
	}

	e.blobs = opts.Blobs
	if e.blobs == nil {
		fs, err := blobstore.NewFileStore(filepath.Join(settings.DataDir, blobsDir))
		if err != nil {
			e.closeRecords()
			return nil, err
		}
		e.blobs = fs
	}

	e.trigger = opts.Trigger
	if e.trigger == nil {
		e.trigger = &jobTrigger{engine: e}
	}

	e.restoreUsage(ctx)
	e.jobs.Start()

	log.Info("Engine ready",
		zap.String("data_dir", settings.DataDir),
		zap.String("corpus_backend", settings.CorpusBackend),
		zap.String("ocr_backend", settings.OCR.Backend),
		zap.Int("vocabulary_size", vocab.Len()))
	return e, nil
}

func newRecognizer(settings config.OCRSettings, log *zap.Logger) ocr.Recognizer {
	switch settings.Backend {
	case config.OCRBackendHTTP:
		return ocr.NewHTTPClient(settings.URL, settings.Timeout, settings.MaxRetries, log)
	case config.OCRBackendNone:
		return nil
	default:
		return ocr.NewPDFText()
	}
}

func (e *Engine) openRecords(ctx context.Context, records services.RecordStore) error {
	if records != nil {
		e.records = records
		return nil
	}

	if e.settings.CorpusBackend == config.CorpusBackendPostgres {
		pg, err := postgres.Connect(ctx, e.settings.DatabaseURL)
		if err != nil {
			return err
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			pg.Close()
			return err
		}
		e.pgStore = pg
		e.records = pg
		return nil
	}

	e.memStore = e.loadDocumentStore()
	e.records = e.memStore
	return nil
}

func (e *Engine) closeRecords() {
	if e.pgStore != nil {
		e.pgStore.Close()
	}
}

// Close stops background jobs and flushes persisted state. It is safe to call more than once.
func (e *Engine) Close() error {
	var err error
	e.closeOnce.Do(func() {
		e.jobs.Stop()
		if saveErr := e.persistDocumentStore(); saveErr != nil {
			err = saveErr
		}
		if saveErr := e.persistUsage(); saveErr != nil && err == nil {
			err = saveErr
		}
		e.closeRecords()
		e.logger.Info("Engine closed")
	})
	return err
}

// Settings returns the effective settings.
func (e *Engine) Settings() config.Settings {
	return e.settings
}

// Jobs returns the background job manager.
func (e *Engine) Jobs() *jobs.Manager {
	return e.jobs
}

// Usage returns a snapshot of quota usage.
func (e *Engine) Usage() model.UsageReport {
	return e.quota.Usage()
}

// buildRecord enriches extracted text into a record.
func (e *Engine) buildRecord(id string, text string) model.DocumentRecord {
	return model.DocumentRecord{
		ID:       id,
		Text:     text,
		Skills:   e.skills.Extract(text),
		Sections: e.segmenter.Segment(text),
		Format:   string(extraction.FormatFromKey(id)),
	}
}
