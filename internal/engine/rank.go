package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	internalErrors "github.com/gcbaptista/resumatch/internal/errors"
	"github.com/gcbaptista/resumatch/model"
)

// Rank scores the corpus against query and returns at most limit results, best first.
// A limit <= 0 returns every result. Records without text are ignored; when no record
// has text the raw blobs are extracted instead.
func (e *Engine) Rank(ctx context.Context, query string, limit int) (*model.RankResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, internalErrors.NewValidationError("query", "query cannot be empty")
	}
	start := time.Now()

	corpus, source, err := e.loadCorpus(ctx)
	if err != nil {
		return nil, err
	}

	results, err := e.scorer.Score(query, corpus)
	if err != nil {
		return nil, err
	}

	total := len(results)
	if limit > 0 && limit < total {
		results = results[:limit]
	}

	took := time.Since(start)
	e.logger.Info("Ranked corpus",
		zap.String("source", string(source)),
		zap.Int("documents", total),
		zap.Int("returned", len(results)),
		zap.Duration("took", took))

	return &model.RankResult{
		ID:       uuid.NewString(),
		Query:    query,
		Results:  results,
		Total:    total,
		Source:   source,
		Took:     took.Milliseconds(),
		RankedAt: time.Now().UTC(),
	}, nil
}

// loadCorpus reads up to CorpusLimit records with text, falling back to the blob store.
func (e *Engine) loadCorpus(ctx context.Context) ([]model.DocumentRecord, model.CorpusSource, error) {
	records, err := e.records.ListRecords(ctx, e.settings.CorpusLimit)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read document records: %w", err)
	}

	corpus := make([]model.DocumentRecord, 0, len(records))
	for _, rec := range records {
		if rec.HasText() {
			corpus = append(corpus, rec)
		}
	}
	if len(corpus) > 0 {
		return corpus, model.CorpusSourceRecords, nil
	}

	corpus, err = e.corpusFromBlobs(ctx)
	if err != nil {
		return nil, "", err
	}
	if len(corpus) == 0 {
		return corpus, model.CorpusSourceEmpty, nil
	}
	return corpus, model.CorpusSourceBlobs, nil
}

// corpusFromBlobs extracts and enriches stored payloads on the fly. Payloads that cannot
// be read or extracted are skipped.
func (e *Engine) corpusFromBlobs(ctx context.Context) ([]model.DocumentRecord, error) {
	objects, err := e.blobs.List(ctx, e.settings.CorpusLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stored documents: %w", err)
	}

	corpus := make([]model.DocumentRecord, 0, len(objects))
	for _, obj := range objects {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := e.blobs.Get(ctx, obj.Key)
		if err != nil {
			e.logger.Warn("Skipping unreadable document", zap.String("key", obj.Key), zap.Error(err))
			continue
		}
		text, err := e.extractor.ExtractKey(ctx, obj.Key, data)
		if err != nil {
			e.logger.Warn("Skipping document that failed extraction", zap.String("key", obj.Key), zap.Error(err))
			continue
		}
		if text == "" {
			continue
		}
		corpus = append(corpus, e.buildRecord(obj.Key, text))
	}
	return corpus, nil
}
