package engine_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/resumatch/config"
	"github.com/gcbaptista/resumatch/internal/engine"
	internalErrors "github.com/gcbaptista/resumatch/internal/errors"
	"github.com/gcbaptista/resumatch/internal/extraction/ocr"
	testutil "github.com/gcbaptista/resumatch/internal/testing"
	"github.com/gcbaptista/resumatch/model"
)

// recordingTrigger accepts every trigger without enriching anything.
type recordingTrigger struct {
	mu   sync.Mutex
	keys []string
}

func (r *recordingTrigger) Trigger(_ context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, key)
	return "job-" + key, nil
}

func usedOf(t *testing.T, eng *engine.Engine, resource model.Resource) int64 {
	t.Helper()
	usage, ok := eng.Usage().Get(resource)
	require.True(t, ok, "resource %s should be metered", resource)
	return usage.Used
}

func TestIngest_EnrichesInBackground(t *testing.T) {
	eng := testutil.CreateTestEngine(t, nil)
	ctx := context.Background()
	resume := testutil.TestResumes[0]

	result, err := eng.Ingest(ctx, resume.Key, resume.Data)
	require.NoError(t, err)
	assert.Equal(t, "alice.txt", result.Key)
	assert.Equal(t, "txt", result.Format)
	assert.Equal(t, int64(len(resume.Data)), result.Size)
	assert.Equal(t, string(resume.Data), result.Preview)
	assert.Empty(t, result.Warnings)
	require.NotEmpty(t, result.JobID)

	job := testutil.WaitForJobCompletion(t, eng.Jobs(), result.JobID, testutil.DefaultJobPollingOptions())
	testutil.AssertJobCompleted(t, job, model.JobTypeEnrichDocument, "alice.txt")

	rec, err := eng.GetDocument(ctx, "alice.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{"python", "aws", "docker", "sql"}, rec.Skills)
	assert.Equal(t, "bsc computer science ", rec.Sections[model.SectionEducation])
	assert.Equal(t, "python, docker, aws, sql ", rec.Sections[model.SectionSkills])
	assert.Equal(t, "txt", rec.Format)
	assert.False(t, rec.IngestedAt.IsZero())

	assert.Equal(t, int64(1), usedOf(t, eng, model.ResourceTriggers))
	assert.Equal(t, int64(len(resume.Data)), usedOf(t, eng, model.ResourceStorageBytes))
}

func TestIngest_PreviewIsTruncated(t *testing.T) {
	eng := testutil.CreateTestEngine(t, nil)

	long := strings.Repeat("é", 400)
	result, err := eng.IngestSync(context.Background(), "long.txt", []byte(long))
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("é", 300)+"...", result.Preview)

	result, err = eng.IngestSync(context.Background(), "short.txt", []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "hello", result.Preview, "text within the limit is returned unchanged")

	exact := strings.Repeat("a", 300)
	result, err = eng.IngestSync(context.Background(), "exact.txt", []byte(exact))
	require.NoError(t, err)
	assert.Equal(t, exact, result.Preview)
}

func TestIngest_Validation(t *testing.T) {
	eng := testutil.CreateTestEngine(t, nil)

	tests := []struct {
		name string
		key  string
		data []byte
	}{
		{"empty key", "", []byte("text")},
		{"path traversal", "../escape.txt", []byte("text")},
		{"empty payload", "empty.txt", nil},
		{"unsupported format", "archive.zip", []byte("PK")},
		{"no extension", "resume", []byte("text")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := eng.Ingest(context.Background(), tt.key, tt.data)
			require.Error(t, err)
			assert.True(t, errors.Is(err, internalErrors.ErrInvalidInput), "got %v", err)
		})
	}
	assert.Equal(t, int64(0), usedOf(t, eng, model.ResourceStorageBytes))
}

func TestIngest_ExtractionFailureStillStores(t *testing.T) {
	eng := testutil.CreateTestEngine(t, nil)
	ctx := context.Background()
	payload := []byte{0xff, 0xfe, 0xfd}

	result, err := eng.IngestSync(ctx, "broken.txt", payload)
	require.NoError(t, err)
	assert.Empty(t, result.Preview)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "broken.txt")

	_, err = eng.GetDocument(ctx, "broken.txt")
	assert.True(t, errors.Is(err, internalErrors.ErrDocumentNotFound))
	assert.Equal(t, int64(len(payload)), usedOf(t, eng, model.ResourceStorageBytes))
}

func TestIngest_UnextractableReplacementDropsRecord(t *testing.T) {
	ctx := context.Background()
	unreadable := []byte{0xff, 0xfe}

	tests := []struct {
		name   string
		ingest func(t *testing.T, eng *engine.Engine) (*model.IngestResult, error)
	}{
		{"inline", func(_ *testing.T, eng *engine.Engine) (*model.IngestResult, error) {
			return eng.IngestSync(ctx, "cv.txt", unreadable)
		}},
		{"background", func(t *testing.T, eng *engine.Engine) (*model.IngestResult, error) {
			result, err := eng.Ingest(ctx, "cv.txt", unreadable)
			if err == nil && result.JobID != "" {
				job := testutil.WaitForJob(t, eng.Jobs(), result.JobID, testutil.DefaultJobPollingOptions())
				assert.Equal(t, model.JobStatusFailed, job.Status)
			}
			return result, err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := testutil.CreateTestEngine(t, nil)
			_, err := eng.IngestSync(ctx, "cv.txt", []byte("Python developer"))
			require.NoError(t, err)
			_, err = eng.IngestSync(ctx, "other.txt", []byte("Java developer"))
			require.NoError(t, err)

			result, err := tt.ingest(t, eng)
			require.NoError(t, err)
			require.NotEmpty(t, result.Warnings)
			assert.Contains(t, result.Warnings[0], "UTF-8")

			_, err = eng.GetDocument(ctx, "cv.txt")
			assert.True(t, errors.Is(err, internalErrors.ErrDocumentNotFound), "got %v", err)

			ranked, err := eng.Rank(ctx, "python developer", 0)
			require.NoError(t, err)
			require.Len(t, ranked.Results, 1)
			assert.Equal(t, "other.txt", ranked.Results[0].ID)
		})
	}
}

func TestEnrich_UnextractablePayloadDropsRecord(t *testing.T) {
	eng := testutil.CreateTestEngine(t, nil)
	ctx := context.Background()

	_, err := eng.IngestSync(ctx, "cv.txt", []byte("Python developer"))
	require.NoError(t, err)

	blobPath := filepath.Join(eng.Settings().DataDir, "blobs", "cv.txt")
	require.NoError(t, os.WriteFile(blobPath, []byte{0xff, 0xfe}, 0o600))

	_, err = eng.Enrich(ctx, "cv.txt")
	assert.True(t, errors.Is(err, internalErrors.ErrExtraction), "got %v", err)

	_, err = eng.GetDocument(ctx, "cv.txt")
	assert.True(t, errors.Is(err, internalErrors.ErrDocumentNotFound), "got %v", err)
}

func TestIngest_OCRFormatWithoutRecognizer(t *testing.T) {
	eng := testutil.CreateTestEngine(t, nil)

	result, err := eng.IngestSync(context.Background(), "scan.png", []byte("not really an image"))
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "no OCR recognizer configured")
}

func TestIngest_RecognizerIsMetered(t *testing.T) {
	recognizer := ocr.RecognizerFunc(func(_ context.Context, _ []byte) ([]string, error) {
		return []string{"Experience", "Kubernetes operator"}, nil
	})
	eng := testutil.CreateTestEngineWithOptions(t, engine.Options{Recognizer: recognizer})
	ctx := context.Background()

	_, err := eng.IngestSync(ctx, "scan.png", []byte("image bytes"))
	require.NoError(t, err)

	rec, err := eng.GetDocument(ctx, "scan.png")
	require.NoError(t, err)
	assert.Equal(t, "Experience Kubernetes operator", rec.Text)
	assert.Equal(t, []string{"kubernetes"}, rec.Skills)
	assert.Equal(t, int64(1), usedOf(t, eng, model.ResourceOCRPages))
}

func TestIngest_StorageQuota(t *testing.T) {
	eng := testutil.CreateTestEngine(t, func(s *config.Settings) {
		s.Quota.StorageBytes = 10
	})
	ctx := context.Background()

	_, err := eng.IngestSync(ctx, "big.txt", []byte("more than ten bytes"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, internalErrors.ErrCapacity))

	var capErr *internalErrors.CapacityError
	require.True(t, errors.As(err, &capErr))
	assert.Equal(t, string(model.ResourceStorageBytes), capErr.Resource)
	assert.Equal(t, int64(10), capErr.Limit)

	_, err = eng.GetDocument(ctx, "big.txt")
	assert.True(t, errors.Is(err, internalErrors.ErrDocumentNotFound))
	assert.Equal(t, int64(0), usedOf(t, eng, model.ResourceStorageBytes))
}

func TestIngest_ReplacementChargesOnlyGrowth(t *testing.T) {
	eng := testutil.CreateTestEngine(t, nil)
	ctx := context.Background()

	_, err := eng.IngestSync(ctx, "cv.txt", []byte("0123456789"))
	require.NoError(t, err)
	assert.Equal(t, int64(10), usedOf(t, eng, model.ResourceStorageBytes))

	_, err = eng.IngestSync(ctx, "cv.txt", []byte("012345"))
	require.NoError(t, err)
	assert.Equal(t, int64(6), usedOf(t, eng, model.ResourceStorageBytes))

	_, err = eng.IngestSync(ctx, "cv.txt", []byte("0123456789ab"))
	require.NoError(t, err)
	assert.Equal(t, int64(12), usedOf(t, eng, model.ResourceStorageBytes))
}

func TestIngest_TriggerQuotaIsAWarning(t *testing.T) {
	eng := testutil.CreateTestEngine(t, func(s *config.Settings) {
		s.Quota.TriggerInvocations = 1
	})
	ctx := context.Background()

	first, err := eng.Ingest(ctx, "a.txt", []byte("Skills\nGo"))
	require.NoError(t, err)
	assert.NotEmpty(t, first.JobID)

	second, err := eng.Ingest(ctx, "b.txt", []byte("Skills\nRust"))
	require.NoError(t, err)
	assert.Empty(t, second.JobID)
	require.Len(t, second.Warnings, 1)
	assert.Contains(t, second.Warnings[0], "trigger_invocations")

	summaries := map[string]bool{}
	testutil.WaitForJobCompletion(t, eng.Jobs(), first.JobID, testutil.DefaultJobPollingOptions())
	docs, err := eng.ListDocuments(ctx)
	require.NoError(t, err)
	for _, d := range docs {
		summaries[d.ID] = true
	}
	assert.True(t, summaries["a.txt"])
	assert.False(t, summaries["b.txt"], "refused trigger must not enrich")
	assert.Equal(t, int64(len("Skills\nGo")+len("Skills\nRust")), usedOf(t, eng, model.ResourceStorageBytes))
}

func TestIngestBatchAsync(t *testing.T) {
	t.Run("all succeed", func(t *testing.T) {
		eng := testutil.CreateTestEngine(t, func(s *config.Settings) {
			s.BatchConcurrency = 2
		})

		jobID, err := eng.IngestBatchAsync(context.Background(), testutil.TestResumes)
		require.NoError(t, err)

		job := testutil.WaitForJobCompletion(t, eng.Jobs(), jobID, testutil.DefaultJobPollingOptions())
		assert.Equal(t, model.JobTypeIngestBatch, job.Type)
		require.NotNil(t, job.Progress)
		assert.Equal(t, len(testutil.TestResumes), job.Progress.Current)
		assert.Equal(t, len(testutil.TestResumes), job.Progress.Total)

		docs, err := eng.ListDocuments(context.Background())
		require.NoError(t, err)
		assert.Len(t, docs, len(testutil.TestResumes))
	})

	t.Run("one failure fails the job", func(t *testing.T) {
		eng := testutil.CreateTestEngine(t, nil)
		files := []model.UploadedFile{
			{Key: "good.txt", Data: []byte("Skills\nPython")},
			{Key: "bad.txt", Data: []byte{0xff, 0xfe}},
		}

		jobID, err := eng.IngestBatchAsync(context.Background(), files)
		require.NoError(t, err)

		job := testutil.WaitForJob(t, eng.Jobs(), jobID, testutil.DefaultJobPollingOptions())
		assert.Equal(t, model.JobStatusFailed, job.Status)
		assert.Contains(t, job.Error, "1 of 2 documents failed")
		assert.Contains(t, job.Error, "bad.txt")

		_, err = eng.GetDocument(context.Background(), "good.txt")
		assert.NoError(t, err)
	})

	t.Run("invalid input is rejected up front", func(t *testing.T) {
		eng := testutil.CreateTestEngine(t, nil)

		_, err := eng.IngestBatchAsync(context.Background(), nil)
		assert.True(t, errors.Is(err, internalErrors.ErrInvalidInput))

		_, err = eng.IngestBatchAsync(context.Background(), []model.UploadedFile{{Key: "x.exe", Data: []byte("x")}})
		assert.True(t, errors.Is(err, internalErrors.ErrInvalidInput))
		assert.Empty(t, eng.Jobs().ListJobs("", nil))
	})
}

func TestRank(t *testing.T) {
	eng := testutil.CreateTestEngine(t, nil)
	testutil.AddTestDocuments(t, eng)

	testutil.RunRankTests(t, eng, []testutil.RankTestCase{
		{
			Name:          "backend query prefers the backend resume",
			Query:         "Python engineer with Docker and AWS experience",
			ExpectedCount: 3,
			ExpectedFirst: "alice.txt",
			ValidateFunc: func(t *testing.T, result *model.RankResult) {
				assert.Equal(t, model.CorpusSourceRecords, result.Source)
				assert.Equal(t, 3, result.Total)
				assert.NotEmpty(t, result.ID)
				assert.Equal(t, []string{"python", "aws", "docker"}, result.Results[0].MatchedSkills)
				for i := 1; i < len(result.Results); i++ {
					assert.GreaterOrEqual(t, result.Results[i-1].Score, result.Results[i].Score)
				}
			},
		},
		{
			Name:          "frontend query prefers the frontend resume",
			Query:         "React and JavaScript developer",
			ExpectedCount: 3,
			ExpectedFirst: "bob.txt",
		},
		{
			Name:          "limit keeps the total",
			Query:         "Python engineer",
			Limit:         2,
			ExpectedCount: 2,
			ValidateFunc: func(t *testing.T, result *model.RankResult) {
				assert.Equal(t, 3, result.Total)
			},
		},
	})
}

func TestRank_CorpusLimit(t *testing.T) {
	eng := testutil.CreateTestEngine(t, func(s *config.Settings) {
		s.CorpusLimit = 2
	})
	testutil.AddTestDocuments(t, eng)

	result, err := eng.Rank(context.Background(), "project manager", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
	for _, r := range result.Results {
		assert.NotEqual(t, "carol.txt", r.ID, "only the first records are read")
	}
}

func TestRank_EmptyCorpus(t *testing.T) {
	eng := testutil.CreateTestEngine(t, nil)

	result, err := eng.Rank(context.Background(), "python developer", 0)
	require.NoError(t, err)
	assert.NotNil(t, result.Results)
	assert.Empty(t, result.Results)
	assert.Equal(t, model.CorpusSourceEmpty, result.Source)
}

func TestRank_EmptyQuery(t *testing.T) {
	eng := testutil.CreateTestEngine(t, nil)

	_, err := eng.Rank(context.Background(), "   ", 0)
	assert.True(t, errors.Is(err, internalErrors.ErrInvalidInput))
}

func TestRank_FallsBackToBlobs(t *testing.T) {
	trigger := &recordingTrigger{}
	eng := testutil.CreateTestEngineWithOptions(t, engine.Options{Trigger: trigger})
	ctx := context.Background()

	for _, f := range testutil.TestResumes {
		result, err := eng.Ingest(ctx, f.Key, f.Data)
		require.NoError(t, err)
		assert.Equal(t, "job-"+f.Key, result.JobID)
	}
	_, err := eng.Ingest(ctx, "broken.txt", []byte{0xff})
	require.NoError(t, err)
	assert.Len(t, trigger.keys, 4)

	docs, err := eng.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs, "nothing was enriched")

	result, err := eng.Rank(ctx, "Python engineer with Docker and AWS experience", 0)
	require.NoError(t, err)
	assert.Equal(t, model.CorpusSourceBlobs, result.Source)
	assert.Equal(t, 3, result.Total, "the unextractable blob is skipped")
	assert.Equal(t, "alice.txt", result.Results[0].ID)
}

func TestRank_Deterministic(t *testing.T) {
	eng := testutil.CreateTestEngine(t, nil)
	testutil.AddTestDocuments(t, eng)

	first, err := eng.Rank(context.Background(), "python react project management", 0)
	require.NoError(t, err)
	second, err := eng.Rank(context.Background(), "python react project management", 0)
	require.NoError(t, err)
	assert.Equal(t, first.Results, second.Results)
}

func TestDeleteDocument(t *testing.T) {
	eng := testutil.CreateTestEngine(t, nil)
	ctx := context.Background()
	testutil.AddTestDocuments(t, eng)

	before := usedOf(t, eng, model.ResourceStorageBytes)
	require.NoError(t, eng.DeleteDocument(ctx, "bob.txt"))

	_, err := eng.GetDocument(ctx, "bob.txt")
	assert.True(t, errors.Is(err, internalErrors.ErrDocumentNotFound))
	assert.Equal(t, before-int64(len(testutil.TestResumes[1].Data)), usedOf(t, eng, model.ResourceStorageBytes))

	docs, err := eng.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	err = eng.DeleteDocument(ctx, "bob.txt")
	assert.True(t, errors.Is(err, internalErrors.ErrDocumentNotFound))
	err = eng.DeleteDocument(ctx, "../etc/passwd")
	assert.True(t, errors.Is(err, internalErrors.ErrDocumentNotFound))
}

func TestPersistence_SurvivesRestart(t *testing.T) {
	settings := testutil.TestSettings(t)
	ctx := context.Background()

	first, err := engine.New(ctx, engine.Options{Settings: settings})
	require.NoError(t, err)
	_, err = first.IngestSync(ctx, "alice.txt", testutil.TestResumes[0].Data)
	require.NoError(t, err)
	require.NoError(t, first.Close())
	require.NoError(t, first.Close(), "Close must be idempotent")

	second, err := engine.New(ctx, engine.Options{Settings: settings})
	require.NoError(t, err)
	defer second.Close()

	rec, err := second.GetDocument(ctx, "alice.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{"python", "aws", "docker", "sql"}, rec.Skills)
	assert.Equal(t, int64(len(testutil.TestResumes[0].Data)), usedOf(t, second, model.ResourceStorageBytes))
}

func TestPersistence_SaveFailureKeepsRecordChanges(t *testing.T) {
	eng := testutil.CreateTestEngine(t, nil)
	ctx := context.Background()

	// A directory in place of the store file makes every save fail.
	blocker := filepath.Join(eng.Settings().DataDir, "document_store.gob", "blocked")
	require.NoError(t, os.MkdirAll(blocker, 0o750))

	_, err := eng.IngestSync(ctx, "alice.txt", testutil.TestResumes[0].Data)
	require.NoError(t, err)
	_, err = eng.GetDocument(ctx, "alice.txt")
	require.NoError(t, err)

	_, err = eng.IngestSync(ctx, "bob.txt", testutil.TestResumes[1].Data)
	require.NoError(t, err)
	require.NoError(t, eng.DeleteDocument(ctx, "bob.txt"))

	docs, err := eng.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "alice.txt", docs[0].ID)

	assert.Error(t, eng.Close(), "Close reports the failed save")
}

func TestNew_InvalidSettings(t *testing.T) {
	settings := testutil.TestSettings(t)
	settings.CorpusBackend = "cassandra"

	_, err := engine.New(context.Background(), engine.Options{Settings: settings})
	assert.Error(t, err)
}
