package model

import "time"

// ScoreComponents holds the unweighted parts of a composite score.
type ScoreComponents struct {
	Content float64 `json:"content"` // TF-IDF cosine similarity with the query
	Skill   float64 `json:"skill"`   // Shared skills over the configured denominator
	Section float64 `json:"section"` // Fraction of sections present in the document and named in the query
}

// ScoreResult is one ranked document. Results are built per ranking call and never persisted.
type ScoreResult struct {
	ID            string          `json:"id"`
	Score         float64         `json:"score"`
	Components    ScoreComponents `json:"components"`
	MatchedSkills []string        `json:"matched_skills"` // Skills shared by the document and the query
}

// CorpusSource names where a ranking call read its documents from.
type CorpusSource string

const (
	CorpusSourceRecords CorpusSource = "records"
	CorpusSourceBlobs   CorpusSource = "blobs"
	CorpusSourceEmpty   CorpusSource = "empty"
)

// RankResult is the response of a ranking request.
type RankResult struct {
	ID       string        `json:"id"`      // Unique identifier of this ranking request
	Query    string        `json:"query"`   // Query text as received
	Results  []ScoreResult `json:"results"` // Ranked results, best first
	Total    int           `json:"total"`   // Number of documents scored before any limit was applied
	Source   CorpusSource  `json:"source"`  // Where the corpus came from
	Took     int64         `json:"took_ms"` // Elapsed time in milliseconds
	RankedAt time.Time     `json:"ranked_at"`
}
