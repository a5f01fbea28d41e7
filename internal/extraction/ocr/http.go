package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/gcbaptista/resumatch/internal/logger"
)

// Block is one element of a recognition response. Only LINE blocks are used.
type Block struct {
	BlockType string `json:"BlockType"`
	Text      string `json:"Text"`
}

// detectResponse accepts both a plain line list and a block list.
type detectResponse struct {
	Lines  []string `json:"lines"`
	Blocks []Block  `json:"Blocks"`
}

// HTTPClient posts document bytes to a remote recognition service and reads back
// its lines. The service receives the raw payload as application/octet-stream and
// answers with {"lines": [...]} or {"Blocks": [{"BlockType": "LINE", "Text": ...}]}.
type HTTPClient struct {
	url        string
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
	logger     *zap.Logger
}

// NewHTTPClient creates a client for url.
func NewHTTPClient(url string, timeout time.Duration, maxRetries int, log *zap.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &HTTPClient{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
		backoff:    500 * time.Millisecond,
		logger:     logger.OrNop(log),
	}
}

// DetectLines implements Recognizer. Transport errors and 5xx answers are retried
// with linear backoff; 4xx answers fail immediately.
func (c *HTTPClient) DetectLines(ctx context.Context, data []byte) ([]string, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("Retrying OCR request",
				zap.Int("attempt", attempt),
				zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * c.backoff):
			}
		}

		lines, retry, err := c.detectOnce(ctx, data)
		if err == nil {
			return lines, nil
		}
		if !retry {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("ocr request failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

func (c *HTTPClient) detectOnce(ctx context.Context, data []byte) ([]string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(data))
	if err != nil {
		return nil, false, fmt.Errorf("build ocr request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, true, fmt.Errorf("ocr request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read ocr response: %w", err)
	}

	if resp.StatusCode >= 500 {
		return nil, true, fmt.Errorf("ocr service returned %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("ocr service returned %d: %s", resp.StatusCode, logger.TruncateForLog(string(body), 200))
	}

	var parsed detectResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, false, fmt.Errorf("decode ocr response: %w", err)
	}

	if parsed.Lines != nil {
		return parsed.Lines, false, nil
	}
	lines := make([]string, 0, len(parsed.Blocks))
	for _, b := range parsed.Blocks {
		if b.BlockType == "LINE" {
			lines = append(lines, b.Text)
		}
	}
	return lines, false, nil
}
