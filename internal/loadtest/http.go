package loadtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/okian/swingcoach/internal/domain/model"
	"github.com/okian/swingcoach/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// Submission outcomes.
const (
	resultRecorded  = "recorded"
	resultDuplicate = "duplicate"
	resultFailed    = "failed"
)

// HTTPClient wraps http.Client with a per-request timeout.
type HTTPClient struct {
	client *http.Client
}

func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, url string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

func readJSON(resp *http.Response, v any) error {
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(data))
	}
	return json.Unmarshal(data, v)
}

// fanOut runs fn over items with at most n in flight and stops handing out
// work once ctx is cancelled.
func fanOut[T any](ctx context.Context, n int, items []T, fn func(int, T)) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(n, 1))
	for i, it := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			fn(i, it)
			return nil
		})
	}
	_ = g.Wait()
}

// submitAnalyses posts one hosted analysis per id and returns the analysis
// ids the service assigned, in input order. Failed submissions leave "".
func submitAnalyses(ctx context.Context, cfg *Config, ids []string, stats *Stats) []string {
	client := newHTTPClient(cfg.Timeout)
	url := cfg.BaseURL + "/analyses"
	out := make([]string, len(ids))
	var mocks, failed int64

	fanOut(ctx, cfg.Workers, ids, func(i int, id string) {
		resp, err := client.Post(ctx, url, model.Metadata{HostedVideoID: id, UserID: "load-analyst"})
		if err != nil {
			atomic.AddInt64(&failed, 1)
			return
		}
		var a struct {
			ID         string `json:"id"`
			IsMockData bool   `json:"_isMockData"`
		}
		if err := readJSON(resp, &a); err != nil || a.ID == "" {
			atomic.AddInt64(&failed, 1)
			return
		}
		if a.IsMockData {
			atomic.AddInt64(&mocks, 1)
		}
		out[i] = a.ID
	})

	stats.AnalysesSubmitted = len(ids)
	stats.AnalysesMock = int(mocks)
	stats.AnalysesFailed = int(failed)
	logger.Get().Info(ctx, "analyses submitted",
		logger.Int("submitted", len(ids)),
		logger.Int("mock", stats.AnalysesMock),
		logger.Int("failed", stats.AnalysesFailed))
	return out
}

// submitFeedback posts records and returns the ones the service recorded.
func submitFeedback(ctx context.Context, cfg *Config, records []model.FeedbackRecord, stats *Stats) []model.FeedbackRecord {
	client := newHTTPClient(cfg.Timeout)
	url := cfg.BaseURL + "/feedback"
	results := make([]string, len(records))

	fanOut(ctx, cfg.Workers, records, func(i int, rec model.FeedbackRecord) {
		results[i] = submitSingleFeedback(ctx, client, url, rec)
		if cfg.Verbose {
			logger.Get().Debug(ctx, "feedback submitted",
				logger.String("analysisID", rec.AnalysisID),
				logger.String("result", results[i]))
		}
	})

	var recorded []model.FeedbackRecord
	for i, r := range results {
		switch r {
		case resultRecorded:
			recorded = append(recorded, records[i])
			stats.FeedbackRecorded++
		case resultDuplicate:
			stats.FeedbackDuplicate++
		default:
			stats.FeedbackFailed++
		}
	}
	stats.FeedbackSubmitted += len(records)
	return recorded
}

func submitSingleFeedback(ctx context.Context, client *HTTPClient, url string, rec model.FeedbackRecord) string {
	resp, err := client.Post(ctx, url, rec)
	if err != nil {
		return resultFailed
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusCreated, http.StatusOK:
		return resultRecorded
	case http.StatusConflict:
		return resultDuplicate
	default:
		return resultFailed
	}
}
