package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"adintel/internal/domain"
	"adintel/pkg/config"
	"adintel/pkg/logger"
	"adintel/pkg/metrics"

	"golang.org/x/time/rate"
)

// Actor run statuses reported by the Apify platform.
const (
	runStatusSucceeded = "SUCCEEDED"
	runStatusFailed    = "FAILED"
	runStatusAborted   = "ABORTED"
	runStatusTimedOut  = "TIMED-OUT"
)

// ApifyClient implements domain.AdScraper against the Apify actor API:
// it starts an ad-library scrape run, polls it to completion and fetches
// the resulting dataset.
type ApifyClient struct {
	client       *http.Client
	baseURL      string
	actorID      string
	token        string
	pollInterval time.Duration
	maxPolls     int
	logger       *logger.Logger
	metrics      *metrics.Metrics
	rateLimiter  *rate.Limiter
}

var _ domain.AdScraper = (*ApifyClient)(nil)

// creates a new Apify client
func NewApifyClient(cfg config.ApifyConfig, timeout time.Duration, ratePerSecond int, logger *logger.Logger, metrics *metrics.Metrics) *ApifyClient {
	return &ApifyClient{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL:      cfg.BaseURL,
		actorID:      cfg.ActorID,
		token:        cfg.Token,
		pollInterval: cfg.PollInterval,
		maxPolls:     cfg.MaxPolls,
		logger:       logger,
		metrics:      metrics,
		rateLimiter:  rate.NewLimiter(rate.Limit(ratePerSecond), 10),
	}
}

// actorRun is the envelope the Apify API wraps around run objects.
type actorRun struct {
	Data struct {
		ID               string `json:"id"`
		Status           string `json:"status"`
		DefaultDatasetID string `json:"defaultDatasetId"`
	} `json:"data"`
}

// FetchAds runs the scraper actor for targetURL and returns the scraped raw
// records. The run is polled on a fixed interval with a hard retry ceiling;
// exhausting the ceiling or any terminal run status fails the whole fetch.
func (c *ApifyClient) FetchAds(ctx context.Context, targetURL string, resultsLimit int) ([]domain.RawAdRecord, error) {
	if c.token == "" {
		c.metrics.RecordExternalAPIFailure("apify", "missing_token")
		return nil, fmt.Errorf("apify token not configured")
	}

	start := time.Now()
	log := c.logger.WithContext(ctx)

	runID, err := c.startRun(ctx, targetURL, resultsLimit)
	if err != nil {
		return nil, err
	}
	log.WithField("run_id", runID).Info("Started scraper actor run")

	datasetID, err := c.waitForRun(ctx, runID)
	if err != nil {
		return nil, err
	}

	records, err := c.fetchDataset(ctx, datasetID)
	if err != nil {
		return nil, err
	}

	c.metrics.RecordExternalAPICall("apify", "success", time.Since(start))

	log.WithFields(map[string]any{
		"run_id":   runID,
		"duration": time.Since(start),
		"records":  len(records),
	}).Info("Successfully fetched ad records")

	return records, nil
}

// startRun submits the actor run and returns its id.
func (c *ApifyClient) startRun(ctx context.Context, targetURL string, resultsLimit int) (string, error) {
	input := map[string]any{
		"startUrls":    []map[string]string{{"url": targetURL}},
		"resultsLimit": resultsLimit,
		"viewMode":     "list",
		"renderType":   "html",
	}

	payload, err := json.Marshal(input)
	if err != nil {
		c.metrics.RecordExternalAPIFailure("apify", "json_marshal")
		return "", fmt.Errorf("failed to marshal actor input: %w", err)
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		c.metrics.RecordExternalAPIFailure("apify", "rate_limit")
		return "", fmt.Errorf("rate limit exceeded: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/acts/%s/runs?token=%s", c.baseURL, c.actorID, url.QueryEscape(c.token))
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(payload))
	if err != nil {
		c.metrics.RecordExternalAPIFailure("apify", "request_creation")
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.RecordExternalAPIFailure("apify", "network_error")
		return "", fmt.Errorf("failed to start actor run: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		c.metrics.RecordExternalAPIFailure("apify", fmt.Sprintf("start_error_%d", resp.StatusCode))
		return "", fmt.Errorf("actor start returned status %d", resp.StatusCode)
	}

	var run actorRun
	if err := json.NewDecoder(resp.Body).Decode(&run); err != nil {
		c.metrics.RecordExternalAPIFailure("apify", "json_parse")
		return "", fmt.Errorf("failed to parse run response: %w", err)
	}
	if run.Data.ID == "" {
		c.metrics.RecordExternalAPIFailure("apify", "missing_run_id")
		return "", fmt.Errorf("actor start returned no run id")
	}

	return run.Data.ID, nil
}

// waitForRun polls the run until it succeeds, fails terminally, or the poll
// ceiling is exhausted. It returns the default dataset id of the run.
func (c *ApifyClient) waitForRun(ctx context.Context, runID string) (string, error) {
	log := c.logger.WithContext(ctx)
	endpoint := fmt.Sprintf("%s/v2/actor-runs/%s?token=%s", c.baseURL, runID, url.QueryEscape(c.token))

	// The limiter paces polls at one per interval; the initial burst of 1
	// lets the first status check go out immediately.
	poller := rate.NewLimiter(rate.Every(c.pollInterval), 1)

	for attempt := 0; attempt < c.maxPolls; attempt++ {
		if err := poller.Wait(ctx); err != nil {
			c.metrics.RecordExternalAPIFailure("apify", "poll_cancelled")
			return "", fmt.Errorf("polling cancelled: %w", err)
		}

		run, err := c.getRun(ctx, endpoint)
		if err != nil {
			return "", err
		}

		switch run.Data.Status {
		case runStatusSucceeded:
			if run.Data.DefaultDatasetID == "" {
				c.metrics.RecordExternalAPIFailure("apify", "missing_dataset_id")
				return "", fmt.Errorf("run %s succeeded without a dataset id", runID)
			}
			return run.Data.DefaultDatasetID, nil
		case runStatusFailed, runStatusAborted, runStatusTimedOut:
			c.metrics.RecordExternalAPIFailure("apify", "run_"+run.Data.Status)
			return "", fmt.Errorf("actor run %s ended with status %s", runID, run.Data.Status)
		}

		log.WithFields(map[string]any{
			"run_id":  runID,
			"status":  run.Data.Status,
			"attempt": attempt + 1,
		}).Debug("Actor run still in progress")
	}

	c.metrics.RecordExternalAPIFailure("apify", "poll_ceiling")
	return "", fmt.Errorf("actor run %s did not finish within %d polls", runID, c.maxPolls)
}

func (c *ApifyClient) getRun(ctx context.Context, endpoint string) (*actorRun, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		c.metrics.RecordExternalAPIFailure("apify", "request_creation")
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.RecordExternalAPIFailure("apify", "network_error")
		return nil, fmt.Errorf("failed to poll actor run: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.RecordExternalAPIFailure("apify", fmt.Sprintf("poll_error_%d", resp.StatusCode))
		return nil, fmt.Errorf("run poll returned status %d", resp.StatusCode)
	}

	var run actorRun
	if err := json.NewDecoder(resp.Body).Decode(&run); err != nil {
		c.metrics.RecordExternalAPIFailure("apify", "json_parse")
		return nil, fmt.Errorf("failed to parse run status: %w", err)
	}
	return &run, nil
}

// fetchDataset downloads the run's dataset items as raw ad records. The
// decode is tolerant: any field of any record may be absent.
func (c *ApifyClient) fetchDataset(ctx context.Context, datasetID string) ([]domain.RawAdRecord, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		c.metrics.RecordExternalAPIFailure("apify", "rate_limit")
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/datasets/%s/items?token=%s", c.baseURL, datasetID, url.QueryEscape(c.token))
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		c.metrics.RecordExternalAPIFailure("apify", "request_creation")
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.RecordExternalAPIFailure("apify", "network_error")
		return nil, fmt.Errorf("failed to fetch dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.RecordExternalAPIFailure("apify", fmt.Sprintf("dataset_error_%d", resp.StatusCode))
		return nil, fmt.Errorf("dataset fetch returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.RecordExternalAPIFailure("apify", "read_body")
		return nil, fmt.Errorf("failed to read dataset body: %w", err)
	}

	var records []domain.RawAdRecord
	if err := json.Unmarshal(body, &records); err != nil {
		c.metrics.RecordExternalAPIFailure("apify", "json_parse")
		return nil, fmt.Errorf("failed to parse dataset items: %w", err)
	}

	return records, nil
}
