package infrastructure

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"adintel/internal/domain"
	"adintel/pkg/config"
	"adintel/pkg/logger"
	"adintel/pkg/metrics"
)

const analysisBodyMaxLen = 500

// analysisPrompt instructs the model to act as a competitor-intelligence
// analyst and to answer in the exact JSON shape the service parses.
const analysisPrompt = `You are a senior competitor intelligence analyst for direct-to-consumer
brands. You specialize in consumer psychology, visual design trends and paid
social strategy.

Analyze the following set of competitor ad images and copy. Focus on:
1. Current promotions (discount depth, campaign themes, urgency tactics)
2. Reusable creative elements (visual style, copy frameworks, hooks)
3. Overall media strategy trends

Classify each creative (design type: render / real shot / UGC style;
content strategy: traffic / promotion / conversion), break down its visual
and copy highlights, and extract any promotion intelligence.

Respond with strict JSON only, without markdown code fences:

{
  "overall_analysis": {
    "promotion_intel": "summary of current competitor promotions",
    "creative_trend": "summary of creative style trends",
    "key_takeaways": "2-3 reusable takeaways"
  },
  "individual_ads": [
    {
      "index": 0,
      "category": {"design_type": "...", "content_strategy": "..."},
      "visual_highlights": {"hook_element": "...", "scene": "...", "structure": "...", "worth_learning": "..."},
      "copy_highlights": {"framework": "...", "target_audience": "...", "emotional_triggers": ["..."], "worth_learning": "..."},
      "promo_intel": {"discount": "...", "campaign_name": "...", "urgency_elements": ["..."]},
      "creative_score": 8,
      "one_line_summary": "..."
    }
  ]
}

The "index" field must match the 0-based position of the ad in this request.`

// GeminiClient implements domain.AdAnalyzer against the Gemini
// generateContent REST API. It selects the strongest image creatives,
// attaches their preview images inline and fails open on every response
// problem: the caller always gets either a report or nil, never an error
// from the model side.
type GeminiClient struct {
	client  *http.Client
	baseURL string
	model   string
	apiKey  string
	topN    int
	fetcher domain.ImageFetcher
	logger  *logger.Logger
	metrics *metrics.Metrics
}

var _ domain.AdAnalyzer = (*GeminiClient)(nil)

// creates a new Gemini client
func NewGeminiClient(cfg config.GeminiConfig, topN int, timeout time.Duration, fetcher domain.ImageFetcher, logger *logger.Logger, metrics *metrics.Metrics) *GeminiClient {
	return &GeminiClient{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
		topN:    topN,
		fetcher: fetcher,
		logger:  logger,
		metrics: metrics,
	}
}

// request/response shapes for the generateContent endpoint.

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Analyze runs the multimodal pass over the top-ranked image creatives.
// Video groups are skipped entirely. A nil report with nil error means
// "no analysis available": no image groups, or no image could be fetched.
func (c *GeminiClient) Analyze(ctx context.Context, groups []domain.AdGroup) (*domain.AnalysisReport, error) {
	log := c.logger.WithContext(ctx)

	var imageGroups []domain.AdGroup
	for _, g := range groups {
		if !g.IsVideo {
			imageGroups = append(imageGroups, g)
		}
	}
	if len(imageGroups) == 0 {
		log.Info("No image creatives to analyze")
		return nil, nil
	}

	top := imageGroups
	if len(top) > c.topN {
		top = top[:c.topN]
	}

	images := c.fetchImages(ctx, top)

	attached := 0
	parts := []geminiPart{{Text: analysisPrompt}}
	for i, g := range top {
		parts = append(parts, geminiPart{
			Text: fmt.Sprintf("\n\nAd #%d:\nTitle: %s\nCopy: %s", i, g.Title, truncateRunes(g.BodyText, analysisBodyMaxLen)),
		})
		if img := images[i]; img != nil {
			parts = append(parts, geminiPart{
				InlineData: &geminiInlineData{
					MIMEType: img.MIMEType,
					Data:     base64.StdEncoding.EncodeToString(img.Data),
				},
			})
			attached++
		}
	}

	if attached == 0 {
		log.Warn("No preview image could be fetched, skipping analysis")
		return nil, nil
	}

	raw, err := c.generateContent(ctx, parts)
	if err != nil {
		// The inference boundary never fails the pipeline: surface the
		// error text inside a degraded report instead.
		log.WithError(err).Warn("Inference call failed, returning degraded report")
		return degradedReport(fmt.Sprintf("Inference error: %v", err), "Error", "Error"), nil
	}

	return c.parseReport(raw), nil
}

// fetchImages downloads the preview image of each selected group
// concurrently. Results are positional; a failed or missing image leaves a
// nil slot and only skips that creative's attachment.
func (c *GeminiClient) fetchImages(ctx context.Context, top []domain.AdGroup) []*domain.FetchedImage {
	log := c.logger.WithContext(ctx)
	images := make([]*domain.FetchedImage, len(top))

	var wg sync.WaitGroup
	for i, g := range top {
		if g.PreviewImageURL == "" {
			continue
		}
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			img, err := c.fetcher.Fetch(ctx, url)
			if err != nil {
				log.WithError(err).WithField("url", url).Warn("Preview image fetch failed, skipping")
				c.metrics.RecordAnalysisImage("failed")
				return
			}
			images[i] = &img
			c.metrics.RecordAnalysisImage("success")
		}(i, g.PreviewImageURL)
	}
	wg.Wait()

	return images
}

// generateContent posts the assembled parts and returns the concatenated
// text of the first candidate.
func (c *GeminiClient) generateContent(ctx context.Context, parts []geminiPart) (string, error) {
	start := time.Now()

	payload, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: parts}},
	})
	if err != nil {
		c.metrics.RecordExternalAPIFailure("gemini", "json_marshal")
		return "", fmt.Errorf("failed to marshal inference request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(payload))
	if err != nil {
		c.metrics.RecordExternalAPIFailure("gemini", "request_creation")
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.RecordExternalAPIFailure("gemini", "network_error")
		return "", fmt.Errorf("inference call failed: %w", err)
	}
	defer resp.Body.Close()

	duration := time.Since(start)

	if resp.StatusCode != http.StatusOK {
		c.metrics.RecordExternalAPICall("gemini", fmt.Sprintf("error_%d", resp.StatusCode), duration)
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("inference API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var decoded geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		c.metrics.RecordExternalAPIFailure("gemini", "json_parse")
		return "", fmt.Errorf("failed to parse inference response: %w", err)
	}

	var sb strings.Builder
	if len(decoded.Candidates) > 0 {
		for _, part := range decoded.Candidates[0].Content.Parts {
			sb.WriteString(part.Text)
		}
	}
	text := sb.String()
	if text == "" {
		c.metrics.RecordExternalAPIFailure("gemini", "empty_response")
		return "", fmt.Errorf("inference response carried no text")
	}

	c.metrics.RecordExternalAPICall("gemini", "success", duration)
	return text, nil
}

// parseReport decodes the model output, stripping markdown fences first.
// Unparseable output degrades to a report carrying the raw text.
func (c *GeminiClient) parseReport(raw string) *domain.AnalysisReport {
	var report domain.AnalysisReport
	if err := json.Unmarshal([]byte(stripFences(raw)), &report); err != nil {
		c.logger.WithError(err).Warn("Inference output is not strict JSON, degrading to raw text")
		return degradedReport(raw, "Model did not return structured JSON", "Review the raw response")
	}
	return &report
}

// stripFences removes a ```json ... ``` or ``` ... ``` wrapper when present.
func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)

	for _, fence := range []string{"```json", "```"} {
		if i := strings.Index(raw, fence); i >= 0 {
			rest := raw[i+len(fence):]
			if j := strings.Index(rest, "```"); j >= 0 {
				return rest[:j]
			}
			return rest
		}
	}
	return raw
}

func degradedReport(intel, trend, takeaways string) *domain.AnalysisReport {
	return &domain.AnalysisReport{
		OverallAnalysis: domain.OverallAnalysis{
			PromotionIntel: intel,
			CreativeTrend:  trend,
			KeyTakeaways:   takeaways,
		},
		IndividualAds: []domain.AdInsight{},
	}
}

// truncateRunes shortens s to at most n characters, rune-wise.
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
