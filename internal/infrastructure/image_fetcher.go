package infrastructure

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"adintel/internal/domain"
	"adintel/pkg/logger"
)

// maxImageBytes caps a single preview download; ad preview assets are
// far below this.
const maxImageBytes = 16 << 20

// HTTPImageFetcher downloads preview images for the inference pass. Each
// fetch is bounded by its own timeout so one slow CDN cannot stall the
// whole analysis.
type HTTPImageFetcher struct {
	client  *http.Client
	timeout time.Duration
	logger  *logger.Logger
}

var _ domain.ImageFetcher = (*HTTPImageFetcher)(nil)

// creates a new image fetcher
func NewHTTPImageFetcher(timeout time.Duration, logger *logger.Logger) *HTTPImageFetcher {
	return &HTTPImageFetcher{
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		timeout: timeout,
		logger:  logger,
	}
}

func (f *HTTPImageFetcher) Fetch(ctx context.Context, url string) (domain.FetchedImage, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return domain.FetchedImage{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return domain.FetchedImage{}, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.FetchedImage{}, fmt.Errorf("image fetch returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return domain.FetchedImage{}, fmt.Errorf("failed to read image body: %w", err)
	}

	return domain.FetchedImage{
		Data:     data,
		MIMEType: imageMIMEType(resp.Header.Get("Content-Type")),
	}, nil
}

// imageMIMEType normalizes the Content-Type header, defaulting to JPEG the
// way ad CDNs usually serve previews.
func imageMIMEType(contentType string) string {
	mime := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	if mime == "" || !strings.HasPrefix(mime, "image/") {
		return "image/jpeg"
	}
	return mime
}
