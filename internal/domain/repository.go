package domain

import (
	"context"
	"errors"
)

var (
	ErrBookmarkExists   = errors.New("bookmark already exists")
	ErrBookmarkNotFound = errors.New("bookmark not found")
)

// interface for the external ad-acquisition collaborator
type AdScraper interface {
	FetchAds(ctx context.Context, targetURL string, resultsLimit int) ([]RawAdRecord, error)
}

// interface for the multimodal inference collaborator
type AdAnalyzer interface {
	Analyze(ctx context.Context, groups []AdGroup) (*AnalysisReport, error)
}

// interface for downloading preview images
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) (FetchedImage, error)
}

// interface for storing the latest scan result
type ScanRepository interface {
	Replace(ctx context.Context, snapshot ScanSnapshot) error
	Latest(ctx context.Context) (*ScanSnapshot, error)
}

// interface for brand bookmark operations
type BookmarkRepository interface {
	List(ctx context.Context) ([]BrandBookmark, error)
	Add(ctx context.Context, bookmark BrandBookmark) error
	Remove(ctx context.Context, name string) error
}
