package usecase

import (
	"context"
	"fmt"
	"time"

	"adintel/internal/domain"
	"adintel/pkg/logger"
	"adintel/pkg/metrics"
)

// ScanService runs the full intelligence pipeline: acquire raw records,
// aggregate them into ranked canonical groups, apply the time-window
// filter, store the snapshot and optionally run the multimodal analysis.
type ScanService struct {
	scraper    domain.AdScraper
	analyzer   domain.AdAnalyzer
	scanRepo   domain.ScanRepository
	timeFilter *TimeWindowFilter
	logger     *logger.Logger
	metrics    *metrics.Metrics
}

// ScanRequest describes one scan invocation. Hours is an optional
// time-window filter; nil keeps every group. Analyze requests the
// multimodal pass on the strongest image creatives.
type ScanRequest struct {
	TargetURL    string
	ResultsLimit int
	Hours        *int
	Analyze      bool
}

func NewScanService(
	scraper domain.AdScraper,
	analyzer domain.AdAnalyzer,
	scanRepo domain.ScanRepository,
	timeFilter *TimeWindowFilter,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *ScanService {
	return &ScanService{
		scraper:    scraper,
		analyzer:   analyzer,
		scanRepo:   scanRepo,
		timeFilter: timeFilter,
		logger:     logger,
		metrics:    metrics,
	}
}

// RunScan executes the pipeline for one target URL. Acquisition failure is
// the only error path; everything downstream degrades instead of failing.
func (s *ScanService) RunScan(ctx context.Context, req ScanRequest) (*domain.ScanSnapshot, error) {
	start := time.Now()
	s.metrics.IncScanJobsInProgress()
	defer s.metrics.DecScanJobsInProgress()

	log := s.logger.WithContext(ctx)
	log.WithFields(map[string]any{
		"target_url":    req.TargetURL,
		"results_limit": req.ResultsLimit,
		"analyze":       req.Analyze,
	}).Info("Starting ad scan")

	records, err := s.scraper.FetchAds(ctx, req.TargetURL, req.ResultsLimit)
	if err != nil {
		s.metrics.RecordScanJob("failed", "acquire", time.Since(start))
		return nil, fmt.Errorf("failed to acquire ad records: %w", err)
	}
	s.metrics.RecordScanRecords("fetched", len(records))

	groups := AggregateAds(records)
	filtered := s.timeFilter.Apply(groups, req.Hours)
	s.metrics.RecordScanGroups(len(filtered))

	log.WithFields(map[string]any{
		"raw_records":     len(records),
		"groups":          len(groups),
		"groups_filtered": len(filtered),
	}).Info("Aggregated raw records into canonical groups")

	snapshot := domain.ScanSnapshot{
		TargetURL: req.TargetURL,
		ScannedAt: time.Now().UTC(),
		RawCount:  len(records),
		Groups:    filtered,
	}

	if req.Analyze {
		snapshot.Report = s.analyzeGroups(ctx, filtered)
	}

	if err := s.scanRepo.Replace(ctx, snapshot); err != nil {
		s.metrics.RecordScanJob("failed", "store", time.Since(start))
		return nil, fmt.Errorf("failed to store scan snapshot: %w", err)
	}

	duration := time.Since(start)
	s.metrics.RecordScanJob("success", "complete", duration)

	log.WithFields(map[string]any{
		"duration": duration,
		"groups":   len(filtered),
		"analyzed": snapshot.Report != nil,
	}).Info("Ad scan completed")

	return &snapshot, nil
}

// analyzeGroups runs the multimodal pass. It never fails the scan: errors
// and "nothing to analyze" both degrade to a missing report.
func (s *ScanService) analyzeGroups(ctx context.Context, groups []domain.AdGroup) *domain.AnalysisReport {
	log := s.logger.WithContext(ctx)

	if s.analyzer == nil {
		log.Warn("Analysis requested but no analyzer is configured")
		s.metrics.RecordAnalysisReport("unavailable")
		return nil
	}
	if len(groups) == 0 {
		s.metrics.RecordAnalysisReport("empty_input")
		return nil
	}

	report, err := s.analyzer.Analyze(ctx, groups)
	if err != nil {
		log.WithError(err).Warn("Multimodal analysis failed, continuing without report")
		s.metrics.RecordAnalysisReport("failed")
		return nil
	}
	if report == nil {
		log.Info("No image creatives eligible for analysis")
		s.metrics.RecordAnalysisReport("skipped")
		return nil
	}

	s.metrics.RecordAnalysisReport("success")
	return report
}

// Latest returns the stored snapshot of the most recent scan, or nil when
// no scan has run yet.
func (s *ScanService) Latest(ctx context.Context) (*domain.ScanSnapshot, error) {
	snapshot, err := s.scanRepo.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest scan: %w", err)
	}
	return snapshot, nil
}

// FilterWindow re-applies the time-window filter to stored groups, for
// callers that want a narrower view than the stored snapshot.
func (s *ScanService) FilterWindow(groups []domain.AdGroup, hours *int) []domain.AdGroup {
	return s.timeFilter.Apply(groups, hours)
}
