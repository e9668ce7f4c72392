package infrastructure

import (
	"context"
	"sync"

	"adintel/internal/domain"
	"adintel/pkg/logger"
)

// ScanRepository holds the latest scan snapshot in memory. A new scan
// replaces the previous one wholesale; dedupe state is never carried
// across runs.
type ScanRepository struct {
	snapshot *domain.ScanSnapshot
	mutex    sync.RWMutex
	logger   *logger.Logger
}

var _ domain.ScanRepository = (*ScanRepository)(nil)

// creates a new scan repository
func NewScanRepository(logger *logger.Logger) *ScanRepository {
	return &ScanRepository{
		logger: logger,
	}
}

func (r *ScanRepository) Replace(ctx context.Context, snapshot domain.ScanSnapshot) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.snapshot = &snapshot

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"target_url": snapshot.TargetURL,
		"groups":     len(snapshot.Groups),
		"analyzed":   snapshot.Report != nil,
	}).Info("Stored scan snapshot in memory")
	return nil
}

// Latest returns the stored snapshot, or nil when no scan has run yet.
func (r *ScanRepository) Latest(ctx context.Context) (*domain.ScanSnapshot, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.snapshot, nil
}
