package usecase

import (
	"time"

	"adintel/internal/domain"
	"adintel/pkg/logger"
)

// TimeWindowFilter keeps only groups whose start date falls within the last
// N hours. It is a pure post-filter over already-ranked groups.
type TimeWindowFilter struct {
	logger *logger.Logger
	now    func() time.Time
}

func NewTimeWindowFilter(log *logger.Logger) *TimeWindowFilter {
	return &TimeWindowFilter{
		logger: log,
		now:    time.Now,
	}
}

// Apply returns the groups whose parsed start date is within the last
// hours*1h of the current UTC instant. A nil hours means no filtering.
// Groups with an unparseable start date are kept (fail-open): a bad date
// must never make a creative silently disappear.
func (f *TimeWindowFilter) Apply(groups []domain.AdGroup, hours *int) []domain.AdGroup {
	if hours == nil {
		return groups
	}

	cutoff := f.now().UTC().Add(-time.Duration(*hours) * time.Hour)
	filtered := make([]domain.AdGroup, 0, len(groups))

	for _, group := range groups {
		// Start dates arrive as ISO 8601 with a literal Z suffix,
		// e.g. "2025-11-03T08:00:00.000Z".
		startDate, err := time.Parse(time.RFC3339, group.StartDate)
		if err != nil {
			f.logger.WithFields(map[string]any{
				"fingerprint": group.Fingerprint,
				"start_date":  group.StartDate,
			}).Warn("Unparseable start date, keeping group")
			filtered = append(filtered, group)
			continue
		}
		if !startDate.Before(cutoff) {
			filtered = append(filtered, group)
		}
	}

	return filtered
}
