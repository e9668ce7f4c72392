package usecase

import (
	"testing"
	"time"

	"adintel/internal/domain"
	"adintel/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedFilter(now time.Time) *TimeWindowFilter {
	f := NewTimeWindowFilter(logger.New("error"))
	f.now = func() time.Time { return now }
	return f
}

func hoursPtr(h int) *int { return &h }

func TestTimeFilterNilHoursIsIdentity(t *testing.T) {
	t.Parallel()

	groups := []domain.AdGroup{
		{Fingerprint: "a", StartDate: "not a date at all"},
		{Fingerprint: "b", StartDate: "2025-11-03T08:00:00.000Z"},
	}

	f := fixedFilter(time.Now())
	out := f.Apply(groups, nil)

	require.Len(t, out, 2)
	assert.Equal(t, groups, out)
}

func TestTimeFilterKeepsRecentGroups(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.November, 5, 12, 0, 0, 0, time.UTC)
	f := fixedFilter(now)

	groups := []domain.AdGroup{
		{Fingerprint: "recent", StartDate: "2025-11-04T08:00:00.000Z"},
		{Fingerprint: "old", StartDate: "2025-10-01T08:00:00.000Z"},
		{Fingerprint: "boundary", StartDate: "2025-11-03T12:00:00.000Z"},
	}

	out := f.Apply(groups, hoursPtr(48))

	require.Len(t, out, 2)
	assert.Equal(t, "recent", out[0].Fingerprint)
	// A start date exactly on the cutoff instant survives.
	assert.Equal(t, "boundary", out[1].Fingerprint)
}

func TestTimeFilterFailsOpenOnUnparseableDate(t *testing.T) {
	t.Parallel()

	f := fixedFilter(time.Date(2025, time.November, 5, 12, 0, 0, 0, time.UTC))

	groups := []domain.AdGroup{
		{Fingerprint: "bad-date", StartDate: "yesterday-ish"},
		{Fingerprint: "empty-date", StartDate: ""},
		{Fingerprint: "old", StartDate: "2020-01-01T00:00:00.000Z"},
	}

	out := f.Apply(groups, hoursPtr(1))

	// Unparseable dates never silently drop a group.
	require.Len(t, out, 2)
	assert.Equal(t, "bad-date", out[0].Fingerprint)
	assert.Equal(t, "empty-date", out[1].Fingerprint)
}
