package usecase

import (
	"sort"

	"adintel/internal/domain"
)

const fingerprintBodyLen = 50

// Fingerprint builds the dedupe key for a normalized record: the first 50
// characters of the resolved body text plus the query-stripped preview URL.
// Archive ids, start dates and tracking parameters deliberately do not
// participate, so the same creative re-submitted under a new tracking tag
// still collapses into one group.
func Fingerprint(ad domain.NormalizedAd) string {
	return truncateRunes(ad.BodyText, fingerprintBodyLen) + "_" + CleanURL(ad.PreviewImageURL)
}

// AggregateAds folds the ordered batch of raw records into ranked canonical
// groups. A record whose fingerprint is already present only increments that
// group's intensity and appends its archive id; every other field keeps the
// value from the first record that created the group.
//
// The result is sorted by intensity descending; equal intensities keep
// first-seen order. The groups partition the batch: the intensities always
// sum to len(records).
func AggregateAds(records []domain.RawAdRecord) []domain.AdGroup {
	grouped := make(map[string]*domain.AdGroup, len(records))
	order := make([]string, 0, len(records))

	for _, rec := range records {
		ad := NormalizeRecord(rec)
		key := Fingerprint(ad)

		if group, ok := grouped[key]; ok {
			group.Intensity++
			group.AdIDs = append(group.AdIDs, ad.ArchiveID)
			continue
		}

		grouped[key] = &domain.AdGroup{
			Fingerprint: key,
			Intensity:   1,
			AdIDs:       []string{ad.ArchiveID},

			ArchiveID: ad.ArchiveID,
			PageID:    ad.PageID,
			PageName:  ad.PageName,
			StartDate: ad.StartDate,

			Title:         ad.Title,
			BodyText:      ad.BodyText,
			CTA:           ad.CTA,
			LinkURL:       ad.LinkURL,
			DisplayFormat: ad.DisplayFormat,

			IsVideo:         ad.IsVideo,
			PreviewImageURL: ad.PreviewImageURL,
			VideoHDURL:      ad.VideoHDURL,

			Cards:  ad.Cards,
			Images: ad.Images,
			Videos: ad.Videos,
		}
		order = append(order, key)
	}

	groups := make([]domain.AdGroup, 0, len(order))
	for _, key := range order {
		groups = append(groups, *grouped[key])
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Intensity > groups[j].Intensity
	})

	return groups
}
