package usecase

import (
	"testing"

	"adintel/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestCleanURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", CleanURL(""))
	assert.Equal(t, "http://x/a.jpg", CleanURL("http://x/a.jpg"))
	assert.Equal(t, "http://x/a.jpg", CleanURL("http://x/a.jpg?tok=1&utm_source=fb"))
	assert.Equal(t, "http://x/a.jpg", CleanURL("http://x/a.jpg?"))
}

func TestIsTemplateVariable(t *testing.T) {
	t.Parallel()

	assert.True(t, isTemplateVariable("{{product.brand}} is on sale"))
	assert.True(t, isTemplateVariable("deal: {{discount}}"))
	assert.False(t, isTemplateVariable(""))
	assert.False(t, isTemplateVariable("plain copy"))
	// Opening pattern without a closing pattern is not a placeholder.
	assert.False(t, isTemplateVariable("literal {{ brace"))
}

func TestNormalizeBodyFallsBackToCardBody(t *testing.T) {
	t.Parallel()

	rec := domain.RawAdRecord{
		AdArchiveID: "1",
		Snapshot: domain.Snapshot{
			Body:  domain.SnapshotBody{Text: "{{product.brand}} is on sale"},
			Cards: []domain.Card{{Body: domain.CardBody{Text: "Solar generator, 48 hours of power"}}},
		},
	}

	ad := NormalizeRecord(rec)
	assert.Equal(t, "Solar generator, 48 hours of power", ad.BodyText)
}

func TestNormalizeBodyKeepsTemplatedTextWhenCardIsTemplatedToo(t *testing.T) {
	t.Parallel()

	rec := domain.RawAdRecord{
		Snapshot: domain.Snapshot{
			Body:  domain.SnapshotBody{Text: "{{product.brand}} sale"},
			Cards: []domain.Card{{Body: domain.CardBody{Text: "{{product.name}} deal"}}},
		},
	}

	ad := NormalizeRecord(rec)
	assert.Equal(t, "{{product.brand}} sale", ad.BodyText)
}

func TestNormalizeClassification(t *testing.T) {
	t.Parallel()

	video := NormalizeRecord(domain.RawAdRecord{
		Snapshot: domain.Snapshot{DisplayFormat: "VIDEO"},
	})
	assert.True(t, video.IsVideo)

	// The videos list alone makes it a video ad, whatever the format tag.
	videoByList := NormalizeRecord(domain.RawAdRecord{
		Snapshot: domain.Snapshot{
			DisplayFormat: "IMAGE",
			Videos:        []domain.Video{{VideoHDURL: "http://v/hd.mp4"}},
		},
	})
	assert.True(t, videoByList.IsVideo)

	image := NormalizeRecord(domain.RawAdRecord{
		Snapshot: domain.Snapshot{DisplayFormat: "IMAGE"},
	})
	assert.False(t, image.IsVideo)
}

func TestNormalizeVideoMedia(t *testing.T) {
	t.Parallel()

	ad := NormalizeRecord(domain.RawAdRecord{
		Snapshot: domain.Snapshot{
			DisplayFormat: "VIDEO",
			Videos: []domain.Video{{
				VideoPreviewImageURL: "http://v/preview.jpg",
				VideoSDURL:           "http://v/sd.mp4",
			}},
		},
	})
	assert.Equal(t, "http://v/preview.jpg", ad.PreviewImageURL)
	assert.Equal(t, "http://v/sd.mp4", ad.VideoHDURL)
}

func TestNormalizeVideoMediaFallsBackToCard(t *testing.T) {
	t.Parallel()

	ad := NormalizeRecord(domain.RawAdRecord{
		Snapshot: domain.Snapshot{
			DisplayFormat: "VIDEO",
			Cards: []domain.Card{{
				VideoHDURL:       "http://v/hd.mp4",
				OriginalImageURL: "http://v/thumb.jpg",
			}},
		},
	})
	assert.Equal(t, "http://v/hd.mp4", ad.VideoHDURL)
	assert.Equal(t, "http://v/thumb.jpg", ad.PreviewImageURL)
}

func TestNormalizeImageMedia(t *testing.T) {
	t.Parallel()

	fromCards := NormalizeRecord(domain.RawAdRecord{
		Snapshot: domain.Snapshot{
			DisplayFormat: "IMAGE",
			Cards:         []domain.Card{{ResizedImageURL: "http://x/resized.jpg"}},
			Images:        []domain.Image{{OriginalImageURL: "http://x/ignored.jpg"}},
		},
	})
	assert.Equal(t, "http://x/resized.jpg", fromCards.PreviewImageURL)

	fromImages := NormalizeRecord(domain.RawAdRecord{
		Snapshot: domain.Snapshot{
			DisplayFormat: "IMAGE",
			Images:        []domain.Image{{OriginalImageURL: "http://x/a.jpg?tok=1"}},
		},
	})
	// Display keeps the full URL; only fingerprints strip the query.
	assert.Equal(t, "http://x/a.jpg?tok=1", fromImages.PreviewImageURL)
	assert.Equal(t, "", fromImages.VideoHDURL)
}

func TestNormalizeTitleCascade(t *testing.T) {
	t.Parallel()

	fromSnapshot := NormalizeRecord(domain.RawAdRecord{
		Snapshot: domain.Snapshot{Title: "Big Sale"},
	})
	assert.Equal(t, "Big Sale", fromSnapshot.Title)

	fromCard := NormalizeRecord(domain.RawAdRecord{
		Snapshot: domain.Snapshot{
			Title: "{{product.name}}",
			Cards: []domain.Card{{Title: "Card Title"}},
		},
	})
	assert.Equal(t, "Card Title", fromCard.Title)

	fromBody := NormalizeRecord(domain.RawAdRecord{
		Snapshot: domain.Snapshot{
			Body: domain.SnapshotBody{Text: "Short headline\nand the rest of the copy"},
		},
	})
	assert.Equal(t, "Short headline", fromBody.Title)

	fallback := NormalizeRecord(domain.RawAdRecord{})
	assert.Equal(t, "Sponsored Ad", fallback.Title)
}

func TestNormalizeTitleTruncatesLongFirstLine(t *testing.T) {
	t.Parallel()

	long := "This first line is quite a bit longer than fifty characters in total"
	ad := NormalizeRecord(domain.RawAdRecord{
		Snapshot: domain.Snapshot{Body: domain.SnapshotBody{Text: long}},
	})

	assert.Equal(t, "This first line is quite a bit longer than fifty c...", ad.Title)
	assert.Len(t, []rune(ad.Title), 53)
}

func TestNormalizeCTA(t *testing.T) {
	t.Parallel()

	withCTA := NormalizeRecord(domain.RawAdRecord{
		Snapshot: domain.Snapshot{CTAText: "Shop Now"},
	})
	assert.Equal(t, "Shop Now", withCTA.CTA)

	withoutCTA := NormalizeRecord(domain.RawAdRecord{})
	assert.Equal(t, "Learn More", withoutCTA.CTA)
}

func TestNormalizePassthroughFields(t *testing.T) {
	t.Parallel()

	ad := NormalizeRecord(domain.RawAdRecord{
		AdArchiveID:        "123",
		PageID:             "p1",
		PageName:           "Jackery",
		StartDateFormatted: "2025-11-03T08:00:00.000Z",
		Snapshot: domain.Snapshot{
			LinkURL:       "http://brand.example/landing",
			DisplayFormat: "DCO",
		},
	})

	assert.Equal(t, "123", ad.ArchiveID)
	assert.Equal(t, "p1", ad.PageID)
	assert.Equal(t, "Jackery", ad.PageName)
	assert.Equal(t, "2025-11-03T08:00:00.000Z", ad.StartDate)
	assert.Equal(t, "http://brand.example/landing", ad.LinkURL)
	assert.Equal(t, "DCO", ad.DisplayFormat)
}
