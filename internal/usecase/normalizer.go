package usecase

import (
	"strings"

	"adintel/internal/domain"
)

const (
	// formatVideo is the display-format tag used by the ad library for
	// video creatives. Anything else is treated as an image variant.
	formatVideo = "VIDEO"

	// fallbackTitle labels creatives whose title cannot be recovered
	// from any source.
	fallbackTitle = "Sponsored Ad"

	// fallbackCTA is used when the snapshot carries no call-to-action.
	fallbackCTA = "Learn More"

	titleMaxLen = 50
)

// CleanURL strips everything from the first '?' onward so that the same
// asset served with different tracking parameters fingerprints identically.
// The untruncated URL is always kept separately for display.
func CleanURL(raw string) string {
	if raw == "" {
		return ""
	}
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		return raw[:i]
	}
	return raw
}

// isTemplateVariable reports whether text still contains an unresolved
// DCO placeholder such as {{product.brand}}. Detection is substring-based,
// not a parser: both the opening and the closing pattern must be present.
func isTemplateVariable(text string) bool {
	return text != "" && strings.Contains(text, "{{") && strings.Contains(text, "}}")
}

// usable is the acceptance rule shared by every fallback chain: a candidate
// wins only when it is non-empty and not a template placeholder.
func usable(text string) bool {
	return text != "" && !isTemplateVariable(text)
}

// truncateRunes shortens s to at most n characters. Counting is rune-wise
// so multi-byte copy is not cut mid-character.
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// NormalizeRecord extracts the canonical flat view of one raw record.
// It has no failure mode: absent or malformed fields degrade to empty
// strings, empty lists, or false.
func NormalizeRecord(rec domain.RawAdRecord) domain.NormalizedAd {
	snap := rec.Snapshot

	bodyText := resolveBody(snap)
	isVideo := snap.DisplayFormat == formatVideo || len(snap.Videos) > 0
	previewURL, videoHDURL := resolveMedia(snap, isVideo)

	return domain.NormalizedAd{
		ArchiveID:       rec.AdArchiveID,
		PageID:          rec.PageID,
		PageName:        rec.PageName,
		StartDate:       rec.StartDateFormatted,
		Title:           resolveTitle(snap, bodyText),
		BodyText:        bodyText,
		CTA:             resolveCTA(snap),
		LinkURL:         snap.LinkURL,
		DisplayFormat:   snap.DisplayFormat,
		IsVideo:         isVideo,
		PreviewImageURL: previewURL,
		VideoHDURL:      videoHDURL,
		Cards:           snap.Cards,
		Images:          snap.Images,
		Videos:          snap.Videos,
	}
}

// resolveBody returns the snapshot body text, substituting the first card's
// body for DCO/carousel ads whose top-level copy is empty or templated. The
// substitute is accepted only when it is itself usable.
func resolveBody(snap domain.Snapshot) string {
	bodyText := snap.Body.Text
	if usable(bodyText) || len(snap.Cards) == 0 {
		return bodyText
	}
	if cardBody := snap.Cards[0].Body.Text; usable(cardBody) {
		return cardBody
	}
	return bodyText
}

// resolveMedia picks the preview image URL and, for video ads, the HD
// (or SD) playback URL.
func resolveMedia(snap domain.Snapshot, isVideo bool) (previewURL, videoHDURL string) {
	if isVideo {
		if len(snap.Videos) > 0 {
			v := snap.Videos[0]
			previewURL = v.VideoPreviewImageURL
			videoHDURL = v.VideoHDURL
			if videoHDURL == "" {
				videoHDURL = v.VideoSDURL
			}
		}
		// Some video creatives carry their media on the first card
		// instead of the videos list.
		if videoHDURL == "" && len(snap.Cards) > 0 {
			c := snap.Cards[0]
			videoHDURL = c.VideoHDURL
			if videoHDURL == "" {
				videoHDURL = c.VideoURL
			}
			if previewURL == "" {
				previewURL = c.VideoPreviewImageURL
				if previewURL == "" {
					previewURL = c.OriginalImageURL
				}
			}
		}
		return previewURL, videoHDURL
	}

	if len(snap.Cards) > 0 {
		c := snap.Cards[0]
		previewURL = c.OriginalImageURL
		if previewURL == "" {
			previewURL = c.ResizedImageURL
		}
	} else if len(snap.Images) > 0 {
		img := snap.Images[0]
		previewURL = img.OriginalImageURL
		if previewURL == "" {
			previewURL = img.ResizedImageURL
		}
	}
	return previewURL, ""
}

// resolveTitle walks an ordered list of extractors and accepts the first
// usable candidate, so the resolution order stays auditable.
func resolveTitle(snap domain.Snapshot, bodyText string) string {
	extractors := []func() string{
		func() string { return snap.Title },
		func() string {
			if len(snap.Cards) > 0 {
				return snap.Cards[0].Title
			}
			return ""
		},
		func() string { return titleFromBody(bodyText) },
	}

	for _, extract := range extractors {
		if title := extract(); usable(title) {
			return title
		}
	}
	return fallbackTitle
}

// titleFromBody derives a title from the first line of the body text,
// truncated to 50 characters with an ellipsis marker when cut.
func titleFromBody(bodyText string) string {
	if bodyText == "" {
		return ""
	}
	firstLine := strings.TrimSpace(strings.SplitN(bodyText, "\n", 2)[0])
	title := truncateRunes(firstLine, titleMaxLen)
	if len([]rune(firstLine)) > titleMaxLen {
		title += "..."
	}
	return title
}

func resolveCTA(snap domain.Snapshot) string {
	if snap.CTAText == "" {
		return fallbackCTA
	}
	return snap.CTAText
}
