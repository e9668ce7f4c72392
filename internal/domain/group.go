package domain

import "time"

// AdGroup is one deduplicated canonical creative. Intensity counts how many
// raw records collapsed into it; all creative fields come from the first
// record that created the group.
type AdGroup struct {
	Fingerprint string   `json:"fingerprint"`
	Intensity   int      `json:"intensity"`
	AdIDs       []string `json:"ad_ids"`

	ArchiveID string `json:"ad_archive_id"`
	PageID    string `json:"page_id"`
	PageName  string `json:"page_name"`
	StartDate string `json:"start_date"`

	Title         string `json:"title"`
	BodyText      string `json:"text"`
	CTA           string `json:"cta"`
	LinkURL       string `json:"link_url"`
	DisplayFormat string `json:"display_format"`

	IsVideo         bool   `json:"is_video"`
	PreviewImageURL string `json:"preview_image_url"`
	VideoHDURL      string `json:"video_hd_url"`

	// Raw lists from the first record, retained for detail display only.
	Cards  []Card  `json:"cards"`
	Images []Image `json:"images"`
	Videos []Video `json:"videos"`
}

// ScanSnapshot is the frozen result of one scan. A new scan replaces the
// previous snapshot entirely; there is no cross-run merge.
type ScanSnapshot struct {
	TargetURL string          `json:"target_url"`
	ScannedAt time.Time       `json:"scanned_at"`
	RawCount  int             `json:"raw_count"`
	Groups    []AdGroup       `json:"groups"`
	Report    *AnalysisReport `json:"report,omitempty"`
}

// BrandBookmark is a user-curated ad-library shortcut. The scan pipeline
// never reads or writes bookmarks.
type BrandBookmark struct {
	Name    string    `json:"name"`
	URL     string    `json:"url"`
	AddedAt time.Time `json:"added_at"`
}
