package domain

import (
	"bytes"
	"encoding/json"
)

// RawAdRecord is one scraped ad instance as delivered by the acquisition
// collaborator. Every field may be absent; absent and empty are equivalent.
type RawAdRecord struct {
	AdArchiveID        string   `json:"adArchiveID"`
	PageID             string   `json:"pageID"`
	PageName           string   `json:"pageName"`
	StartDateFormatted string   `json:"startDateFormatted"`
	Snapshot           Snapshot `json:"snapshot"`
}

// Snapshot carries the creative content of a raw record.
type Snapshot struct {
	Body          SnapshotBody `json:"body"`
	Title         string       `json:"title"`
	CTAText       string       `json:"ctaText"`
	LinkURL       string       `json:"linkUrl"`
	DisplayFormat string       `json:"displayFormat"`
	Cards         []Card       `json:"cards"`
	Images        []Image      `json:"images"`
	Videos        []Video      `json:"videos"`
}

type SnapshotBody struct {
	Text string `json:"text"`
}

// Card is one carousel/DCO slide.
type Card struct {
	Title                string   `json:"title"`
	Body                 CardBody `json:"body"`
	OriginalImageURL     string   `json:"originalImageUrl"`
	ResizedImageURL      string   `json:"resizedImageUrl"`
	VideoURL             string   `json:"videoUrl"`
	VideoHDURL           string   `json:"videoHdUrl"`
	VideoPreviewImageURL string   `json:"videoPreviewImageUrl"`
}

type Image struct {
	OriginalImageURL string `json:"originalImageUrl"`
	ResizedImageURL  string `json:"resizedImageUrl"`
}

type Video struct {
	VideoPreviewImageURL string `json:"videoPreviewImageUrl"`
	VideoHDURL           string `json:"videoHdUrl"`
	VideoSDURL           string `json:"videoSdUrl"`
}

// CardBody is the multi-shaped card body: upstream serializes it either as
// a plain string or as an object with a nested "text" field. It is resolved
// to a single string at decode time and never re-inspected downstream.
type CardBody struct {
	Text string
}

func (b *CardBody) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		b.Text = ""
		return nil
	}

	if data[0] == '"' {
		return json.Unmarshal(data, &b.Text)
	}

	var nested struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &nested); err != nil {
		// Unexpected shape degrades to empty, never to a decode failure.
		b.Text = ""
		return nil
	}
	b.Text = nested.Text
	return nil
}

func (b CardBody) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Text)
}

// NormalizedAd is the flat per-record view produced by the record
// normalizer, before any merging.
type NormalizedAd struct {
	ArchiveID       string
	PageID          string
	PageName        string
	StartDate       string
	Title           string
	BodyText        string
	CTA             string
	LinkURL         string
	DisplayFormat   string
	IsVideo         bool
	PreviewImageURL string
	VideoHDURL      string
	Cards           []Card
	Images          []Image
	Videos          []Video
}
