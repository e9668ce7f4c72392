package domain

// AnalysisReport is the structured output of the multimodal inference pass.
// Only the shape is enforced; content comes from the model as-is.
type AnalysisReport struct {
	OverallAnalysis OverallAnalysis `json:"overall_analysis"`
	IndividualAds   []AdInsight     `json:"individual_ads"`
}

type OverallAnalysis struct {
	PromotionIntel string `json:"promotion_intel"`
	CreativeTrend  string `json:"creative_trend"`
	KeyTakeaways   string `json:"key_takeaways"`
}

// AdInsight is the per-creative commentary. Index is the 0-based position
// within the subset selected for analysis, not within the full group list.
type AdInsight struct {
	Index            int              `json:"index"`
	Category         InsightCategory  `json:"category"`
	VisualHighlights VisualHighlights `json:"visual_highlights"`
	CopyHighlights   CopyHighlights   `json:"copy_highlights"`
	PromoIntel       PromoIntel       `json:"promo_intel"`
	CreativeScore    int              `json:"creative_score"`
	OneLineSummary   string           `json:"one_line_summary"`
}

type InsightCategory struct {
	DesignType      string `json:"design_type"`
	ContentStrategy string `json:"content_strategy"`
}

type VisualHighlights struct {
	HookElement   string `json:"hook_element"`
	Scene         string `json:"scene"`
	Structure     string `json:"structure"`
	WorthLearning string `json:"worth_learning"`
}

type CopyHighlights struct {
	Framework         string   `json:"framework"`
	TargetAudience    string   `json:"target_audience"`
	EmotionalTriggers []string `json:"emotional_triggers"`
	WorthLearning     string   `json:"worth_learning"`
}

type PromoIntel struct {
	Discount        string   `json:"discount"`
	CampaignName    string   `json:"campaign_name"`
	UrgencyElements []string `json:"urgency_elements"`
}

// FetchedImage is a downloaded preview image ready to be attached to an
// inference request.
type FetchedImage struct {
	Data     []byte
	MIMEType string
}
