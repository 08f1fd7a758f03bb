package models

// Category is one of the four ESG/compliance risk buckets.
type Category string

const (
	Environmental Category = "environmental"
	Social        Category = "social"
	Governance    Category = "governance"
	Compliance    Category = "compliance"
)

// Categories lists the taxonomy in its canonical order.
var Categories = []Category{Environmental, Social, Governance, Compliance}

// Severity tiers a heuristically detected risk factor.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// RiskFactor is a single keyword hit produced by the classifier.
type RiskFactor struct {
	Text     string   `json:"text" yaml:"text"`
	Category Category `json:"category" yaml:"category"`
	Severity Severity `json:"severity" yaml:"severity"`
}

// Article is the canonical shape of one news item inside an analysis batch.
type Article struct {
	ID          string       `json:"id" yaml:"id"`
	Title       string       `json:"title" yaml:"title"`
	Source      string       `json:"source" yaml:"source"`
	Date        string       `json:"date" yaml:"date"`
	URL         string       `json:"url" yaml:"url"`
	Snippet     string       `json:"snippet" yaml:"snippet"`
	RiskFactors []RiskFactor `json:"riskFactors,omitempty" yaml:"riskFactors,omitempty"`
}

// WithRiskFactors returns a copy of the article carrying factors.
func (a Article) WithRiskFactors(factors []RiskFactor) Article {
	out := a
	out.RiskFactors = append([]RiskFactor(nil), factors...)
	return out
}

// FeedItem is a raw record as delivered by an upstream news feed.
// Any field may be empty.
type FeedItem struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Link        string `json:"link"`
	Description string `json:"description"`
	Published   string `json:"published"`
	Source      string `json:"source,omitempty"`
}

// FeedEnvelope is the Kafka payload published by the collector.
type FeedEnvelope struct {
	Company  string   `json:"company"`
	Industry string   `json:"industry"`
	Query    string   `json:"query"`
	Item     FeedItem `json:"item"`
	Position int      `json:"position"`
	Fetched  string   `json:"fetched"`
}
