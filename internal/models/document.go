package models

import "time"

// ArticleDocument represents a classified article stored in Elasticsearch.
type ArticleDocument struct {
	ID          string       `json:"id"`
	Company     string       `json:"company"`
	Industry    string       `json:"industry"`
	Title       string       `json:"title"`
	Source      string       `json:"source"`
	URL         string       `json:"url"`
	Snippet     string       `json:"snippet"`
	Timestamp   time.Time    `json:"timestamp"`
	Keywords    []string     `json:"keywords"`
	RiskFactors []RiskFactor `json:"riskFactors"`
	Categories  []Category   `json:"categories"`
	MaxSeverity Severity     `json:"maxSeverity"`
}
