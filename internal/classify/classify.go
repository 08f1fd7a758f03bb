// Package classify scans article text against the term dictionaries and
// produces risk factors.
//
// Two variants exist. FirstMatch emits at most one factor per category: the
// first keyword of the ordered list that occurs wins and the scan of that
// category stops. Rich counts term groups, adds company-context clusters and
// a human-rights rule, and caps the result at three factors. Neither tries to
// find the best match; both are deterministic in list order.
package classify

import (
	"strings"

	"github.com/DeafMist/esg-risk-radar/internal/models"
	"github.com/DeafMist/esg-risk-radar/internal/terms"
)

// Func classifies one article.
type Func func(models.Article) []models.RiskFactor

// MaxRichFactors caps the output of Rich.
const MaxRichFactors = 3

// CombinedText is the lower-cased text both classifiers scan.
func CombinedText(a models.Article) string {
	return strings.ToLower(strings.TrimSpace(a.Title + " " + a.Snippet))
}

// FirstMatch is the basic per-category classifier. It never returns nil.
func FirstMatch(a models.Article) []models.RiskFactor {
	text := CombinedText(a)
	factors := make([]models.RiskFactor, 0, len(terms.Basic))
	if text == "" {
		return factors
	}

	for _, group := range terms.Basic {
		term, ok := terms.FirstIn(text, group.Terms)
		if !ok {
			continue
		}
		factors = append(factors, models.RiskFactor{
			Text:     term,
			Category: group.Category,
			Severity: Severity(text),
		})
	}

	if len(factors) == 0 {
		if term, ok := terms.FirstIn(text, terms.NegativeSentiment); ok {
			factors = append(factors, models.RiskFactor{
				Text:     term,
				Category: models.Governance,
				Severity: models.SeverityLow,
			})
		}
	}

	return factors
}

// Severity grades text by its context words. High-severity context is
// checked first, so it wins over medium-severity context.
func Severity(text string) models.Severity {
	if _, ok := terms.FirstIn(text, terms.HighSeverityContext); ok {
		return models.SeverityHigh
	}
	if _, ok := terms.FirstIn(text, terms.MediumSeverityContext); ok {
		return models.SeverityMedium
	}
	return models.SeverityLow
}
