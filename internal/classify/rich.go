package classify

import (
	"github.com/DeafMist/esg-risk-radar/internal/models"
	"github.com/DeafMist/esg-risk-radar/internal/terms"
)

// Fallback is emitted by Rich when nothing else matched.
var Fallback = models.RiskFactor{
	Text:     "potential regulatory considerations",
	Category: models.Compliance,
	Severity: models.SeverityLow,
}

// Rich is the richer classifier used when no upstream factors exist. Factors
// are collected in group order, then cluster order, then the human-rights
// rule, and truncated to MaxRichFactors. It always returns at least one
// factor.
func Rich(a models.Article) []models.RiskFactor {
	text := CombinedText(a)
	var factors []models.RiskFactor

	for _, group := range terms.Rich {
		matches := terms.CountIn(text, group.Terms)
		if len(matches) == 0 {
			continue
		}
		factors = append(factors, models.RiskFactor{
			Text:     matches[0],
			Category: group.Category,
			Severity: group.Scale(len(matches)),
		})
	}

	for _, cluster := range terms.Clusters {
		term, ok := terms.FirstIn(text, cluster.Terms)
		if !ok {
			continue
		}
		factors = append(factors, models.RiskFactor{
			Text:     term,
			Category: cluster.Category,
			Severity: cluster.Severity,
		})
	}

	if _, ok := terms.FirstIn(text, terms.HumanRights); ok {
		if _, evidence := terms.FirstIn(text, terms.HumanRightsEvidence); evidence {
			factors = append(factors, models.RiskFactor{
				Text:     "human rights concerns",
				Category: models.Social,
				Severity: models.SeverityHigh,
			})
		} else {
			factors = append(factors, models.RiskFactor{
				Text:     "human rights considerations",
				Category: models.Social,
				Severity: models.SeverityMedium,
			})
		}
	}

	if len(factors) == 0 {
		return []models.RiskFactor{Fallback}
	}
	if len(factors) > MaxRichFactors {
		factors = factors[:MaxRichFactors]
	}
	return factors
}
