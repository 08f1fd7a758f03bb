package classify

import "github.com/DeafMist/esg-risk-radar/internal/models"

// Attach returns copies of articles with the factors produced by fn. Inputs
// are left untouched.
func Attach(articles []models.Article, fn Func) []models.Article {
	out := make([]models.Article, len(articles))
	for i, a := range articles {
		out[i] = a.WithRiskFactors(fn(a))
	}
	return out
}

// Articles keeps upstream factors where present and fills in the rest with
// fallback. A nil fallback selects Rich.
func Articles(articles []models.Article, fallback Func) []models.Article {
	if fallback == nil {
		fallback = Rich
	}
	out := make([]models.Article, len(articles))
	for i, a := range articles {
		if len(a.RiskFactors) > 0 {
			out[i] = a.WithRiskFactors(a.RiskFactors)
			continue
		}
		out[i] = a.WithRiskFactors(fallback(a))
	}
	return out
}

// MaxSeverity returns the highest severity among factors, or "" when empty.
func MaxSeverity(factors []models.RiskFactor) models.Severity {
	var best models.Severity
	for _, f := range factors {
		if rank(f.Severity) > rank(best) {
			best = f.Severity
		}
	}
	return best
}

// Categories returns the distinct categories of factors in first-seen order.
func Categories(factors []models.RiskFactor) []models.Category {
	seen := make(map[models.Category]struct{}, len(factors))
	var out []models.Category
	for _, f := range factors {
		if _, ok := seen[f.Category]; ok {
			continue
		}
		seen[f.Category] = struct{}{}
		out = append(out, f.Category)
	}
	return out
}

func rank(s models.Severity) int {
	switch s {
	case models.SeverityHigh:
		return 3
	case models.SeverityMedium:
		return 2
	case models.SeverityLow:
		return 1
	}
	return 0
}
