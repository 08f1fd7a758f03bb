package analysis

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/DeafMist/esg-risk-radar/internal/classify"
	"github.com/DeafMist/esg-risk-radar/internal/models"
	"github.com/DeafMist/esg-risk-radar/internal/news"
	"github.com/DeafMist/esg-risk-radar/internal/terms"
)

// BackstopTemplate is the environmental finding injected when headlines
// carry an environmental signal the model did not report.
const BackstopTemplate = "Potential environmental impact requiring further assessment for %s."

// Normalize turns an extracted JSON object into a complete AnalysisResult.
// It never fails: missing or mistyped fields become empty values, all four
// risk categories are present, and every source is either an absolute URL
// or empty.
func Normalize(doc map[string]any, company string, articles []models.Article) models.AnalysisResult {
	idx := news.URLIndex(articles)
	risks, _ := doc["esgRisks"].(map[string]any)

	var res models.AnalysisResult
	res.Summary = str(doc["summary"])
	for _, c := range models.Categories {
		res.ESGRisks.Set(c, Attribute(decodeFindings(risks[string(c)]), idx, articles))
	}
	res.KeyFindings = Attribute(decodeFindings(doc["keyFindings"]), idx, articles)
	res.Recommendations = Attribute(decodeFindings(doc["recommendations"]), idx, articles)
	res.RiskLevel = riskLevel(doc["riskLevel"], articles)

	// after attribution, so the synthetic finding never picks up a source
	if f, ok := backstop(res.ESGRisks.Environmental, company, articles); ok {
		res.ESGRisks.Environmental = append(res.ESGRisks.Environmental, f)
	}
	return res
}

// backstop reports the synthetic environmental finding for an empty
// environmental category whose headlines mention an environmental signal.
// The finding never carries a source.
func backstop(env []models.Finding, company string, articles []models.Article) (models.Finding, bool) {
	if len(env) > 0 {
		return models.Finding{}, false
	}
	titles := make([]string, 0, len(articles))
	for _, a := range articles {
		titles = append(titles, a.Title)
	}
	headlines := strings.ToLower(strings.Join(titles, " "))
	if _, hit := terms.FirstIn(headlines, terms.EnvironmentalSignals); !hit {
		return models.Finding{}, false
	}
	return models.Finding{Text: fmt.Sprintf(BackstopTemplate, company)}, true
}

// decodeFindings accepts a list whose entries are strings, objects with a
// "text" field, or numbers. A lone entry is treated as a list of one.
// Entries without text are dropped and repeated texts are merged.
func decodeFindings(v any) []models.Finding {
	var raw []any
	switch t := v.(type) {
	case nil:
	case []any:
		raw = t
	default:
		raw = []any{t}
	}

	out := make([]models.Finding, 0, len(raw))
	seen := make(map[string]int, len(raw))
	for _, entry := range raw {
		f, ok := decodeFinding(entry)
		if !ok {
			continue
		}
		key := strings.ToLower(f.Text)
		if i, dup := seen[key]; dup {
			if out[i].Source == "" {
				out[i].Source = f.Source
			}
			continue
		}
		seen[key] = len(out)
		out = append(out, f)
	}
	return out
}

func decodeFinding(v any) (models.Finding, bool) {
	var f models.Finding
	switch t := v.(type) {
	case map[string]any:
		f.Text = str(t["text"])
		f.Source = sourceRef(t["source"])
	default:
		f.Text = str(t)
	}
	return f, f.Text != ""
}

// str renders scalar JSON values as trimmed text. Objects, arrays and null
// yield "".
func str(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

func sourceRef(v any) string {
	s := str(v)
	switch strings.ToLower(s) {
	case "null", "undefined", "none", "n/a":
		return ""
	}
	return s
}

// riskLevel case-normalizes the model verdict. When it is missing or not one
// of Low, Medium, High the level is derived from the articles' risk factors.
func riskLevel(v any, articles []models.Article) models.RiskLevel {
	switch strings.ToLower(str(v)) {
	case "low":
		return models.RiskLow
	case "medium":
		return models.RiskMedium
	case "high":
		return models.RiskHigh
	}

	var factors []models.RiskFactor
	for _, a := range articles {
		factors = append(factors, a.RiskFactors...)
	}
	switch classify.MaxSeverity(factors) {
	case models.SeverityHigh:
		return models.RiskHigh
	case models.SeverityMedium:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}
