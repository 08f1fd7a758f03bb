package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/esg-risk-radar/internal/analysis"
	"github.com/DeafMist/esg-risk-radar/internal/models"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
		wantKey string
	}{
		{name: "bare object", raw: `{"summary":"x"}`, wantKey: "summary"},
		{name: "prose around", raw: "Sure!\n```json\n{\"riskLevel\":\"Low\"}\n```\nHope it helps.", wantKey: "riskLevel"},
		{name: "nested braces", raw: `result: {"esgRisks":{"social":[]}} done`, wantKey: "esgRisks"},
		{name: "empty", raw: "", wantErr: true},
		{name: "no braces", raw: "nothing to see", wantErr: true},
		{name: "two objects", raw: `{"a":1} and {"b":2}`, wantErr: true},
		{name: "array wrapper", raw: `[{"a":1}]`, wantKey: "a"},
		{name: "truncated", raw: `{"summary":"x", "esgRisks":{`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := analysis.Extract(tt.raw)
			if tt.wantErr {
				require.ErrorIs(t, err, analysis.ErrMalformedModelOutput)
				require.Nil(t, doc)
				return
			}
			require.NoError(t, err)
			require.Contains(t, doc, tt.wantKey)
		})
	}
}

func TestNormalizeFillsCategories(t *testing.T) {
	tests := []struct {
		name string
		doc  map[string]any
	}{
		{name: "empty object", doc: map[string]any{}},
		{name: "esgRisks not an object", doc: map[string]any{"esgRisks": "none"}},
		{name: "partial", doc: map[string]any{"esgRisks": map[string]any{"governance": []any{"board turnover"}}}},
		{name: "null arrays", doc: map[string]any{"esgRisks": map[string]any{"social": nil}, "keyFindings": nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := analysis.Normalize(tt.doc, "ACME", nil)
			for _, c := range models.Categories {
				require.NotNil(t, res.ESGRisks.Get(c), c)
			}
			require.NotNil(t, res.KeyFindings)
			require.NotNil(t, res.Recommendations)
			require.NoError(t, analysis.ValidateResult(res))
		})
	}
}

func TestNormalizeDecodesFindings(t *testing.T) {
	doc := map[string]any{
		"esgRisks": map[string]any{
			"social": []any{
				"Unsafe working conditions",
				map[string]any{"text": "unsafe WORKING conditions", "source": "a1"},
				map[string]any{"text": "  "},
				map[string]any{"source": "a1"},
				nil,
				42.0,
				map[string]any{"text": "Union dispute", "source": "null"},
			},
		},
		"keyFindings": "Single finding",
	}
	articles := []models.Article{{ID: "a1", URL: "https://x.test/1", Title: "Plant audit"}}

	res := analysis.Normalize(doc, "ACME", articles)
	require.Equal(t, []models.Finding{
		{Text: "Unsafe working conditions", Source: "https://x.test/1"},
		{Text: "42"},
		{Text: "Union dispute"},
	}, res.ESGRisks.Social)
	require.Equal(t, []models.Finding{{Text: "Single finding"}}, res.KeyFindings)
}

func TestNormalizeRiskLevel(t *testing.T) {
	high := []models.Article{{RiskFactors: []models.RiskFactor{{Text: "fine", Category: models.Compliance, Severity: models.SeverityHigh}}}}
	medium := []models.Article{{RiskFactors: []models.RiskFactor{{Text: "issue", Category: models.Governance, Severity: models.SeverityMedium}}}}

	tests := []struct {
		name     string
		level    any
		articles []models.Article
		want     models.RiskLevel
	}{
		{name: "canonical", level: "Medium", want: models.RiskMedium},
		{name: "case", level: " high ", want: models.RiskHigh},
		{name: "lower", level: "low", articles: high, want: models.RiskLow},
		{name: "missing derives high", level: nil, articles: high, want: models.RiskHigh},
		{name: "unknown derives medium", level: "Severe", articles: medium, want: models.RiskMedium},
		{name: "no factors", level: 3.0, want: models.RiskLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := analysis.Normalize(map[string]any{"riskLevel": tt.level}, "ACME", tt.articles)
			require.Equal(t, tt.want, res.RiskLevel)
		})
	}
}

func TestEnvironmentalBackstop(t *testing.T) {
	carbon := []models.Article{
		{ID: "a1", Title: "ACME expands plant", URL: "https://x.test/1"},
		{ID: "a2", Title: "Investors question CARBON targets", URL: "https://x.test/2"},
	}
	quiet := []models.Article{
		{ID: "a1", Title: "ACME expands plant", Snippet: "carbon targets missed", URL: "https://x.test/1"},
	}

	res, err := analysis.Parse(`{"esgRisks":{"environmental":[]}}`, "ACME", carbon)
	require.NoError(t, err)
	require.Equal(t, []models.Finding{{Text: "Potential environmental impact requiring further assessment for ACME."}}, res.ESGRisks.Environmental)
	require.Empty(t, res.ESGRisks.Social)

	res, err = analysis.Parse(`{"esgRisks":{}}`, "ACME", quiet)
	require.NoError(t, err)
	require.Empty(t, res.ESGRisks.Environmental)

	res, err = analysis.Parse(`{"esgRisks":{"environmental":["Water use"]}}`, "ACME", carbon)
	require.NoError(t, err)
	require.Equal(t, []models.Finding{{Text: "Water use"}}, res.ESGRisks.Environmental)
}

func TestCheckModelOutput(t *testing.T) {
	good, err := analysis.Extract(`{"summary":"s","esgRisks":{"environmental":[],"social":[{"text":"t","source":"a1"}],"governance":[],"compliance":[]},"riskLevel":"Low","keyFindings":[],"recommendations":[]}`)
	require.NoError(t, err)
	require.NoError(t, analysis.CheckModelOutput(good))

	bad, err := analysis.Extract(`{"summary":"s","esgRisks":{"social":["loose string"]},"riskLevel":"severe"}`)
	require.NoError(t, err)
	require.Error(t, analysis.CheckModelOutput(bad))
}

func TestValidateResultRejectsBareIDs(t *testing.T) {
	res := analysis.Normalize(map[string]any{}, "ACME", nil)
	require.NoError(t, analysis.ValidateResult(res))

	res.KeyFindings = []models.Finding{{Text: "x", Source: "a1"}}
	require.Error(t, analysis.ValidateResult(res))
}
