package analysis_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/esg-risk-radar/internal/analysis"
	"github.com/DeafMist/esg-risk-radar/internal/llm"
	"github.com/DeafMist/esg-risk-radar/internal/models"
)

type stubGenerator struct {
	out    string
	err    error
	prompt string
	calls  int
}

func (s *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	s.calls++
	s.prompt = prompt
	return s.out, s.err
}

func acmeArticles() []models.Article {
	return []models.Article{{
		ID:      "a1",
		Title:   "ACME fined for emissions violation",
		Source:  "Reuters",
		Date:    "Tue, 02 Jan 2024 15:04:05 GMT",
		URL:     "https://news.example.com/a1",
		Snippet: "regulators cite pollution",
	}}
}

func TestAnalyzeEndToEnd(t *testing.T) {
	gen := &stubGenerator{out: `Here you go: {"summary":"ACME faces emissions scrutiny", "esgRisks":{"environmental":[{"text":"emissions fine","source":"a1"}]}, "riskLevel":"High","keyFindings":[],"recommendations":[]}`}
	a := analysis.NewAnalyzer(gen, time.Second, nil)

	res, err := a.Analyze(context.Background(), "ACME", "Chemicals", acmeArticles())
	require.NoError(t, err)
	require.Equal(t, 1, gen.calls)

	require.Equal(t, "ACME faces emissions scrutiny", res.Summary)
	require.Equal(t, models.RiskHigh, res.RiskLevel)
	require.Equal(t, []models.Finding{{Text: "emissions fine", Source: "https://news.example.com/a1"}}, res.ESGRisks.Environmental)
	require.NotNil(t, res.ESGRisks.Social)
	require.Empty(t, res.ESGRisks.Social)
	require.NotNil(t, res.ESGRisks.Governance)
	require.Empty(t, res.ESGRisks.Governance)
	require.NotNil(t, res.ESGRisks.Compliance)
	require.Empty(t, res.ESGRisks.Compliance)
	require.NoError(t, analysis.ValidateResult(res))

	require.Contains(t, gen.prompt, "Article ID: a1")
	require.Contains(t, gen.prompt, "environmental (high): pollution")
	require.Contains(t, gen.prompt, "compliance (high): fine")
}

func TestAnalyzeMalformedOutput(t *testing.T) {
	for _, out := range []string{"", "I could not find anything relevant.", "} backwards {", `{"summary": "truncated`} {
		t.Run(out, func(t *testing.T) {
			a := analysis.NewAnalyzer(&stubGenerator{out: out}, time.Second, nil)
			res, err := a.Analyze(context.Background(), "ACME", "Chemicals", acmeArticles())
			require.ErrorIs(t, err, analysis.ErrMalformedModelOutput)
			require.Equal(t, analysis.KindMalformedModelOutput, analysis.KindOf(err))
			require.Equal(t, models.AnalysisResult{}, res)
		})
	}
}

func TestAnalyzeAssignsMissingIDs(t *testing.T) {
	gen := &stubGenerator{out: `{"esgRisks":{"social":[{"text":"strike","source":"article-1"}]}}`}
	articles := []models.Article{
		{Title: "ACME quarterly update", URL: "https://x.test/0"},
		{Title: "Workers walk out", URL: "x.test/1"},
	}

	res, err := analysis.NewAnalyzer(gen, time.Second, nil).Analyze(context.Background(), "ACME", "Retail", articles)
	require.NoError(t, err)
	require.Equal(t, []models.Finding{{Text: "strike", Source: "https://x.test/1"}}, res.ESGRisks.Social)
	require.Contains(t, gen.prompt, "Article ID: article-0")
	require.Empty(t, articles[0].ID)
}

func TestAnalyzeMissingParameters(t *testing.T) {
	tests := []struct {
		name     string
		company  string
		industry string
		articles []models.Article
	}{
		{name: "company", industry: "Retail", articles: acmeArticles()},
		{name: "industry", company: "ACME", articles: acmeArticles()},
		{name: "blank industry", company: "ACME", industry: "  ", articles: acmeArticles()},
		{name: "articles", company: "ACME", industry: "Retail"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &stubGenerator{out: "{}"}
			_, err := analysis.NewAnalyzer(gen, time.Second, nil).Analyze(context.Background(), tt.company, tt.industry, tt.articles)
			require.ErrorIs(t, err, analysis.ErrMissingParameters)
			require.Zero(t, gen.calls)
		})
	}
}

func TestInvokeErrorKinds(t *testing.T) {
	blocking := llm.Func(func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	opaque := llm.Func(func(ctx context.Context, _ string) (string, error) {
		return "", errors.New("upstream 500")
	})

	tests := []struct {
		name string
		gen  llm.Generator
		want error
	}{
		{name: "nil generator", gen: nil, want: analysis.ErrCapabilityUnavailable},
		{name: "no credentials", gen: llm.Unconfigured{Provider: "gemini"}, want: analysis.ErrCapabilityUnavailable},
		{name: "timeout", gen: blocking, want: analysis.ErrCapabilityTimeout},
		{name: "failure", gen: opaque, want: analysis.ErrCapabilityError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := analysis.NewInvoker(tt.gen, 10*time.Millisecond)
			_, err := inv.Invoke(context.Background(), "ACME", "Chemicals", acmeArticles())
			require.ErrorIs(t, err, tt.want)

			for _, other := range []error{analysis.ErrCapabilityUnavailable, analysis.ErrCapabilityTimeout, analysis.ErrCapabilityError} {
				if other != tt.want {
					require.NotErrorIs(t, err, other)
				}
			}
		})
	}
}

func TestInvokeCanceledIsCapabilityError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	gen := llm.Func(func(ctx context.Context, _ string) (string, error) { return "", ctx.Err() })

	_, err := analysis.NewInvoker(gen, time.Minute).Invoke(ctx, "ACME", "Chemicals", acmeArticles())
	require.ErrorIs(t, err, analysis.ErrCapabilityError)
	require.ErrorIs(t, err, context.Canceled)
}

func TestErrorFormatting(t *testing.T) {
	err := &analysis.Error{Kind: analysis.KindCapabilityError, Op: "invoke model", Err: errors.New("boom")}
	require.Equal(t, "invoke model: capability_error: boom", err.Error())
	require.Equal(t, analysis.KindCapabilityError, analysis.KindOf(fmt.Errorf("wrapped: %w", err)))
	require.Equal(t, analysis.Kind(""), analysis.KindOf(errors.New("plain")))
}

func TestBuildPrompt(t *testing.T) {
	articles := []models.Article{
		{ID: "a1", Title: "Plant leak", Source: "FT", Date: "d1", URL: "https://x.test/1", Snippet: "Spill reported",
			RiskFactors: []models.RiskFactor{{Text: "spill", Category: models.Environmental, Severity: models.SeverityMedium}}},
		{ID: "a2", Title: "Board reshuffle", Snippet: "New chair"},
	}

	p := analysis.BuildPrompt("ACME", "Chemicals", articles)
	require.Contains(t, p, "ACME")
	require.Contains(t, p, "Chemicals industry")
	require.Contains(t, p, "Article ID: a1\nTitle: Plant leak\nSource: FT\nDate: d1\nURL: https://x.test/1\nContent: Spill reported\nRisk Factors: environmental (medium): spill")
	require.Contains(t, p, "URL: N/A")
	require.Contains(t, p, "Risk Factors: none")
	require.Contains(t, p, "instead of guessing")
	require.Contains(t, p, `"esgRisks"`)
	require.Equal(t, 1, strings.Count(p, "\n---\n"))
	require.Less(t, strings.Index(p, "Article ID: a1"), strings.Index(p, "Article ID: a2"))
}
