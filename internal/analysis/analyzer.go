// Package analysis turns a batch of news articles about a company into a
// structured, source-attributed ESG risk assessment.
//
// The pipeline is: assign ids, attach heuristic risk factors, invoke the
// model, extract the JSON object from its text, normalize it and resolve
// every finding's source to an article URL. Only a missing JSON object is
// fatal once the model has answered; every other irregularity is repaired.
package analysis

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/DeafMist/esg-risk-radar/internal/classify"
	"github.com/DeafMist/esg-risk-radar/internal/llm"
	"github.com/DeafMist/esg-risk-radar/internal/logger"
	"github.com/DeafMist/esg-risk-radar/internal/models"
	"github.com/DeafMist/esg-risk-radar/internal/news"
)

// Analyzer runs the full analysis pipeline. It holds no per-request state
// and is safe for concurrent use.
type Analyzer struct {
	invoker *Invoker
	log     *slog.Logger
}

// NewAnalyzer builds an Analyzer calling gen with the given timeout.
func NewAnalyzer(gen llm.Generator, timeout time.Duration, log *slog.Logger) *Analyzer {
	if log == nil {
		log = logger.Discard()
	}
	return &Analyzer{invoker: NewInvoker(gen, timeout), log: log}
}

// Analyze produces the assessment for company. Errors are *Error values.
func (a *Analyzer) Analyze(ctx context.Context, company, industry string, articles []models.Article) (models.AnalysisResult, error) {
	if err := validate("analyze", company, industry, articles); err != nil {
		return models.AnalysisResult{}, err
	}

	log := a.log.With(
		slog.String("request_id", uuid.NewString()),
		slog.String("company", company),
		slog.Int("articles", len(articles)),
	)

	batch := classify.Articles(news.EnsureIDs(articles), classify.FirstMatch)

	started := time.Now()
	raw, err := a.invoker.Invoke(ctx, company, industry, batch)
	if err != nil {
		log.Warn("model call failed", slog.String("kind", string(KindOf(err))), slog.Any("err", err))
		return models.AnalysisResult{}, err
	}
	log.Debug("model answered", slog.Duration("took", time.Since(started)), slog.Int("bytes", len(raw)))

	doc, err := Extract(raw)
	if err != nil {
		log.Warn("model output unusable", slog.Any("err", err))
		return models.AnalysisResult{}, err
	}
	if err := CheckModelOutput(doc); err != nil {
		log.Info("model output deviates from contract, normalizing", slog.Any("err", err))
	}

	res := Normalize(doc, company, batch)
	log.Info("analysis complete",
		slog.String("risk_level", string(res.RiskLevel)),
		slog.Int("environmental", len(res.ESGRisks.Environmental)),
		slog.Int("social", len(res.ESGRisks.Social)),
		slog.Int("governance", len(res.ESGRisks.Governance)),
		slog.Int("compliance", len(res.ESGRisks.Compliance)),
	)
	return res, nil
}
