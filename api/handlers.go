package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/DeafMist/esg-risk-radar/internal/analysis"
	"github.com/DeafMist/esg-risk-radar/internal/classify"
	"github.com/DeafMist/esg-risk-radar/internal/config"
	"github.com/DeafMist/esg-risk-radar/internal/elasticsearch"
	"github.com/DeafMist/esg-risk-radar/internal/models"
	"github.com/DeafMist/esg-risk-radar/internal/news"
)

const maxAnalyzeBody = 1 << 20

type articleStore interface {
	Health(ctx context.Context) error
	SearchArticles(ctx context.Context, params elasticsearch.SearchParams) (*elasticsearch.SearchResult, error)
}

type analyzer interface {
	Analyze(ctx context.Context, company, industry string, articles []models.Article) (models.AnalysisResult, error)
}

type scorer interface {
	CountryScore(ctx context.Context, target string) int
}

type server struct {
	log      *slog.Logger
	cfg      *config.API
	store    articleStore
	feed     news.Source
	analyzer analyzer
	scorer   scorer
	now      func() time.Time
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

type analyzeRequest struct {
	Company  string           `json:"company"`
	Industry string           `json:"industry"`
	Articles []models.Article `json:"articles"`
}

type countryScoreResponse struct {
	Country string `json:"country"`
	Score   int    `json:"score"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Health(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleNews fetches the feed for a company and attaches first-match risk
// factors to every article.
func (s *server) handleNews(w http.ResponseWriter, r *http.Request) {
	company := strings.TrimSpace(r.URL.Query().Get("company"))
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		query = company
	}
	if query == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: "company or query is required",
			Kind:  string(analysis.KindMissingParameters),
		})
		return
	}

	articles, err := news.Articles(r.Context(), s.feed, query, s.now())
	if err != nil {
		s.log.Warn("news feed failed", slog.String("query", query), slog.Any("err", err))
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error(), Kind: "feed_unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": classify.Attach(articles, classify.FirstMatch)})
}

func (s *server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAnalyzeBody))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	res, err := s.analyzer.Analyze(r.Context(), req.Company, req.Industry, req.Articles)
	if err != nil {
		kind := analysis.KindOf(err)
		s.log.Warn("analysis failed",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("company", req.Company),
			slog.String("kind", string(kind)),
			slog.Any("err", err))
		writeJSON(w, statusFor(kind), errorResponse{Error: err.Error(), Kind: string(kind)})
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (s *server) handleCountryScore(w http.ResponseWriter, r *http.Request) {
	target := strings.TrimSpace(r.URL.Query().Get("country"))
	if target == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: "country is required",
			Kind:  string(analysis.KindMissingParameters),
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	writeJSON(w, http.StatusOK, countryScoreResponse{Country: target, Score: s.scorer.CountryScore(ctx, target)})
}

func (s *server) handleArticles(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	q := r.URL.Query()
	params := elasticsearch.SearchParams{
		Query:       strings.TrimSpace(q.Get("q")),
		Company:     strings.TrimSpace(q.Get("company")),
		Category:    models.Category(strings.ToLower(strings.TrimSpace(q.Get("category")))),
		MinSeverity: models.Severity(strings.ToLower(strings.TrimSpace(q.Get("severity")))),
		Keywords:    parseCSV(q.Get("keywords")),
		From:        clampInt(q.Get("from"), 0, 10_000),
		Size:        clampInt(q.Get("size"), s.cfg.DefaultPage, s.cfg.MaxPage),
		Sort:        strings.TrimSpace(q.Get("sort")),
		Start:       parseTime(q.Get("start")),
		End:         parseTime(q.Get("end")),
	}

	if params.Category != "" && !validCategory(params.Category) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown category " + strconv.Quote(string(params.Category))})
		return
	}

	result, err := s.store.SearchArticles(ctx, params)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func statusFor(kind analysis.Kind) int {
	switch kind {
	case analysis.KindMissingParameters:
		return http.StatusBadRequest
	case analysis.KindCapabilityUnavailable:
		return http.StatusServiceUnavailable
	case analysis.KindCapabilityTimeout:
		return http.StatusGatewayTimeout
	case analysis.KindCapabilityError, analysis.KindMalformedModelOutput:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func validCategory(c models.Category) bool {
	for _, known := range models.Categories {
		if c == known {
			return true
		}
	}
	return false
}

func parseTime(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return &ts
	}
	return nil
}

func parseCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func clampInt(raw string, fallback, max int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	if value <= 0 {
		return fallback
	}
	if value > max {
		return max
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
