package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/esg-risk-radar/internal/analysis"
	"github.com/DeafMist/esg-risk-radar/internal/config"
	"github.com/DeafMist/esg-risk-radar/internal/elasticsearch"
	"github.com/DeafMist/esg-risk-radar/internal/llm"
	"github.com/DeafMist/esg-risk-radar/internal/logger"
	"github.com/DeafMist/esg-risk-radar/internal/models"
	"github.com/DeafMist/esg-risk-radar/internal/ratelimit"
)

type stubStore struct {
	healthErr error
	params    elasticsearch.SearchParams
	result    *elasticsearch.SearchResult
}

func (s *stubStore) Health(context.Context) error { return s.healthErr }

func (s *stubStore) SearchArticles(_ context.Context, params elasticsearch.SearchParams) (*elasticsearch.SearchResult, error) {
	s.params = params
	if s.result == nil {
		return &elasticsearch.SearchResult{}, nil
	}
	return s.result, nil
}

type stubFeed struct {
	items []models.FeedItem
	err   error
	query string
}

func (s *stubFeed) Fetch(_ context.Context, query string) ([]models.FeedItem, error) {
	s.query = query
	return s.items, s.err
}

type stubScorer map[string]int

func (s stubScorer) CountryScore(_ context.Context, target string) int {
	if v, ok := s[target]; ok {
		return v
	}
	return 50
}

func newTestServer(gen llm.Generator) (*server, *stubStore, *stubFeed) {
	store := &stubStore{}
	feed := &stubFeed{}
	log := logger.Discard()
	return &server{
		log:      log,
		cfg:      &config.API{DefaultPage: 20, MaxPage: 100},
		store:    store,
		feed:     feed,
		analyzer: analysis.NewAnalyzer(gen, time.Second, log),
		scorer:   stubScorer{"Norway": 92},
		now:      func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) },
	}, store, feed
}

func serve(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var out errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

const analyzeBody = `{
	"company": "ACME",
	"industry": "Mining",
	"articles": [
		{"id": "a1", "title": "ACME fined for pollution", "source": "Reuters", "date": "2024-01-01", "url": "https://news.test/a1", "snippet": "Regulators issued a fine"}
	]
}`

func TestAnalyzeSuccess(t *testing.T) {
	gen := llm.Func(func(context.Context, string) (string, error) {
		return "```json\n" + `{
			"summary": "Pollution exposure",
			"esgRisks": {
				"environmental": [{"text": "Pollution fine", "source": "a1"}],
				"social": [], "governance": [], "compliance": ["Regulatory penalty"]
			},
			"riskLevel": "high",
			"keyFindings": [{"text": "ACME fined for pollution"}],
			"recommendations": []
		}` + "\n```", nil
	})
	srv, _, _ := newTestServer(gen)
	h := newRouter(srv, ratelimit.New(100, 100))

	rec := serve(t, h, http.MethodPost, "/analyze", analyzeBody)
	require.Equal(t, http.StatusOK, rec.Code)

	var res models.AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Equal(t, models.RiskHigh, res.RiskLevel)
	require.Equal(t, "https://news.test/a1", res.ESGRisks.Environmental[0].Source)
	require.Equal(t, "https://news.test/a1", res.KeyFindings[0].Source)
	require.Equal(t, []models.Finding{{Text: "Regulatory penalty"}}, res.ESGRisks.Compliance)
	require.NotNil(t, res.Recommendations)
}

func TestAnalyzeErrorKinds(t *testing.T) {
	tests := []struct {
		name   string
		gen    llm.Generator
		body   string
		status int
		kind   analysis.Kind
	}{
		{
			name:   "missing company",
			gen:    llm.Func(func(context.Context, string) (string, error) { return "{}", nil }),
			body:   `{"industry":"Mining","articles":[{"id":"a1","title":"t"}]}`,
			status: http.StatusBadRequest,
			kind:   analysis.KindMissingParameters,
		},
		{
			name:   "no credentials",
			gen:    llm.Unconfigured{Provider: llm.ProviderGemini},
			body:   analyzeBody,
			status: http.StatusServiceUnavailable,
			kind:   analysis.KindCapabilityUnavailable,
		},
		{
			name: "timeout",
			gen: llm.Func(func(ctx context.Context, _ string) (string, error) {
				<-ctx.Done()
				return "", ctx.Err()
			}),
			body:   analyzeBody,
			status: http.StatusGatewayTimeout,
			kind:   analysis.KindCapabilityTimeout,
		},
		{
			name:   "provider error",
			gen:    llm.Func(func(context.Context, string) (string, error) { return "", errors.New("quota exceeded") }),
			body:   analyzeBody,
			status: http.StatusBadGateway,
			kind:   analysis.KindCapabilityError,
		},
		{
			name:   "malformed output",
			gen:    llm.Func(func(context.Context, string) (string, error) { return "I cannot help with that.", nil }),
			body:   analyzeBody,
			status: http.StatusBadGateway,
			kind:   analysis.KindMalformedModelOutput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _, _ := newTestServer(tt.gen)
			srv.analyzer = analysis.NewAnalyzer(tt.gen, 50*time.Millisecond, srv.log)
			h := newRouter(srv, ratelimit.New(100, 100))

			rec := serve(t, h, http.MethodPost, "/analyze", tt.body)
			require.Equal(t, tt.status, rec.Code)
			require.Equal(t, string(tt.kind), decodeError(t, rec).Kind)
		})
	}
}

func TestAnalyzeInvalidBody(t *testing.T) {
	srv, _, _ := newTestServer(llm.Unconfigured{})
	rec := serve(t, newRouter(srv, ratelimit.New(100, 100)), http.MethodPost, "/analyze", "{not json")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, decodeError(t, rec).Error, "invalid request body")
}

func TestAnalyzeRateLimited(t *testing.T) {
	srv, _, _ := newTestServer(llm.Unconfigured{})
	h := newRouter(srv, ratelimit.New(1, 1))

	first := serve(t, h, http.MethodPost, "/analyze", analyzeBody)
	require.Equal(t, http.StatusServiceUnavailable, first.Code)

	second := serve(t, h, http.MethodPost, "/analyze", analyzeBody)
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	require.Equal(t, "1", second.Header().Get("Retry-After"))
	require.Equal(t, "rate_limited", decodeError(t, second).Kind)

	// other routes are not throttled
	require.Equal(t, http.StatusOK, serve(t, h, http.MethodGet, "/country-score?country=Norway", "").Code)
}

func TestNews(t *testing.T) {
	srv, _, feed := newTestServer(llm.Unconfigured{})
	feed.items = []models.FeedItem{
		{Title: "ACME faces lawsuit over emissions - Reuters", Link: "https://news.test/1", Description: "<p>A major lawsuit</p>", Published: "Fri, 01 Mar 2024 10:00:00 GMT"},
		{Title: "ACME opens office - Local", Link: "https://news.test/2", Description: "Quarterly news"},
	}
	h := newRouter(srv, ratelimit.New(100, 100))

	rec := serve(t, h, http.MethodGet, "/news?company=ACME", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ACME", feed.query)

	var body struct {
		Data []models.Article `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 2)
	require.Equal(t, "ACME faces lawsuit over emissions", body.Data[0].Title)
	require.Equal(t, "Reuters", body.Data[0].Source)
	require.NotEmpty(t, body.Data[0].RiskFactors)
	require.Empty(t, body.Data[1].RiskFactors)
	require.Equal(t, "Fri, 01 Mar 2024 12:00:00 GMT", body.Data[1].Date)
}

func TestNewsErrors(t *testing.T) {
	srv, _, feed := newTestServer(llm.Unconfigured{})
	h := newRouter(srv, ratelimit.New(100, 100))

	rec := serve(t, h, http.MethodGet, "/news", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	feed.err = errors.New("feed down")
	rec = serve(t, h, http.MethodGet, "/news?company=ACME&query=ACME+spill", "")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Equal(t, "ACME spill", feed.query)
}

func TestCountryScore(t *testing.T) {
	srv, _, _ := newTestServer(llm.Unconfigured{})
	h := newRouter(srv, ratelimit.New(100, 100))

	rec := serve(t, h, http.MethodGet, "/country-score?country=Norway", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"country":"Norway","score":92}`, rec.Body.String())

	rec = serve(t, h, http.MethodGet, "/country-score?country=Atlantis", "")
	require.JSONEq(t, `{"country":"Atlantis","score":50}`, rec.Body.String())

	rec = serve(t, h, http.MethodGet, "/country-score", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestArticlesParams(t *testing.T) {
	srv, store, _ := newTestServer(llm.Unconfigured{})
	store.result = &elasticsearch.SearchResult{Total: 1, Items: []models.ArticleDocument{{ID: "d1"}}}
	h := newRouter(srv, ratelimit.New(100, 100))

	rec := serve(t, h, http.MethodGet, "/articles?q=spill&company=ACME&category=Environmental&severity=high&keywords=oil,+spill&from=10&size=500&sort=timestamp:asc&start=2024-01-01T00:00:00Z&end=bogus", "")
	require.Equal(t, http.StatusOK, rec.Code)

	p := store.params
	require.Equal(t, "spill", p.Query)
	require.Equal(t, "ACME", p.Company)
	require.Equal(t, models.Environmental, p.Category)
	require.Equal(t, models.SeverityHigh, p.MinSeverity)
	require.Equal(t, []string{"oil", "spill"}, p.Keywords)
	require.Equal(t, 10, p.From)
	require.Equal(t, 100, p.Size)
	require.Equal(t, "timestamp:asc", p.Sort)
	require.NotNil(t, p.Start)
	require.Nil(t, p.End)

	var res elasticsearch.SearchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Equal(t, int64(1), res.Total)

	rec = serve(t, h, http.MethodGet, "/articles?category=weather", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	srv, store, _ := newTestServer(llm.Unconfigured{})
	h := newRouter(srv, ratelimit.New(100, 100))

	require.Equal(t, http.StatusOK, serve(t, h, http.MethodGet, "/health", "").Code)

	store.healthErr = errors.New("cluster red")
	require.Equal(t, http.StatusServiceUnavailable, serve(t, h, http.MethodGet, "/health", "").Code)
}

func TestClampInt(t *testing.T) {
	require.Equal(t, 20, clampInt("", 20, 100))
	require.Equal(t, 20, clampInt("abc", 20, 100))
	require.Equal(t, 20, clampInt("-4", 20, 100))
	require.Equal(t, 100, clampInt("250", 20, 100))
	require.Equal(t, 42, clampInt("42", 20, 100))
}
