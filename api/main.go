package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/DeafMist/esg-risk-radar/internal/analysis"
	"github.com/DeafMist/esg-risk-radar/internal/config"
	"github.com/DeafMist/esg-risk-radar/internal/country"
	"github.com/DeafMist/esg-risk-radar/internal/elasticsearch"
	"github.com/DeafMist/esg-risk-radar/internal/llm"
	"github.com/DeafMist/esg-risk-radar/internal/logger"
	"github.com/DeafMist/esg-risk-radar/internal/news"
	"github.com/DeafMist/esg-risk-radar/internal/ratelimit"
)

func main() {
	log := logger.New("api")
	cfg, err := config.LoadAPI()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	gen, err := llm.New(ctx, llm.Config{
		Provider:     cfg.Provider,
		Model:        cfg.Model,
		GeminiAPIKey: cfg.GeminiAPIKey,
		OpenAIAPIKey: cfg.OpenAIAPIKey,
		Temperature:  0.2,
		JSONOutput:   true,
	})
	if err != nil {
		log.Error("init llm", slog.Any("err", err))
		os.Exit(1)
	}
	if _, ok := gen.(llm.Unconfigured); ok {
		log.Warn("no model credentials configured, /analyze will report capability_unavailable",
			slog.String("provider", cfg.Provider))
	}

	esClient, err := elasticsearch.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, log)
	if err != nil {
		log.Error("init elasticsearch", slog.Any("err", err))
		os.Exit(1)
	}

	var incidents country.Source
	if cfg.DSN != "" {
		db, err := sql.Open("postgres", cfg.DSN)
		if err != nil {
			log.Error("open incidents database", slog.Any("err", err))
			os.Exit(1)
		}
		defer db.Close()
		incidents = country.NewPostgresSource(db, cfg.Table)
	} else {
		log.Warn("INCIDENTS_DSN not set, country scores stay neutral")
	}

	srv := &server{
		log:      log,
		cfg:      cfg,
		store:    esClient,
		feed:     news.NewGoogleNews(cfg.FeedURL, cfg.FetchTimeout, log),
		analyzer: analysis.NewAnalyzer(gen, cfg.LLM.Timeout, log),
		scorer:   country.NewScorer(incidents, log),
		now:      time.Now,
	}

	limiter := ratelimit.New(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.Run(ctx, time.Minute, 3*time.Minute)

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           newRouter(srv, limiter),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.LLM.Timeout + 15*time.Second,
	}

	go func() {
		log.Info("api server starting", slog.String("addr", cfg.BindAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
	}
}

func newRouter(srv *server, limiter *ratelimit.Limiter) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", srv.handleHealth)
	r.Get("/news", srv.handleNews)
	r.Get("/articles", srv.handleArticles)
	r.Get("/country-score", srv.handleCountryScore)
	r.With(limiter.Middleware).Post("/analyze", srv.handleAnalyze)
	return r
}
