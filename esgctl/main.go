package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/DeafMist/esg-risk-radar/internal/llm"
	"github.com/DeafMist/esg-risk-radar/internal/logger"
	"github.com/DeafMist/esg-risk-radar/internal/news"
)

var version = "0.1.0"

// env carries the collaborators commands reach for, so tests can swap them.
type env struct {
	log          *slog.Logger
	now          func() time.Time
	newSource    func(feedURL string, timeout time.Duration) news.Source
	newGenerator func(ctx context.Context, cfg llm.Config) (llm.Generator, error)
	openDB       func(dsn string) (*sql.DB, error)
}

func defaultEnv() *env {
	// stdout carries the command output
	log := logger.NewWithWriter(os.Stderr, "esgctl", os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	return &env{
		log: log,
		now: time.Now,
		newSource: func(feedURL string, timeout time.Duration) news.Source {
			return news.NewGoogleNews(feedURL, timeout, log)
		},
		newGenerator: llm.New,
		openDB: func(dsn string) (*sql.DB, error) {
			return sql.Open("postgres", dsn)
		},
	}
}

func main() {
	if err := newRootCmd(defaultEnv()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(e *env) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "esgctl",
		Short: "ESG and compliance risk radar operator tool",
		Long: `esgctl runs the risk pipeline from the command line.

It can:
  - fetch and normalize news articles for a company
  - classify articles with the keyword heuristics
  - run a model-backed risk analysis over an article file
  - score a country against an incident table`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(fetchCmd(e))
	rootCmd.AddCommand(classifyCmd(e))
	rootCmd.AddCommand(analyzeCmd(e))
	rootCmd.AddCommand(scoreCmd(e))
	return rootCmd
}
