package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/DeafMist/esg-risk-radar/internal/analysis"
	"github.com/DeafMist/esg-risk-radar/internal/classify"
	"github.com/DeafMist/esg-risk-radar/internal/config"
	"github.com/DeafMist/esg-risk-radar/internal/country"
	"github.com/DeafMist/esg-risk-radar/internal/llm"
	"github.com/DeafMist/esg-risk-radar/internal/news"
)

func fetchCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch <company>",
		Short: "Fetch news for a company and print normalized articles",
		Long: `Fetch the news feed for a company and print the normalized articles as JSON.

Example:
  esgctl fetch ACME
  esgctl fetch ACME --query "ACME lawsuit" --classify`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, _ := cmd.Flags().GetString("query")
			feedURL, _ := cmd.Flags().GetString("feed-url")
			timeout, _ := cmd.Flags().GetDuration("timeout")
			withFactors, _ := cmd.Flags().GetBool("classify")

			if query == "" {
				query = args[0]
			}

			articles, err := news.Articles(cmd.Context(), e.newSource(feedURL, timeout), query, e.now())
			if err != nil {
				return fmt.Errorf("fetch news: %w", err)
			}
			if withFactors {
				articles = classify.Attach(articles, classify.FirstMatch)
			}
			return printJSON(cmd.OutOrStdout(), articles)
		},
	}

	cmd.Flags().String("query", "", "Search query (defaults to the company name)")
	cmd.Flags().String("feed-url", "", "Feed URL template with one %s placeholder")
	cmd.Flags().Duration("timeout", 10*time.Second, "Feed fetch timeout")
	cmd.Flags().Bool("classify", false, "Attach first-match risk factors")
	return cmd
}

func classifyCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify <articles-file>",
		Short: "Attach heuristic risk factors to articles from a JSON or YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rich, _ := cmd.Flags().GetBool("rich")

			articles, err := readArticles(args[0])
			if err != nil {
				return err
			}

			fn := classify.FirstMatch
			if rich {
				fn = classify.Rich
			}
			return printJSON(cmd.OutOrStdout(), classify.Attach(articles, fn))
		},
	}

	cmd.Flags().Bool("rich", false, "Use the rich classifier instead of first-match")
	return cmd
}

func analyzeCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <articles-file>",
		Short: "Run the model-backed risk analysis over an article file",
		Long: `Run the full analysis pipeline: classify, prompt the configured model,
parse its answer and attribute every finding to a source article.

Credentials come from GEMINI_API_KEY or OPENAI_API_KEY.

Example:
  esgctl analyze articles.json --company ACME --industry Mining
  esgctl analyze articles.yaml --company ACME --industry Mining --provider openai`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			company, _ := cmd.Flags().GetString("company")
			industry, _ := cmd.Flags().GetString("industry")
			provider, _ := cmd.Flags().GetString("provider")
			model, _ := cmd.Flags().GetString("model")
			timeout, _ := cmd.Flags().GetDuration("timeout")

			articles, err := readArticles(args[0])
			if err != nil {
				return err
			}

			cfg, err := config.LoadLLM()
			if err != nil {
				return err
			}
			if provider != "" {
				cfg.Provider = provider
			}
			if model != "" {
				cfg.Model = model
			}
			if timeout > 0 {
				cfg.Timeout = timeout
			}

			gen, err := e.newGenerator(cmd.Context(), llm.Config{
				Provider:     cfg.Provider,
				Model:        cfg.Model,
				GeminiAPIKey: cfg.GeminiAPIKey,
				OpenAIAPIKey: cfg.OpenAIAPIKey,
				Temperature:  0.2,
				JSONOutput:   true,
			})
			if err != nil {
				return fmt.Errorf("init llm: %w", err)
			}

			res, err := analysis.NewAnalyzer(gen, cfg.Timeout, e.log).Analyze(cmd.Context(), company, industry, articles)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().String("company", "", "Company name (required)")
	cmd.Flags().String("industry", "", "Industry (required)")
	cmd.Flags().String("provider", "", "Model provider: gemini or openai (defaults to LLM_PROVIDER)")
	cmd.Flags().String("model", "", "Model name override")
	cmd.Flags().Duration("timeout", 0, "Model call timeout (defaults to LLM_TIMEOUT)")
	return cmd
}

type scoreOutput struct {
	Country string `json:"country"`
	Score   int    `json:"score"`
}

func scoreCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a country from 0 (most incidents) to 100 (fewest)",
		Long: `Score a country against an incident table, read either from a JSON/YAML file
of {countries: [...]} records or from a Postgres table with a countries text[] column.

Example:
  esgctl score --country Norway --incidents incidents.yaml
  esgctl score --country Norway --dsn postgres://localhost/esg --table uhri_incidents`,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, _ := cmd.Flags().GetString("country")
			path, _ := cmd.Flags().GetString("incidents")
			dsn, _ := cmd.Flags().GetString("dsn")
			table, _ := cmd.Flags().GetString("table")

			if target == "" {
				return fmt.Errorf("--country flag is required")
			}
			if (path == "") == (dsn == "") {
				return fmt.Errorf("exactly one of --incidents or --dsn is required")
			}

			var src country.Source
			if path != "" {
				incidents, err := readIncidents(path)
				if err != nil {
					return err
				}
				src = country.StaticSource(incidents)
			} else {
				db, err := e.openDB(dsn)
				if err != nil {
					return fmt.Errorf("open incidents database: %w", err)
				}
				defer db.Close()
				src = country.NewPostgresSource(db, table)
			}

			incidents, err := src.Incidents(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), scoreOutput{
				Country: target,
				Score:   country.Score(country.BuildIndex(incidents).Incidents, target),
			})
		},
	}

	cmd.Flags().String("country", "", "Country to score (required)")
	cmd.Flags().String("incidents", "", "JSON or YAML incident file")
	cmd.Flags().String("dsn", "", "Postgres DSN of the incident table")
	cmd.Flags().String("table", country.DefaultTable, "Incident table name")
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
