package country

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/DeafMist/esg-risk-radar/internal/logger"
)

// DefaultTable holds one row per recorded incident.
const DefaultTable = "uhri_incidents"

// Source loads the raw incident table.
type Source interface {
	Incidents(ctx context.Context) ([]Incident, error)
}

// StaticSource serves a fixed incident list.
type StaticSource []Incident

// Incidents implements Source.
func (s StaticSource) Incidents(context.Context) ([]Incident, error) {
	return s, nil
}

// PostgresSource reads the countries text[] column of an incident table.
type PostgresSource struct {
	db    *sql.DB
	query string
}

// NewPostgresSource reads from table, or DefaultTable when empty.
func NewPostgresSource(db *sql.DB, table string) *PostgresSource {
	if table == "" {
		table = DefaultTable
	}
	return &PostgresSource{
		db:    db,
		query: "SELECT countries FROM " + pq.QuoteIdentifier(table),
	}
}

// Incidents implements Source.
func (p *PostgresSource) Incidents(ctx context.Context) ([]Incident, error) {
	rows, err := p.db.QueryContext(ctx, p.query)
	if err != nil {
		return nil, fmt.Errorf("query incidents: %w", err)
	}
	defer rows.Close()

	var out []Incident
	for rows.Next() {
		var countries []string
		if err := rows.Scan(pq.Array(&countries)); err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		out = append(out, Incident{Countries: countries})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read incidents: %w", err)
	}
	return out, nil
}

// Scorer answers country score requests against a Source.
type Scorer struct {
	src Source
	log *slog.Logger
}

// NewScorer wraps src. A nil src always scores Neutral.
func NewScorer(src Source, log *slog.Logger) *Scorer {
	if log == nil {
		log = logger.Discard()
	}
	return &Scorer{src: src, log: log}
}

// CountryScore returns the score for target. A failing or missing source
// degrades to Neutral instead of an error.
func (s *Scorer) CountryScore(ctx context.Context, target string) int {
	if s == nil || s.src == nil {
		return Neutral
	}
	incidents, err := s.src.Incidents(ctx)
	if err != nil {
		s.log.Warn("incident source unavailable, using neutral score",
			slog.String("country", target), slog.Any("err", err))
		return Neutral
	}
	idx := BuildIndex(incidents)
	score := Score(idx.Incidents, target)
	s.log.Debug("country scored",
		slog.String("country", target),
		slog.Int("score", score),
		slog.Int("total_incidents", idx.Total))
	return score
}
