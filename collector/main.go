package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
	"golang.org/x/sync/errgroup"

	"github.com/DeafMist/esg-risk-radar/internal/config"
	"github.com/DeafMist/esg-risk-radar/internal/logger"
	"github.com/DeafMist/esg-risk-radar/internal/models"
	"github.com/DeafMist/esg-risk-radar/internal/news"
)

type publisher interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

func main() {
	log := logger.New("collector")
	cfg, err := config.LoadCollector()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	watchlist, err := loadWatchlist(cfg.Watchlist)
	if err != nil {
		log.Error("load watchlist", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		MaxAttempts:  3,
	}
	defer writer.Close()

	src := news.NewGoogleNews(cfg.FeedURL, cfg.FetchTimeout, log)

	log.Info("collector started",
		slog.String("topic", cfg.KafkaTopic),
		slog.Int("companies", len(watchlist.Companies)),
		slog.Duration("interval", cfg.Interval),
	)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		published, err := collect(ctx, log, src, writer, watchlist.Companies, cfg.Concurrency, time.Now)
		if err != nil {
			log.Warn("collect round failed", slog.Any("err", err))
		} else {
			log.Info("collect round completed", slog.Int64("published", published))
		}

		select {
		case <-ctx.Done():
			log.Info("shutdown signal received")
			return
		case <-ticker.C:
		}
	}
}

// collect fetches every company concurrently and publishes one envelope per
// feed item. A failing feed is logged and skipped; a failing publish aborts
// the round.
func collect(ctx context.Context, log *slog.Logger, src news.Source, pub publisher, companies []Company, concurrency int, now func() time.Time) (int64, error) {
	var published atomic.Int64

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, c := range companies {
		g.Go(func() error {
			items, err := src.Fetch(gCtx, c.Query)
			if err != nil {
				log.Warn("fetch feed", slog.String("company", c.Name), slog.Any("err", err))
				return nil
			}
			if len(items) == 0 {
				return nil
			}

			msgs, err := envelopes(c, items, now().UTC())
			if err != nil {
				return err
			}
			if err := pub.WriteMessages(gCtx, msgs...); err != nil {
				return fmt.Errorf("publish %s: %w", c.Name, err)
			}
			published.Add(int64(len(msgs)))
			log.Debug("published feed items", slog.String("company", c.Name), slog.Int("items", len(msgs)))
			return nil
		})
	}

	err := g.Wait()
	return published.Load(), err
}

func envelopes(c Company, items []models.FeedItem, fetched time.Time) ([]kafka.Message, error) {
	msgs := make([]kafka.Message, 0, len(items))
	for i, item := range items {
		payload, err := json.Marshal(models.FeedEnvelope{
			Company:  c.Name,
			Industry: c.Industry,
			Query:    c.Query,
			Item:     item,
			Position: i,
			Fetched:  fetched.Format(time.RFC3339),
		})
		if err != nil {
			return nil, fmt.Errorf("encode envelope: %w", err)
		}
		msgs = append(msgs, kafka.Message{Key: []byte(c.Name), Value: payload})
	}
	return msgs, nil
}
