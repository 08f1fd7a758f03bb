package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/DeafMist/esg-risk-radar/internal/classify"
	"github.com/DeafMist/esg-risk-radar/internal/config"
	"github.com/DeafMist/esg-risk-radar/internal/dedupe"
	"github.com/DeafMist/esg-risk-radar/internal/elasticsearch"
	"github.com/DeafMist/esg-risk-radar/internal/logger"
	"github.com/DeafMist/esg-risk-radar/internal/models"
	"github.com/DeafMist/esg-risk-radar/internal/news"
	"github.com/DeafMist/esg-risk-radar/internal/processing"
)

type articleIndexer interface {
	IndexArticle(ctx context.Context, doc models.ArticleDocument) error
}

func main() {
	log := logger.New("worker")
	cfg, err := config.LoadWorker()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	esClient, err := elasticsearch.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, log)
	if err != nil {
		log.Error("init elasticsearch", slog.Any("err", err))
		os.Exit(1)
	}

	cache := dedupe.NewCache(cfg.DedupeCapacity, cfg.DedupeTTL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	if err := esClient.EnsureIndex(initCtx); err != nil {
		log.Warn("ensure index failed, relying on dynamic mapping", slog.Any("err", err))
	}
	cancel()

	reader := kafka.NewReader(readerConfig(cfg))
	defer reader.Close()

	dlqWriter := kafka.NewWriter(kafka.WriterConfig{
		Brokers:     cfg.KafkaBrokers,
		Topic:       cfg.KafkaTopic + "_dlq",
		MaxAttempts: 3,
	})
	defer dlqWriter.Close()

	log.Info("worker started",
		slog.String("topic", cfg.KafkaTopic),
		slog.String("group", cfg.KafkaConsumer),
		slog.String("dlq_topic", cfg.KafkaTopic+"_dlq"),
	)

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info("context canceled, stopping")
				return
			}
			log.Error("fetch message", slog.Any("err", err))
			continue
		}

		if err := processMessage(ctx, log, esClient, cache, cfg, msg); err != nil {
			log.Warn("process message failed, sending to DLQ",
				slog.Any("err", err),
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
			)

			if !sendToDLQ(ctx, log, dlqWriter, msg, err) {
				if ctx.Err() != nil {
					return
				}
				log.Error("DLQ write exhausted retries, message left uncommitted",
					slog.Int("partition", msg.Partition),
					slog.Int64("offset", msg.Offset),
				)
				continue
			}
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit message", slog.Any("err", err))
		}
	}
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// sendToDLQ retries with exponential backoff and reports whether the
// message reached the dead-letter topic.
func sendToDLQ(ctx context.Context, log *slog.Logger, w messageWriter, msg kafka.Message, cause error) bool {
	dlqMsg := kafka.Message{
		Key:   msg.Key,
		Value: msg.Value,
		Headers: append(msg.Headers,
			kafka.Header{Key: "original_partition", Value: []byte(fmt.Sprintf("%d", msg.Partition))},
			kafka.Header{Key: "original_offset", Value: []byte(fmt.Sprintf("%d", msg.Offset))},
			kafka.Header{Key: "error", Value: []byte(cause.Error())},
			kafka.Header{Key: "timestamp", Value: []byte(time.Now().UTC().Format(time.RFC3339))},
		),
	}

	for attempt := range 5 {
		dlqErr := w.WriteMessages(ctx, dlqMsg)
		if dlqErr == nil {
			log.Info("message sent to DLQ",
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
				slog.Int("attempt", attempt+1),
			)
			return true
		}

		backoff := time.Duration(1<<uint(attempt)) * time.Second
		log.Warn("DLQ write failed, retrying",
			slog.Any("err", dlqErr),
			slog.Int("attempt", attempt+1),
			slog.Duration("backoff", backoff),
		)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			log.Info("context canceled during DLQ retry")
			return false
		}
	}
	return false
}

// readerConfig commits offsets only after a message is indexed or parked in
// the DLQ.
func readerConfig(cfg *config.Worker) kafka.ReaderConfig {
	return kafka.ReaderConfig{
		Brokers:        cfg.KafkaBrokers,
		Topic:          cfg.KafkaTopic,
		GroupID:        cfg.KafkaConsumer,
		QueueCapacity:  cfg.BatchSize,
		MinBytes:       1e3,
		MaxBytes:       10e6,
		CommitInterval: 0,
	}
}

// processMessage turns one feed envelope into a classified article document.
func processMessage(ctx context.Context, log *slog.Logger, idx articleIndexer, cache *dedupe.Cache, cfg *config.Worker, msg kafka.Message) error {
	var env models.FeedEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}

	company := strings.TrimSpace(env.Company)
	if company == "" {
		return errors.New("envelope without company")
	}

	fetched := parseTimestamp(env.Fetched)
	if fetched.IsZero() {
		fetched = time.Now().UTC()
	}

	article := news.Normalize([]models.FeedItem{env.Item}, fetched)[0]
	if strings.TrimSpace(env.Item.Title) == "" && article.Snippet == news.NoDescription {
		return errors.New("empty payload")
	}

	factors := classify.Rich(article)
	keywords := processing.ExtractKeywords(
		article.Title+" "+processing.CleanText(article.Snippet), cfg.KeywordLimit, cfg.KeywordMinLength)

	ts := parseTimestamp(article.Date)
	if ts.IsZero() {
		ts = fetched
	}

	doc := models.ArticleDocument{
		ID:          processing.BuildDocumentID(company, article.URL, article.Title),
		Company:     company,
		Industry:    strings.TrimSpace(env.Industry),
		Title:       article.Title,
		Source:      article.Source,
		URL:         article.URL,
		Snippet:     article.Snippet,
		Timestamp:   ts,
		Keywords:    keywords,
		RiskFactors: factors,
		Categories:  classify.Categories(factors),
		MaxSeverity: classify.MaxSeverity(factors),
	}

	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}

	if cache.IsSeen(doc.ID) {
		log.Debug("duplicate article", slog.String("id", doc.ID))
		return nil
	}

	if err := idx.IndexArticle(ctx, doc); err != nil {
		return fmt.Errorf("index article: %w", err)
	}

	cache.MarkSeen(doc.ID)
	log.Info("indexed article",
		slog.String("id", doc.ID),
		slog.String("company", doc.Company),
		slog.Int("risk_factors", len(factors)),
	)
	return nil
}

func parseTimestamp(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}

	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		time.RFC1123Z,
		time.RFC1123,
		news.DateLayout,
		"2006-01-02 15:04:05",
	}

	for _, f := range formats {
		if ts, err := time.Parse(f, raw); err == nil {
			return ts.UTC()
		}
	}

	return time.Time{}
}
