package main

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/esg-risk-radar/internal/config"
	"github.com/DeafMist/esg-risk-radar/internal/logger"
)

type stubPruner struct {
	pingErrs []error
	pings    int
	deleted  int64
	err      error
	maxAge   time.Duration
	batch    int
}

func (s *stubPruner) Ping(context.Context) error {
	s.pings++
	if len(s.pingErrs) == 0 {
		return nil
	}
	err := s.pingErrs[0]
	s.pingErrs = s.pingErrs[1:]
	return err
}

func (s *stubPruner) DeleteOlderThan(_ context.Context, maxAge time.Duration, batchSize int) (int64, error) {
	s.maxAge = maxAge
	s.batch = batchSize
	return s.deleted, s.err
}

func TestWaitReadyRetries(t *testing.T) {
	es := &stubPruner{pingErrs: []error{errors.New("connection refused"), errors.New("connection refused")}}
	require.NoError(t, waitReady(context.Background(), logger.Discard(), es, 5, time.Millisecond))
	require.Equal(t, 3, es.pings)
}

func TestWaitReadyGivesUp(t *testing.T) {
	down := errors.New("connection refused")
	es := &stubPruner{pingErrs: []error{down, down, down}}
	require.ErrorIs(t, waitReady(context.Background(), logger.Discard(), es, 3, time.Millisecond), down)
}

func TestWaitReadyCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	es := &stubPruner{pingErrs: []error{errors.New("down")}}
	require.ErrorIs(t, waitReady(ctx, logger.Discard(), es, 3, time.Hour), context.Canceled)
}

func TestRunOnce(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "retention", "debug", "text")
	cfg := &config.Retention{MaxAge: 48 * time.Hour, BatchSize: 250}

	es := &stubPruner{deleted: 7}
	runOnce(context.Background(), log, es, cfg)
	require.Equal(t, 48*time.Hour, es.maxAge)
	require.Equal(t, 250, es.batch)
	require.Contains(t, buf.String(), "deleted=7")

	buf.Reset()
	runOnce(context.Background(), log, &stubPruner{err: errors.New("timeout")}, cfg)
	require.Contains(t, buf.String(), "retention run failed")
}
