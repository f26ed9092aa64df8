//go:build integration

package integration_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/quake-risk-etl/internal/adapter/kafka"
	"github.com/couchcryptid/quake-risk-etl/internal/config"
	"github.com/couchcryptid/quake-risk-etl/internal/domain"
	"github.com/couchcryptid/quake-risk-etl/internal/observability"
	"github.com/couchcryptid/quake-risk-etl/internal/pipeline"
)

const (
	testSnapshotTopic = "test-analysis-latest"
	testHistoryTopic  = "test-analysis-runs"
)

func newWriter(t *testing.T, broker string) *kafka.Writer {
	t.Helper()
	cfg := &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaSnapshotTopic: testSnapshotTopic,
		KafkaHistoryTopic:  testHistoryTopic,
	}
	w := kafka.NewWriter(cfg, slog.Default())
	t.Cleanup(func() { w.Close() })
	return w
}

// TestKafkaWriter verifies both message kinds round-trip through a broker.
func TestKafkaWriter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSnapshotTopic)
	createTopic(t, broker, testHistoryTopic)

	w := newWriter(t, broker)

	report := domain.Report{
		UpdatedAt:     time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		TriggeredBy:   "octocat",
		Disclaimer:    domain.Disclaimer,
		TotalEvents:   3,
		WindowYears:   25.5,
		Probabilities: domain.AnalysisResult{"花蓮縣": {"7": {"1y": 3.85}}},
	}
	require.NoError(t, w.SaveLatest(ctx, report))

	count := 3
	record := domain.RunRecord{
		ID:          "2d0c8af4-3b0e-4d0f-8f44-0d1e2f3a4b5c",
		Status:      domain.RunSuccess,
		Timestamp:   report.UpdatedAt,
		TriggeredBy: "octocat",
		EventCount:  &count,
	}
	require.NoError(t, w.AppendRun(ctx, record))

	snapshot := readMessage(ctx, t, newReader(t, broker, testSnapshotTopic))
	assert.Equal(t, kafka.LatestKey, snapshot.Key)
	assert.Equal(t, "octocat", snapshot.Headers["triggered_by"])
	gotReport := decode[domain.Report](t, snapshot.Value)
	assert.Equal(t, 3, gotReport.TotalEvents)
	assert.InDelta(t, 3.85, gotReport.Probabilities["花蓮縣"]["7"]["1y"], 1e-9)

	run := readMessage(ctx, t, newReader(t, broker, testHistoryTopic))
	assert.Equal(t, record.ID, run.Key)
	assert.Equal(t, "SUCCESS", run.Headers["status"])
	gotRecord := decode[domain.RunRecord](t, run.Value)
	require.NotNil(t, gotRecord.EventCount)
	assert.Equal(t, 3, *gotRecord.EventCount)
}

// TestRunnerPublishesToKafka runs the full pipeline over the fixture
// catalogs and checks the published snapshot and history entry.
func TestRunnerPublishesToKafka(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSnapshotTopic)
	createTopic(t, broker, testHistoryTopic)

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	runCtx := domain.NewRunContext("", clockwork.NewFakeClockAt(now))
	runner := pipeline.New(fixtureSource{}, newWriter(t, broker), runCtx, slog.Default(), observability.NewMetricsForTesting(), false)

	report, err := runner.RunOnce(ctx)
	require.NoError(t, err)
	require.Positive(t, report.TotalEvents)

	snapshot := decode[domain.Report](t, readMessage(ctx, t, newReader(t, broker, testSnapshotTopic)).Value)
	assert.Equal(t, report.TotalEvents, snapshot.TotalEvents)
	assert.Equal(t, domain.DefaultActor, snapshot.TriggeredBy)
	assert.Contains(t, snapshot.Probabilities, "新北市")

	run := decode[domain.RunRecord](t, readMessage(ctx, t, newReader(t, broker, testHistoryTopic)).Value)
	assert.Equal(t, domain.RunSuccess, run.Status)
	require.NotNil(t, run.EventCount)
	assert.Equal(t, report.TotalEvents, *run.EventCount)
}
