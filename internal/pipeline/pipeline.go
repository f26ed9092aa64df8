package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/quake-risk-etl/internal/domain"
	"github.com/couchcryptid/quake-risk-etl/internal/observability"
)

// ErrNoEvents is returned when neither catalog yields a valid event.
var ErrNoEvents = errors.New("no valid events in either catalog")

// historyWriteTimeout bounds the FAILED history write, which runs even when
// the run's own context has been cancelled.
const historyWriteTimeout = 10 * time.Second

// ResultStore persists the latest analysis and the run history.
type ResultStore interface {
	SaveLatest(ctx context.Context, report domain.Report) error
	AppendRun(ctx context.Context, record domain.RunRecord) error
}

// Runner orchestrates fetch, normalize, estimate and store.
type Runner struct {
	source  domain.CatalogSource
	store   ResultStore
	runCtx  domain.RunContext
	logger  *slog.Logger
	metrics *observability.Metrics
	dedup   bool

	ready  atomic.Bool
	latest atomic.Pointer[domain.Report]
}

// New creates a Runner. When dedup is set, exact duplicate events across the
// two feeds are dropped before estimation.
func New(source domain.CatalogSource, store ResultStore, runCtx domain.RunContext, logger *slog.Logger, metrics *observability.Metrics, dedup bool) *Runner {
	if runCtx.Clock == nil {
		runCtx.Clock = clockwork.NewRealClock()
	}
	return &Runner{
		source:  source,
		store:   store,
		runCtx:  runCtx,
		logger:  logger,
		metrics: metrics,
		dedup:   dedup,
	}
}

// CheckReadiness returns nil once a run has succeeded, or an error describing
// why the service is not yet ready.
func (r *Runner) CheckReadiness(_ context.Context) error {
	if !r.ready.Load() {
		return errors.New("no analysis has completed yet")
	}
	return nil
}

// Latest returns the report from the most recent successful run.
func (r *Runner) Latest() (domain.Report, bool) {
	report := r.latest.Load()
	if report == nil {
		return domain.Report{}, false
	}
	return *report, true
}

// RunOnce performs one complete run. On any failure a FAILED history entry is
// written and the error is returned.
func (r *Runner) RunOnce(ctx context.Context) (domain.Report, error) {
	start := time.Now()
	report, err := r.execute(ctx)
	r.metrics.RunDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		r.metrics.RunsTotal.WithLabelValues(string(domain.RunFailed)).Inc()
		r.logger.Error("run failed", "error", err, "triggered_by", r.runCtx.Actor)

		recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyWriteTimeout)
		defer cancel()
		if recErr := r.store.AppendRun(recordCtx, domain.NewFailureRecord(r.runCtx, err)); recErr != nil {
			r.logger.Error("record failed run", "error", recErr)
			return domain.Report{}, errors.Join(err, recErr)
		}
		return domain.Report{}, err
	}

	r.metrics.RunsTotal.WithLabelValues(string(domain.RunSuccess)).Inc()
	r.logger.Info("run completed",
		"events", report.TotalEvents,
		"regions", len(report.Probabilities),
		"window_years", report.WindowYears,
		"duration", time.Since(start),
	)
	return report, nil
}

func (r *Runner) execute(ctx context.Context) (domain.Report, error) {
	current, historical, err := r.fetchCatalogs(ctx)
	if err != nil {
		return domain.Report{}, err
	}

	events := r.normalize(domain.FeedCurrent, current)
	events = append(events, r.normalize(domain.FeedHistorical, historical)...)

	if r.dedup {
		before := len(events)
		events = domain.Deduplicate(events)
		r.logger.Info("duplicate events removed", "removed", before-len(events))
	}
	if len(events) == 0 {
		return domain.Report{}, ErrNoEvents
	}

	now := r.runCtx.Now()
	result := domain.Estimate(events, now)
	window := domain.WindowYears(events, now)
	if len(result) == 0 {
		r.logger.Warn("observation window shorter than one year, publishing empty analysis",
			"window_years", window, "events", len(events))
	}

	report := domain.Assemble(result, len(events), window, r.runCtx, now)
	if err := r.store.SaveLatest(ctx, report); err != nil {
		return domain.Report{}, fmt.Errorf("store latest analysis: %w", err)
	}
	if err := r.store.AppendRun(ctx, domain.NewSuccessRecord(r.runCtx, len(events))); err != nil {
		return domain.Report{}, fmt.Errorf("record run history: %w", err)
	}

	r.metrics.ProbabilityCells.Set(float64(result.Cells()))
	r.metrics.WindowYears.Set(window)
	r.metrics.LastSuccess.Set(float64(now.Unix()))
	r.latest.Store(&report)
	r.ready.Store(true)
	return report, nil
}

// fetchCatalogs retrieves both feeds concurrently. The first failure cancels
// the other request.
func (r *Runner) fetchCatalogs(ctx context.Context) (current, historical domain.RawCatalog, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = r.source.FetchCatalog(gctx, domain.FeedCurrent)
		return err
	})
	g.Go(func() error {
		var err error
		historical, err = r.source.FetchCatalog(gctx, domain.FeedHistorical)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return current, historical, nil
}

// normalize converts one catalog, logging and counting every skipped node.
// Nodes without an intensity are not events and are only counted.
func (r *Runner) normalize(feed domain.Feed, raw domain.RawCatalog) []domain.EarthquakeEvent {
	ext := domain.Normalize(raw, domain.LayoutFor(feed))

	for _, s := range ext.Skipped {
		r.metrics.NodesSkipped.WithLabelValues(string(feed), string(s.Reason)).Inc()
		if s.Reason == domain.SkipMissingIntensity {
			continue
		}
		r.logger.Warn("skipping malformed event node",
			"feed", feed,
			"index", s.Index,
			"reason", s.Reason,
			"error", s.Err,
		)
	}
	r.metrics.EventsNormalized.WithLabelValues(string(feed)).Add(float64(len(ext.Events)))

	r.logger.Info("catalog normalized", "feed", feed, "events", len(ext.Events), "skipped", len(ext.Skipped))
	return ext.Events
}
