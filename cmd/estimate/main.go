// Command estimate runs the analysis offline against catalog files on disk
// and prints the resulting report as JSON.
//
// Usage:
//
//	go run ./cmd/estimate \
//	  -current testdata/E-A0015-001.xml \
//	  -historical testdata/E-A0073-001.zip \
//	  -now 2025-03-01T12:00:00+08:00
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/quake-risk-etl/internal/adapter/cwa"
	"github.com/couchcryptid/quake-risk-etl/internal/adapter/filestore"
	"github.com/couchcryptid/quake-risk-etl/internal/domain"
	"github.com/couchcryptid/quake-risk-etl/internal/observability"
	"github.com/couchcryptid/quake-risk-etl/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	currentPath := flag.String("current", "", "path to the current-year catalog (XML)")
	historicalPath := flag.String("historical", "", "path to the historical catalog (ZIP or XML)")
	nowFlag := flag.String("now", "", "analysis time in RFC 3339 (default: wall clock)")
	actor := flag.String("actor", domain.DefaultActor, "identity recorded as triggered_by")
	dedup := flag.Bool("dedup", false, "drop exact duplicate events across catalogs")
	outDir := flag.String("out", "", "optional directory to persist latest.json and runs.jsonl")
	flag.Parse()

	if *currentPath == "" || *historicalPath == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -current, -historical")
	}

	now := time.Now()
	if *nowFlag != "" {
		parsed, err := time.Parse(time.RFC3339, *nowFlag)
		if err != nil {
			return fmt.Errorf("parse -now: %w", err)
		}
		now = parsed
	}

	source := fileSource{
		domain.FeedCurrent:    *currentPath,
		domain.FeedHistorical: *historicalPath,
	}

	var store pipeline.ResultStore = discardStore{}
	if *outDir != "" {
		store = filestore.New(*outDir)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	runCtx := domain.NewRunContext(*actor, clockwork.NewFakeClockAt(now))
	runner := pipeline.New(source, store, runCtx, logger, observability.NewMetricsForTesting(), *dedup)

	report, err := runner.RunOnce(context.Background())
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// fileSource reads each feed from a local file.
type fileSource map[domain.Feed]string

func (s fileSource) FetchCatalog(_ context.Context, feed domain.Feed) (domain.RawCatalog, error) {
	path, ok := s[feed]
	if !ok {
		return nil, fmt.Errorf("no file for %s catalog", feed)
	}
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s catalog: %w", feed, err)
	}
	raw, err := cwa.ParseCatalog(payload)
	if err != nil {
		return nil, fmt.Errorf("parse %s catalog: %w", feed, err)
	}
	return raw, nil
}

type discardStore struct{}

func (discardStore) SaveLatest(context.Context, domain.Report) error    { return nil }
func (discardStore) AppendRun(context.Context, domain.RunRecord) error { return nil }
