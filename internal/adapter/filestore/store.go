// Package filestore persists results to a local directory: the latest
// analysis as latest.json (replaced atomically) and the run history as
// newline-delimited JSON in runs.jsonl.
package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/couchcryptid/quake-risk-etl/internal/domain"
)

const (
	latestFile  = "latest.json"
	historyFile = "runs.jsonl"

	filePerm = 0o644
	dirPerm  = 0o755
)

// Store implements pipeline.ResultStore on the local filesystem.
type Store struct {
	dir string
	mu  sync.Mutex
}

// New creates a Store rooted at dir. The directory is created on first write.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// SaveLatest writes the report to a temp file and renames it over latest.json.
func (s *Store) SaveLatest(_ context.Context, report domain.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize analysis report: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, dirPerm); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	path := filepath.Join(s.dir, latestFile)
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, filePerm); err != nil {
		return fmt.Errorf("write latest analysis: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("replace latest analysis: %w", err)
	}
	return nil
}

// AppendRun appends one JSON line to the run history.
func (s *Store) AppendRun(_ context.Context, record domain.RunRecord) error {
	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("serialize run record: %w", err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, dirPerm); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(s.dir, historyFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		return fmt.Errorf("open run history: %w", err)
	}
	if _, err := f.Write(line); err != nil {
		f.Close()
		return fmt.Errorf("append run record: %w", err)
	}
	return f.Close()
}

func (s *Store) Close() error {
	return nil
}
