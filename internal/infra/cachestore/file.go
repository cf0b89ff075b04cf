// Package cachestore provides durable backends for the resolved-record
// table. A backend holds the full table as an opaque blob: read once at
// phase start, replaced wholesale at phase end. An absent or damaged store
// always loads as an empty table — a cold cache must never block a build.
package cachestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/google/renameio/v2"
	"go.uber.org/zap"

	"video-embed-pipeline/internal/domain"
)

// FileStore persists the record table as a JSON file.
type FileStore struct {
	path   string
	logger *zap.Logger
}

// NewFileStore creates a file-backed store at the given path.
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	return &FileStore{
		path:   path,
		logger: logger,
	}
}

// Load reads the table from disk. Missing, unreadable, or corrupt files
// yield an empty table.
func (s *FileStore) Load(_ context.Context) (map[string]domain.Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("cache file absent, starting cold",
				zap.String("path", s.path),
			)
		} else {
			s.logger.Warn("cache file unreadable, starting cold",
				zap.String("path", s.path),
				zap.Error(err),
			)
		}

		return map[string]domain.Record{}, nil
	}

	var records map[string]domain.Record
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Warn("cache file corrupt, starting cold",
			zap.String("path", s.path),
			zap.Error(err),
		)

		return map[string]domain.Record{}, nil
	}
	if records == nil {
		records = map[string]domain.Record{}
	}

	s.logger.Debug("cache file loaded",
		zap.String("path", s.path),
		zap.Int("records", len(records)),
	)

	return records, nil
}

// Save writes the full table, replacing prior contents. renameio gives an
// atomic, fsynced replace so a crash mid-write cannot leave a corrupt file.
func (s *FileStore) Save(_ context.Context, records map[string]domain.Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cache table: %w", err)
	}

	pending, err := renameio.NewPendingFile(s.path)
	if err != nil {
		return fmt.Errorf("create pending cache file: %w", err)
	}
	defer func() {
		if err := pending.Cleanup(); err != nil {
			s.logger.Debug("cleanup pending cache file", zap.Error(err))
		}
	}()

	if _, err := pending.Write(data); err != nil {
		return fmt.Errorf("write cache table: %w", err)
	}

	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace cache file: %w", err)
	}

	s.logger.Debug("cache file saved",
		zap.String("path", s.path),
		zap.Int("records", len(records)),
	)

	return nil
}
