package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"video-embed-pipeline/internal/domain"
)

// Resolver turns video IDs into playable URLs, deciding per call between the
// record table and one bounded upstream lookup.
type Resolver struct {
	table  *domain.Table
	api    domain.VideoAPI
	logger *zap.Logger

	// now is injectable so freshness decisions are deterministic in tests.
	now func() time.Time
}

// NewResolver creates a Resolver over the given table and upstream API.
func NewResolver(table *domain.Table, api domain.VideoAPI, logger *zap.Logger) *Resolver {
	return &Resolver{
		table:  table,
		api:    api,
		logger: logger,
		now:    time.Now,
	}
}

// Resolve returns the playable URL for a video ID. ttl is the caller's
// tolerance window: a cached record with more than ttl of validity left is
// served with zero network access. Otherwise one lookup runs, blocking until
// response or the client's timeout; on success the new record replaces the
// table entry, on failure the table is left untouched and the reference
// stays unresolved for this build.
func (r *Resolver) Resolve(ctx context.Context, id string, ttl time.Duration) (string, error) {
	if rec, ok := r.table.Get(id); ok && rec.FreshAt(r.now(), ttl) {
		r.logger.Debug("cache hit",
			zap.String("video_id", id),
			zap.Float64("expires_at", rec.ExpiresAt),
		)

		return rec.MediaURL, nil
	}

	rec, err := r.api.Lookup(ctx, id)
	if err != nil {
		// A failed fetch must never poison the table with a partial record.
		return "", err
	}

	r.table.Put(rec)

	r.logger.Debug("video resolved",
		zap.String("video_id", id),
		zap.Float64("duration", rec.Duration),
	)

	return rec.MediaURL, nil
}
