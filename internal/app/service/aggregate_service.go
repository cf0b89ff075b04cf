package service

import (
	"go.uber.org/zap"

	"video-embed-pipeline/internal/domain"
	"video-embed-pipeline/internal/markup"
)

// Aggregator computes per-document duration totals from rendered output.
// This pass reads the record table only and never the network: it runs after
// embedding, so every reference it finds should already be resolved.
type Aggregator struct {
	table  *domain.Table
	logger *zap.Logger
}

// NewAggregator creates an Aggregator over the given table.
func NewAggregator(table *domain.Table, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		table:  table,
		logger: logger,
	}
}

// Aggregate sums the durations of the distinct video IDs referenced in one
// document's rendered body. A reference with no table record is an
// inconsistency: it is reported as a warning and contributes zero.
func (a *Aggregator) Aggregate(docKey, rendered string) domain.DocumentMetadata {
	var meta domain.DocumentMetadata

	for _, id := range markup.ExtractVideoIDs(rendered) {
		rec, ok := a.table.Get(id)
		if !ok {
			a.logger.Warn("rendered video has no cache record, not counted",
				zap.String("document", docKey),
				zap.String("video_id", id),
			)

			continue
		}
		meta.TotalDuration += rec.Duration
	}

	return meta
}
