// Package pipeline owns one build session: the record table, the phase
// state, the per-document metadata, and the two hooks exposed to the
// surrounding site build. All session state is explicit on the Session
// object; nothing here is process-global.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"video-embed-pipeline/internal/app/service"
	"video-embed-pipeline/internal/domain"
	"video-embed-pipeline/internal/markup"
)

// DefaultTTL is the freshness tolerance used by the embed path when the
// session is not configured otherwise: skip the upstream while a cached
// record still has a day of validity left.
const DefaultTTL = 24 * time.Hour

// Document is one unit of content flowing through the pipeline. Body holds
// authored markdown before the resolution hook and rendered output before
// the aggregation hook; the hooks rewrite it in place.
type Document struct {
	// Key identifies the document across both phases, typically its path.
	Key  string
	Body string
}

// Config holds session tuning.
type Config struct {
	// TTL is the caller tolerance window passed to every resolution from the
	// embed path. Zero means DefaultTTL.
	TTL time.Duration
}

// Session is the explicit context object for one build. Mutating methods are
// not safe for concurrent use; a build drives its phases from a single
// goroutine.
type Session struct {
	backend  domain.CacheBackend
	table    *domain.Table
	embedder *service.Embedder
	agg      *service.Aggregator
	logger   *zap.Logger

	state    PhaseState
	metadata map[string]domain.DocumentMetadata
}

// NewSession loads the durable record table once and wires the services over
// it. A cold or unreadable store yields an empty table, never a failed
// session.
func NewSession(ctx context.Context, backend domain.CacheBackend, api domain.VideoAPI, cfg Config, logger *zap.Logger) *Session {
	records, err := backend.Load(ctx)
	if err != nil {
		logger.Warn("cache load failed, starting cold", zap.Error(err))
		records = map[string]domain.Record{}
	}
	table := domain.NewTable(records)

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	resolver := service.NewResolver(table, api, logger)

	return &Session{
		backend:  backend,
		table:    table,
		embedder: service.NewEmbedder(resolver, ttl, logger),
		agg:      service.NewAggregator(table, logger),
		logger:   logger,
		metadata: map[string]domain.DocumentMetadata{},
	}
}

// State returns the session's phase state.
func (s *Session) State() PhaseState {
	return s.state
}

// RunResolution is the pre-render hook: it scans every document for video
// references, embeds each recognized one (resolving through cache or
// upstream), and checkpoints the table. Per-reference failures downgrade to
// diagnostics with the original markup kept; only invoking the phase twice
// is an error, and even that leaves the documents as they were.
func (s *Session) RunResolution(ctx context.Context, docs []*Document) error {
	if err := s.state.markResolved(); err != nil {
		s.logger.Error("resolution phase misconfigured", zap.Error(err))

		return err
	}

	s.logger.Info("resolution phase started",
		zap.Int("documents", len(docs)),
		zap.Int("cached_records", s.table.Len()),
	)

	for _, doc := range docs {
		doc.Body = s.transform(ctx, doc)
	}

	s.checkpoint(ctx)

	s.logger.Info("resolution phase completed",
		zap.Int("cached_records", s.table.Len()),
	)

	return nil
}

// RunAggregation is the post-render hook: it sums per-document durations
// from the rendered bodies against the table (read-only, no fetches) and
// checkpoints the table again so either phase can be the last one run.
// Invoked out of order it reports a configuration error and does no work,
// leaving every total at zero.
func (s *Session) RunAggregation(ctx context.Context, docs []*Document) error {
	if err := s.state.markAggregated(); err != nil {
		s.logger.Error("aggregation phase misconfigured", zap.Error(err))

		return err
	}

	for _, doc := range docs {
		meta := s.agg.Aggregate(doc.Key, doc.Body)

		entry := s.metadata[doc.Key]
		entry.TotalDuration += meta.TotalDuration
		s.metadata[doc.Key] = entry
	}

	s.checkpoint(ctx)

	s.logger.Info("aggregation phase completed",
		zap.Int("documents", len(s.metadata)),
	)

	return nil
}

// Metadata returns a document's aggregated metadata. Before the aggregation
// phase it warns and returns the zero value rather than failing the build.
func (s *Session) Metadata(docKey string) domain.DocumentMetadata {
	if s.state != Both {
		s.logger.Warn("aggregation phase has not run, reporting zero metadata",
			zap.String("document", docKey),
			zap.String("state", s.state.String()),
		)
	}

	return s.metadata[docKey]
}

// transform rewrites one document: fenced reference blocks first, then
// inline image references. Unrecognized markup passes through untouched.
func (s *Session) transform(ctx context.Context, doc *Document) string {
	body := markup.FencedBlockPattern.ReplaceAllStringFunc(doc.Body, func(block string) string {
		ref, matched, err := markup.ScanFencedBlock(block)
		if err != nil {
			s.logger.Error("video reference block is incomplete",
				zap.String("document", doc.Key),
				zap.Error(err),
			)

			return block
		}
		if !matched {
			return block
		}

		return s.embedder.Embed(ctx, ref, block)
	})

	return markup.InlineImagePattern.ReplaceAllStringFunc(body, func(image string) string {
		ref, matched := markup.ScanInlineImage(image)
		if !matched {
			return image
		}

		return s.embedder.Embed(ctx, ref, image)
	})
}

// checkpoint persists the table. A failed save is reported but never fails
// the build; the cache is an optimization, not the output.
func (s *Session) checkpoint(ctx context.Context) {
	if err := s.backend.Save(ctx, s.table.Snapshot()); err != nil {
		s.logger.Error("cache checkpoint failed", zap.Error(err))
	}
}
