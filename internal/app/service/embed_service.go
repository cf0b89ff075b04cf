package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"video-embed-pipeline/internal/domain"
	"video-embed-pipeline/internal/markup"
)

// Embedder renders scanned references as HTML5 video markup, resolving each
// one through the Resolver.
type Embedder struct {
	resolver *Resolver
	ttl      time.Duration
	logger   *zap.Logger
}

// NewEmbedder creates an Embedder. ttl is the freshness tolerance passed to
// every resolution from the embed path.
func NewEmbedder(resolver *Resolver, ttl time.Duration, logger *zap.Logger) *Embedder {
	return &Embedder{
		resolver: resolver,
		ttl:      ttl,
		logger:   logger,
	}
}

// Embed resolves ref and returns the video element for it. On resolution
// failure it reports an error-level diagnostic and returns the original
// markup unchanged, so a broken upstream degrades to the authored shorthand
// instead of a broken page.
func (e *Embedder) Embed(ctx context.Context, ref domain.Reference, original string) string {
	mediaURL, err := e.resolver.Resolve(ctx, ref.ID, e.ttl)
	if err != nil {
		e.logger.Error("video embed failed, keeping original markup",
			zap.String("video_id", ref.ID),
			zap.String("form", string(ref.Form)),
			zap.Error(err),
		)

		return original
	}

	return markup.RenderVideo(ref, mediaURL)
}
