package domain

import (
	"context"
)

// VideoAPI defines the interface to the upstream video lookup endpoint.
// Implementations: internal/infra/streamable/client.go
type VideoAPI interface {
	// Lookup performs one read-only request for the given video ID and
	// returns the decoded record. The call blocks until a response arrives
	// or the implementation's configured timeout elapses; failures are
	// reported as *ResolveError.
	Lookup(ctx context.Context, id string) (Record, error)
}

// CacheBackend persists the resolved-record table between builds.
// Implementations: internal/infra/cachestore/{file,redis}.go
type CacheBackend interface {
	// Load deserializes the durable table. An absent or corrupt store yields
	// an empty map, not an error: a cold cache must never block a build.
	Load(ctx context.Context) (map[string]Record, error)

	// Save serializes the full table, replacing prior contents. Called at
	// the end of each pipeline phase that may have mutated the table.
	Save(ctx context.Context, records map[string]Record) error
}
