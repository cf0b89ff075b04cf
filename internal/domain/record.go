// Package domain contains the core entities of the video embed pipeline.
// This package has no external dependencies (only stdlib).
package domain

import (
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// ExpiresParam is the query parameter the upstream host puts on signed media
// URLs. The name and numeric-seconds format are a contract on the upstream's
// URL shape, not on its JSON, so parsing is pinned here in one place.
const ExpiresParam = "Expires"

// Record is one resolved video: the playable URL returned by the upstream
// lookup API together with its duration and signed-URL expiry.
//
// A Record is immutable once created. A later fetch for the same ID produces
// a replacement record; nothing mutates an existing one in place.
type Record struct {
	// ID is the opaque upstream-assigned video identifier.
	ID string `json:"id"`
	// MediaURL is the playable URL, including signed-access parameters.
	MediaURL string `json:"url"`
	// Duration is the playback length in seconds.
	Duration float64 `json:"duration"`
	// ExpiresAt is the epoch timestamp (seconds) after which MediaURL is no
	// longer guaranteed valid.
	ExpiresAt float64 `json:"expires"`
}

// NewRecord builds a Record, establishing ExpiresAt from the explicit expiry
// when one is supplied (expires != nil) and otherwise recovering it from the
// media URL's signed-access parameters. It fails when neither is available.
func NewRecord(id, mediaURL string, duration float64, expires *float64) (Record, error) {
	rec := Record{
		ID:       id,
		MediaURL: mediaURL,
		Duration: duration,
	}

	if expires != nil {
		rec.ExpiresAt = *expires
		return rec, nil
	}

	fromURL, err := ExpiryFromURL(mediaURL)
	if err != nil {
		return Record{}, fmt.Errorf("record %s: %w", id, err)
	}
	rec.ExpiresAt = fromURL

	return rec, nil
}

// FreshAt reports whether the record still has more than ttl of validity left
// at the given instant. The caller-supplied ttl is a tolerance window: a
// record whose remaining validity is exactly ttl is already stale.
func (r Record) FreshAt(now time.Time, ttl time.Duration) bool {
	return r.ExpiresAt > float64(now.Add(ttl).Unix())
}

// ExpiryFromURL extracts the expiry timestamp from a signed media URL's
// query string. It requires a parameter literally named "Expires" holding a
// numeric epoch value.
func ExpiryFromURL(rawURL string) (float64, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0, fmt.Errorf("parsing media URL: %w", err)
	}

	value := u.Query().Get(ExpiresParam)
	if value == "" {
		return 0, fmt.Errorf("media URL has no %s parameter", ExpiresParam)
	}

	expires, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s parameter %q: %w", ExpiresParam, value, err)
	}

	return expires, nil
}

// DocumentMetadata holds the aggregated video metadata of one document.
// Created lazily with zero values on first aggregation touch; read-only for
// downstream consumers afterwards.
type DocumentMetadata struct {
	// TotalDuration is the sum of Duration over every distinct video ID
	// referenced in the document's rendered body, in seconds.
	TotalDuration float64 `json:"total_duration"`
}
