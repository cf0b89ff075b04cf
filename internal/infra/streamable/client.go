// Package streamable implements the client for the upstream video lookup API.
package streamable

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"video-embed-pipeline/internal/domain"
)

// LookupPath is the API path prefix for the per-video lookup endpoint.
const LookupPath = "/videos/"

// ClientConfig holds configuration for the lookup client.
type ClientConfig struct {
	BaseURL string
	// Timeout is the hard wall-clock bound on a single lookup. One
	// unreachable upstream must not stall the build.
	Timeout time.Duration
	Retry   RetryConfig
	CB      CBConfig
}

// RetryConfig holds retry configuration. MaxAttempts defaults to zero: a
// failed lookup is reported once per build, not retried.
type RetryConfig struct {
	MaxAttempts int
	WaitTime    time.Duration
	MaxWaitTime time.Duration
}

// CBConfig holds circuit breaker configuration.
type CBConfig struct {
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	FailureRatio float64
}

// Client implements domain.VideoAPI against the hosted video API.
type Client struct {
	client *resty.Client
	cb     *gobreaker.CircuitBreaker[*resty.Response]
	logger *zap.Logger
}

// New creates a new lookup client.
func New(cfg ClientConfig, logger *zap.Logger) *Client {
	return &Client{
		client: newRestyClient(cfg),
		cb:     newCircuitBreaker(cfg.CB),
		logger: logger,
	}
}

func newRestyClient(cfg ClientConfig) *resty.Client {
	return resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retry.MaxAttempts).
		SetRetryWaitTime(cfg.Retry.WaitTime).
		SetRetryMaxWaitTime(cfg.Retry.MaxWaitTime).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}

			return r.StatusCode() >= 500
		})
}

func newCircuitBreaker(cfg CBConfig) *gobreaker.CircuitBreaker[*resty.Response] {
	settings := gobreaker.Settings{
		Name:        "streamable",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)

			return counts.Requests >= 3 && failureRatio >= cfg.FailureRatio
		},
	}

	return gobreaker.NewCircuitBreaker[*resty.Response](settings)
}

// Lookup performs one read-only request for the given video ID. The response
// body is decoded outside the breaker so malformed payloads classify as
// decode failures rather than counting against the upstream's health.
func (c *Client) Lookup(ctx context.Context, id string) (domain.Record, error) {
	resp, err := c.cb.Execute(func() (*resty.Response, error) {
		r, err := c.client.R().
			SetContext(ctx).
			Get(LookupPath + url.PathEscape(id))
		if err != nil {
			return nil, err
		}
		if r.IsError() {
			return nil, fmt.Errorf("upstream returned status %d", r.StatusCode())
		}

		return r, nil
	})

	if err != nil {
		kind := classify(err)
		c.logger.Warn("video lookup failed",
			zap.String("video_id", id),
			zap.String("kind", string(kind)),
			zap.String("state", c.cb.State().String()),
			zap.Error(err),
		)

		return domain.Record{}, domain.NewResolveError(id, kind, err)
	}

	var result videoResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		c.logger.Warn("video lookup response did not decode",
			zap.String("video_id", id),
			zap.Error(err),
		)

		return domain.Record{}, domain.NewResolveError(id, domain.KindDecode, err)
	}

	rec, err := result.ToRecord(id)
	if err != nil {
		c.logger.Warn("video lookup response incomplete",
			zap.String("video_id", id),
			zap.Error(err),
		)

		return domain.Record{}, domain.NewResolveError(id, domain.KindDecode, err)
	}

	c.logger.Debug("video lookup completed",
		zap.String("video_id", id),
		zap.Float64("duration", rec.Duration),
	)

	return rec, nil
}

// HealthCheck verifies the upstream is accessible.
func (c *Client) HealthCheck(ctx context.Context) error {
	resp, err := c.client.R().
		SetContext(ctx).
		Get("/health")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("health check returned status %d", resp.StatusCode())
	}

	return nil
}

// classify maps a transport-level failure onto a resolve error kind.
func classify(err error) domain.ResolveKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.KindTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.KindTimeout
	}

	return domain.KindNetwork
}
