package backend

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/models"
)

// RetryConfig bounds outbound calls: every procedure runs under a per-call
// timeout and transient failures are retried a bounded number of times with
// doubling backoff.
type RetryConfig struct {
	CallTimeout time.Duration
	MaxRetries  int
	Backoff     time.Duration
}

// DefaultRetryConfig returns the standard call bounds.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		CallTimeout: 10 * time.Second,
		MaxRetries:  2,
		Backoff:     500 * time.Millisecond,
	}
}

// RetryingClient decorates a Client with timeouts and bounded retry.
// Timeouts surface as ErrBackendTimeout, distinct from other backend errors.
type RetryingClient struct {
	inner  Client
	cfg    RetryConfig
	logger *slog.Logger
}

// WithRetry wraps a Client with the given call bounds.
func WithRetry(inner Client, cfg RetryConfig, logger *slog.Logger) *RetryingClient {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultRetryConfig().CallTimeout
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = DefaultRetryConfig().Backoff
	}
	return &RetryingClient{inner: inner, cfg: cfg, logger: logger}
}

// do runs fn under the call timeout, retrying transient failures.
func (c *RetryingClient) do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	var err error
	backoff := c.cfg.Backoff

	for attempt := 0; ; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
		err = fn(callCtx)
		cancel()

		if err == nil {
			return nil
		}
		if errors.Is(err, context.DeadlineExceeded) {
			err = ErrBackendTimeout
		}
		// Not-found and caller cancellation are terminal, not transient.
		if errors.Is(err, ErrNotFound) || ctx.Err() != nil {
			return err
		}
		if attempt >= c.cfg.MaxRetries {
			return err
		}

		c.logger.Warn("backend call failed, retrying",
			"op", op,
			"attempt", attempt+1,
			"backoff", backoff.String(),
			"error", err,
		)

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
	}
}

// FetchPublicConfig implements Client.
func (c *RetryingClient) FetchPublicConfig(ctx context.Context, env models.Environment) ([]models.ConfigEntry, error) {
	var entries []models.ConfigEntry
	err := c.do(ctx, "fetch_public_config", func(ctx context.Context) error {
		var err error
		entries, err = c.inner.FetchPublicConfig(ctx, env)
		return err
	})
	return entries, err
}

// FetchAllConfig implements Client.
func (c *RetryingClient) FetchAllConfig(ctx context.Context, env models.Environment) ([]models.ConfigEntry, error) {
	var entries []models.ConfigEntry
	err := c.do(ctx, "fetch_all_config", func(ctx context.Context) error {
		var err error
		entries, err = c.inner.FetchAllConfig(ctx, env)
		return err
	})
	return entries, err
}

// UpsertConfig implements Client. Writes are not retried: a timed-out write
// may still have committed, and a duplicate upsert would record a second
// audit row.
func (c *RetryingClient) UpsertConfig(ctx context.Context, p UpsertParams) (*models.ConfigEntry, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
	defer cancel()

	entry, err := c.inner.UpsertConfig(callCtx, p)
	if errors.Is(err, context.DeadlineExceeded) {
		return nil, ErrBackendTimeout
	}
	return entry, err
}

// DeleteConfig implements Client. Like upserts, deletes run once.
func (c *RetryingClient) DeleteConfig(ctx context.Context, key string, env models.Environment, audit models.AuditContext) error {
	callCtx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
	defer cancel()

	err := c.inner.DeleteConfig(callCtx, key, env, audit)
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrBackendTimeout
	}
	return err
}

// FetchAuditLogs implements Client.
func (c *RetryingClient) FetchAuditLogs(ctx context.Context, filter models.AuditLogFilter) ([]models.AuditLogEntry, error) {
	var logs []models.AuditLogEntry
	err := c.do(ctx, "fetch_audit_logs", func(ctx context.Context) error {
		var err error
		logs, err = c.inner.FetchAuditLogs(ctx, filter)
		return err
	})
	return logs, err
}

// Ping implements Client.
func (c *RetryingClient) Ping(ctx context.Context) error {
	callCtx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
	defer cancel()
	return c.inner.Ping(callCtx)
}

// Close implements Client.
func (c *RetryingClient) Close() error {
	return c.inner.Close()
}

var _ Client = (*RetryingClient)(nil)
