// Package backend defines the boundary to the persistent configuration and
// audit store. The store is reached exclusively through five named remote
// procedures invoked with a service-level credential pair; nothing in this
// package assumes a particular storage engine beyond that contract.
package backend

import (
	"context"
	"errors"

	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/models"
)

var (
	// ErrNotFound is returned when a requested entry does not exist.
	ErrNotFound = errors.New("config entry not found")
	// ErrBackendTimeout is returned when a remote procedure exceeds its
	// bounded call timeout.
	ErrBackendTimeout = errors.New("backend call timed out")
)

// UpsertParams carries a full configuration write with its audit context.
type UpsertParams struct {
	Key         string
	Value       string
	IsPublic    bool
	Category    string
	Description string
	Environment models.Environment
	Audit       models.AuditContext
}

// Client is the set of remote procedures exposed by the persistent backend.
type Client interface {
	// FetchPublicConfig returns all rows tagged public for the environment.
	FetchPublicConfig(ctx context.Context, env models.Environment) ([]models.ConfigEntry, error)
	// FetchAllConfig returns every row for the environment, public or not.
	FetchAllConfig(ctx context.Context, env models.Environment) ([]models.ConfigEntry, error)
	// UpsertConfig creates or updates a row and records the audit context.
	UpsertConfig(ctx context.Context, p UpsertParams) (*models.ConfigEntry, error)
	// DeleteConfig removes a row and records the audit context.
	DeleteConfig(ctx context.Context, key string, env models.Environment, audit models.AuditContext) error
	// FetchAuditLogs queries the audit trail.
	FetchAuditLogs(ctx context.Context, filter models.AuditLogFilter) ([]models.AuditLogEntry, error)
	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error
	// Close releases the underlying connection pool.
	Close() error
}
