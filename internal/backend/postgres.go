package backend

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/models"
)

// PostgresClient implements Client against a PostgreSQL backend exposing the
// five config procedures as SQL functions.
type PostgresClient struct {
	db         *sql.DB
	serviceKey string
	logger     *slog.Logger
}

// PostgresConfig holds connection configuration for the backend.
type PostgresConfig struct {
	DSN             string
	ServiceKey      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultPostgresConfig returns a PostgresConfig with sensible defaults.
func DefaultPostgresConfig(dsn, serviceKey string) *PostgresConfig {
	return &PostgresConfig{
		DSN:             dsn,
		ServiceKey:      serviceKey,
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 1 * time.Minute,
	}
}

// NewPostgresClient connects to the backend and verifies reachability.
func NewPostgresClient(cfg *PostgresConfig, logger *slog.Logger) (*PostgresClient, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening backend connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging backend: %w", err)
	}

	return &PostgresClient{
		db:         db,
		serviceKey: cfg.ServiceKey,
		logger:     logger,
	}, nil
}

// FetchPublicConfig returns all rows tagged public for the environment.
func (c *PostgresClient) FetchPublicConfig(ctx context.Context, env models.Environment) ([]models.ConfigEntry, error) {
	query := `
		SELECT key, value, category, environment, updated_at
		FROM fetch_public_config($1, $2)`

	rows, err := c.db.QueryContext(ctx, query, c.serviceKey, string(env))
	if err != nil {
		return nil, fmt.Errorf("fetch_public_config: %w", err)
	}
	defer rows.Close()

	var entries []models.ConfigEntry
	for rows.Next() {
		var e models.ConfigEntry
		if err := rows.Scan(&e.Key, &e.Value, &e.Category, &e.Environment, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning public config row: %w", err)
		}
		e.IsPublic = true
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating public config rows: %w", err)
	}
	return entries, nil
}

// FetchAllConfig returns every row for the environment.
func (c *PostgresClient) FetchAllConfig(ctx context.Context, env models.Environment) ([]models.ConfigEntry, error) {
	query := `
		SELECT key, value, is_public, category, description, environment,
		       updated_by, updated_ip, user_agent, reason, created_at, updated_at
		FROM fetch_all_config($1, $2)`

	rows, err := c.db.QueryContext(ctx, query, c.serviceKey, string(env))
	if err != nil {
		return nil, fmt.Errorf("fetch_all_config: %w", err)
	}
	defer rows.Close()

	var entries []models.ConfigEntry
	for rows.Next() {
		var e models.ConfigEntry
		var description, updatedBy, updatedIP, userAgent, reason sql.NullString
		if err := rows.Scan(&e.Key, &e.Value, &e.IsPublic, &e.Category, &description,
			&e.Environment, &updatedBy, &updatedIP, &userAgent, &reason,
			&e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning config row: %w", err)
		}
		e.Description = description.String
		e.UpdatedBy = updatedBy.String
		e.UpdatedIP = updatedIP.String
		e.UserAgent = userAgent.String
		e.Reason = reason.String
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating config rows: %w", err)
	}
	return entries, nil
}

// UpsertConfig creates or updates a row with full audit context.
func (c *PostgresClient) UpsertConfig(ctx context.Context, p UpsertParams) (*models.ConfigEntry, error) {
	query := `
		SELECT key, value, is_public, category, description, environment,
		       updated_by, updated_ip, user_agent, reason, created_at, updated_at
		FROM upsert_config($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	var e models.ConfigEntry
	var description, updatedBy, updatedIP, userAgent, reason sql.NullString
	err := c.db.QueryRowContext(ctx, query,
		c.serviceKey, p.Key, p.Value, p.IsPublic, p.Category, p.Description,
		string(p.Environment), p.Audit.AdminEmail, p.Audit.IPAddress,
		p.Audit.UserAgent, p.Audit.Reason,
	).Scan(&e.Key, &e.Value, &e.IsPublic, &e.Category, &description,
		&e.Environment, &updatedBy, &updatedIP, &userAgent, &reason,
		&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert_config: %w", err)
	}
	e.Description = description.String
	e.UpdatedBy = updatedBy.String
	e.UpdatedIP = updatedIP.String
	e.UserAgent = userAgent.String
	e.Reason = reason.String
	return &e, nil
}

// DeleteConfig removes a row with audit context.
func (c *PostgresClient) DeleteConfig(ctx context.Context, key string, env models.Environment, audit models.AuditContext) error {
	query := `SELECT delete_config($1, $2, $3, $4, $5, $6, $7)`

	var deleted bool
	err := c.db.QueryRowContext(ctx, query,
		c.serviceKey, key, string(env), audit.AdminEmail, audit.IPAddress,
		audit.UserAgent, audit.Reason,
	).Scan(&deleted)
	if err != nil {
		return fmt.Errorf("delete_config: %w", err)
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

// FetchAuditLogs queries the audit trail.
func (c *PostgresClient) FetchAuditLogs(ctx context.Context, filter models.AuditLogFilter) ([]models.AuditLogEntry, error) {
	query := `
		SELECT id, key, environment, action, admin_email, ip_address,
		       user_agent, reason, created_at
		FROM fetch_audit_logs($1, $2, $3, $4, $5)`

	rows, err := c.db.QueryContext(ctx, query,
		c.serviceKey, nullable(filter.Key), nullable(string(filter.Environment)),
		filter.DaysBack, filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("fetch_audit_logs: %w", err)
	}
	defer rows.Close()

	var logs []models.AuditLogEntry
	for rows.Next() {
		var l models.AuditLogEntry
		var ip, ua, reason sql.NullString
		if err := rows.Scan(&l.ID, &l.Key, &l.Environment, &l.Action,
			&l.AdminEmail, &ip, &ua, &reason, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning audit row: %w", err)
		}
		l.IPAddress = ip.String
		l.UserAgent = ua.String
		l.Reason = reason.String
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit rows: %w", err)
	}
	return logs, nil
}

// Ping verifies the backend is reachable.
func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close releases the connection pool.
func (c *PostgresClient) Close() error {
	return c.db.Close()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ Client = (*PostgresClient)(nil)
