// Package models defines the data structures shared across the config service.
package models

import "time"

// Environment identifies a configuration environment.
type Environment string

// Known environments.
const (
	EnvProduction  Environment = "production"
	EnvStaging     Environment = "staging"
	EnvDevelopment Environment = "development"
)

// AllEnvironments lists every recognized environment.
var AllEnvironments = []Environment{EnvProduction, EnvStaging, EnvDevelopment}

// ParseEnvironment validates an environment label.
func ParseEnvironment(s string) (Environment, bool) {
	switch Environment(s) {
	case EnvProduction, EnvStaging, EnvDevelopment:
		return Environment(s), true
	}
	return "", false
}

// ConfigEntry represents a single configuration row in the persistent backend.
type ConfigEntry struct {
	Key         string      `json:"key"`
	Value       string      `json:"value"`
	IsPublic    bool        `json:"is_public"`
	Category    string      `json:"category"`
	Description string      `json:"description,omitempty"`
	Environment Environment `json:"environment"`

	// Audit fields recorded with the last write.
	UpdatedBy string    `json:"updated_by,omitempty"`
	UpdatedIP string    `json:"updated_ip,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuditContext carries the identity and provenance of an admin write.
type AuditContext struct {
	AdminEmail string `json:"admin_email"`
	IPAddress  string `json:"ip_address"`
	UserAgent  string `json:"user_agent"`
	Reason     string `json:"reason"`
}

// AuditLogEntry is a single row from the backend audit trail.
type AuditLogEntry struct {
	ID          string      `json:"id"`
	Key         string      `json:"key"`
	Environment Environment `json:"environment"`
	Action      string      `json:"action"`
	AdminEmail  string      `json:"admin_email"`
	IPAddress   string      `json:"ip_address,omitempty"`
	UserAgent   string      `json:"user_agent,omitempty"`
	Reason      string      `json:"reason,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// AuditLogFilter narrows an audit log query.
type AuditLogFilter struct {
	Key         string
	Environment Environment
	DaysBack    int
	Limit       int
}
