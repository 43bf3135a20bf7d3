// Package config provides environment-based configuration for the config service.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the runtime config service.
type Config struct {
	// Mode is the process run mode: production, staging or development.
	// Development mode bypasses client credential checks.
	Mode string `yaml:"mode"`

	// Server configuration
	APIHost         string        `yaml:"api_host"`
	APIPort         int           `yaml:"api_port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// Logging
	LogLevel string `yaml:"log_level"`
	LogJSON  bool   `yaml:"log_json"`

	// Supabase process-level settings. Mobile-specific values take
	// precedence over the generic pair during direct resolution.
	Supabase SupabaseConfig `yaml:"supabase"`

	// Backend holds service credentials for the persistent config store.
	Backend BackendConfig `yaml:"backend"`

	// AdMob ad-unit identifiers delivered to clients.
	AdMob AdMobConfig `yaml:"admob"`

	// Features are the default feature flags for assembled bundles.
	Features FeatureConfig `yaml:"features"`

	// App version metadata delivered to clients.
	App AppConfig `yaml:"app"`

	// Security flags delivered to clients.
	Security SecurityConfig `yaml:"security"`

	// Cache configuration
	CacheTTL time.Duration `yaml:"cache_ttl"`

	// Rate limiting
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// Admin access control
	Admin AdminConfig `yaml:"admin"`

	// EncryptionPassphrase derives keys for the secret encryption helper.
	EncryptionPassphrase string `yaml:"encryption_passphrase"`

	// EmergencyFallbackEnabled gates the embedded last-resort bundle.
	// Off by default: without it a request with no resolvable source is a 503.
	EmergencyFallbackEnabled bool `yaml:"emergency_fallback_enabled"`

	// OverrideFilePath is where admin env-sync overrides are persisted
	// for restart recovery.
	OverrideFilePath string `yaml:"override_file_path"`
}

// SupabaseConfig holds process-level Supabase connection settings.
type SupabaseConfig struct {
	URL           string `yaml:"url"`
	AnonKey       string `yaml:"anon_key"`
	MobileURL     string `yaml:"mobile_url"`
	MobileAnonKey string `yaml:"mobile_anon_key"`
}

// BackendConfig holds service credentials for the persistent config backend.
type BackendConfig struct {
	DSN          string        `yaml:"dsn"`
	ServiceKey   string        `yaml:"service_key"`
	CallTimeout  time.Duration `yaml:"call_timeout"`
	MaxRetries   int           `yaml:"max_retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
}

// Configured reports whether backend service credentials are present.
func (b BackendConfig) Configured() bool {
	return b.DSN != "" && b.ServiceKey != ""
}

// AdMobConfig holds ad-unit identifiers.
type AdMobConfig struct {
	AppID          string `yaml:"app_id"`
	BannerID       string `yaml:"banner_id"`
	InterstitialID string `yaml:"interstitial_id"`
	RewardedID     string `yaml:"rewarded_id"`
}

// FeatureConfig holds default feature flags.
type FeatureConfig struct {
	AdsEnabled       bool `yaml:"ads_enabled"`
	VIPEnabled       bool `yaml:"vip_enabled"`
	CoinsEnabled     bool `yaml:"coins_enabled"`
	ReferralsEnabled bool `yaml:"referrals_enabled"`
}

// AppConfig holds app version metadata.
type AppConfig struct {
	MinVersion      string `yaml:"min_version"`
	LatestVersion   string `yaml:"latest_version"`
	MaintenanceMode bool   `yaml:"maintenance_mode"`
}

// SecurityConfig holds client security flags.
type SecurityConfig struct {
	EnforceHTTPS       bool `yaml:"enforce_https"`
	CertificatePinning bool `yaml:"certificate_pinning"`
	AllowRooted        bool `yaml:"allow_rooted"`
}

// RateLimitConfig holds sliding-window rate limit settings.
type RateLimitConfig struct {
	Window      time.Duration `yaml:"window"`
	MaxRequests int           `yaml:"max_requests"`
}

// AdminConfig holds admin access control settings.
type AdminConfig struct {
	// AllowedEmails is the allow-list of admin identities.
	AllowedEmails []string `yaml:"allowed_emails"`
	// SuperAdminEmail is always authorized regardless of the allow-list.
	SuperAdminEmail string `yaml:"super_admin_email"`
	// JWTSecret enables bearer-token admin authentication when set.
	JWTSecret string `yaml:"jwt_secret"`
}

// Load reads configuration from an optional YAML file (CONFIG_FILE) and
// environment variables. Environment variables take precedence.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration without validating required fields.
// Useful for testing.
func LoadWithDefaults() *Config {
	cfg := defaults()
	cfg.applyEnv()
	return cfg
}

func defaults() *Config {
	return &Config{
		Mode:            "production",
		APIHost:         "0.0.0.0",
		APIPort:         3000,
		ShutdownTimeout: 30 * time.Second,
		LogLevel:        "info",
		LogJSON:         true,
		Backend: BackendConfig{
			CallTimeout:  10 * time.Second,
			MaxRetries:   2,
			RetryBackoff: 500 * time.Millisecond,
		},
		Features: FeatureConfig{
			AdsEnabled:   true,
			CoinsEnabled: true,
		},
		App: AppConfig{
			MinVersion:    "1.0.0",
			LatestVersion: "1.0.0",
		},
		Security: SecurityConfig{
			EnforceHTTPS: true,
		},
		CacheTTL: 5 * time.Minute,
		RateLimit: RateLimitConfig{
			Window:      time.Minute,
			MaxRequests: 100,
		},
		OverrideFilePath: ".env.overrides",
	}
}

func (c *Config) applyEnv() {
	c.Mode = getEnv("APP_MODE", c.Mode)
	c.APIHost = getEnv("API_HOST", c.APIHost)
	c.APIPort = getIntEnv("API_PORT", c.APIPort)
	c.ShutdownTimeout = getDurationEnv("SHUTDOWN_TIMEOUT", c.ShutdownTimeout)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogJSON = getBoolEnv("LOG_JSON", c.LogJSON)

	c.Supabase.URL = getEnv("SUPABASE_URL", c.Supabase.URL)
	c.Supabase.AnonKey = getEnv("SUPABASE_ANON_KEY", c.Supabase.AnonKey)
	c.Supabase.MobileURL = getEnv("MOBILE_SUPABASE_URL", c.Supabase.MobileURL)
	c.Supabase.MobileAnonKey = getEnv("MOBILE_SUPABASE_ANON_KEY", c.Supabase.MobileAnonKey)

	c.Backend.DSN = getEnv("BACKEND_DSN", c.Backend.DSN)
	c.Backend.ServiceKey = getEnv("BACKEND_SERVICE_KEY", c.Backend.ServiceKey)
	c.Backend.CallTimeout = getDurationEnv("BACKEND_CALL_TIMEOUT", c.Backend.CallTimeout)
	c.Backend.MaxRetries = getIntEnv("BACKEND_MAX_RETRIES", c.Backend.MaxRetries)
	c.Backend.RetryBackoff = getDurationEnv("BACKEND_RETRY_BACKOFF", c.Backend.RetryBackoff)

	c.AdMob.AppID = getEnv("ADMOB_APP_ID", c.AdMob.AppID)
	c.AdMob.BannerID = getEnv("ADMOB_BANNER_ID", c.AdMob.BannerID)
	c.AdMob.InterstitialID = getEnv("ADMOB_INTERSTITIAL_ID", c.AdMob.InterstitialID)
	c.AdMob.RewardedID = getEnv("ADMOB_REWARDED_ID", c.AdMob.RewardedID)

	c.Features.AdsEnabled = getBoolEnv("FEATURE_ADS_ENABLED", c.Features.AdsEnabled)
	c.Features.VIPEnabled = getBoolEnv("FEATURE_VIP_ENABLED", c.Features.VIPEnabled)
	c.Features.CoinsEnabled = getBoolEnv("FEATURE_COINS_ENABLED", c.Features.CoinsEnabled)
	c.Features.ReferralsEnabled = getBoolEnv("FEATURE_REFERRALS_ENABLED", c.Features.ReferralsEnabled)

	c.App.MinVersion = getEnv("MIN_APP_VERSION", c.App.MinVersion)
	c.App.LatestVersion = getEnv("LATEST_APP_VERSION", c.App.LatestVersion)
	c.App.MaintenanceMode = getBoolEnv("MAINTENANCE_MODE", c.App.MaintenanceMode)

	c.Security.EnforceHTTPS = getBoolEnv("ENFORCE_HTTPS", c.Security.EnforceHTTPS)
	c.Security.CertificatePinning = getBoolEnv("CERTIFICATE_PINNING", c.Security.CertificatePinning)
	c.Security.AllowRooted = getBoolEnv("ALLOW_ROOTED_DEVICES", c.Security.AllowRooted)

	c.CacheTTL = getDurationEnv("CONFIG_CACHE_TTL", c.CacheTTL)
	c.RateLimit.Window = getDurationEnv("RATE_LIMIT_WINDOW", c.RateLimit.Window)
	c.RateLimit.MaxRequests = getIntEnv("RATE_LIMIT_MAX_REQUESTS", c.RateLimit.MaxRequests)

	if v := os.Getenv("ADMIN_ALLOWED_EMAILS"); v != "" {
		c.Admin.AllowedEmails = splitAndTrim(v)
	}
	c.Admin.SuperAdminEmail = getEnv("SUPER_ADMIN_EMAIL", c.Admin.SuperAdminEmail)
	c.Admin.JWTSecret = getEnv("ADMIN_JWT_SECRET", c.Admin.JWTSecret)

	c.EncryptionPassphrase = getEnv("ENCRYPTION_PASSPHRASE", c.EncryptionPassphrase)
	c.EmergencyFallbackEnabled = getBoolEnv("EMERGENCY_FALLBACK_ENABLED", c.EmergencyFallbackEnabled)
	c.OverrideFilePath = getEnv("OVERRIDE_FILE_PATH", c.OverrideFilePath)
}

// Validate checks that required configuration values are set.
func (c *Config) Validate() error {
	switch c.Mode {
	case "production", "staging", "development":
	default:
		return fmt.Errorf("APP_MODE must be production, staging or development, got %q", c.Mode)
	}
	if c.RateLimit.MaxRequests <= 0 {
		return fmt.Errorf("RATE_LIMIT_MAX_REQUESTS must be positive")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CONFIG_CACHE_TTL must be positive")
	}
	if c.Admin.JWTSecret != "" && len(c.Admin.JWTSecret) < 32 {
		return fmt.Errorf("ADMIN_JWT_SECRET must be at least 32 characters")
	}
	return nil
}

// IsDevelopment reports whether the process runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Mode == "development"
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
