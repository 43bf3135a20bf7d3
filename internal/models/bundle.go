package models

import "time"

// ConfigBundle is the fully assembled configuration object delivered to
// clients. Every resolution path produces this exact shape; no sub-structure
// is ever left out.
type ConfigBundle struct {
	Supabase SupabaseBundle `json:"supabase"`
	AdMob    AdMobBundle    `json:"admob"`
	Features FeatureBundle  `json:"features"`
	App      AppBundle      `json:"app"`
	Security SecurityBundle `json:"security"`
	Metadata BundleMetadata `json:"metadata"`
}

// SupabaseBundle carries backend connection values for mobile clients.
type SupabaseBundle struct {
	URL     string `json:"url"`
	AnonKey string `json:"anonKey"`
}

// AdMobBundle carries ad-unit identifiers.
type AdMobBundle struct {
	AppID          string `json:"appId"`
	BannerID       string `json:"bannerId"`
	InterstitialID string `json:"interstitialId"`
	RewardedID     string `json:"rewardedId"`
}

// FeatureBundle carries feature flags.
type FeatureBundle struct {
	AdsEnabled       bool `json:"adsEnabled"`
	VIPEnabled       bool `json:"vipEnabled"`
	CoinsEnabled     bool `json:"coinsEnabled"`
	ReferralsEnabled bool `json:"referralsEnabled"`
}

// AppBundle carries version and maintenance metadata.
type AppBundle struct {
	MinVersion      string      `json:"minVersion"`
	LatestVersion   string      `json:"latestVersion"`
	Environment     Environment `json:"environment"`
	MaintenanceMode bool        `json:"maintenanceMode"`
}

// SecurityBundle carries client-enforced security flags.
type SecurityBundle struct {
	EnforceHTTPS       bool `json:"enforceHttps"`
	CertificatePinning bool `json:"certificatePinning"`
	AllowRooted        bool `json:"allowRooted"`
}

// BundleMetadata describes how and when the bundle was assembled.
type BundleMetadata struct {
	Source      string              `json:"source"`
	Checksum    string              `json:"checksum,omitempty"`
	GeneratedAt time.Time           `json:"generatedAt"`
	Categories  map[string][]string `json:"categories,omitempty"`
}

// Bundle sources.
const (
	SourceOverride = "runtime_override"
	SourceProcess  = "process_env"
	SourceBackend  = "backend_rpc"
	SourceFallback = "embedded_fallback"
)
