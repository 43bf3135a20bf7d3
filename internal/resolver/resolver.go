// Package resolver assembles client configuration bundles from the
// precedence-ordered sources: runtime overrides and process settings first,
// the persistent backend second, and a gated embedded fallback last.
package resolver

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/backend"
	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/cache"
	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/models"
	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/override"
	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/secrets"
	"github.com/mrpraj7488/VidGro-Admin-sub001/pkg/config"
)

// ErrServiceUnavailable is returned when no configuration source resolves.
// It is terminal for the request; callers map it to a 503.
var ErrServiceUnavailable = errors.New("no configuration source available")

// Embedded last-resort connection values. Only served when the operator has
// explicitly enabled the emergency fallback.
const (
	fallbackSupabaseURL     = "https://emergency-config.vidgro.app"
	fallbackSupabaseAnonKey = "emergency-anon-key-rotate-me"
)

// Resolver assembles configuration bundles.
type Resolver struct {
	cfg       *config.Config
	overrides *override.Store
	backend   backend.Client
	cache     *cache.Cache
	logger    *slog.Logger
	now       func() time.Time
}

// New creates a Resolver. The backend client may be nil when no service
// credentials are configured.
func New(cfg *config.Config, overrides *override.Store, bc backend.Client, c *cache.Cache, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		cfg:       cfg,
		overrides: overrides,
		backend:   bc,
		cache:     c,
		logger:    logger,
		now:       time.Now,
	}
}

// Resolve assembles a bundle for the environment, stopping at the first
// viable source, and stores the result in the cache before returning it.
func (r *Resolver) Resolve(ctx context.Context, env models.Environment, appVersion string) (models.ConfigBundle, error) {
	if bundle, ok := r.resolveDirect(env); ok {
		r.cache.Put(env, bundle)
		return bundle, nil
	}

	if r.backend != nil {
		bundle, err := r.resolveBackend(ctx, env)
		if err == nil {
			r.cache.Put(env, bundle)
			return bundle, nil
		}
		r.logger.Error("backend config resolution failed",
			"environment", env,
			"app_version", appVersion,
			"error", err,
		)
	}

	if bundle, ok := r.resolveFallback(env); ok {
		r.logger.Warn("serving embedded emergency fallback", "environment", env)
		r.cache.Put(env, bundle)
		return bundle, nil
	}

	return models.ConfigBundle{}, ErrServiceUnavailable
}

// resolveDirect builds a bundle from runtime overrides and process settings.
// Override credentials win over mobile-specific settings, which win over the
// generic pair.
func (r *Resolver) resolveDirect(env models.Environment) (models.ConfigBundle, bool) {
	url, anonKey, source := "", "", ""

	if u, k, ok := r.overrides.Credentials(); ok {
		url, anonKey, source = u, k, models.SourceOverride
	} else if r.cfg.Supabase.MobileURL != "" && r.cfg.Supabase.MobileAnonKey != "" {
		url, anonKey, source = r.cfg.Supabase.MobileURL, r.cfg.Supabase.MobileAnonKey, models.SourceProcess
	} else if r.cfg.Supabase.URL != "" && r.cfg.Supabase.AnonKey != "" {
		url, anonKey, source = r.cfg.Supabase.URL, r.cfg.Supabase.AnonKey, models.SourceProcess
	} else {
		return models.ConfigBundle{}, false
	}

	bundle := r.baseBundle(env, source)
	bundle.Supabase = models.SupabaseBundle{URL: url, AnonKey: anonKey}

	// Admin env-sync may have overridden ad units as well.
	ov := r.overrides.Snapshot()
	if ov.AdMobAppID != "" {
		bundle.AdMob.AppID = ov.AdMobAppID
	}
	if ov.AdMobBannerID != "" {
		bundle.AdMob.BannerID = ov.AdMobBannerID
	}
	if ov.AdMobInterstitialID != "" {
		bundle.AdMob.InterstitialID = ov.AdMobInterstitialID
	}
	if ov.AdMobRewardedID != "" {
		bundle.AdMob.RewardedID = ov.AdMobRewardedID
	}

	bundle.Metadata.Checksum = secrets.Checksum(flatten(bundle))
	return bundle, true
}

// resolveBackend fetches public rows for the environment and folds them into
// a bundle plus a category-grouped map.
func (r *Resolver) resolveBackend(ctx context.Context, env models.Environment) (models.ConfigBundle, error) {
	entries, err := r.backend.FetchPublicConfig(ctx, env)
	if err != nil {
		return models.ConfigBundle{}, err
	}

	flat := make(map[string]string, len(entries))
	categories := make(map[string][]string)
	for _, e := range entries {
		flat[e.Key] = e.Value
		cat := e.Category
		if cat == "" {
			cat = "general"
		}
		categories[cat] = append(categories[cat], e.Key)
	}

	bundle := r.baseBundle(env, models.SourceBackend)
	applyFlat(&bundle, flat)
	bundle.Metadata.Checksum = secrets.Checksum(flat)
	bundle.Metadata.Categories = categories

	if bundle.Supabase.URL == "" || bundle.Supabase.AnonKey == "" {
		return models.ConfigBundle{}, errors.New("backend rows missing connection values")
	}
	return bundle, nil
}

// resolveFallback serves the embedded defaults, gated behind the explicit
// operator opt-in.
func (r *Resolver) resolveFallback(env models.Environment) (models.ConfigBundle, bool) {
	if !r.cfg.EmergencyFallbackEnabled {
		return models.ConfigBundle{}, false
	}
	if fallbackSupabaseURL == "" || fallbackSupabaseAnonKey == "" {
		return models.ConfigBundle{}, false
	}

	bundle := r.baseBundle(env, models.SourceFallback)
	bundle.Supabase = models.SupabaseBundle{
		URL:     fallbackSupabaseURL,
		AnonKey: fallbackSupabaseAnonKey,
	}
	bundle.Metadata.Checksum = secrets.Checksum(flatten(bundle))
	return bundle, true
}

// baseBundle fills every sub-structure from process configuration so each
// resolution path starts from the same complete shape.
func (r *Resolver) baseBundle(env models.Environment, source string) models.ConfigBundle {
	return models.ConfigBundle{
		AdMob: models.AdMobBundle{
			AppID:          r.cfg.AdMob.AppID,
			BannerID:       r.cfg.AdMob.BannerID,
			InterstitialID: r.cfg.AdMob.InterstitialID,
			RewardedID:     r.cfg.AdMob.RewardedID,
		},
		Features: models.FeatureBundle{
			AdsEnabled:       r.cfg.Features.AdsEnabled,
			VIPEnabled:       r.cfg.Features.VIPEnabled,
			CoinsEnabled:     r.cfg.Features.CoinsEnabled,
			ReferralsEnabled: r.cfg.Features.ReferralsEnabled,
		},
		App: models.AppBundle{
			MinVersion:      r.cfg.App.MinVersion,
			LatestVersion:   r.cfg.App.LatestVersion,
			Environment:     env,
			MaintenanceMode: r.cfg.App.MaintenanceMode,
		},
		Security: models.SecurityBundle{
			EnforceHTTPS:       r.cfg.Security.EnforceHTTPS,
			CertificatePinning: r.cfg.Security.CertificatePinning,
			AllowRooted:        r.cfg.Security.AllowRooted,
		},
		Metadata: models.BundleMetadata{
			Source:      source,
			GeneratedAt: r.now().UTC(),
		},
	}
}

// applyFlat maps well-known backend keys onto the bundle sub-structures.
func applyFlat(b *models.ConfigBundle, flat map[string]string) {
	if v, ok := flat["SUPABASE_URL"]; ok {
		b.Supabase.URL = v
	}
	if v, ok := flat["SUPABASE_ANON_KEY"]; ok {
		b.Supabase.AnonKey = v
	}
	if v, ok := flat["ADMOB_APP_ID"]; ok {
		b.AdMob.AppID = v
	}
	if v, ok := flat["ADMOB_BANNER_ID"]; ok {
		b.AdMob.BannerID = v
	}
	if v, ok := flat["ADMOB_INTERSTITIAL_ID"]; ok {
		b.AdMob.InterstitialID = v
	}
	if v, ok := flat["ADMOB_REWARDED_ID"]; ok {
		b.AdMob.RewardedID = v
	}
	if v, ok := flat["FEATURE_ADS_ENABLED"]; ok {
		b.Features.AdsEnabled = parseBool(v, b.Features.AdsEnabled)
	}
	if v, ok := flat["FEATURE_VIP_ENABLED"]; ok {
		b.Features.VIPEnabled = parseBool(v, b.Features.VIPEnabled)
	}
	if v, ok := flat["FEATURE_COINS_ENABLED"]; ok {
		b.Features.CoinsEnabled = parseBool(v, b.Features.CoinsEnabled)
	}
	if v, ok := flat["FEATURE_REFERRALS_ENABLED"]; ok {
		b.Features.ReferralsEnabled = parseBool(v, b.Features.ReferralsEnabled)
	}
	if v, ok := flat["MIN_APP_VERSION"]; ok {
		b.App.MinVersion = v
	}
	if v, ok := flat["LATEST_APP_VERSION"]; ok {
		b.App.LatestVersion = v
	}
	if v, ok := flat["MAINTENANCE_MODE"]; ok {
		b.App.MaintenanceMode = parseBool(v, b.App.MaintenanceMode)
	}
	if v, ok := flat["ENFORCE_HTTPS"]; ok {
		b.Security.EnforceHTTPS = parseBool(v, b.Security.EnforceHTTPS)
	}
	if v, ok := flat["CERTIFICATE_PINNING"]; ok {
		b.Security.CertificatePinning = parseBool(v, b.Security.CertificatePinning)
	}
	if v, ok := flat["ALLOW_ROOTED_DEVICES"]; ok {
		b.Security.AllowRooted = parseBool(v, b.Security.AllowRooted)
	}
}

// flatten produces the canonical map form of a bundle for checksumming.
func flatten(b models.ConfigBundle) map[string]string {
	return map[string]string{
		"SUPABASE_URL":              b.Supabase.URL,
		"SUPABASE_ANON_KEY":         b.Supabase.AnonKey,
		"ADMOB_APP_ID":              b.AdMob.AppID,
		"ADMOB_BANNER_ID":           b.AdMob.BannerID,
		"ADMOB_INTERSTITIAL_ID":     b.AdMob.InterstitialID,
		"ADMOB_REWARDED_ID":         b.AdMob.RewardedID,
		"FEATURE_ADS_ENABLED":       strconv.FormatBool(b.Features.AdsEnabled),
		"FEATURE_VIP_ENABLED":       strconv.FormatBool(b.Features.VIPEnabled),
		"FEATURE_COINS_ENABLED":     strconv.FormatBool(b.Features.CoinsEnabled),
		"FEATURE_REFERRALS_ENABLED": strconv.FormatBool(b.Features.ReferralsEnabled),
		"MIN_APP_VERSION":           b.App.MinVersion,
		"LATEST_APP_VERSION":        b.App.LatestVersion,
		"MAINTENANCE_MODE":          strconv.FormatBool(b.App.MaintenanceMode),
		"ENFORCE_HTTPS":             strconv.FormatBool(b.Security.EnforceHTTPS),
		"CERTIFICATE_PINNING":       strconv.FormatBool(b.Security.CertificatePinning),
		"ALLOW_ROOTED_DEVICES":      strconv.FormatBool(b.Security.AllowRooted),
	}
}

func parseBool(s string, fallback bool) bool {
	if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
		return b
	}
	return fallback
}
