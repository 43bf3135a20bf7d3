// Package override holds admin-supplied runtime overrides for backend
// credentials, with optional file persistence for restart recovery.
package override

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// File keys recognized in the persisted override file.
const (
	KeySupabaseURL     = "MOBILE_SUPABASE_URL"
	KeySupabaseAnonKey = "MOBILE_SUPABASE_ANON_KEY"
	KeyAdMobAppID      = "ADMOB_APP_ID"
	KeyAdMobBanner     = "ADMOB_BANNER_ID"
	KeyAdMobInterstit  = "ADMOB_INTERSTITIAL_ID"
	KeyAdMobRewarded   = "ADMOB_REWARDED_ID"
)

// Values is the full set of persistable override values.
type Values struct {
	SupabaseURL         string
	SupabaseAnonKey     string
	AdMobAppID          string
	AdMobBannerID       string
	AdMobInterstitialID string
	AdMobRewardedID     string
}

// Store is the process-wide runtime override state. Only the admin env-sync
// operation mutates it; it lives for the process lifetime with no expiry.
type Store struct {
	mu     sync.Mutex
	values Values
	path   string
}

// NewStore creates a Store persisting to the given file path. An empty path
// disables persistence.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Credentials returns the override Supabase URL/key pair. ok is true only
// when both values are present.
func (s *Store) Credentials() (url, anonKey string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.values.SupabaseURL == "" || s.values.SupabaseAnonKey == "" {
		return "", "", false
	}
	return s.values.SupabaseURL, s.values.SupabaseAnonKey, true
}

// Snapshot returns a copy of all current override values.
func (s *Store) Snapshot() Values {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.values
}

// Apply merges the non-empty fields of v into the store and persists the
// result when a file path is configured. The merge is committed only after
// persistence succeeds; a failed write leaves the store unchanged.
func (s *Store) Apply(v Values) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.values
	merge(&next.SupabaseURL, v.SupabaseURL)
	merge(&next.SupabaseAnonKey, v.SupabaseAnonKey)
	merge(&next.AdMobAppID, v.AdMobAppID)
	merge(&next.AdMobBannerID, v.AdMobBannerID)
	merge(&next.AdMobInterstitialID, v.AdMobInterstitialID)
	merge(&next.AdMobRewardedID, v.AdMobRewardedID)

	if s.path != "" {
		if err := writeFile(s.path, next); err != nil {
			return err
		}
	}
	s.values = next
	return nil
}

// Load reads the persisted override file into the store. A missing file is
// not an error.
func (s *Store) Load() error {
	if s.path == "" {
		return nil
	}

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("opening override file: %w", err)
	}
	defer f.Close()

	var v Values
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		switch strings.TrimSpace(key) {
		case KeySupabaseURL:
			v.SupabaseURL = strings.TrimSpace(value)
		case KeySupabaseAnonKey:
			v.SupabaseAnonKey = strings.TrimSpace(value)
		case KeyAdMobAppID:
			v.AdMobAppID = strings.TrimSpace(value)
		case KeyAdMobBanner:
			v.AdMobBannerID = strings.TrimSpace(value)
		case KeyAdMobInterstit:
			v.AdMobInterstitialID = strings.TrimSpace(value)
		case KeyAdMobRewarded:
			v.AdMobRewardedID = strings.TrimSpace(value)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading override file: %w", err)
	}

	s.mu.Lock()
	s.values = v
	s.mu.Unlock()
	return nil
}

// writeFile persists values as KEY=VALUE lines via temp file and rename so
// a crash mid-write never leaves a truncated file.
func writeFile(path string, v Values) error {
	var b strings.Builder
	writeLine(&b, KeySupabaseURL, v.SupabaseURL)
	writeLine(&b, KeySupabaseAnonKey, v.SupabaseAnonKey)
	writeLine(&b, KeyAdMobAppID, v.AdMobAppID)
	writeLine(&b, KeyAdMobBanner, v.AdMobBannerID)
	writeLine(&b, KeyAdMobInterstit, v.AdMobInterstitialID)
	writeLine(&b, KeyAdMobRewarded, v.AdMobRewardedID)

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".overrides-*")
	if err != nil {
		return fmt.Errorf("creating temp override file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(b.String()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing override file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing override file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing override file: %w", err)
	}
	return nil
}

func writeLine(b *strings.Builder, key, value string) {
	if value == "" {
		return
	}
	b.WriteString(key)
	b.WriteByte('=')
	b.WriteString(value)
	b.WriteByte('\n')
}

func merge(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}
