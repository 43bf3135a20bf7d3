package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/models"
)

func testBundle(url string) models.ConfigBundle {
	return models.ConfigBundle{
		Supabase: models.SupabaseBundle{URL: url, AnonKey: "anon"},
		Metadata: models.BundleMetadata{Source: models.SourceProcess},
	}
}

func TestGetMissOnEmptyCache(t *testing.T) {
	c := New(5 * time.Minute)

	_, ok := c.Get(models.EnvProduction)
	assert.False(t, ok)
}

func TestPutThenGetReturnsSamePayload(t *testing.T) {
	c := New(5 * time.Minute)
	bundle := testBundle("https://x.example")

	c.Put(models.EnvStaging, bundle)

	got, ok := c.Get(models.EnvStaging)
	require.True(t, ok)
	assert.Equal(t, bundle, got)

	// Other environments are unaffected.
	_, ok = c.Get(models.EnvProduction)
	assert.False(t, ok)
}

func TestGetHonorsTTLBoundary(t *testing.T) {
	c := New(300 * time.Second)
	base := time.Now()
	current := base
	c.now = func() time.Time { return current }

	c.Put(models.EnvProduction, testBundle("https://x.example"))

	current = base.Add(299 * time.Second)
	_, ok := c.Get(models.EnvProduction)
	assert.True(t, ok, "entry at TTL-1s must be a hit")

	c.Put(models.EnvProduction, testBundle("https://x.example"))
	current = base.Add(301 * time.Second)
	_, ok = c.Get(models.EnvProduction)
	assert.False(t, ok, "entry past TTL must be a miss")
}

func TestExpiredEntryIsRemovedLazily(t *testing.T) {
	c := New(time.Second)
	base := time.Now()
	current := base
	c.now = func() time.Time { return current }

	c.Put(models.EnvProduction, testBundle("https://x.example"))
	assert.Equal(t, 1, c.Size())

	current = base.Add(2 * time.Second)
	_, ok := c.Get(models.EnvProduction)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Size())
}

func TestInvalidateContaining(t *testing.T) {
	c := New(5 * time.Minute)
	c.Put(models.EnvProduction, testBundle("a"))
	c.Put(models.EnvStaging, testBundle("b"))
	c.Put(models.EnvDevelopment, testBundle("c"))

	n := c.InvalidateContaining("staging")
	assert.Equal(t, 1, n)

	_, ok := c.Get(models.EnvStaging)
	assert.False(t, ok)
	_, ok = c.Get(models.EnvProduction)
	assert.True(t, ok)
}

func TestClearAll(t *testing.T) {
	c := New(5 * time.Minute)
	c.Put(models.EnvProduction, testBundle("a"))
	c.Put(models.EnvStaging, testBundle("b"))

	assert.Equal(t, 2, c.ClearAll())
	assert.Equal(t, 0, c.Size())
}

func TestPutReplacesEntry(t *testing.T) {
	c := New(5 * time.Minute)
	c.Put(models.EnvProduction, testBundle("old"))
	c.Put(models.EnvProduction, testBundle("new"))

	got, ok := c.Get(models.EnvProduction)
	require.True(t, ok)
	assert.Equal(t, "new", got.Supabase.URL)
}
