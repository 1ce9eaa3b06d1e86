package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Load must not depend on a .env file in the package directory; tests only
// use t.Setenv so they cannot run in parallel.

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{
		"WIKI_API_URL", "OUTPUT_FORMAT", "UNIQUE_CATEGORIES", "HTTP_TIMEOUT",
		"CARDS_INCLUDE_DROPS", "API_LIMIT", "DATABASE_URL", "REDIS_URL",
	} {
		t.Setenv(k, "")
	}

	cfg := Load()
	require.Equal(t, "https://pathofexile.gamepedia.com/api.php", cfg.WikiAPIURL)
	require.Equal(t, FormatAHK, cfg.OutputFormat)
	require.Equal(t, DefaultUniqueCategories, cfg.UniqueCategories)
	require.Len(t, cfg.UniqueCategories, 29)
	require.Equal(t, 60*time.Second, cfg.HTTPTimeout)
	require.True(t, cfg.CardsIncludeDrops)
	require.Equal(t, 500, cfg.APILimit)
	require.Empty(t, cfg.DatabaseURL)
	require.Empty(t, cfg.RedisURL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("UNIQUE_CATEGORIES", " Belts , Rings,,")
	t.Setenv("HTTP_TIMEOUT", "5s")
	t.Setenv("CARDS_INCLUDE_DROPS", "false")
	t.Setenv("OUTPUT_FORMAT", FormatRecords)
	t.Setenv("API_LIMIT", "50")

	cfg := Load()
	require.Equal(t, []string{"Belts", "Rings"}, cfg.UniqueCategories)
	require.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	require.False(t, cfg.CardsIncludeDrops)
	require.Equal(t, FormatRecords, cfg.OutputFormat)
	require.Equal(t, 50, cfg.APILimit)
}

func TestLoadMalformedValuesFallBack(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "soon")
	t.Setenv("API_LIMIT", "-3")
	t.Setenv("CARDS_INCLUDE_DROPS", "maybe")
	t.Setenv("CACHE_TTL", "0s")

	cfg := Load()
	require.Equal(t, 60*time.Second, cfg.HTTPTimeout)
	require.Equal(t, 500, cfg.APILimit)
	require.True(t, cfg.CardsIncludeDrops)
	require.Equal(t, time.Hour, cfg.CacheTTL)
}
