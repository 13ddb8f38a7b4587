package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Address())
	assert.Equal(t, 6, cfg.OperatingHourStart)
	assert.Equal(t, 12, cfg.OperatingHourEnd)
	assert.Equal(t, 8, cfg.TopProductsLimit)
	assert.Equal(t, 10*time.Minute, cfg.IdempotencyTTL)
	assert.Equal(t, "🥤", cfg.CategoryEmoji["Bebidas"])
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("OPERATING_HOUR_START", "7")
	t.Setenv("OPERATING_HOUR_END", "19")
	t.Setenv("CATEGORY_EMOJI", "Café:☕")
	t.Setenv("LOG_FORMAT", "pretty")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8081", cfg.Address())
	assert.Equal(t, 19, cfg.OperatingHourEnd)
	assert.Equal(t, map[string]string{"Café": "☕"}, cfg.CategoryEmoji)
	assert.Equal(t, "pretty", cfg.LogFormat)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"OPERATING_HOUR_END": "5",
		"LOG_FORMAT":         "xml",
		"TOP_PRODUCTS_LIMIT": "0",
		"BUSINESS_TIMEZONE":  "Mars/Olympus",
		"REDIS_DB":           "uno",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLocation(t *testing.T) {
	cfg := Config{BusinessTimezone: "America/Bogota"}
	loc := cfg.Location()
	_, offset := time.Date(2024, time.March, 1, 12, 0, 0, 0, loc).Zone()
	assert.Equal(t, -5*60*60, offset)

	assert.Equal(t, time.UTC, Config{BusinessTimezone: "nowhere"}.Location())
}
