package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 24, cfg.CancellationWindowHours)
	assert.Equal(t, 20, cfg.MaxWaitlistSize)
	assert.Equal(t, 3, cfg.MaxBookingsPerDay)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CANCELLATION_WINDOW_HOURS", "12")
	t.Setenv("MAX_WAITLIST_SIZE", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 12, cfg.CancellationWindowHours)
	assert.Equal(t, 5, cfg.MaxWaitlistSize)
}

func TestLoad_BadIntFallsBack(t *testing.T) {
	t.Setenv("MAX_BOOKINGS_PER_DAY", "many")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.MaxBookingsPerDay)
}
