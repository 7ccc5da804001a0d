package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, EnvLocal, cfg.App.Env)
	assert.Equal(t, "Europe/Stockholm", cfg.App.Timezone)
	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, 30, cfg.Booking.SlotDurationMinutes)
	assert.Equal(t, 300, cfg.Booking.ReservationTimeoutSeconds)
	assert.Equal(t, "sunea", cfg.Booking.DefaultEmployee)
	assert.Equal(t, "0248", cfg.Booking.DefaultOfficeCode)
	assert.Equal(t, "af-booking.db", cfg.Database.Path)
	assert.Equal(t, "af-booking", cfg.RabbitMQ.Exchange)
	assert.False(t, cfg.RabbitMQ.Enabled)
	assert.False(t, cfg.Cache.Enabled)

	assert.Equal(t, 30*time.Minute, cfg.SlotDuration())
	assert.Equal(t, 5*time.Minute, cfg.ReservationTimeout())
	assert.True(t, cfg.IsLocal())
	assert.False(t, cfg.IsNotLocal())

	// Референсная таймзона выставляется глобально
	assert.Equal(t, "Europe/Stockholm", TimeZone.String())
}

func TestNewConfigOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "Production")
	t.Setenv("APP_TIMEZONE", "UTC")
	t.Setenv("BOOKING_SLOT_DURATION_MINUTES", "15")
	t.Setenv("BOOKING_RESERVATION_TIMEOUT_SECONDS", "60")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, EnvProduction, cfg.App.Env)
	assert.True(t, cfg.IsNotLocal())
	assert.Equal(t, 15*time.Minute, cfg.SlotDuration())
	assert.Equal(t, time.Minute, cfg.ReservationTimeout())
	assert.Equal(t, time.UTC, TimeZone)
}

func TestNewConfigBasicClients(t *testing.T) {
	t.Setenv("AUTH_BASIC_CLIENTS", "first:secret,second:other,broken")

	cfg, err := NewConfig()
	require.NoError(t, err)

	// Пары без двоеточия молча пропускаются
	require.Len(t, cfg.Auth.BasicClients, 2)
	assert.Equal(t, ConfigBasicClient{Username: "first", Password: "secret"}, cfg.Auth.BasicClients[0])
	assert.Equal(t, ConfigBasicClient{Username: "second", Password: "other"}, cfg.Auth.BasicClients[1])
}

func TestNewConfigInvalidTimezone(t *testing.T) {
	t.Setenv("APP_TIMEZONE", "Nowhere/Nope")

	_, err := NewConfig()
	assert.Error(t, err)
}
