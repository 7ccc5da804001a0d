package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vertel/af-booking-service/internal/config"
)

func withTimeZone(t *testing.T, name string) {
	t.Helper()

	loc, err := time.LoadLocation(name)
	require.NoError(t, err)

	prev := config.TimeZone
	config.TimeZone = loc
	t.Cleanup(func() { config.TimeZone = prev })
}

func TestParseWireDateTime(t *testing.T) {
	// Литеральный Z в конце не делает строку UTC:
	// интеграции присылают наивное локальное время
	withTimeZone(t, "Europe/Stockholm")

	parsed, err := ParseWireDateTime("2026-09-01T09:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 1, 7, 0, 0, 0, time.UTC), parsed)

	// Зимой смещение другое
	parsed, err = ParseWireDateTime("2026-01-15T09:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC), parsed)

	_, err = ParseWireDateTime("2026-09-01 09:00:00")
	assert.Error(t, err)
}

func TestFormatWireDateTime(t *testing.T) {
	withTimeZone(t, "Europe/Stockholm")

	stockholm := time.Date(2026, 9, 1, 9, 0, 0, 0, config.TimeZone)
	assert.Equal(t, "2026-09-01T07:00:00Z", FormatWireDateTime(stockholm))
}

func TestStartCurrentDay(t *testing.T) {
	moment := time.Date(2026, 9, 1, 15, 42, 7, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), StartCurrentDay(moment))
}

func TestStartNextDay(t *testing.T) {
	moment := time.Date(2026, 9, 30, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), StartNextDay(moment))
}
