package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/Flaque/filet"
	"github.com/UnknownOlympus/itinera/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const missingEnvFile = "testdata/does-not-exist.env"

func Test_MustLoadFromEnv(t *testing.T) {
	t.Setenv("ITINERA_ENV", "local")
	t.Setenv("ITINERA_PROJECT_ID", "trip-2025")
	t.Setenv("ITINERA_STORE_TYPE", "mongo")
	t.Setenv("ITINERA_PLACES_KEY", "testAPIKey")
	t.Setenv("ITINERA_TIMEZONE", "Europe/Rome")
	t.Setenv("ITINERA_ALLOWED_ORIGINS", "http://localhost:5173, https://trip.example ,")
	t.Setenv("DB_HOST", "testHost")
	t.Setenv("DB_PORT", "12345")
	t.Setenv("DB_USERNAME", "admin")
	t.Setenv("DB_PASSWORD", "adminpass")
	t.Setenv("DB_NAME", "testName")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")

	cfg := config.MustLoad(missingEnvFile)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "trip-2025", cfg.ProjectID)
	assert.Equal(t, "mongo", cfg.Store.Type)
	assert.Equal(t, "testHost", cfg.Store.Database.Host)
	assert.Equal(t, "12345", cfg.Store.Database.Port)
	assert.Equal(t, "admin", cfg.Store.Database.User)
	assert.Equal(t, "adminpass", cfg.Store.Database.Password)
	assert.Equal(t, "testName", cfg.Store.Database.Name)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Store.MongoURI)
	assert.Equal(t, "testAPIKey", cfg.Places.APIKey)
	assert.Equal(t, "Europe/Rome", cfg.Timezone.String())
	assert.Equal(t, []string{"http://localhost:5173", "https://trip.example"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, "localhost:6379", cfg.Cache.Addr)
	assert.Equal(t, 2, cfg.Cache.DB)
}

func Test_MustLoadDefaults(t *testing.T) {
	t.Setenv("ITINERA_PROJECT_ID", "trip-2025")

	cfg := config.MustLoad(missingEnvFile)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, 8081, cfg.HealthPort)
	assert.Equal(t, "places", cfg.Collection)
	assert.Equal(t, "postgres", cfg.Store.Type)
	assert.Equal(t, "5432", cfg.Store.Database.Port)
	assert.Equal(t, "google", cfg.Places.Provider)
	assert.Equal(t, 10, cfg.Places.RateLimit)
	assert.Equal(t, "en", cfg.Places.Language)
	assert.Equal(t, "en", cfg.Locale)
	assert.Equal(t, time.Local, cfg.Timezone)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Empty(t, cfg.Cache.Addr)
	assert.Equal(t, 30*time.Second, cfg.StartupTimeout)
	assert.Equal(t, 50*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, []string{"*"}, cfg.HTTP.AllowedOrigins)
	assert.InDelta(t, 5.0, cfg.HTTP.ClientRateLimit, 0)
}

func Test_MustLoadFromFile(t *testing.T) {
	defer filet.CleanUp(t)
	t.Setenv("ITINERA_PROJECT_ID", "trip-2025")
	t.Setenv("ITINERA_ENV", "development")
	t.Cleanup(func() {
		_ = os.Unsetenv("ITINERA_PLACES_PROVIDER")
	})

	file := filet.TmpFile(t, "", "ITINERA_PLACES_PROVIDER=nominatim\nITINERA_ENV=local\n")

	cfg := config.MustLoad(file.Name())

	assert.Equal(t, "nominatim", cfg.Places.Provider)
	// Variables already set win over the file.
	assert.Equal(t, "development", cfg.Env)
}

func TestMustLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		message string
	}{
		{"http port", "ITINERA_HTTP_PORT", "failed to parse port for http server from configuration"},
		{"health port", "ITINERA_HEALTH_PORT", "failed to parse port for monitoring server from configuration"},
		{
			"places rate limit",
			"ITINERA_PLACES_RATE_LIMIT",
			"failed to parse places rate limit from configuration, must be an integer types",
		},
		{"client rate limit", "ITINERA_CLIENT_RATE_LIMIT", "failed to parse client rate limit from configuration"},
		{"redis db", "REDIS_DB", "failed to parse redis database from configuration, must be an integer types"},
		{"cache ttl", "ITINERA_CACHE_TTL", "failed to parse cache ttl from configuration"},
		{"startup timeout", "ITINERA_STARTUP_TIMEOUT", "failed to parse startup timeout from configuration"},
		{"poll interval", "ITINERA_POLL_INTERVAL", "failed to parse poll interval from configuration"},
		{"timezone", "ITINERA_TIMEZONE", "failed to load timezone from configuration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ITINERA_PROJECT_ID", "trip-2025")
			t.Setenv(tt.key, "error_value")

			assert.PanicsWithValue(t, tt.message, func() {
				config.MustLoad(missingEnvFile)
			})
		})
	}
}

func TestMustLoad_ProjectRequired(t *testing.T) {
	t.Setenv("ITINERA_PROJECT_ID", "")

	require.PanicsWithValue(t, "project identifier is required, set ITINERA_PROJECT_ID", func() {
		config.MustLoad(missingEnvFile)
	})
}
