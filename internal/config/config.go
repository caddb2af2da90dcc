package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the configuration settings for the itinerary service.
//
// Fields:
// - Env: The current environment (e.g., local, development, production).
// - HTTPPort: The port of the itinerary API.
// - HealthPort: The port of the monitoring server.
// - ProjectID: The store project every collection belongs to.
// - Collection: The collection holding the itinerary places.
// - Store: Which document store backend to use and how to reach it.
// - Places: The places provider settings.
// - Cache: Optional redis cache for place details.
// - HTTP: CORS and per-client limits of the API.
type Config struct {
	Env            string         // Env is the current environment: local, development, production.
	HTTPPort       int            // HTTPPort is the itinerary API port.
	HealthPort     int            // HealthPort is the monitoring server port.
	ProjectID      string         // ProjectID namespaces the store collections.
	Collection     string         // Collection holds the itinerary places.
	Locale         string         // Locale of month and weekday labels.
	Timezone       *time.Location // Timezone schedules are grouped and shown in.
	StartupTimeout time.Duration  // StartupTimeout bounds the wait for dependencies.
	PollInterval   time.Duration  // PollInterval between readiness checks.
	Store          StoreConfig
	Places         PlacesConfig
	Cache          CacheConfig
	HTTP           HTTPConfig
}

// StoreConfig selects the document store backend.
type StoreConfig struct {
	Type     string         // Type is postgres, mongo or memory.
	Database PostgresConfig // Database holds the postgres database configuration.
	MongoURI string         // MongoURI is the MongoDB connection string.
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string // Host is the database server address.
	Port     string // Port is the database server port.
	User     string // User is the database user.
	Password string // Password is the database user's password.
	Name     string // Name is the name of the database.
}

// PlacesConfig configures the places provider.
type PlacesConfig struct {
	Provider  string // Provider is google or nominatim.
	APIKey    string // APIKey is required for google.
	RateLimit int    // RateLimit in requests per second.
	Language  string // Language of provider results.
}

// CacheConfig configures the redis place details cache. An empty Addr disables it.
type CacheConfig struct {
	Addr string
	DB   int
	TTL  time.Duration
}

// HTTPConfig configures the API surface.
type HTTPConfig struct {
	AllowedOrigins  []string
	ClientRateLimit float64 // ClientRateLimit in requests per second per client.
}

var defaults = map[string]string{
	"ITINERA_ENV":               "production",
	"ITINERA_HTTP_PORT":         "8080",
	"ITINERA_HEALTH_PORT":       "8081",
	"ITINERA_COLLECTION":        "places",
	"ITINERA_STORE_TYPE":        "postgres",
	"ITINERA_PLACES_PROVIDER":   "google",
	"ITINERA_PLACES_RATE_LIMIT": "10",
	"ITINERA_PLACES_LANGUAGE":   "en",
	"ITINERA_LOCALE":            "en",
	"ITINERA_TIMEZONE":          "Local",
	"ITINERA_CACHE_TTL":         "24h",
	"ITINERA_STARTUP_TIMEOUT":   "30s",
	"ITINERA_POLL_INTERVAL":     "50ms",
	"ITINERA_ALLOWED_ORIGINS":   "*",
	"ITINERA_CLIENT_RATE_LIMIT": "5",
	"DB_PORT":                   "5432",
	"REDIS_DB":                  "0",
}

// MustLoad reads the configuration from the environment. Variables found in
// envFile (.env when empty) are loaded first without overriding the ones
// already set; a missing file is ignored. Malformed values panic.
func MustLoad(envFile string) *Config {
	if envFile == "" {
		envFile = ".env"
	}
	_ = godotenv.Load(envFile)

	env := viper.New()
	env.AutomaticEnv()
	for key, value := range defaults {
		env.SetDefault(key, value)
	}

	projectID := env.GetString("ITINERA_PROJECT_ID")
	if projectID == "" {
		panic("project identifier is required, set ITINERA_PROJECT_ID")
	}

	httpPort, err := strconv.Atoi(env.GetString("ITINERA_HTTP_PORT"))
	if err != nil {
		panic("failed to parse port for http server from configuration")
	}

	healthPort, err := strconv.Atoi(env.GetString("ITINERA_HEALTH_PORT"))
	if err != nil {
		panic("failed to parse port for monitoring server from configuration")
	}

	rateLimit, err := strconv.Atoi(env.GetString("ITINERA_PLACES_RATE_LIMIT"))
	if err != nil {
		panic("failed to parse places rate limit from configuration, must be an integer types")
	}

	clientRateLimit, err := strconv.ParseFloat(env.GetString("ITINERA_CLIENT_RATE_LIMIT"), 64)
	if err != nil {
		panic("failed to parse client rate limit from configuration")
	}

	redisDB, err := strconv.Atoi(env.GetString("REDIS_DB"))
	if err != nil {
		panic("failed to parse redis database from configuration, must be an integer types")
	}

	cacheTTL, err := time.ParseDuration(env.GetString("ITINERA_CACHE_TTL"))
	if err != nil {
		panic("failed to parse cache ttl from configuration")
	}

	startupTimeout, err := time.ParseDuration(env.GetString("ITINERA_STARTUP_TIMEOUT"))
	if err != nil {
		panic("failed to parse startup timeout from configuration")
	}

	pollInterval, err := time.ParseDuration(env.GetString("ITINERA_POLL_INTERVAL"))
	if err != nil {
		panic("failed to parse poll interval from configuration")
	}

	timezone, err := time.LoadLocation(env.GetString("ITINERA_TIMEZONE"))
	if err != nil {
		panic("failed to load timezone from configuration")
	}

	return &Config{
		Env:            env.GetString("ITINERA_ENV"),
		HTTPPort:       httpPort,
		HealthPort:     healthPort,
		ProjectID:      projectID,
		Collection:     env.GetString("ITINERA_COLLECTION"),
		Locale:         env.GetString("ITINERA_LOCALE"),
		Timezone:       timezone,
		StartupTimeout: startupTimeout,
		PollInterval:   pollInterval,
		Store: StoreConfig{
			Type: env.GetString("ITINERA_STORE_TYPE"),
			Database: PostgresConfig{
				Host:     env.GetString("DB_HOST"),
				Port:     env.GetString("DB_PORT"),
				User:     env.GetString("DB_USERNAME"),
				Password: env.GetString("DB_PASSWORD"),
				Name:     env.GetString("DB_NAME"),
			},
			MongoURI: env.GetString("MONGO_URI"),
		},
		Places: PlacesConfig{
			Provider:  env.GetString("ITINERA_PLACES_PROVIDER"),
			APIKey:    env.GetString("ITINERA_PLACES_KEY"),
			RateLimit: rateLimit,
			Language:  env.GetString("ITINERA_PLACES_LANGUAGE"),
		},
		Cache: CacheConfig{
			Addr: env.GetString("REDIS_ADDR"),
			DB:   redisDB,
			TTL:  cacheTTL,
		},
		HTTP: HTTPConfig{
			AllowedOrigins:  splitList(env.GetString("ITINERA_ALLOWED_ORIGINS")),
			ClientRateLimit: clientRateLimit,
		},
	}
}

func splitList(value string) []string {
	items := make([]string, 0)
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	return items
}
