package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/itinera/internal/readiness"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Type selects the document store backend.
type Type string

const (
	// TypePostgres keeps documents as JSONB rows in PostgreSQL.
	TypePostgres Type = "postgres"
	// TypeMongo keeps documents in MongoDB collections.
	TypeMongo Type = "mongo"
	// TypeMemory keeps documents in process memory; nothing survives a restart.
	TypeMemory Type = "memory"
)

// PostgresConfig holds the connection settings of the postgres backend.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// Config holds configuration for opening a document store.
type Config struct {
	Type           Type           // Type of backend to open
	Project        string         // Project namespaces all collections
	Postgres       PostgresConfig // Postgres connection settings (postgres backend)
	MongoURI       string         // MongoDB connection string (mongo backend)
	PollInterval   time.Duration  // PollInterval between readiness checks
	StartupTimeout time.Duration  // StartupTimeout bounds the wait for the backend
	Logger         *slog.Logger
}

// Opened is a ready store together with the function releasing its connections.
type Opened struct {
	Store Store
	Close func()
	// Migrate prepares the backend schema. It is a no-op for schemaless backends.
	Migrate func(ctx context.Context) error
}

// Open connects the configured backend and waits until it answers.
//
// Supported backend types:
// - "postgres": PostgreSQL with JSONB documents and LISTEN/NOTIFY change feed
// - "mongo": MongoDB, change streams require a replica set
// - "memory": in-process map, for local development
func Open(ctx context.Context, cfg Config) (*Opened, error) {
	if cfg.Project == "" {
		return nil, fmt.Errorf("project identifier is required for %s store", cfg.Type)
	}

	switch cfg.Type {
	case TypePostgres:
		return openPostgres(ctx, cfg)
	case TypeMongo:
		return openMongo(ctx, cfg)
	case TypeMemory:
		return &Opened{
			Store:   NewMemoryStore(cfg.Project),
			Close:   func() {},
			Migrate: func(context.Context) error { return nil },
		}, nil
	default:
		return nil, fmt.Errorf("unsupported store type: %s", cfg.Type)
	}
}

func openPostgres(ctx context.Context, cfg Config) (*Opened, error) {
	pool, err := NewDatabase(cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User,
		cfg.Postgres.Password, cfg.Postgres.Name)
	if err != nil {
		return nil, err
	}

	if err = readiness.WaitTimeout(ctx, cfg.PollInterval, cfg.StartupTimeout, pool.Ping); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach postgres: %w", err)
	}
	cfg.Logger.InfoContext(ctx, "Connected to postgres", "host", cfg.Postgres.Host, "database", cfg.Postgres.Name)

	pgStore := NewPostgresStore(pool, pool, cfg.Project, cfg.Logger)

	return &Opened{Store: pgStore, Close: pool.Close, Migrate: pgStore.Migrate}, nil
}

func openMongo(ctx context.Context, cfg Config) (*Opened, error) {
	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("mongo URI is required for %s store", cfg.Type)
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	ping := func(ctx context.Context) error { return client.Ping(ctx, nil) }
	if err = readiness.WaitTimeout(ctx, cfg.PollInterval, cfg.StartupTimeout, ping); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to reach mongo: %w", err)
	}
	cfg.Logger.InfoContext(ctx, "Connected to mongo", "database", cfg.Project)

	closeClient := func() {
		if errDisconnect := client.Disconnect(context.Background()); errDisconnect != nil {
			cfg.Logger.Error("Failed to disconnect from mongo", "error", errDisconnect)
		}
	}

	return &Opened{
		Store:   NewMongoStore(client.Database(cfg.Project), cfg.Logger),
		Close:   closeClient,
		Migrate: func(context.Context) error { return nil },
	}, nil
}
