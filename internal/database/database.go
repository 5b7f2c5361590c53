// Package database opens the configured backing store, retrying the
// initial connection while the database container is still starting.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/lexcase/caseflow/internal/config"
	"github.com/lexcase/caseflow/internal/repository"
	"github.com/lexcase/caseflow/internal/repository/mongodb"
)

// maxConnectWait bounds how long startup keeps retrying the database
const maxConnectWait = time.Minute

// Stores bundles the repositories built on top of one backend
type Stores struct {
	Notifications repository.NotificationStore
	Cases         repository.CaseStore
	Users         repository.UserStore

	close func(ctx context.Context) error
}

// Close releases the underlying connection
func (s *Stores) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// Open connects to the backend selected by cfg.Driver and builds the stores
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Stores, error) {
	switch cfg.Driver {
	case "mongo":
		return openMongo(ctx, cfg, logger)
	default:
		return openPostgres(ctx, cfg, logger)
	}
}

func openPostgres(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Stores, error) {
	db, err := ConnectPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := repository.Migrate(ctx, db, logger); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	return &Stores{
		Notifications: repository.NewNotificationRepository(db, logger),
		Cases:         repository.NewCaseRepository(db, logger),
		Users:         repository.NewUserRepository(db, logger),
		close:         func(context.Context) error { return db.Close() },
	}, nil
}

func openMongo(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Stores, error) {
	client, err := ConnectMongo(ctx, cfg.Mongo, logger)
	if err != nil {
		return nil, err
	}

	db := client.Database(cfg.Mongo.Database)
	notifications := mongodb.NewNotificationRepository(db, logger)

	if cfg.AutoMigrate {
		if err := notifications.EnsureIndexes(ctx); err != nil {
			client.Disconnect(ctx)
			return nil, err
		}
	}

	return &Stores{
		Notifications: notifications,
		Cases:         mongodb.NewCaseRepository(db, logger),
		Users:         mongodb.NewUserRepository(db, logger),
		close:         client.Disconnect,
	}, nil
}

// PostgresDSN builds the key/value connection string for pgx
func PostgresDSN(cfg config.PostgresConfig) string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.DBName,
		cfg.SSLMode,
	)
}

// ConnectPostgres opens a pgx-backed sqlx pool, retrying with exponential
// backoff until the server answers or maxConnectWait elapses
func ConnectPostgres(ctx context.Context, cfg config.PostgresConfig, logger *zap.Logger) (*sqlx.DB, error) {
	var db *sqlx.DB

	operation := func() error {
		conn, err := sqlx.ConnectContext(ctx, "pgx", PostgresDSN(cfg))
		if err != nil {
			return err
		}
		db = conn
		return nil
	}

	if err := retry(ctx, "postgres", operation, logger); err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	logger.Info("Connected to PostgreSQL", zap.String("host", cfg.Host), zap.String("database", cfg.DBName))
	return db, nil
}

// ConnectMongo connects and pings MongoDB with the same retry policy
func ConnectMongo(ctx context.Context, cfg config.MongoConfig, logger *zap.Logger) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout))
	if err != nil {
		return nil, fmt.Errorf("create mongo client: %w", err)
	}

	operation := func() error {
		pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
		return client.Ping(pingCtx, nil)
	}

	if err := retry(ctx, "mongo", operation, logger); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	logger.Info("Connected to MongoDB", zap.String("database", cfg.Database))
	return client, nil
}

func retry(ctx context.Context, name string, operation backoff.Operation, logger *zap.Logger) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxElapsedTime = maxConnectWait

	notify := func(err error, wait time.Duration) {
		logger.Warn("Database not ready, retrying",
			zap.String("database", name),
			zap.Duration("backoff", wait),
			zap.Error(err))
	}

	return backoff.RetryNotify(operation, backoff.WithContext(policy, ctx), notify)
}
