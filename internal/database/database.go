package database

import (
	"database/sql"
	"fmt"
	"time"

	"ozon-calc/internal/config"
	"ozon-calc/internal/logger"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/lib/pq"
)

// DB оборачивает подключение к PostgreSQL.
type DB struct {
	*sql.DB
}

// Максимальное время ожидания готовности базы (переопределяется в тестах).
var maxConnectElapsedTime = 30 * time.Second

// Connect подключается к PostgreSQL с экспоненциальными повторами.
func Connect(cfg *config.DatabaseConfig, log *logger.Logger) (*DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.MaxElapsedTime = maxConnectElapsedTime
	retryPolicy.MaxInterval = 5 * time.Second

	err = backoff.RetryNotify(
		func() error {
			return db.Ping()
		},
		retryPolicy,
		func(err error, next time.Duration) {
			log.WithError(err).WithField("next_attempt_in", next.String()).Warn("PostgreSQL not ready, retrying")
		},
	)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	log.Info("Successfully connected to PostgreSQL")
	return &DB{DB: db}, nil
}

// Health проверяет доступность базы данных
func (db *DB) Health() error {
	if db == nil || db.DB == nil {
		return fmt.Errorf("database is not initialized")
	}
	return db.Ping()
}

// Close закрывает подключение к базе данных
func (db *DB) Close() error {
	if db == nil || db.DB == nil {
		return nil
	}
	return db.DB.Close()
}
