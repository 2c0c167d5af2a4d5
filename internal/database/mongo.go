package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Lixing-Zhang/shop-backend/internal/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Store owns the process-wide MongoDB client. The driver manages the
// connection pool; every repository shares the same Database handle.
type Store struct {
	client  *mongo.Client
	db      *mongo.Database
	timeout time.Duration
	log     *slog.Logger
}

// Connect dials MongoDB and verifies the connection with a ping against the primary.
func Connect(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (*Store, error) {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	s := &Store{
		client:  client,
		db:      client.Database(cfg.Name),
		timeout: timeout,
		log:     log,
	}

	if err := s.Ping(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	log.Info("mongodb connected", "database", cfg.Name)
	return s, nil
}

// Database returns the application database handle.
func (s *Store) Database() *mongo.Database {
	return s.db
}

// Ping checks that the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping mongodb: %w", err)
	}
	return nil
}

// Close disconnects the client, waiting for in-use connections up to ctx's deadline.
func (s *Store) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect mongodb: %w", err)
	}
	s.log.Info("mongodb disconnected")
	return nil
}
