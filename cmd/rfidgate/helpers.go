package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/Veraticus/rfidgate/internal/access"
	"github.com/Veraticus/rfidgate/internal/audit"
	"github.com/Veraticus/rfidgate/internal/config"
	"github.com/Veraticus/rfidgate/internal/session"
	"github.com/Veraticus/rfidgate/internal/storage"
	"github.com/Veraticus/rfidgate/internal/transport"
)

var envKeyReplacer = strings.NewReplacer(".", "_")

// Replaced in tests.
var (
	listPorts    = transport.ListPorts
	newTransport = func(cfg *config.Config) transport.Transport {
		return transport.NewSerial(
			transport.WithBaudRate(cfg.Serial.Baud),
			transport.WithReadTimeout(cfg.Serial.ReadTimeout),
		)
	}
)

// loadConfig decodes and validates the global viper configuration.
func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetViper())
}

// getDatabase returns a database connection and a cleanup function.
func getDatabase(ctx context.Context, cfg *config.Config) (*storage.SQLiteStorage, func(), error) {
	// Open database
	db, err := storage.NewSQLiteStorage(cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Run migrations
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	cleanup := func() {
		if err := db.Close(); err != nil {
			slog.Error("Failed to close database", "error", err)
		}
	}

	return db, cleanup, nil
}

// sessionOptions maps the configuration onto session options. The init
// command is left to the caller.
func sessionOptions(cfg *config.Config) []session.Option {
	return []session.Option{
		session.WithBufferSize(cfg.Serial.BufferSize),
		session.WithPollInterval(cfg.Serial.PollInterval),
		session.WithKeepRegistry(cfg.Session.KeepRegistry),
		session.WithAuthorized(cfg.Session.Authorized...),
	}
}

// withJournal appends an audit journal to sinks when auditing is enabled. The
// returned cleanup closes the database.
func withJournal(ctx context.Context, cfg *config.Config, sinks access.MultiSink) (access.MultiSink, func(), error) {
	if !cfg.Audit.Enabled {
		return sinks, func() {}, nil
	}
	db, cleanup, err := getDatabase(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	slog.Debug("Journaling access decisions", "database", db.Path())
	return append(sinks, audit.NewJournal(db)), cleanup, nil
}
