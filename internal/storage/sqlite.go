// Package storage provides the access journal persistence layer.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/rfidgate/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// AccessEventFilter narrows journal queries.
type AccessEventFilter struct {
	Since      *time.Time
	Identifier string
	Verdict    string
	Limit      int
}

// SQLiteStorage stores the access journal in SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	// Validate input
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	// Ensure directory exists
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Open database
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// RecordAccessEvent appends an access decision to the journal and sets its ID.
func (s *SQLiteStorage) RecordAccessEvent(ctx context.Context, event *model.AccessEvent) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateAccessEvent(event); err != nil {
		return err
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO access_events (occurred_at, port, identifier, verdict, check_mode)
		VALUES (?, ?, ?, ?, ?)`,
		event.OccurredAt.UTC(), event.Port, event.Identifier, event.Verdict, event.CheckMode)
	if err != nil {
		return fmt.Errorf("failed to record access event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get access event id: %w", err)
	}
	event.ID = id
	return nil
}

// GetAccessEvents returns journal entries matching filter, newest first.
func (s *SQLiteStorage) GetAccessEvents(ctx context.Context, filter AccessEventFilter) ([]model.AccessEvent, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var (
		clauses []string
		args    []any
	)
	if filter.Identifier != "" {
		clauses = append(clauses, "identifier = ?")
		args = append(args, filter.Identifier)
	}
	if filter.Verdict != "" {
		clauses = append(clauses, "verdict = ?")
		args = append(args, filter.Verdict)
	}
	if filter.Since != nil {
		clauses = append(clauses, "occurred_at >= ?")
		args = append(args, filter.Since.UTC())
	}

	query := `SELECT id, occurred_at, port, identifier, verdict, check_mode FROM access_events`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY occurred_at DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query access events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []model.AccessEvent
	for rows.Next() {
		var event model.AccessEvent
		if err := rows.Scan(&event.ID, &event.OccurredAt, &event.Port, &event.Identifier, &event.Verdict, &event.CheckMode); err != nil {
			return nil, fmt.Errorf("failed to scan access event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating access events: %w", err)
	}

	return events, nil
}

// GetAccessSummary counts journal entries per verdict since the given time.
// A zero since counts everything.
func (s *SQLiteStorage) GetAccessSummary(ctx context.Context, since time.Time) (*model.AccessSummary, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	summary := &model.AccessSummary{
		Since:     since,
		ByVerdict: make(map[string]int),
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT verdict, COUNT(*) FROM access_events
		WHERE occurred_at >= ?
		GROUP BY verdict`, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to summarize access events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			verdict string
			count   int
		)
		if err := rows.Scan(&verdict, &count); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		summary.ByVerdict[verdict] = count
		summary.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating summary rows: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT identifier) FROM access_events
		WHERE occurred_at >= ?`, since.UTC()).Scan(&summary.Identifiers)
	if err != nil {
		return nil, fmt.Errorf("failed to count identifiers: %w", err)
	}

	return summary, nil
}

// PruneAccessEvents deletes journal entries older than before and returns how
// many were removed.
func (s *SQLiteStorage) PruneAccessEvents(ctx context.Context, before time.Time) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if before.IsZero() {
		return 0, fmt.Errorf("%w: before", ErrInvalidTime)
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM access_events WHERE occurred_at < ?`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune access events: %w", err)
	}
	return result.RowsAffected()
}
