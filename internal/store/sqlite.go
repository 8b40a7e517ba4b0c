// Package store provides storage backends for SalesPipe.
//
// This file implements the SQLite-backed store for call events and bookings.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	"github.com/CloseLoop/SalesPipe/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the default permissions for database directories
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore persists call events and bookings to a SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running SQLite migrations")
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// AddCallEvent records one session lifecycle event.
func (s *SQLiteStore) AddCallEvent(e models.CallEvent) error {
	_, err := s.db.Exec(`INSERT INTO call_events (session_id, kind, detail, time) VALUES (?, ?, ?, ?)`,
		e.SessionID, string(e.Kind), e.Detail, e.Time)
	if err != nil {
		slog.Error("SQLiteStore AddCallEvent failed", "error", err, "sessionID", e.SessionID)
		return fmt.Errorf("failed to insert call event for %s: %w", e.SessionID, err)
	}
	return nil
}

// ListCallEvents returns all events for a session in insertion order.
func (s *SQLiteStore) ListCallEvents(sessionID string) ([]models.CallEvent, error) {
	rows, err := s.db.Query(`SELECT session_id, kind, detail, time FROM call_events WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		slog.Error("SQLiteStore ListCallEvents query failed", "error", err, "sessionID", sessionID)
		return nil, fmt.Errorf("failed to query call events: %w", err)
	}
	defer rows.Close()

	var events []models.CallEvent
	for rows.Next() {
		e, err := scanCallEvent(rows)
		if err != nil {
			slog.Error("SQLiteStore ListCallEvents scan failed", "error", err)
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate call event rows: %w", err)
	}
	return events, nil
}

// AddBooking records a confirmed demo appointment.
func (s *SQLiteStore) AddBooking(b models.Booking) error {
	_, err := s.db.Exec(`INSERT INTO bookings (session_id, owner_id, start_time, end_time, confirmed_at) VALUES (?, ?, ?, ?, ?)`,
		b.SessionID, b.OwnerID, b.StartTime, b.EndTime, b.ConfirmedAt)
	if err != nil {
		slog.Error("SQLiteStore AddBooking failed", "error", err, "sessionID", b.SessionID)
		return fmt.Errorf("failed to insert booking for %s: %w", b.SessionID, err)
	}
	return nil
}

// ListBookings returns all confirmed bookings.
func (s *SQLiteStore) ListBookings() ([]models.Booking, error) {
	rows, err := s.db.Query(`SELECT session_id, owner_id, start_time, end_time, confirmed_at FROM bookings ORDER BY id`)
	if err != nil {
		slog.Error("SQLiteStore ListBookings query failed", "error", err)
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			slog.Error("SQLiteStore ListBookings scan failed", "error", err)
			return nil, err
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate booking rows: %w", err)
	}
	return bookings, nil
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
