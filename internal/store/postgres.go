// Package store provides storage backends for SalesPipe.
//
// This file implements the PostgreSQL-backed store, sharing the SQLite schema
// shape with positional parameters adjusted for pq.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "embed"

	"github.com/CloseLoop/SalesPipe/internal/models"
	_ "github.com/lib/pq"
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore persists call events and bookings to PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL store with the given DSN.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewPostgresStore invoked", "DSN_set", cfg.DSN != "")

	if cfg.DSN == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		slog.Error("Failed to open PostgreSQL connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("PostgreSQL ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running PostgreSQL migrations")
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// AddCallEvent records one session lifecycle event.
func (s *PostgresStore) AddCallEvent(e models.CallEvent) error {
	_, err := s.db.Exec(`INSERT INTO call_events (session_id, kind, detail, time) VALUES ($1, $2, $3, $4)`,
		e.SessionID, string(e.Kind), e.Detail, e.Time)
	if err != nil {
		slog.Error("PostgresStore AddCallEvent failed", "error", err, "sessionID", e.SessionID)
		return fmt.Errorf("failed to insert call event for %s: %w", e.SessionID, err)
	}
	return nil
}

// ListCallEvents returns all events for a session in insertion order.
func (s *PostgresStore) ListCallEvents(sessionID string) ([]models.CallEvent, error) {
	rows, err := s.db.Query(`SELECT session_id, kind, detail, time FROM call_events WHERE session_id = $1 ORDER BY id`, sessionID)
	if err != nil {
		slog.Error("PostgresStore ListCallEvents query failed", "error", err, "sessionID", sessionID)
		return nil, fmt.Errorf("failed to query call events: %w", err)
	}
	defer rows.Close()

	var events []models.CallEvent
	for rows.Next() {
		e, err := scanCallEvent(rows)
		if err != nil {
			slog.Error("PostgresStore ListCallEvents scan failed", "error", err)
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
func (s *PostgresStore) AddBooking(b models.Booking) error {
	_, err := s.db.Exec(`INSERT INTO bookings (session_id, owner_id, start_time, end_time, confirmed_at) VALUES ($1, $2, $3, $4, $5)`,
		b.SessionID, b.OwnerID, b.StartTime, b.EndTime, b.ConfirmedAt)
	if err != nil {
		slog.Error("PostgresStore AddBooking failed", "error", err, "sessionID", b.SessionID)
		return fmt.Errorf("failed to insert booking for %s: %w", b.SessionID, err)
	}
	return nil
}

// ListBookings returns all confirmed bookings.
func (s *PostgresStore) ListBookings() ([]models.Booking, error) {
	rows, err := s.db.Query(`SELECT session_id, owner_id, start_time, end_time, confirmed_at FROM bookings ORDER BY id`)
	if err != nil {
		slog.Error("PostgresStore ListBookings query failed", "error", err)
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			slog.Error("PostgresStore ListBookings scan failed", "error", err)
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
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
