// Package store provides storage backends for SalesPipe call events and
// confirmed bookings.
//
// It includes an in-memory store for tests and development, plus SQLite and
// PostgreSQL backends sharing one schema.
package store

import (
	"strings"

	"github.com/CloseLoop/SalesPipe/internal/models"
)

// Store defines the persistence surface for call logging and bookings.
type Store interface {
	// AddCallEvent records one session lifecycle event.
	AddCallEvent(e models.CallEvent) error
	// ListCallEvents returns all events for a session in insertion order.
	ListCallEvents(sessionID string) ([]models.CallEvent, error)
	// AddBooking records a confirmed demo appointment.
	AddBooking(b models.Booking) error
	// ListBookings returns all confirmed bookings.
	ListBookings() ([]models.Booking, error)
	// Close releases any underlying resources.
	Close() error
}

// Opts holds configuration options for store backends.
type Opts struct {
	DSN string
}

// Option defines a configuration option for store backends.
type Option func(*Opts)

// WithSQLiteDSN sets a SQLite file path DSN.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithPostgresDSN sets a PostgreSQL connection string DSN.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// DetectDSNType classifies a DSN as "postgres" or "sqlite". PostgreSQL DSNs
// use URL or key=value form; anything else is treated as a SQLite file path.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite"
}
