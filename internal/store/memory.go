package store

import (
	"sync"

	"github.com/CloseLoop/SalesPipe/internal/models"
)

// InMemoryStore is a mutex-guarded in-memory store. Used in tests and when
// no database DSN is configured.
type InMemoryStore struct {
	mu       sync.RWMutex
	events   []models.CallEvent
	bookings []models.Booking
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// AddCallEvent records one session lifecycle event.
func (s *InMemoryStore) AddCallEvent(e models.CallEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

// ListCallEvents returns all events for a session in insertion order.
func (s *InMemoryStore) ListCallEvents(sessionID string) ([]models.CallEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.CallEvent
	for _, e := range s.events {
		if e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	return out, nil
}

// AddBooking records a confirmed demo appointment.
func (s *InMemoryStore) AddBooking(b models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings = append(s.bookings, b)
	return nil
}

// ListBookings returns all confirmed bookings.
func (s *InMemoryStore) ListBookings() ([]models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Booking, len(s.bookings))
	copy(out, s.bookings)
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
