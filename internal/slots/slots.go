// Package slots implements the in-memory slot reservation engine: TTL-bounded,
// ownership-tagged locks on one-hour appointment windows, shared by all
// concurrent sessions.
package slots

import (
	"log/slog"
	"sync"
	"time"

	"github.com/CloseLoop/SalesPipe/internal/models"
)

// Engine configuration constants.
const (
	// LockTTL is how long a lock survives without being released; an abandoned
	// lock is treated as absent by availability checks after this age.
	LockTTL = 30 * time.Minute
	// DefaultSlotDuration is the slot length applied when no end time is given.
	DefaultSlotDuration = time.Hour
	// SweepCronExpr drives the periodic expired-lock sweep.
	SweepCronExpr = "*/10 * * * *"
	// BusinessOpenHour and BusinessCloseHour bound the bookable day (local business time).
	BusinessOpenHour  = 9
	BusinessCloseHour = 17
)

// Record is one locked time window. At most one live Record exists per start
// time.
type Record struct {
	StartTime   time.Time  `json:"start_time"`
	EndTime     time.Time  `json:"end_time"`
	OwnerID     string     `json:"owner_id"`
	LockedAt    time.Time  `json:"locked_at"`
	Confirmed   bool       `json:"confirmed"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
}

// Slot is an available window returned by ListAvailable.
type Slot struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// Engine owns the slot record collection. All mutations go through the
// engine's mutex; no other component touches the records directly.
type Engine struct {
	mu      sync.Mutex
	records map[int64]*Record // keyed by unix second of the UTC start time
	loc     *time.Location
	now     func() time.Time
}

// Option defines a configuration option for the engine.
type Option func(*Engine)

// WithLocation sets the business-hours time zone used by ListAvailable.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithClock overrides the engine's clock. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates an empty reservation engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		records: make(map[int64]*Record),
		loc:     time.Local,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	slog.Debug("slots.NewEngine: reservation engine created", "location", e.loc.String())
	return e
}

// Lock reserves the window starting at start for ownerID. A zero end time
// defaults to start plus one hour. It returns false when a live lock already
// holds the window; stale locks are evicted and overwritten. Malformed input
// is reported as an error rather than coerced.
func (e *Engine) Lock(start time.Time, ownerID string, end time.Time) (bool, error) {
	if start.IsZero() {
		return false, models.ErrInvalidTimestamp
	}
	if ownerID == "" {
		return false, models.ErrEmptyOwner
	}
	start = normalize(start)
	if end.IsZero() {
		end = start.Add(DefaultSlotDuration)
	} else {
		end = normalize(end)
		if !end.After(start) {
			return false, models.ErrInvalidSlotRange
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	key := start.Unix()
	now := e.now()
	if rec, exists := e.records[key]; exists {
		if !e.expired(rec, now) {
			slog.Debug("Engine.Lock: slot conflict", "start", start, "heldBy", rec.OwnerID, "requestedBy", ownerID)
			return false, nil
		}
		// Stale lock: evict and fall through to grant.
		delete(e.records, key)
		slog.Debug("Engine.Lock: evicted stale lock", "start", start, "staleOwner", rec.OwnerID)
	}

	e.records[key] = &Record{
		StartTime: start,
		EndTime:   end,
		OwnerID:   ownerID,
		LockedAt:  now,
	}
	slog.Info("Engine.Lock: slot locked", "start", start, "owner", ownerID)
	return true, nil
}

// Confirm marks the lock at start as confirmed. It fails when no live record
// exists or when the record belongs to a different owner; a failed confirm
// never mutates the record.
func (e *Engine) Confirm(start time.Time, ownerID string) (bool, error) {
	if start.IsZero() {
		return false, models.ErrInvalidTimestamp
	}
	if ownerID == "" {
		return false, models.ErrEmptyOwner
	}
	start = normalize(start)

	e.mu.Lock()
	defer e.mu.Unlock()

	rec, exists := e.records[start.Unix()]
	now := e.now()
	if !exists || e.expired(rec, now) {
		slog.Debug("Engine.Confirm: no live record", "start", start, "owner", ownerID)
		return false, nil
	}
	if rec.OwnerID != ownerID {
		slog.Warn("Engine.Confirm: ownership mismatch", "start", start, "heldBy", rec.OwnerID, "requestedBy", ownerID)
		return false, nil
	}

	rec.Confirmed = true
	confirmedAt := now
	rec.ConfirmedAt = &confirmedAt
	slog.Info("Engine.Confirm: slot confirmed", "start", start, "owner", ownerID)
	return true, nil
}

// Release removes the lock at start. Same ownership check as Confirm.
func (e *Engine) Release(start time.Time, ownerID string) (bool, error) {
	if start.IsZero() {
		return false, models.ErrInvalidTimestamp
	}
	if ownerID == "" {
		return false, models.ErrEmptyOwner
	}
	start = normalize(start)

	e.mu.Lock()
	defer e.mu.Unlock()

	key := start.Unix()
	rec, exists := e.records[key]
	if !exists {
		slog.Debug("Engine.Release: no record", "start", start, "owner", ownerID)
		return false, nil
	}
	if rec.OwnerID != ownerID {
		slog.Warn("Engine.Release: ownership mismatch", "start", start, "heldBy", rec.OwnerID, "requestedBy", ownerID)
		return false, nil
	}

	delete(e.records, key)
	slog.Info("Engine.Release: slot released", "start", start, "owner", ownerID)
	return true, nil
}

// IsAvailable reports whether the window at start can be locked. A stale
// record found here is evicted as a side effect of the read.
func (e *Engine) IsAvailable(start time.Time) (bool, error) {
	if start.IsZero() {
		return false, models.ErrInvalidTimestamp
	}
	start = normalize(start)

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.availableLocked(start.Unix()), nil
}

// ListAvailable enumerates the hourly business-time windows for the given
// date that are currently available, each with a derived one-hour end time.
func (e *Engine) ListAvailable(date time.Time) ([]Slot, error) {
	if date.IsZero() {
		return nil, models.ErrInvalidTimestamp
	}

	year, month, day := date.In(e.loc).Date()

	e.mu.Lock()
	defer e.mu.Unlock()

	var available []Slot
	for hour := BusinessOpenHour; hour < BusinessCloseHour; hour++ {
		start := normalize(time.Date(year, month, day, hour, 0, 0, 0, e.loc))
		if e.availableLocked(start.Unix()) {
			available = append(available, Slot{StartTime: start, EndTime: start.Add(DefaultSlotDuration)})
		}
	}
	slog.Debug("Engine.ListAvailable: enumerated day", "date", date.Format("2006-01-02"), "available", len(available))
	return available, nil
}

// SweepExpired evicts every record older than the lock TTL and returns the
// eviction count. It runs on a fixed schedule in addition to the lazy
// eviction on availability reads.
func (e *Engine) SweepExpired() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	evicted := 0
	for key, rec := range e.records {
		if e.expired(rec, now) {
			delete(e.records, key)
			evicted++
		}
	}
	if evicted > 0 {
		slog.Info("Engine.SweepExpired: evicted stale locks", "count", evicted, "remaining", len(e.records))
	}
	return evicted
}

// Get returns a copy of the live record at start, if any. Used by transports
// to enrich booking payloads.
func (e *Engine) Get(start time.Time) (Record, bool) {
	if start.IsZero() {
		return Record{}, false
	}
	start = normalize(start)

	e.mu.Lock()
	defer e.mu.Unlock()

	rec, exists := e.records[start.Unix()]
	if !exists || e.expired(rec, e.now()) {
		return Record{}, false
	}
	return *rec, true
}

// availableLocked checks one key and lazily evicts a stale record. Caller
// must hold e.mu.
func (e *Engine) availableLocked(key int64) bool {
	rec, exists := e.records[key]
	if !exists {
		return true
	}
	if e.expired(rec, e.now()) {
		delete(e.records, key)
		return true
	}
	return false
}

// expired reports whether the record's age exceeds the lock TTL. Confirmed
// records never expire; the TTL only bounds unconfirmed holds.
func (e *Engine) expired(rec *Record, now time.Time) bool {
	if rec.Confirmed {
		return false
	}
	return now.Sub(rec.LockedAt) > LockTTL
}

// normalize keys all windows by UTC at second precision.
func normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
