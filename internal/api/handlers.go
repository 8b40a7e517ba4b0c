// Package api provides HTTP handlers for SalesPipe endpoints.
package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/CloseLoop/SalesPipe/internal/contact"
	"github.com/CloseLoop/SalesPipe/internal/messaging"
	"github.com/CloseLoop/SalesPipe/internal/models"
	"github.com/google/uuid"
)

// notifyTimeout bounds the booking webhook and SMS delivery that run after a
// slot is confirmed.
const notifyTimeout = 60 * time.Second

// slotRequest is the shared payload for the slot lock/confirm/release
// endpoints. Times are RFC 3339.
type slotRequest struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time,omitempty"`
	OwnerID   string    `json:"owner_id"`
}

// slotsHandler lists available windows for a date (GET /slots?date=YYYY-MM-DD).
func (s *Server) slotsHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Server.slotsHandler: processing slots request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	date := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			slog.Warn("Server.slotsHandler: invalid date", "date", raw, "error", err)
			writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid date format, expected YYYY-MM-DD"))
			return
		}
		date = parsed
	}

	available, err := s.slotEngine.ListAvailable(date)
	if err != nil {
		slog.Error("Server.slotsHandler: failed to list slots", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to list slots"))
		return
	}
	slog.Debug("Server.slotsHandler: slots listed", "count", len(available))
	writeJSONResponse(w, http.StatusOK, models.Success(available))
}

// slotLockHandler places a TTL-bounded hold on a window (POST /slots/lock).
func (s *Server) slotLockHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeSlotRequest(w, r)
	if !ok {
		return
	}

	granted, err := s.slotEngine.Lock(req.StartTime, req.OwnerID, req.EndTime)
	if err != nil {
		slog.Warn("Server.slotLockHandler: invalid lock request", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}
	if !granted {
		slog.Debug("Server.slotLockHandler: slot conflict", "start", req.StartTime, "owner", req.OwnerID)
		writeJSONResponse(w, http.StatusConflict, models.Error("Slot is not available"))
		return
	}
	slog.Info("Server.slotLockHandler: slot locked", "start", req.StartTime, "owner", req.OwnerID)
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Slot locked", nil))
}

// slotConfirmHandler confirms a held window into a booking (POST /slots/confirm).
func (s *Server) slotConfirmHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeSlotRequest(w, r)
	if !ok {
		return
	}

	confirmed, err := s.slotEngine.Confirm(req.StartTime, req.OwnerID)
	if err != nil {
		slog.Warn("Server.slotConfirmHandler: invalid confirm request", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}
	if !confirmed {
		slog.Debug("Server.slotConfirmHandler: no lock held", "start", req.StartTime, "owner", req.OwnerID)
		writeJSONResponse(w, http.StatusConflict, models.Error("Slot is not held by this owner"))
		return
	}

	rec, _ := s.slotEngine.Get(req.StartTime)
	booking := models.Booking{
		SessionID:   req.OwnerID,
		OwnerID:     req.OwnerID,
		StartTime:   rec.StartTime,
		EndTime:     rec.EndTime,
		ConfirmedAt: time.Now().UTC(),
	}
	if err := s.st.AddBooking(booking); err != nil {
		slog.Error("Server.slotConfirmHandler: failed to store booking", "error", err)
	}
	if err := s.st.AddCallEvent(models.CallEvent{
		SessionID: req.OwnerID,
		Kind:      models.CallEventBooked,
		Detail:    rec.StartTime.Format(time.RFC3339),
		Time:      time.Now().UTC(),
	}); err != nil {
		slog.Error("Server.slotConfirmHandler: failed to record booked event", "error", err)
	}

	// Webhook and SMS delivery run off the request path; the reservation
	// outcome never waits on downstream systems.
	go s.notifyBooking(booking)

	slog.Info("Server.slotConfirmHandler: slot confirmed", "start", req.StartTime, "owner", req.OwnerID)
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Slot confirmed", rec))
}

// slotReleaseHandler releases a held window (POST /slots/release).
func (s *Server) slotReleaseHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeSlotRequest(w, r)
	if !ok {
		return
	}

	released, err := s.slotEngine.Release(req.StartTime, req.OwnerID)
	if err != nil {
		slog.Warn("Server.slotReleaseHandler: invalid release request", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}
	if !released {
		slog.Debug("Server.slotReleaseHandler: no lock held", "start", req.StartTime, "owner", req.OwnerID)
		writeJSONResponse(w, http.StatusConflict, models.Error("Slot is not held by this owner"))
		return
	}
	slog.Info("Server.slotReleaseHandler: slot released", "start", req.StartTime, "owner", req.OwnerID)
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Slot released", nil))
}

// decodeSlotRequest parses and method-checks a slot mutation request. It
// writes the error response itself and reports success via the boolean.
func (s *Server) decodeSlotRequest(w http.ResponseWriter, r *http.Request) (slotRequest, bool) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return slotRequest{}, false
	}
	var req slotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.decodeSlotRequest: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return slotRequest{}, false
	}
	return req, true
}

// notifyBooking delivers the confirmed booking to the CRM webhook and texts
// the prospect, when those collaborators are configured.
func (s *Server) notifyBooking(booking models.Booking) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	payload := models.BookingRequest{
		SessionID:      booking.SessionID,
		PreferredStart: booking.StartTime,
		PreferredEnd:   booking.EndTime,
	}
	var phone string
	if conv, ok := s.sessions.Get(booking.SessionID); ok {
		c := conv.Contact()
		payload.Name = strings.TrimSpace(c.FirstName + " " + c.LastName)
		payload.Email = c.Email
		payload.Phone = c.Phone
		payload.DiscoveryAnswers = conv.DiscoveryAnswers()
		phone = c.Phone
	}

	if s.bookingHook != nil {
		if err := s.bookingHook.SendBooking(ctx, payload); err != nil {
			slog.Error("Server.notifyBooking: booking webhook delivery failed",
				"sessionID", booking.SessionID, "error", err)
		}
	}
	if s.smsService != nil && phone != "" {
		body := messaging.FormatBookingConfirmation(payload.Name, booking.StartTime, booking.EndTime)
		if err := s.smsService.SendMessage(ctx, phone, body); err != nil {
			slog.Error("Server.notifyBooking: confirmation SMS failed",
				"sessionID", booking.SessionID, "error", err)
		}
	}
}

// sessionsHandler creates a conversation session from an upstream payload
// (POST /sessions). The payload shape is dialer-specific; contact and
// personalization fields are extracted best effort.
func (s *Server) sessionsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.sessionsHandler: processing session request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		slog.Warn("Server.sessionsHandler: failed to read body", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Failed to read request body"))
		return
	}

	var meta struct {
		SessionID string `json:"session_id"`
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &meta); err != nil {
			slog.Warn("Server.sessionsHandler: failed to decode JSON", "error", err)
			writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
			return
		}
	}
	sessionID := meta.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	prospect := contact.Extract(payload)
	input := contact.ExtractPersonalization(payload)

	if _, err := s.sessions.Create(sessionID, prospect, input); err != nil {
		if err == models.ErrSessionExists {
			writeJSONResponse(w, http.StatusConflict, models.Error("Session already exists"))
			return
		}
		slog.Error("Server.sessionsHandler: failed to create session", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}

	if err := s.st.AddCallEvent(models.CallEvent{
		SessionID: sessionID,
		Kind:      models.CallEventStarted,
		Time:      time.Now().UTC(),
	}); err != nil {
		slog.Error("Server.sessionsHandler: failed to record started event", "error", err)
	}

	slog.Info("Server.sessionsHandler: session created", "sessionID", sessionID)
	writeJSONResponse(w, http.StatusCreated, models.Success(map[string]string{"session_id": sessionID}))
}

// callEventsHandler records a call lifecycle event (POST /calls/events) or
// lists a session's events (GET /calls/events?session_id=).
func (s *Server) callEventsHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Server.callEventsHandler: processing call event request", "method", r.Method, "path", r.URL.Path)
	switch r.Method {
	case http.MethodPost:
		if r.Body != nil {
			defer r.Body.Close()
		}
		var evt models.CallEvent
		if err := json.NewDecoder(r.Body).Decode(&evt); err != nil {
			slog.Warn("Server.callEventsHandler: failed to decode JSON", "error", err)
			writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
			return
		}
		if evt.SessionID == "" {
			writeJSONResponse(w, http.StatusBadRequest, models.Error(models.ErrEmptySessionID.Error()))
			return
		}
		if !models.IsValidCallEventKind(evt.Kind) {
			writeJSONResponse(w, http.StatusBadRequest, models.Error("Unknown call event kind"))
			return
		}
		if evt.Time.IsZero() {
			evt.Time = time.Now().UTC()
		}
		if err := s.st.AddCallEvent(evt); err != nil {
			slog.Error("Server.callEventsHandler: failed to store event", "error", err)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to store call event"))
			return
		}
		slog.Info("Server.callEventsHandler: event recorded", "sessionID", evt.SessionID, "kind", evt.Kind)
		writeJSONResponse(w, http.StatusCreated, models.Recorded())

	case http.MethodGet:
		sessionID := r.URL.Query().Get("session_id")
		if sessionID == "" {
			writeJSONResponse(w, http.StatusBadRequest, models.Error("Missing required parameter: session_id"))
			return
		}
		events, err := s.st.ListCallEvents(sessionID)
		if err != nil {
			slog.Error("Server.callEventsHandler: failed to fetch events", "error", err)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to fetch call events"))
			return
		}
		slog.Debug("Server.callEventsHandler: events fetched", "sessionID", sessionID, "count", len(events))
		writeJSONResponse(w, http.StatusOK, models.Success(events))

	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// healthHandler provides a health check endpoint for monitoring and load balancing
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	healthData := map[string]interface{}{
		"status":          "healthy",
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
		"active_sessions": s.sessions.Count(),
	}
	writeJSONResponse(w, http.StatusOK, healthData)
}
