package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/CloseLoop/SalesPipe/internal/dialogue"
	"github.com/CloseLoop/SalesPipe/internal/models"
	"github.com/CloseLoop/SalesPipe/internal/slots"
	"github.com/CloseLoop/SalesPipe/internal/store"
)

func newTestServer(t *testing.T) (*Server, *store.InMemoryStore) {
	t.Helper()
	st := store.NewInMemoryStore()
	srv, err := NewServer(dialogue.NewManager(), slots.NewEngine(slots.WithLocation(time.UTC)), st, nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("failed to build server: %v", err)
	}
	return srv, st
}

func postJSON(t *testing.T, handler http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func decodeResponse(t *testing.T, rr *httptest.ResponseRecorder) models.APIResponse {
	t.Helper()
	var resp models.APIResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
	return resp
}

func TestHealthHandler(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var health map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &health); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if health["status"] != "healthy" {
		t.Errorf("expected healthy status, got %v", health["status"])
	}
}

func TestSessionsHandler_CreatesSession(t *testing.T) {
	srv, st := newTestServer(t)
	rr := postJSON(t, srv.Handler(), "/sessions", map[string]string{
		"first_name": "Jordan",
		"industry":   "real estate",
		"pain_point": "we miss calls too much",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("expected result object, got %v", resp.Result)
	}
	sessionID, _ := result["session_id"].(string)
	if sessionID == "" {
		t.Fatal("expected a generated session ID")
	}

	conv, found := srv.sessions.Get(sessionID)
	if !found {
		t.Fatal("expected conversation to be registered")
	}
	if conv.Contact().FirstName != "Jordan" {
		t.Errorf("expected extracted contact, got %+v", conv.Contact())
	}

	events, _ := st.ListCallEvents(sessionID)
	if len(events) != 1 || events[0].Kind != models.CallEventStarted {
		t.Errorf("expected a started call event, got %v", events)
	}
}

func TestSessionsHandler_DuplicateSession(t *testing.T) {
	srv, _ := newTestServer(t)
	body := map[string]string{"session_id": "sess-1"}
	if rr := postJSON(t, srv.Handler(), "/sessions", body); rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 on first create, got %d", rr.Code)
	}
	if rr := postJSON(t, srv.Handler(), "/sessions", body); rr.Code != http.StatusConflict {
		t.Errorf("expected 409 on duplicate create, got %d", rr.Code)
	}
}

func TestSlotsHandler_ListsDay(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/slots?date=2026-09-01", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	resp := decodeResponse(t, rr)
	windows, ok := resp.Result.([]interface{})
	if !ok {
		t.Fatalf("expected result array, got %v", resp.Result)
	}
	if len(windows) != slots.BusinessCloseHour-slots.BusinessOpenHour {
		t.Errorf("expected %d windows, got %d", slots.BusinessCloseHour-slots.BusinessOpenHour, len(windows))
	}
}

func TestSlotsHandler_InvalidDate(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/slots?date=tomorrow", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid date, got %d", rr.Code)
	}
}

func TestSlotLifecycleOverHTTP(t *testing.T) {
	srv, st := newTestServer(t)
	handler := srv.Handler()
	start := time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC)

	lockBody := map[string]interface{}{"start_time": start.Format(time.RFC3339), "owner_id": "sess-1"}
	if rr := postJSON(t, handler, "/slots/lock", lockBody); rr.Code != http.StatusOK {
		t.Fatalf("expected 200 on lock, got %d: %s", rr.Code, rr.Body.String())
	}

	conflictBody := map[string]interface{}{"start_time": start.Format(time.RFC3339), "owner_id": "sess-2"}
	if rr := postJSON(t, handler, "/slots/lock", conflictBody); rr.Code != http.StatusConflict {
		t.Errorf("expected 409 on conflicting lock, got %d", rr.Code)
	}

	if rr := postJSON(t, handler, "/slots/confirm", conflictBody); rr.Code != http.StatusConflict {
		t.Errorf("expected 409 on confirm by non-owner, got %d", rr.Code)
	}
	if rr := postJSON(t, handler, "/slots/confirm", lockBody); rr.Code != http.StatusOK {
		t.Fatalf("expected 200 on confirm by owner, got %d: %s", rr.Code, rr.Body.String())
	}

	bookings, _ := st.ListBookings()
	if len(bookings) != 1 {
		t.Fatalf("expected 1 stored booking, got %d", len(bookings))
	}
	if !bookings[0].StartTime.Equal(start) {
		t.Errorf("expected booking at %v, got %v", start, bookings[0].StartTime)
	}
	events, _ := st.ListCallEvents("sess-1")
	foundBooked := false
	for _, e := range events {
		if e.Kind == models.CallEventBooked {
			foundBooked = true
		}
	}
	if !foundBooked {
		t.Error("expected a booked call event")
	}
}

func TestSlotReleaseOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.Handler()
	start := time.Date(2026, 9, 1, 15, 0, 0, 0, time.UTC)

	lockBody := map[string]interface{}{"start_time": start.Format(time.RFC3339), "owner_id": "sess-1"}
	postJSON(t, handler, "/slots/lock", lockBody)

	wrongOwner := map[string]interface{}{"start_time": start.Format(time.RFC3339), "owner_id": "sess-2"}
	if rr := postJSON(t, handler, "/slots/release", wrongOwner); rr.Code != http.StatusConflict {
		t.Errorf("expected 409 on release by non-owner, got %d", rr.Code)
	}
	if rr := postJSON(t, handler, "/slots/release", lockBody); rr.Code != http.StatusOK {
		t.Errorf("expected 200 on release by owner, got %d", rr.Code)
	}
	if rr := postJSON(t, handler, "/slots/lock", wrongOwner); rr.Code != http.StatusOK {
		t.Errorf("expected relock after release to succeed, got %d", rr.Code)
	}
}

func TestSlotLockValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.Handler()

	missingOwner := map[string]interface{}{"start_time": time.Now().UTC().Format(time.RFC3339)}
	if rr := postJSON(t, handler, "/slots/lock", missingOwner); rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing owner, got %d", rr.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/slots/lock", bytes.NewReader([]byte("not json")))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed JSON, got %d", rr.Code)
	}

	getReq := httptest.NewRequest(http.MethodGet, "/slots/lock", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, getReq)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 for GET, got %d", rr.Code)
	}
}

func TestCallEventsHandler(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.Handler()

	evt := map[string]string{"session_id": "sess-1", "kind": "utterance", "detail": "hello"}
	if rr := postJSON(t, handler, "/calls/events", evt); rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	bad := map[string]string{"session_id": "sess-1", "kind": "nonsense"}
	if rr := postJSON(t, handler, "/calls/events", bad); rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown kind, got %d", rr.Code)
	}
	noSession := map[string]string{"kind": "utterance"}
	if rr := postJSON(t, handler, "/calls/events", noSession); rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing session, got %d", rr.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/calls/events?session_id=sess-1", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 listing events, got %d", rr.Code)
	}
	resp := decodeResponse(t, rr)
	events, ok := resp.Result.([]interface{})
	if !ok || len(events) != 1 {
		t.Errorf("expected 1 recorded event, got %v", resp.Result)
	}

	missing := httptest.NewRequest(http.MethodGet, "/calls/events", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, missing)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing session_id, got %d", rr.Code)
	}
}

func TestNewServer_RequiresCoreModules(t *testing.T) {
	if _, err := NewServer(nil, nil, nil, nil, nil, nil, nil); err == nil {
		t.Error("expected error when core modules are missing")
	}
}

func TestNotifyBooking_DeliversWebhookAndSMS(t *testing.T) {
	st := store.NewInMemoryStore()
	sessions := dialogue.NewManager()
	hookCh := make(chan models.BookingRequest, 1)
	smsCh := make(chan string, 1)
	srv, err := NewServer(sessions, slots.NewEngine(), st,
		nil, &chanSMS{ch: smsCh}, &chanHook{ch: hookCh}, nil)
	if err != nil {
		t.Fatalf("failed to build server: %v", err)
	}

	if _, err := sessions.Create("sess-1",
		models.Contact{FirstName: "Jordan", LastName: "Blake", Phone: "+15550001111"},
		models.PersonalizationInput{}); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	start := time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC)
	srv.notifyBooking(models.Booking{
		SessionID: "sess-1",
		OwnerID:   "sess-1",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	})

	select {
	case payload := <-hookCh:
		if payload.Name != "Jordan Blake" || payload.Phone != "+15550001111" {
			t.Errorf("unexpected webhook payload: %+v", payload)
		}
	default:
		t.Fatal("expected webhook delivery")
	}
	select {
	case body := <-smsCh:
		if body == "" {
			t.Error("expected non-empty confirmation SMS")
		}
	default:
		t.Fatal("expected SMS delivery")
	}
}

type chanHook struct{ ch chan models.BookingRequest }

func (h *chanHook) SendBooking(ctx context.Context, b models.BookingRequest) error {
	h.ch <- b
	return nil
}

type chanSMS struct{ ch chan string }

func (s *chanSMS) SendMessage(ctx context.Context, to string, body string) error {
	s.ch <- fmt.Sprintf("%s|%s", to, body)
	return nil
}
