package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/CloseLoop/SalesPipe/internal/models"
)

func testBooking() models.BookingRequest {
	start := time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC)
	return models.BookingRequest{
		SessionID:      "sess-1",
		Name:           "Jordan Blake",
		Email:          "jordan@example.com",
		Phone:          "+15550001111",
		PreferredStart: start,
		PreferredEnd:   start.Add(time.Hour),
		DiscoveryAnswers: map[string]string{
			"answer_1": "thursday works",
		},
	}
}

func TestNewClient_RequiresURL(t *testing.T) {
	if _, err := NewClient(); err != models.ErrWebhookURLMissing {
		t.Errorf("expected ErrWebhookURLMissing, got %v", err)
	}
}

func TestSendBooking_DeliversPayload(t *testing.T) {
	var received models.BookingRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("failed to decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := NewClient(WithURL(srv.URL))
	if err != nil {
		t.Fatalf("expected client to build, got %v", err)
	}
	if err := client.SendBooking(context.Background(), testBooking()); err != nil {
		t.Fatalf("expected delivery to succeed, got %v", err)
	}
	if received.SessionID != "sess-1" {
		t.Errorf("expected session sess-1 in payload, got %q", received.SessionID)
	}
	if received.DiscoveryAnswers["answer_1"] != "thursday works" {
		t.Errorf("expected discovery answers in payload, got %v", received.DiscoveryAnswers)
	}
}

func TestSendBooking_RetriesThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := NewClient(WithURL(srv.URL))
	if err != nil {
		t.Fatalf("expected client to build, got %v", err)
	}
	if err := client.SendBooking(context.Background(), testBooking()); err != nil {
		t.Fatalf("expected delivery to eventually succeed, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestSendBooking_GivesUpAfterMaxAttempts(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := NewClient(WithURL(srv.URL))
	if err != nil {
		t.Fatalf("expected client to build, got %v", err)
	}
	if err := client.SendBooking(context.Background(), testBooking()); err == nil {
		t.Fatal("expected delivery to fail after exhausting retries")
	}
	if got := atomic.LoadInt32(&calls); got != MaxAttempts {
		t.Errorf("expected %d attempts, got %d", MaxAttempts, got)
	}
}

func TestSendBooking_ContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := NewClient(WithURL(srv.URL))
	if err != nil {
		t.Fatalf("expected client to build, got %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := client.SendBooking(ctx, testBooking()); err == nil {
		t.Fatal("expected cancelled delivery to fail")
	}
}
