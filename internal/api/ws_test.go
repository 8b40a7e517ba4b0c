package api

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/CloseLoop/SalesPipe/internal/dialogue"
	"github.com/CloseLoop/SalesPipe/internal/models"
	"github.com/CloseLoop/SalesPipe/internal/slots"
	"github.com/CloseLoop/SalesPipe/internal/store"
	"github.com/gorilla/websocket"
)

type stubCompletion struct {
	reply string
}

func (s *stubCompletion) GenerateReply(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return s.reply, nil
}

func dialSession(t *testing.T, ts *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?session_id=" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to dial websocket: %v", err)
	}
	return conn
}

func TestWSHandler_ConversationRoundTrips(t *testing.T) {
	st := store.NewInMemoryStore()
	sessions := dialogue.NewManager()
	srv, err := NewServer(sessions, slots.NewEngine(), st, &stubCompletion{reply: "fallback answer"}, nil, nil, nil)
	if err != nil {
		t.Fatalf("failed to build server: %v", err)
	}

	if _, err := sessions.Create("sess-1", models.Contact{FirstName: "Jordan"},
		models.PersonalizationInput{Industry: "real estate", PainPoint: "we miss calls too much", FirstName: "Jordan"}); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn := dialSession(t, ts, "sess-1")
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte("hello")); err != nil {
		t.Fatalf("failed to write utterance: %v", err)
	}
	var reply wsReply
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("failed to read reply: %v", err)
	}
	if !strings.Contains(reply.Reply, "Ava") {
		t.Errorf("expected scripted greeting, got %q", reply.Reply)
	}
	if reply.Stage != string(models.StageGreeted) {
		t.Errorf("expected stage %q, got %q", models.StageGreeted, reply.Stage)
	}
	if reply.Fallback {
		t.Error("scripted greeting must not be marked as fallback")
	}
}

func TestWSHandler_CompletionFallback(t *testing.T) {
	st := store.NewInMemoryStore()
	sessions := dialogue.NewManager()
	srv, err := NewServer(sessions, slots.NewEngine(), st, &stubCompletion{reply: "fallback answer"}, nil, nil, nil)
	if err != nil {
		t.Fatalf("failed to build server: %v", err)
	}

	conv, err := sessions.Create("sess-1", models.Contact{}, models.PersonalizationInput{})
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	// Walk past the scripted stages so the next off-script message falls through.
	conv.GetResponse("hello")
	conv.GetResponse("fine")
	conv.GetResponse("yeah")
	conv.GetResponse("hm")

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn := dialSession(t, ts, "sess-1")
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte("the weather has been odd this spring")); err != nil {
		t.Fatalf("failed to write utterance: %v", err)
	}
	var reply wsReply
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("failed to read reply: %v", err)
	}
	if reply.Reply != "fallback answer" {
		t.Errorf("expected completion fallback, got %q", reply.Reply)
	}
	if !reply.Fallback {
		t.Error("expected reply to be marked as fallback")
	}
}

func TestWSHandler_UnknownSession(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?session_id=sess-unknown"
	if _, _, err := websocket.DefaultDialer.Dial(url, nil); err == nil {
		t.Error("expected dial to an unknown session to fail")
	}
}

func TestWSHandler_SessionEndedOnClose(t *testing.T) {
	st := store.NewInMemoryStore()
	sessions := dialogue.NewManager()
	srv, err := NewServer(sessions, slots.NewEngine(), st, nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("failed to build server: %v", err)
	}
	if _, err := sessions.Create("sess-1", models.Contact{}, models.PersonalizationInput{}); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn := dialSession(t, ts, "sess-1")
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()

	// The server tears the session down asynchronously after the close.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if sessions.Count() == 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if sessions.Count() != 0 {
		t.Error("expected session to be removed after connection close")
	}

	events, _ := st.ListCallEvents("sess-1")
	foundEnded := false
	for _, e := range events {
		if e.Kind == models.CallEventEnded {
			foundEnded = true
		}
	}
	if !foundEnded {
		t.Error("expected an ended call event")
	}
}
