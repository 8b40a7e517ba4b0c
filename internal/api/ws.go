package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/CloseLoop/SalesPipe/internal/dialogue"
	"github.com/CloseLoop/SalesPipe/internal/genai"
	"github.com/CloseLoop/SalesPipe/internal/kb"
	"github.com/CloseLoop/SalesPipe/internal/models"
	"github.com/gorilla/websocket"
)

// WebSocket transport constants.
const (
	// wsWriteTimeout bounds a single outbound frame write.
	wsWriteTimeout = 10 * time.Second
	// wsFallbackTimeout bounds one completion-backend call.
	wsFallbackTimeout = 30 * time.Second
	// wsFallbackReply is sent when neither the script nor the completion
	// backend produced a reply.
	wsFallbackReply = "Sorry, I didn't quite catch that. Could you say it another way?"
)

// The API fronts internal voice bridges, not browsers, so origin checks
// stay open here and access control lives at the network layer.
var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsReply is the frame sent back for each inbound utterance.
type wsReply struct {
	Reply    string `json:"reply"`
	Stage    string `json:"stage"`
	Fallback bool   `json:"fallback,omitempty"`
}

// wsHandler carries one conversation over a WebSocket (GET /ws?session_id=).
// Each inbound text frame is one utterance; each outbound frame is the
// agent's reply. The session must have been created via POST /sessions first.
func (s *Server) wsHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Missing required parameter: session_id"))
		return
	}
	conv, ok := s.sessions.Get(sessionID)
	if !ok {
		writeJSONResponse(w, http.StatusNotFound, models.Error(models.ErrSessionNotFound.Error()))
		return
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("Server.wsHandler: upgrade failed", "sessionID", sessionID, "error", err)
		return
	}
	slog.Info("Server.wsHandler: conversation connected", "sessionID", sessionID)

	defer func() {
		conn.Close()
		if err := s.st.AddCallEvent(models.CallEvent{
			SessionID: sessionID,
			Kind:      models.CallEventEnded,
			Time:      time.Now().UTC(),
		}); err != nil {
			slog.Error("Server.wsHandler: failed to record ended event", "error", err)
		}
		s.sessions.End(sessionID)
		slog.Info("Server.wsHandler: conversation ended", "sessionID", sessionID)
	}()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Warn("Server.wsHandler: unexpected close", "sessionID", sessionID, "error", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		utterance := strings.TrimSpace(string(data))
		if utterance == "" {
			continue
		}
		if len(utterance) > models.MaxUtteranceLength {
			slog.Warn("Server.wsHandler: utterance too long", "sessionID", sessionID, "length", len(utterance))
			if err := s.writeReply(conn, wsReply{Reply: wsFallbackReply, Stage: string(conv.Stage())}); err != nil {
				return
			}
			continue
		}

		reply, fallback := s.replyFor(r.Context(), conv, utterance)

		kind := models.CallEventUtterance
		if fallback {
			kind = models.CallEventFallback
		}
		if err := s.st.AddCallEvent(models.CallEvent{
			SessionID: sessionID,
			Kind:      kind,
			Detail:    utterance,
			Time:      time.Now().UTC(),
		}); err != nil {
			slog.Error("Server.wsHandler: failed to record utterance event", "error", err)
		}

		if err := s.writeReply(conn, wsReply{Reply: reply, Stage: string(conv.Stage()), Fallback: fallback}); err != nil {
			slog.Warn("Server.wsHandler: write failed", "sessionID", sessionID, "error", err)
			return
		}
	}
}

// replyFor runs one utterance through the scripted engine, falling back to
// the completion backend when the script has no reply. The boolean reports
// whether the fallback path was taken.
func (s *Server) replyFor(ctx context.Context, conv *dialogue.Conversation, utterance string) (string, bool) {
	if reply, ok := conv.GetResponse(utterance); ok {
		return reply, false
	}
	if s.gaClient == nil {
		return wsFallbackReply, true
	}

	input := conv.Input()
	system := genai.SalesSystemPrompt(kb.AgentName, string(kb.NormalizeIndustry(input.Industry)),
		string(kb.NormalizePainPoint(input.PainPoint)), conv.Script().RecommendedServices)

	genCtx, cancel := context.WithTimeout(ctx, wsFallbackTimeout)
	defer cancel()
	reply, err := s.gaClient.GenerateReply(genCtx, system, utterance)
	if err != nil || strings.TrimSpace(reply) == "" {
		slog.Warn("Server.replyFor: completion fallback failed", "sessionID", conv.SessionID(), "error", err)
		return wsFallbackReply, true
	}
	return reply, true
}

// writeReply sends one JSON frame with a bounded write deadline.
func (s *Server) writeReply(conn *websocket.Conn, reply wsReply) error {
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(reply)
}
