package whatsapp

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/CloseLoop/SalesPipe/internal/dialogue"
	"github.com/CloseLoop/SalesPipe/internal/genai"
	"github.com/CloseLoop/SalesPipe/internal/kb"
	"github.com/CloseLoop/SalesPipe/internal/models"
	"go.mau.fi/whatsmeow/types/events"
)

// Constants for text channel configuration
const (
	// DefaultReplyTimeout bounds the completion fallback on an inbound message
	DefaultReplyTimeout = 30 * time.Second
	// fallbackReply is sent when neither the script nor the completion backend produced a reply
	fallbackReply = "Sorry, I didn't quite catch that. Could you say it another way?"
)

// TextChannel routes inbound WhatsApp messages through the dialogue engine
// and replies on the same JID. Sessions are keyed by the sender's phone
// number, so a returning prospect continues where they left off.
type TextChannel struct {
	client   Sender
	waClient *Client // access to the underlying client for event handling
	sessions *dialogue.Manager
	genai    genai.ClientInterface
}

// NewTextChannel creates a text channel over the given sender. The completion
// client may be nil; the channel then answers unscripted messages with a
// generic prompt instead.
func NewTextChannel(client Sender, sessions *dialogue.Manager, gen genai.ClientInterface) *TextChannel {
	ch := &TextChannel{
		client:   client,
		sessions: sessions,
		genai:    gen,
	}

	if waClient, ok := client.(*Client); ok {
		ch.waClient = waClient
		slog.Debug("TextChannel created with full client for event handling")
	} else {
		slog.Debug("TextChannel created with interface client (likely mock)")
	}

	return ch
}

// Start registers the event handler and blocks processing until the context
// is cancelled.
func (ch *TextChannel) Start(ctx context.Context) error {
	slog.Debug("TextChannel Start invoked")

	if ch.waClient == nil || ch.waClient.GetClient() == nil {
		slog.Debug("TextChannel no full client available, skipping event handling (likely mock)")
		return nil
	}

	ch.waClient.GetClient().AddEventHandler(func(evt interface{}) {
		switch v := evt.(type) {
		case *events.Message:
			ch.handleIncomingMessage(ctx, v)
		default:
			// Ignore other event types
		}
	})
	slog.Debug("TextChannel event handler registered")

	go func() {
		<-ctx.Done()
		slog.Debug("TextChannel stopping due to context cancellation")
	}()
	return nil
}

// handleIncomingMessage processes one inbound text message from a prospect.
func (ch *TextChannel) handleIncomingMessage(ctx context.Context, evt *events.Message) {
	if evt.Message == nil {
		return
	}

	// Extract text content
	var messageText string
	if evt.Message.Conversation != nil {
		messageText = *evt.Message.Conversation
	} else if evt.Message.ExtendedTextMessage != nil && evt.Message.ExtendedTextMessage.Text != nil {
		messageText = *evt.Message.ExtendedTextMessage.Text
	} else {
		// Skip non-text messages (images, audio, etc.)
		slog.Debug("TextChannel ignoring non-text message", "from", evt.Info.Sender.String())
		return
	}
	messageText = strings.TrimSpace(messageText)
	if messageText == "" {
		return
	}

	sender := evt.Info.Sender.User
	sessionID := "wa:" + sender
	slog.Debug("TextChannel processing incoming message", "from", sender, "body_length", len(messageText))

	conv, ok := ch.sessions.Get(sessionID)
	if !ok {
		var err error
		conv, err = ch.sessions.Create(sessionID,
			models.Contact{Phone: "+" + sender},
			models.PersonalizationInput{})
		if err != nil {
			slog.Error("TextChannel failed to create session", "sessionID", sessionID, "error", err)
			return
		}
	}

	reply := ch.replyFor(ctx, conv, messageText)
	if err := ch.client.SendMessage(ctx, sender, reply); err != nil {
		slog.Error("TextChannel failed to send reply", "to", sender, "error", err)
	}
}

// replyFor runs one utterance through the scripted engine, falling back to
// the completion backend when the script has no reply.
func (ch *TextChannel) replyFor(ctx context.Context, conv *dialogue.Conversation, utterance string) string {
	if reply, ok := conv.GetResponse(utterance); ok {
		return reply
	}

	if ch.genai == nil {
		return fallbackReply
	}

	input := conv.Input()
	system := genai.SalesSystemPrompt(kb.AgentName, string(kb.NormalizeIndustry(input.Industry)),
		string(kb.NormalizePainPoint(input.PainPoint)), conv.Script().RecommendedServices)

	genCtx, cancel := context.WithTimeout(ctx, DefaultReplyTimeout)
	defer cancel()
	reply, err := ch.genai.GenerateReply(genCtx, system, utterance)
	if err != nil || strings.TrimSpace(reply) == "" {
		slog.Warn("TextChannel completion fallback failed", "sessionID", conv.SessionID(), "error", err)
		return fallbackReply
	}
	return reply
}
