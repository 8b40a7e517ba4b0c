package whatsapp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/CloseLoop/SalesPipe/internal/dialogue"
	"github.com/CloseLoop/SalesPipe/internal/models"
)

type stubCompletion struct {
	reply string
	err   error
	calls int
}

func (s *stubCompletion) GenerateReply(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	s.calls++
	return s.reply, s.err
}

func newChannelConversation(t *testing.T, sessions *dialogue.Manager) *dialogue.Conversation {
	t.Helper()
	conv, err := sessions.Create("wa:15550001111", models.Contact{Phone: "+15550001111"}, models.PersonalizationInput{})
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	return conv
}

func TestTextChannel_ScriptedReply(t *testing.T) {
	sessions := dialogue.NewManager()
	conv := newChannelConversation(t, sessions)
	gen := &stubCompletion{reply: "should not be used"}
	ch := NewTextChannel(NewMockClient(), sessions, gen)

	reply := ch.replyFor(context.Background(), conv, "hello")
	if !strings.Contains(reply, "Ava") {
		t.Errorf("expected scripted greeting, got %q", reply)
	}
	if gen.calls != 0 {
		t.Errorf("scripted replies must not hit the completion backend, got %d calls", gen.calls)
	}
}

func TestTextChannel_CompletionFallback(t *testing.T) {
	sessions := dialogue.NewManager()
	conv := newChannelConversation(t, sessions)
	// Walk past the scripted stages so the next off-script message falls through.
	conv.GetResponse("hello")
	conv.GetResponse("fine")
	conv.GetResponse("yeah")
	conv.GetResponse("hm")

	gen := &stubCompletion{reply: "Happy to explain more about that."}
	ch := NewTextChannel(NewMockClient(), sessions, gen)

	reply := ch.replyFor(context.Background(), conv, "the weather has been odd this spring")
	if reply != "Happy to explain more about that." {
		t.Errorf("expected completion fallback reply, got %q", reply)
	}
	if gen.calls != 1 {
		t.Errorf("expected 1 completion call, got %d", gen.calls)
	}
}

func TestTextChannel_FallbackWhenCompletionFails(t *testing.T) {
	sessions := dialogue.NewManager()
	conv := newChannelConversation(t, sessions)
	conv.GetResponse("hello")
	conv.GetResponse("fine")
	conv.GetResponse("yeah")
	conv.GetResponse("hm")

	gen := &stubCompletion{err: errors.New("backend down")}
	ch := NewTextChannel(NewMockClient(), sessions, gen)

	reply := ch.replyFor(context.Background(), conv, "the weather has been odd this spring")
	if reply != fallbackReply {
		t.Errorf("expected canned fallback reply, got %q", reply)
	}
}

func TestTextChannel_NoCompletionClient(t *testing.T) {
	sessions := dialogue.NewManager()
	conv := newChannelConversation(t, sessions)
	conv.GetResponse("hello")
	conv.GetResponse("fine")
	conv.GetResponse("yeah")
	conv.GetResponse("hm")

	ch := NewTextChannel(NewMockClient(), sessions, nil)
	reply := ch.replyFor(context.Background(), conv, "the weather has been odd this spring")
	if reply != fallbackReply {
		t.Errorf("expected canned fallback reply without completion client, got %q", reply)
	}
}

func TestTextChannel_StartWithMockClientIsNoop(t *testing.T) {
	sessions := dialogue.NewManager()
	ch := NewTextChannel(NewMockClient(), sessions, nil)
	if err := ch.Start(context.Background()); err != nil {
		t.Errorf("expected mock channel start to be a no-op, got %v", err)
	}
}
