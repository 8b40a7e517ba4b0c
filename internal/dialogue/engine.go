// Package dialogue implements the conversation state machine that drives a
// session through the fixed sales script.
package dialogue

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/CloseLoop/SalesPipe/internal/kb"
	"github.com/CloseLoop/SalesPipe/internal/models"
)

// Rebuttal templates keyed by objection category.
var rebuttals = map[models.ObjectionKind]string{
	models.ObjectionDeferral:    "Totally understand — timing matters. That said, the leads you're missing this week don't come back next month. The demo is 15 minutes and you'll know right away whether it's a fit.",
	models.ObjectionCost:        "Fair question — it's a fraction of what one missed lead costs. Most clients cover the subscription with their first recovered booking.",
	models.ObjectionHasSolution: "That's great — most of our clients had something in place too. The difference is ours answers in seconds, around the clock. Worth a side-by-side look?",
	models.ObjectionTooBusy:     "That's exactly why this exists — it takes the busywork off your plate. Fifteen minutes now saves hours every week.",
	models.ObjectionGeneric:     "No worries — I'll leave it here. If leads ever start slipping through the cracks, you know where to find us.",
}

// calendarPrompt is emitted at the hand-off into the booking stage. Concrete
// day/time extraction and slot locking happen in the transport layer.
const calendarPrompt = "Awesome! What day works best for you this week? I can do mornings or afternoons."

// Conversation owns the per-session dialogue state. One Conversation exists
// per active call/session; it is never shared across sessions. The stage only
// ever advances forward through the fixed script order.
type Conversation struct {
	sessionID string
	contact   models.Contact
	input     models.PersonalizationInput
	script    models.ScriptBundle

	mu              sync.Mutex
	stage           models.ConversationStage
	lastUserMessage string
	discovery       map[string]string
	answerCount     int
}

// NewConversation creates the state record for a fresh session and computes
// its personalized script once. The contact travels with the conversation
// explicitly; there is no process-wide contact cache.
func NewConversation(sessionID string, contact models.Contact, input models.PersonalizationInput) *Conversation {
	slog.Debug("dialogue.NewConversation: creating session state",
		"sessionID", sessionID, "industry", input.Industry, "painPoint", input.PainPoint)
	return &Conversation{
		sessionID: sessionID,
		contact:   contact,
		input:     input,
		script:    kb.BuildScript(input),
		stage:     models.StageNotGreeted,
		discovery: make(map[string]string),
	}
}

// SessionID returns the session identifier.
func (c *Conversation) SessionID() string { return c.sessionID }

// Contact returns the prospect contact carried by this session.
func (c *Conversation) Contact() models.Contact { return c.contact }

// Input returns the personalization input the session was created with.
func (c *Conversation) Input() models.PersonalizationInput { return c.input }

// Script returns the immutable script bundle computed at session start.
func (c *Conversation) Script() models.ScriptBundle { return c.script }

// Stage returns the current conversation stage.
func (c *Conversation) Stage() models.ConversationStage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stage
}

// LastUserMessage returns the most recent raw utterance, for diagnostics.
func (c *Conversation) LastUserMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastUserMessage
}

// DiscoveryAnswers returns a copy of the answers captured during the booking
// stage, for inclusion in the booking webhook payload.
func (c *Conversation) DiscoveryAnswers() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string, len(c.discovery))
	for k, v := range c.discovery {
		out[k] = v
	}
	return out
}

// GetResponse consumes one inbound utterance and returns the scripted reply.
// The boolean is false when no scripted reply applies; the caller must then
// fall back to the completion backend. GetResponse never fails: every path
// returns either a non-empty reply or (_, false).
func (c *Conversation) GetResponse(utterance string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastUserMessage = utterance

	// Questions are answered in place and never consume a stage transition.
	if IsQuestion(utterance) {
		if answer, ok := AnswerQuestion(utterance); ok {
			slog.Debug("Conversation.GetResponse: answered ad-hoc question",
				"sessionID", c.sessionID, "stage", c.stage)
			return answer, true
		}
	}

	switch c.stage {
	case models.StageNotGreeted:
		c.advance(models.StageGreeted)
		return c.script.Greeting, true

	case models.StageGreeted:
		sentiment := ClassifySentiment(utterance)
		c.advance(models.StageRapportBuilt)
		slog.Debug("Conversation.GetResponse: rapport response",
			"sessionID", c.sessionID, "sentiment", sentiment)
		return c.script.Rapport[sentiment], true

	case models.StageRapportBuilt:
		// The acknowledgment turn flows straight into the solution pitch,
		// passing through the acknowledged stage in a single transition.
		lead := kb.GenericTransition(c.input)
		if MatchesAcknowledgment(utterance) {
			lead = kb.Acknowledgment(c.input)
		}
		c.advance(models.StagePainPointAcknowledged)
		c.advance(models.StageSolutionPresented)
		return lead + " " + c.script.Solution, true

	case models.StageSolutionPresented:
		c.advance(models.StageDemoOffered)
		return c.script.Urgency + " " + c.script.DemoOffer, true
	}

	// All scripted stages are behind us: DemoOffered or Booking.
	if c.stage == models.StageDemoOffered && IsSchedulingIntent(utterance) {
		c.advance(models.StageBooking)
		slog.Info("Conversation.GetResponse: scheduling intent detected",
			"sessionID", c.sessionID)
		return calendarPrompt, true
	}

	if c.stage == models.StageBooking {
		// Capture booking-stage utterances as discovery answers; time/slot
		// parsing is the transport's job.
		c.answerCount++
		c.discovery[fmt.Sprintf("answer_%d", c.answerCount)] = utterance
	}

	if kind, ok := ClassifyObjection(utterance); ok {
		slog.Debug("Conversation.GetResponse: objection rebuttal",
			"sessionID", c.sessionID, "kind", kind)
		return rebuttals[kind], true
	}

	slog.Debug("Conversation.GetResponse: no scripted reply",
		"sessionID", c.sessionID, "stage", c.stage)
	return "", false
}

// advance moves the stage forward. Transitions only ever move toward the end
// of the script; a stale target is ignored rather than regressing.
func (c *Conversation) advance(to models.ConversationStage) {
	if !c.stage.Before(to) {
		return
	}
	slog.Debug("Conversation.advance: stage transition",
		"sessionID", c.sessionID, "from", c.stage, "to", to)
	c.stage = to
}
