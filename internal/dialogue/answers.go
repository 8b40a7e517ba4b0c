// Package dialogue provides canned answers for the fixed ad-hoc question intents.
package dialogue

import (
	"fmt"
	"strings"

	"github.com/CloseLoop/SalesPipe/internal/kb"
	"github.com/CloseLoop/SalesPipe/internal/models"
)

// questionIntentRule pairs a predicate with a question intent.
type questionIntentRule struct {
	matches func(text string) bool
	intent  models.QuestionIntent
}

// questionIntentRules is the fixed-priority intent table for AnswerQuestion.
var questionIntentRules = []questionIntentRule{
	{anyOf("who are you", "who is this", "what is this", "what are you", "am i talking to"), models.QuestionWhoAreYou},
	{anyOf("how much", "cost", "price", "pricing"), models.QuestionPricing},
	{anyOf("how long", "set up", "setup", "get started", "when can"), models.QuestionSetupTime},
	{anyOf("integrat", "crm", "work with", "calendar", "phone system"), models.QuestionIntegration},
}

// cannedAnswers holds the parameter-filled answer per question intent.
var cannedAnswers = map[models.QuestionIntent]string{
	models.QuestionWhoAreYou: fmt.Sprintf(
		"I'm %s, the AI assistant for CloseLoop — I help businesses catch every lead and book appointments automatically.",
		kb.AgentName),
	models.QuestionPricing: "Plans start at $297 a month after a free pilot week, and most clients cover that with their first recovered booking. Happy to walk through exact numbers on the demo.",
	models.QuestionSetupTime: "Setup takes about 48 hours — we plug into your existing phone number and calendar, no new hardware.",
	models.QuestionIntegration: "We integrate with Google Calendar, most CRMs, and your existing phone line. If you can name it, we've probably connected to it.",
}

// AnswerQuestion pattern-matches the utterance against the four fixed
// question intents and returns the canned answer. Answered questions never
// consume a stage transition; the second return value is false when no
// intent matches.
func AnswerQuestion(utterance string) (string, bool) {
	t := strings.ToLower(utterance)
	for _, rule := range questionIntentRules {
		if rule.matches(t) {
			return cannedAnswers[rule.intent], true
		}
	}
	return "", false
}
