// Package dialogue provides keyword-based intent classification over
// free-text utterances. Classification is deterministic: ordered rule
// tables of (predicate, result) pairs, first match wins. Rule order is
// part of the contract; reordering changes behavior.
package dialogue

import (
	"strings"

	"github.com/CloseLoop/SalesPipe/internal/models"
)

// questionKeywords is the fixed keyword set that classifies an utterance as
// a question before any stage check runs.
var questionKeywords = []string{
	"what is", "how much", "cost", "price", "how long", "when can",
	"do you", "can you", "will you", "?",
}

// IsQuestion reports whether the utterance should be routed to the ad-hoc
// question answerer instead of the stage machine.
func IsQuestion(utterance string) bool {
	t := strings.ToLower(utterance)
	for _, kw := range questionKeywords {
		if strings.Contains(t, kw) {
			return true
		}
	}
	return false
}

// Sentiment keyword sets. Negative rules run first so phrases like
// "not great" resolve negative before the positive set sees "great".
var (
	negativeKeywords = []string{
		"not great", "not good", "not well", "bad", "terrible", "rough",
		"awful", "stressed", "tired", "horrible", "exhausted",
	}
	positiveKeywords = []string{
		"great", "good", "well", "awesome", "fantastic", "excellent",
		"amazing", "wonderful", "can't complain", "fine",
	}
)

// ClassifySentiment buckets an utterance as positive, negative, or neutral
// using the fixed keyword sets.
func ClassifySentiment(utterance string) models.Sentiment {
	t := strings.ToLower(utterance)
	for _, kw := range negativeKeywords {
		if strings.Contains(t, kw) {
			return models.SentimentNegative
		}
	}
	for _, kw := range positiveKeywords {
		if strings.Contains(t, kw) {
			return models.SentimentPositive
		}
	}
	return models.SentimentNeutral
}

// acknowledgmentKeywords gates whether a pain-point acknowledgment line or
// the generic transition line is emitted.
var acknowledgmentKeywords = []string{
	"yeah", "yes", "exactly", "right", "true", "totally", "definitely",
	"correct", "struggle", "struggling", "problem", "issue",
}

// MatchesAcknowledgment reports whether the utterance confirms the stated
// pain point.
func MatchesAcknowledgment(utterance string) bool {
	t := strings.ToLower(utterance)
	for _, kw := range acknowledgmentKeywords {
		if strings.Contains(t, kw) {
			return true
		}
	}
	return false
}

// schedulingKeywords is the affirmative set that flips the conversation into
// the booking stage once the demo has been offered.
var schedulingKeywords = []string{
	"sure", "yes", "yeah", "yep", "ok", "okay", "sounds good",
	"let's do it", "lets do it", "book", "schedule", "interested",
	"absolutely", "why not",
}

// IsSchedulingIntent reports whether the utterance accepts the demo offer.
func IsSchedulingIntent(utterance string) bool {
	t := strings.ToLower(utterance)
	for _, kw := range schedulingKeywords {
		if strings.Contains(t, kw) {
			return true
		}
	}
	return false
}

// objectionRule pairs a predicate with the rebuttal category it selects.
type objectionRule struct {
	matches func(text string) bool
	kind    models.ObjectionKind
}

func anyOf(subs ...string) func(string) bool {
	return func(t string) bool {
		for _, s := range subs {
			if strings.Contains(t, s) {
				return true
			}
		}
		return false
	}
}

// objectionRules is the fixed-priority sub-type table. The generic close-out
// applies only when the broader negative set matches but no sub-type does.
var objectionRules = []objectionRule{
	{anyOf("later", "not right now", "not now", "think about it", "next week", "next month", "maybe", "circle back", "get back to you"), models.ObjectionDeferral},
	{anyOf("expensive", "cost", "afford", "price", "budget", "money"), models.ObjectionCost},
	{anyOf("already have", "already using", "already work", "we use", "got someone"), models.ObjectionHasSolution},
	{anyOf("busy", "no time", "swamped", "slammed"), models.ObjectionTooBusy},
}

// genericNegativeKeywords gates the fallback close-out line.
var genericNegativeKeywords = []string{"no", "not interested", "don't", "stop", "pass"}

// ClassifyObjection resolves an utterance to a rebuttal category. The second
// return value is false when the utterance carries no objection at all, in
// which case the caller should hand off to the completion backend.
func ClassifyObjection(utterance string) (models.ObjectionKind, bool) {
	t := strings.ToLower(utterance)
	for _, rule := range objectionRules {
		if rule.matches(t) {
			return rule.kind, true
		}
	}
	for _, kw := range genericNegativeKeywords {
		if strings.Contains(t, kw) {
			return models.ObjectionGeneric, true
		}
	}
	return "", false
}
