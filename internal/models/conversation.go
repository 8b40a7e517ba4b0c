// Package models defines conversation stage and script types to avoid circular imports.
package models

// ConversationStage represents a discrete point in the fixed sales script.
type ConversationStage string

// Stage constants, in the fixed advancement order. A session's stage only ever
// moves forward through this sequence.
const (
	StageNotGreeted            ConversationStage = "NOT_GREETED"
	StageGreeted               ConversationStage = "GREETED"
	StageRapportBuilt          ConversationStage = "RAPPORT_BUILT"
	StagePainPointAcknowledged ConversationStage = "PAIN_POINT_ACKNOWLEDGED"
	StageSolutionPresented     ConversationStage = "SOLUTION_PRESENTED"
	StageDemoOffered           ConversationStage = "DEMO_OFFERED"
	StageBooking               ConversationStage = "BOOKING"
)

// stageRank maps each stage to its position in the advancement order.
var stageRank = map[ConversationStage]int{
	StageNotGreeted:            0,
	StageGreeted:               1,
	StageRapportBuilt:          2,
	StagePainPointAcknowledged: 3,
	StageSolutionPresented:     4,
	StageDemoOffered:           5,
	StageBooking:               6,
}

// Rank returns the position of the stage in the advancement order, or -1 for
// an unknown stage.
func (s ConversationStage) Rank() int {
	if r, ok := stageRank[s]; ok {
		return r
	}
	return -1
}

// Before reports whether s comes strictly before other in the advancement order.
func (s ConversationStage) Before(other ConversationStage) bool {
	return s.Rank() < other.Rank()
}

// IsValidStage checks if the given stage is one of the fixed script stages.
func IsValidStage(s ConversationStage) bool {
	_, ok := stageRank[s]
	return ok
}

// Sentiment classifies the emotional tone of an utterance.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// ObjectionKind enumerates the canned rebuttal categories.
type ObjectionKind string

const (
	ObjectionDeferral    ObjectionKind = "deferral"
	ObjectionCost        ObjectionKind = "cost"
	ObjectionHasSolution ObjectionKind = "has_solution"
	ObjectionTooBusy     ObjectionKind = "too_busy"
	ObjectionGeneric     ObjectionKind = "generic"
)

// QuestionIntent enumerates the ad-hoc question categories the engine answers
// without advancing the stage.
type QuestionIntent string

const (
	QuestionWhoAreYou   QuestionIntent = "who_are_you"
	QuestionPricing     QuestionIntent = "pricing"
	QuestionSetupTime   QuestionIntent = "setup_time"
	QuestionIntegration QuestionIntent = "integration"
)

// ScriptBundle is the immutable set of personalized text fragments computed
// once at session start. Rapport holds one response per sentiment.
type ScriptBundle struct {
	Greeting            string
	Rapport             map[Sentiment]string
	Solution            string
	Urgency             string
	DemoOffer           string
	RecommendedServices []string
}
