// Package kb composes the per-session script bundle.
package kb

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/CloseLoop/SalesPipe/internal/models"
)

// AgentName is the persona name the agent introduces itself with.
const AgentName = "Ava"

// BuildScript computes the immutable script bundle for one session from the
// personalization input. Both keys are normalized here, so callers can pass
// raw free text straight from an upstream payload.
func BuildScript(input models.PersonalizationInput) models.ScriptBundle {
	painPoint := NormalizePainPoint(input.PainPoint)
	industry := NormalizeIndustry(input.Industry)
	slog.Debug("kb.BuildScript: normalized personalization input",
		"painPoint", painPoint, "industry", industry, "firstName", input.FirstName != "")

	firstName := strings.TrimSpace(input.FirstName)
	company := strings.TrimSpace(input.CompanyName)
	if company == "" {
		company = "your business"
	}

	greeting := fmt.Sprintf("Hi%s! This is %s with CloseLoop AI. How's your day going so far?",
		greetingName(firstName), AgentName)

	painPrompt := fmt.Sprintf(
		"I was looking at %s and I'm curious — what's the biggest bottleneck with your leads right now: generating them, following up fast enough, or handling the volume?",
		company)

	rapport := map[models.Sentiment]string{
		models.SentimentPositive: "Love to hear it! " + painPrompt,
		models.SentimentNegative: "Sorry to hear that — hopefully I can make your day a little easier. " + painPrompt,
		models.SentimentNeutral:  "Glad I caught you — I'll keep this quick. " + painPrompt,
	}

	return models.ScriptBundle{
		Greeting:            greeting,
		Rapport:             rapport,
		Solution:            Render(painPoint, industry, FragmentSolution),
		Urgency:             Render(painPoint, industry, FragmentUrgency),
		DemoOffer:           demoOffer(industry),
		RecommendedServices: RecommendedServices(painPoint),
	}
}

// Acknowledgment returns the rendered acknowledgment fragment for raw
// personalization text.
func Acknowledgment(input models.PersonalizationInput) string {
	return Render(NormalizePainPoint(input.PainPoint), NormalizeIndustry(input.Industry), FragmentAcknowledgment)
}

// GenericTransition is the line used when an utterance does not match the
// acknowledgment keyword set but the script still needs to move forward.
func GenericTransition(input models.PersonalizationInput) string {
	industry := NormalizeIndustry(input.Industry)
	return fmt.Sprintf("That makes sense — a lot of %s owners tell us something similar.", industry)
}

func demoOffer(industry IndustryKey) string {
	profile, ok := industryCatalog[industry]
	if !ok {
		profile = industryCatalog[IndustryOther]
	}
	return fmt.Sprintf(
		"The easiest way to see it is a quick 15-minute demo where we plug it into your %s flow — worth grabbing a time this week?",
		profile.IndustrySpecific)
}

func greetingName(firstName string) string {
	if firstName == "" {
		return " there"
	}
	return " " + firstName
}
