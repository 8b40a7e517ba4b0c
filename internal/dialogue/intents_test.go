package dialogue

import (
	"strings"
	"testing"

	"github.com/CloseLoop/SalesPipe/internal/models"
)

func TestIsQuestion(t *testing.T) {
	tests := []struct {
		utterance string
		want      bool
	}{
		{"how much does this cost", true},
		{"what is this about", true},
		{"can you integrate with my CRM", true},
		{"really?", true},
		{"doing great thanks", false},
		{"sure let's do it", false},
	}
	for _, tt := range tests {
		if got := IsQuestion(tt.utterance); got != tt.want {
			t.Errorf("IsQuestion(%q) = %v, want %v", tt.utterance, got, tt.want)
		}
	}
}

func TestClassifySentiment(t *testing.T) {
	tests := []struct {
		utterance string
		want      models.Sentiment
	}{
		{"doing great", models.SentimentPositive},
		{"pretty good actually", models.SentimentPositive},
		{"not great to be honest", models.SentimentNegative},
		{"rough morning", models.SentimentNegative},
		{"I'm here", models.SentimentNeutral},
		{"", models.SentimentNeutral},
	}
	for _, tt := range tests {
		if got := ClassifySentiment(tt.utterance); got != tt.want {
			t.Errorf("ClassifySentiment(%q) = %q, want %q", tt.utterance, got, tt.want)
		}
	}
}

func TestClassifySentiment_NegativeBeatsPositive(t *testing.T) {
	// "not great" contains "great"; the negative rule set must run first.
	if got := ClassifySentiment("not great"); got != models.SentimentNegative {
		t.Errorf("expected negative for \"not great\", got %q", got)
	}
}

func TestIsSchedulingIntent(t *testing.T) {
	for _, u := range []string{"sure let's do it", "yeah book it", "sounds good", "ok", "absolutely"} {
		if !IsSchedulingIntent(u) {
			t.Errorf("expected %q to be a scheduling intent", u)
		}
	}
	for _, u := range []string{"maybe later", "I'll think about it", "hm"} {
		if IsSchedulingIntent(u) {
			t.Errorf("expected %q not to be a scheduling intent", u)
		}
	}
}

func TestClassifyObjection(t *testing.T) {
	tests := []struct {
		utterance string
		want      models.ObjectionKind
		matched   bool
	}{
		{"call me back next month", models.ObjectionDeferral, true},
		{"too expensive", models.ObjectionCost, true},
		{"we already have a service", models.ObjectionHasSolution, true},
		{"I'm swamped right now", models.ObjectionTooBusy, true},
		{"not interested", models.ObjectionGeneric, true},
		{"tell me more about the setup", "", false},
	}
	for _, tt := range tests {
		got, matched := ClassifyObjection(tt.utterance)
		if matched != tt.matched {
			t.Errorf("ClassifyObjection(%q) matched = %v, want %v", tt.utterance, matched, tt.matched)
			continue
		}
		if matched && got != tt.want {
			t.Errorf("ClassifyObjection(%q) = %q, want %q", tt.utterance, got, tt.want)
		}
	}
}

func TestClassifyObjection_SubTypeBeatsGeneric(t *testing.T) {
	// "no time" carries "no", but the too-busy rule must win over the
	// generic close-out.
	got, matched := ClassifyObjection("no time for this")
	if !matched || got != models.ObjectionTooBusy {
		t.Errorf("expected too-busy objection, got %q (matched=%v)", got, matched)
	}
}

func TestAnswerQuestion(t *testing.T) {
	tests := []struct {
		utterance string
		contains  string
		matched   bool
	}{
		{"who are you exactly", "CloseLoop", true},
		{"how much is this going to cost", "$297", true},
		{"how long does setup take", "48 hours", true},
		{"does it integrate with my crm", "CRMs", true},
		{"why is the sky blue", "", false},
	}
	for _, tt := range tests {
		answer, matched := AnswerQuestion(tt.utterance)
		if matched != tt.matched {
			t.Errorf("AnswerQuestion(%q) matched = %v, want %v", tt.utterance, matched, tt.matched)
			continue
		}
		if matched && !strings.Contains(answer, tt.contains) {
			t.Errorf("AnswerQuestion(%q) = %q, expected it to contain %q", tt.utterance, answer, tt.contains)
		}
	}
}
