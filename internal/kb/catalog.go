// Package kb provides the response knowledge base: closed catalogs of
// pain-point templates and industry profiles, normalization of free-text
// inputs onto catalog keys, placeholder substitution, and per-session
// script composition.
package kb

// PainPointKey identifies an entry in the pain-point catalog.
type PainPointKey string

// The closed set of pain-point catalog keys. PainPointMix is the fallback.
const (
	PainPointLeadGen   PainPointKey = "not generating enough leads"
	PainPointFollowUp  PainPointKey = "not following up with leads fast enough"
	PainPointQualified PainPointKey = "not speaking to qualified leads"
	PainPointMissCalls PainPointKey = "miss calls too much"
	PainPointVolume    PainPointKey = "can't handle the amount of leads"
	PainPointMix       PainPointKey = "mix of everything"
)

// IndustryKey identifies an entry in the industry catalog.
type IndustryKey string

// The closed set of industry catalog keys. IndustryOther is the fallback.
const (
	IndustryRealEstate   IndustryKey = "real estate"
	IndustryMedSpa       IndustryKey = "med spa"
	IndustryLawFirm      IndustryKey = "law firm"
	IndustryHomeServices IndustryKey = "home services"
	IndustryDental       IndustryKey = "dental"
	IndustryFitness      IndustryKey = "fitness"
	IndustryInsurance    IndustryKey = "insurance"
	IndustryAutomotive   IndustryKey = "automotive"
	IndustryRestaurants  IndustryKey = "restaurants"
	IndustryOther        IndustryKey = "other"
)

// FragmentKind selects which template of a PainPointTemplate to render.
type FragmentKind string

const (
	FragmentAcknowledgment FragmentKind = "acknowledgment"
	FragmentSolution       FragmentKind = "solution"
	FragmentUrgency        FragmentKind = "urgency"
)

// PainPointTemplate holds the three placeholder-bearing templates for one
// pain-point key.
type PainPointTemplate struct {
	Acknowledgment string
	Solution       string
	Urgency        string
}

// IndustryProfile holds the substitution values for one industry key.
type IndustryProfile struct {
	IndustrySpecific    string   // industry jargon for the thing the AI books ("showing", "consultation", ...)
	QualifyingQuestions []string // questions the AI asks to qualify a lead
	RevenueAmount       string   // representative value of one captured lead
	SpecialContext      string   // optional extra sentence appended to solution fragments
	Competitor          string   // label for the prospect's competition
}

// painPointCatalog is the closed pain-point catalog. Templates may reference
// any placeholder defined in substitution.go; ValidateCatalog rejects anything
// else at load time.
var painPointCatalog = map[PainPointKey]PainPointTemplate{
	PainPointLeadGen: {
		Acknowledgment: "I hear that a lot from {INDUSTRY} owners — the pipeline just isn't filling itself.",
		Solution:       "We put an AI on your existing lead sources that works your database around the clock, revives cold contacts, and books each {INDUSTRY_SPECIFIC} straight onto your calendar after asking things like: {QUALIFYING_QUESTIONS}",
		Urgency:        "Every month without a full pipeline, your competitors pick up the {INDUSTRY} leads you never saw — each one worth around {REVENUE_AMOUNT}.",
	},
	PainPointFollowUp: {
		Acknowledgment: "That's the classic one — speed to lead. In {INDUSTRY}, whoever answers first usually wins the deal.",
		Solution:       "Our AI responds to every new lead within seconds, by call and text, and keeps following up until they book a {INDUSTRY_SPECIFIC} — asking {QUALIFYING_QUESTIONS} along the way.",
		Urgency:        "Leads go cold in minutes. At roughly {REVENUE_AMOUNT} per closed {INDUSTRY} lead, slow follow-up is the most expensive habit a business can keep.",
	},
	PainPointQualified: {
		Acknowledgment: "Makes sense — nothing burns a team out faster than talking to people who were never going to buy.",
		Solution:       "Before anything hits your calendar, the AI qualifies every {INDUSTRY} lead with {QUALIFYING_QUESTIONS} — so the only {INDUSTRY_SPECIFIC} you take are ones worth your time.",
		Urgency:        "Every hour your closers spend on unqualified leads is an hour not spent on the {REVENUE_AMOUNT} deals in your {INDUSTRY} pipeline.",
	},
	PainPointMissCalls: {
		Acknowledgment: "Totally get it — in {INDUSTRY}, every missed call is {REVENUE_AMOUNT} walking straight to a competitor.",
		Solution:       "Our AI answers every call on the first ring, day or night, books the {INDUSTRY_SPECIFIC} right there on the call, and covers {QUALIFYING_QUESTIONS} so your team has full context.",
		Urgency:        "Calls you miss don't wait — they dial the next {INDUSTRY} listing. At {REVENUE_AMOUNT} a call, that adds up fast.",
	},
	PainPointVolume: {
		Acknowledgment: "A good problem to have, but still a problem — more leads than hands to work them.",
		Solution:       "The AI handles unlimited simultaneous conversations, triages every {INDUSTRY} lead with {QUALIFYING_QUESTIONS}, and only escalates the ones that need a human — the rest get a {INDUSTRY_SPECIFIC} booked automatically.",
		Urgency:        "Overflow leads don't queue politely — they leave. Each one that slips through is {REVENUE_AMOUNT} your {INDUSTRY} business already paid to acquire.",
	},
	PainPointMix: {
		Acknowledgment: "Sounds like a bit of everything — which usually means the whole lead flow needs a safety net.",
		Solution:       "We wrap your whole {INDUSTRY} lead flow: answering every call, following up on every lead, qualifying with {QUALIFYING_QUESTIONS}, and booking each {INDUSTRY_SPECIFIC} without anyone lifting a finger.",
		Urgency:        "When leads leak at every step, the losses compound — at {REVENUE_AMOUNT} per {INDUSTRY} lead, plugging the gaps pays for itself in the first week.",
	},
}

// industryCatalog is the closed industry catalog.
var industryCatalog = map[IndustryKey]IndustryProfile{
	IndustryRealEstate: {
		IndustrySpecific:    "showing",
		QualifyingQuestions: []string{"Are you looking to buy or sell?", "What's your timeline?", "Are you pre-approved?"},
		RevenueAmount:       "$9,000",
		SpecialContext:      "Agents using us report their response time dropping from hours to under a minute.",
		Competitor:          "other agents in your market",
	},
	IndustryMedSpa: {
		IndustrySpecific:    "consultation",
		QualifyingQuestions: []string{"Which treatment are you interested in?", "Have you visited us before?"},
		RevenueAmount:       "$350",
		SpecialContext:      "Med spas on our platform fill about 30% more consultation slots in the first month.",
		Competitor:          "other med spas nearby",
	},
	IndustryLawFirm: {
		IndustrySpecific:    "case evaluation",
		QualifyingQuestions: []string{"What type of legal matter is this?", "When did the incident occur?"},
		RevenueAmount:       "$4,500",
		SpecialContext:      "Firms tell us after-hours intake alone pays for the service.",
		Competitor:          "the firm across town",
	},
	IndustryHomeServices: {
		IndustrySpecific:    "service call",
		QualifyingQuestions: []string{"Is this an emergency?", "What's the issue you're seeing?", "What's the property zip code?"},
		RevenueAmount:       "$600",
		SpecialContext:      "Home service companies recover most of their missed-call revenue within two weeks.",
		Competitor:          "the next contractor on Google",
	},
	IndustryDental: {
		IndustrySpecific:    "appointment",
		QualifyingQuestions: []string{"Are you a new or existing patient?", "Is this routine or urgent?"},
		RevenueAmount:       "$700",
		Competitor:          "other practices in your area",
	},
	IndustryFitness: {
		IndustrySpecific:    "intro session",
		QualifyingQuestions: []string{"What's your main fitness goal?", "Have you trained with a coach before?"},
		RevenueAmount:       "$1,200",
		Competitor:          "the gym down the street",
	},
	IndustryInsurance: {
		IndustrySpecific:    "quote call",
		QualifyingQuestions: []string{"What coverage are you shopping for?", "When does your current policy renew?"},
		RevenueAmount:       "$1,800",
		Competitor:          "the big national carriers",
	},
	IndustryAutomotive: {
		IndustrySpecific:    "test drive",
		QualifyingQuestions: []string{"Are you trading in a vehicle?", "Are you paying cash or financing?"},
		RevenueAmount:       "$2,400",
		Competitor:          "the dealership up the road",
	},
	IndustryRestaurants: {
		IndustrySpecific:    "reservation",
		QualifyingQuestions: []string{"What party size?", "Any special occasion?"},
		RevenueAmount:       "$120",
		Competitor:          "every other table in town",
	},
	IndustryOther: {
		IndustrySpecific:    "appointment",
		QualifyingQuestions: []string{"What are you looking for help with?", "What's your timeline?"},
		RevenueAmount:       "$500",
		Competitor:          "your competitors",
	},
}

// recommendedServicesCatalog maps each pain-point key to its fixed, ordered
// service recommendation list.
var recommendedServicesCatalog = map[PainPointKey][]string{
	PainPointLeadGen:   {"AI Lead Generation", "Database Reactivation"},
	PainPointFollowUp:  {"SMS Follow-Ups", "Smart Appointment Booking"},
	PainPointQualified: {"Lead Qualification Bot", "Smart Appointment Booking"},
	PainPointMissCalls: {"AI Voice Calls", "SMS Follow-Ups"},
	PainPointVolume:    {"AI Voice Calls", "Lead Qualification Bot", "SMS Follow-Ups"},
	PainPointMix:       {"AI Voice Calls", "SMS Follow-Ups", "AI Lead Generation", "Smart Appointment Booking"},
}

// PainPointKeys returns all pain-point catalog keys.
func PainPointKeys() []PainPointKey {
	keys := make([]PainPointKey, 0, len(painPointCatalog))
	for k := range painPointCatalog {
		keys = append(keys, k)
	}
	return keys
}

// IndustryKeys returns all industry catalog keys.
func IndustryKeys() []IndustryKey {
	keys := make([]IndustryKey, 0, len(industryCatalog))
	for k := range industryCatalog {
		keys = append(keys, k)
	}
	return keys
}

// RecommendedServices returns the fixed ordered service list for a pain-point
// key. Unknown keys resolve to the fallback entry.
func RecommendedServices(key PainPointKey) []string {
	if services, ok := recommendedServicesCatalog[key]; ok {
		return services
	}
	return recommendedServicesCatalog[PainPointMix]
}
