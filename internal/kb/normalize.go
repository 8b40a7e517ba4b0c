// Package kb provides normalization of free-text pain-point and industry
// descriptions onto catalog keys.
package kb

import "strings"

// painPointRule pairs a predicate with the catalog key it resolves to.
// Rules are evaluated in slice order; the first match wins. Reordering
// changes classification behavior, so the order is part of the contract.
type painPointRule struct {
	matches func(text string) bool
	key     PainPointKey
}

func containsAll(text string, subs ...string) bool {
	for _, s := range subs {
		if !strings.Contains(text, s) {
			return false
		}
	}
	return true
}

func containsAny(text string, subs ...string) bool {
	for _, s := range subs {
		if strings.Contains(text, s) {
			return true
		}
	}
	return false
}

// painPointRules is the fixed-priority rule table for NormalizePainPoint.
var painPointRules = []painPointRule{
	{func(t string) bool { return containsAll(t, "generat", "lead") }, PainPointLeadGen},
	{func(t string) bool { return containsAny(t, "following up", "follow up", "follow-up", "following") }, PainPointFollowUp},
	{func(t string) bool { return strings.Contains(t, "qualified") }, PainPointQualified},
	{func(t string) bool { return containsAll(t, "miss", "calls") }, PainPointMissCalls},
	{func(t string) bool { return containsAll(t, "handle", "amount") }, PainPointVolume},
	{func(t string) bool { return containsAny(t, "mix", "everything") }, PainPointMix},
}

// NormalizePainPoint maps arbitrary free text onto the nearest pain-point
// catalog key. It is total: any input, including empty or garbage text,
// resolves to a catalog key, with PainPointMix as the fallback.
func NormalizePainPoint(text string) PainPointKey {
	t := strings.ToLower(strings.TrimSpace(text))
	for _, rule := range painPointRules {
		if rule.matches(t) {
			return rule.key
		}
	}
	return PainPointMix
}

// industryRule pairs a predicate with the catalog key it resolves to.
type industryRule struct {
	matches func(text string) bool
	key     IndustryKey
}

// industryExactOrder fixes the order exact-key matching is attempted in.
// Longer, more specific keys come first so "real estate law firm" style
// inputs resolve deterministically.
var industryExactOrder = []IndustryKey{
	IndustryHomeServices,
	IndustryRealEstate,
	IndustryMedSpa,
	IndustryLawFirm,
	IndustryDental,
	IndustryFitness,
	IndustryInsurance,
	IndustryAutomotive,
	IndustryRestaurants,
	IndustryOther,
}

// industrySynonymRules is the broader synonym bucket table, evaluated only
// after exact key matching fails.
var industrySynonymRules = []industryRule{
	{func(t string) bool { return containsAny(t, "plumb", "hvac", "electric", "roofing", "landscap") }, IndustryHomeServices},
	{func(t string) bool { return containsAny(t, "medical", "spa", "aesthetic", "botox", "wellness") }, IndustryMedSpa},
	{func(t string) bool { return containsAny(t, "legal", "attorney", "lawyer") }, IndustryLawFirm},
	{func(t string) bool { return containsAny(t, "property", "realtor", "realty", "broker") }, IndustryRealEstate},
	{func(t string) bool { return containsAny(t, "dentist", "orthodont") }, IndustryDental},
	{func(t string) bool { return containsAny(t, "gym", "crossfit", "personal train") }, IndustryFitness},
	{func(t string) bool { return containsAny(t, "restaurant", "cafe", "catering") }, IndustryRestaurants},
	{func(t string) bool { return containsAny(t, "car dealer", "dealership", "auto") }, IndustryAutomotive},
}

// NormalizeIndustry maps arbitrary free text onto the nearest industry
// catalog key: exact substring match against the fixed industry list first,
// then synonym buckets, else IndustryOther. It is total.
func NormalizeIndustry(text string) IndustryKey {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return IndustryOther
	}
	for _, key := range industryExactOrder {
		if strings.Contains(t, string(key)) {
			return key
		}
	}
	for _, rule := range industrySynonymRules {
		if rule.matches(t) {
			return rule.key
		}
	}
	return IndustryOther
}
