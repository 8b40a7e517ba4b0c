// Package kb provides typed placeholder substitution for catalog templates.
package kb

import (
	"fmt"
	"regexp"
	"strings"
)

// Placeholder identifies a substitution token that may appear in catalog
// templates. The set is closed: templates containing any other {TOKEN} are
// rejected by ValidateCatalog.
type Placeholder string

const (
	PlaceholderIndustry            Placeholder = "{INDUSTRY}"
	PlaceholderIndustrySpecific    Placeholder = "{INDUSTRY_SPECIFIC}"
	PlaceholderQualifyingQuestions Placeholder = "{QUALIFYING_QUESTIONS}"
	PlaceholderRevenueAmount       Placeholder = "{REVENUE_AMOUNT}"
)

// knownPlaceholders is the closed substitution token set.
var knownPlaceholders = map[Placeholder]bool{
	PlaceholderIndustry:            true,
	PlaceholderIndustrySpecific:    true,
	PlaceholderQualifyingQuestions: true,
	PlaceholderRevenueAmount:       true,
}

// placeholderPattern matches any {TOKEN}-shaped string in a template.
var placeholderPattern = regexp.MustCompile(`\{[A-Z][A-Z0-9_]*\}`)

// ValidateCatalog scans every template in the pain-point catalog and rejects
// any placeholder token outside the closed set. Call it once at startup so a
// bad catalog entry fails the process instead of leaking {TOKEN} text to a
// prospect.
func ValidateCatalog() error {
	for key, tpl := range painPointCatalog {
		for kind, text := range map[FragmentKind]string{
			FragmentAcknowledgment: tpl.Acknowledgment,
			FragmentSolution:       tpl.Solution,
			FragmentUrgency:        tpl.Urgency,
		} {
			for _, token := range placeholderPattern.FindAllString(text, -1) {
				if !knownPlaceholders[Placeholder(token)] {
					return fmt.Errorf("pain point %q %s template references unknown placeholder %s", key, kind, token)
				}
			}
		}
	}
	return nil
}

// substitutions builds the full substitution map for an industry profile.
// Every known placeholder gets a value, so substitution is always total.
func substitutions(industry IndustryKey, profile IndustryProfile) map[Placeholder]string {
	return map[Placeholder]string{
		PlaceholderIndustry:            string(industry),
		PlaceholderIndustrySpecific:    profile.IndustrySpecific,
		PlaceholderQualifyingQuestions: strings.Join(profile.QualifyingQuestions, " "),
		PlaceholderRevenueAmount:       profile.RevenueAmount,
	}
}

// substitute applies the substitution map to a template.
func substitute(template string, subs map[Placeholder]string) string {
	out := template
	for token, value := range subs {
		out = strings.ReplaceAll(out, string(token), value)
	}
	return out
}

// Render looks up the template for the given pain point and fragment kind and
// substitutes the resolved industry profile's values. Solution fragments also
// get the profile's special-context sentence appended when present. Unknown
// keys resolve to the fallback catalog entries, so the result is always
// non-empty.
func Render(painPoint PainPointKey, industry IndustryKey, kind FragmentKind) string {
	tpl, ok := painPointCatalog[painPoint]
	if !ok {
		tpl = painPointCatalog[PainPointMix]
		painPoint = PainPointMix
	}
	profile, ok := industryCatalog[industry]
	if !ok {
		profile = industryCatalog[IndustryOther]
		industry = IndustryOther
	}

	var template string
	switch kind {
	case FragmentAcknowledgment:
		template = tpl.Acknowledgment
	case FragmentUrgency:
		template = tpl.Urgency
	default:
		template = tpl.Solution
	}

	text := substitute(template, substitutions(industry, profile))
	if kind == FragmentSolution && profile.SpecialContext != "" {
		text += " " + profile.SpecialContext
	}
	return text
}
