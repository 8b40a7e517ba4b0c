// Package contact extracts prospect identity fields from heterogeneous
// upstream JSON payloads. Every upstream dialer and CRM shapes its webhook
// differently, so extraction is a best-effort walk over candidate paths with
// an empty-string fallback. The extracted Contact is passed explicitly
// through the call chain; there is no process-wide contact cache.
package contact

import (
	"log/slog"
	"strings"

	"github.com/CloseLoop/SalesPipe/internal/models"
	"github.com/tidwall/gjson"
)

// Candidate paths per field, in priority order. First non-empty value wins.
var (
	firstNamePaths = []string{
		"first_name", "firstName", "contact.first_name", "contact.firstName",
		"customer.first_name", "lead.first_name", "name",
	}
	lastNamePaths = []string{
		"last_name", "lastName", "contact.last_name", "contact.lastName",
		"customer.last_name", "lead.last_name",
	}
	emailPaths = []string{
		"email", "contact.email", "customer.email", "lead.email", "email_address",
	}
	phonePaths = []string{
		"phone", "phone_number", "contact.phone", "customer.phone",
		"lead.phone", "caller_id", "from",
	}
	companyPaths = []string{
		"company", "company_name", "companyName", "contact.company",
		"business_name", "lead.company",
	}
	industryPaths = []string{
		"industry", "business_type", "contact.industry", "lead.industry", "vertical",
	}
	painPointPaths = []string{
		"pain_point", "painPoint", "main_problem", "lead.pain_point", "notes.pain_point",
	}
)

// Extract pulls a Contact from a raw JSON payload. Fields that cannot be
// resolved stay empty; Extract never fails.
func Extract(payload []byte) models.Contact {
	c := models.Contact{
		FirstName:   firstValue(payload, firstNamePaths),
		LastName:    firstValue(payload, lastNamePaths),
		Email:       firstValue(payload, emailPaths),
		Phone:       firstValue(payload, phonePaths),
		CompanyName: firstValue(payload, companyPaths),
	}

	// A bare "name" field may carry the full name; split off the first token.
	if c.FirstName != "" && c.LastName == "" {
		if first, rest, found := strings.Cut(c.FirstName, " "); found {
			c.FirstName = first
			c.LastName = rest
		}
	}

	slog.Debug("contact.Extract: extracted contact",
		"hasFirstName", c.FirstName != "", "hasEmail", c.Email != "", "hasPhone", c.Phone != "")
	return c
}

// ExtractPersonalization pulls the personalization fields (industry and pain
// point plus name/company) from a raw JSON payload, with the same best-effort
// semantics as Extract.
func ExtractPersonalization(payload []byte) models.PersonalizationInput {
	c := Extract(payload)
	return models.PersonalizationInput{
		Industry:    firstValue(payload, industryPaths),
		PainPoint:   firstValue(payload, painPointPaths),
		FirstName:   c.FirstName,
		CompanyName: c.CompanyName,
	}
}

// firstValue returns the first non-empty string at any of the candidate
// paths.
func firstValue(payload []byte, paths []string) string {
	for _, path := range paths {
		if v := gjson.GetBytes(payload, path); v.Exists() {
			if s := strings.TrimSpace(v.String()); s != "" {
				return s
			}
		}
	}
	return ""
}
