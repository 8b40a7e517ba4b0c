package contact

import (
	"testing"
)

func TestExtract_FlatPayload(t *testing.T) {
	payload := []byte(`{
		"first_name": "Jordan",
		"last_name": "Blake",
		"email": "jordan@example.com",
		"phone": "+15550001111",
		"company": "Jordan Realty"
	}`)
	c := Extract(payload)
	if c.FirstName != "Jordan" || c.LastName != "Blake" {
		t.Errorf("unexpected name: %q %q", c.FirstName, c.LastName)
	}
	if c.Email != "jordan@example.com" {
		t.Errorf("unexpected email: %q", c.Email)
	}
	if c.Phone != "+15550001111" {
		t.Errorf("unexpected phone: %q", c.Phone)
	}
	if c.CompanyName != "Jordan Realty" {
		t.Errorf("unexpected company: %q", c.CompanyName)
	}
}

func TestExtract_NestedPayload(t *testing.T) {
	payload := []byte(`{
		"contact": {
			"firstName": "Sam",
			"lastName": "Rivera",
			"email": "sam@example.com"
		},
		"caller_id": "+15550002222"
	}`)
	c := Extract(payload)
	if c.FirstName != "Sam" || c.LastName != "Rivera" {
		t.Errorf("unexpected name: %q %q", c.FirstName, c.LastName)
	}
	if c.Email != "sam@example.com" {
		t.Errorf("unexpected email: %q", c.Email)
	}
	if c.Phone != "+15550002222" {
		t.Errorf("unexpected phone: %q", c.Phone)
	}
}

func TestExtract_FullNameSplit(t *testing.T) {
	c := Extract([]byte(`{"name": "Alex Morgan Chen"}`))
	if c.FirstName != "Alex" {
		t.Errorf("expected first name Alex, got %q", c.FirstName)
	}
	if c.LastName != "Morgan Chen" {
		t.Errorf("expected remainder as last name, got %q", c.LastName)
	}
}

func TestExtract_EmptyAndGarbage(t *testing.T) {
	for _, payload := range [][]byte{nil, []byte(``), []byte(`{}`), []byte(`not json at all`)} {
		c := Extract(payload)
		if c.FirstName != "" || c.Email != "" || c.Phone != "" {
			t.Errorf("expected empty contact for payload %q, got %+v", payload, c)
		}
	}
}

func TestExtractPersonalization(t *testing.T) {
	payload := []byte(`{
		"first_name": "Jordan",
		"company": "Jordan Realty",
		"industry": "real estate",
		"pain_point": "we miss calls too much"
	}`)
	input := ExtractPersonalization(payload)
	if input.Industry != "real estate" {
		t.Errorf("unexpected industry: %q", input.Industry)
	}
	if input.PainPoint != "we miss calls too much" {
		t.Errorf("unexpected pain point: %q", input.PainPoint)
	}
	if input.FirstName != "Jordan" || input.CompanyName != "Jordan Realty" {
		t.Errorf("unexpected identity fields: %q %q", input.FirstName, input.CompanyName)
	}
}

func TestExtractPersonalization_AlternateFieldNames(t *testing.T) {
	payload := []byte(`{"business_type": "med spa", "main_problem": "not following up fast enough"}`)
	input := ExtractPersonalization(payload)
	if input.Industry != "med spa" {
		t.Errorf("unexpected industry: %q", input.Industry)
	}
	if input.PainPoint != "not following up fast enough" {
		t.Errorf("unexpected pain point: %q", input.PainPoint)
	}
}
