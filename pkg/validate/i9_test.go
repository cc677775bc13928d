package validate

import (
	"testing"

	"github.com/hirewire/onboard/pkg/api"
)

func validI9() api.FormData {
	return api.FormData{
		"lastName":          "Lovelace",
		"firstName":         "Ada",
		"address1":          "1 Analytical Way",
		"city":              "Columbus",
		"state":             "OH",
		"zip":               "43004",
		"dateOfBirth":       "1990-12-10",
		"ssn":               "123456789",
		"citizenshipStatus": string(api.CitizenUS),
		"listADocument":     "US Passport",
	}
}

func TestI9_CitizenWithListA(t *testing.T) {
	res := I9(validI9())
	if !res.Valid {
		t.Fatalf("expected valid result, got %+v", res)
	}
}

func TestI9_RequiresFullAddress(t *testing.T) {
	// Section 1 collects the employee's full address.
	for _, field := range []string{"address1", "city", "state", "zip"} {
		data := validI9()
		delete(data, field)
		res := I9(data)
		if res.Valid {
			t.Fatalf("expected missing %s to be rejected", field)
		}
		if _, ok := res.FieldErrors[field]; !ok {
			t.Fatalf("expected error on %s, got %v", field, res.FieldErrors)
		}
	}
}

func TestI9_CitizenshipStatusRequired(t *testing.T) {
	data := validI9()
	data["citizenshipStatus"] = ""

	res := I9(data)
	if res.Valid {
		t.Fatalf("expected invalid result")
	}
	if _, ok := res.FieldErrors["citizenshipStatus"]; !ok {
		t.Fatalf("expected error on citizenshipStatus, got %v", res.FieldErrors)
	}
}

func TestI9_UnknownCitizenshipStatusRejected(t *testing.T) {
	data := validI9()
	data["citizenshipStatus"] = "dual_citizen"

	res := I9(data)
	if res.Valid {
		t.Fatalf("expected invalid result")
	}
	if _, ok := res.FieldErrors["citizenshipStatus"]; !ok {
		t.Fatalf("expected error on citizenshipStatus, got %v", res.FieldErrors)
	}
}

func TestI9_PermanentResidentNeedsUSCISNumber(t *testing.T) {
	data := validI9()
	data["citizenshipStatus"] = string(api.CitizenPermanentResident)

	res := I9(data)
	if res.Valid {
		t.Fatalf("expected invalid result without uscisNumber")
	}
	if _, ok := res.FieldErrors["uscisNumber"]; !ok {
		t.Fatalf("expected error on uscisNumber, got %v", res.FieldErrors)
	}

	data["uscisNumber"] = "A123456789"
	if res := I9(data); !res.Valid {
		t.Fatalf("expected valid result with uscisNumber, got %+v", res)
	}
}

func TestI9_AuthorizedAlienIdentifierRule(t *testing.T) {
	base := func() api.FormData {
		data := validI9()
		data["citizenshipStatus"] = string(api.CitizenAuthorizedAlien)
		data["workAuthExpiration"] = "2027-06-30"
		return data
	}

	// No identifier at all.
	res := I9(base())
	if res.Valid {
		t.Fatalf("expected invalid result without any identifier")
	}
	if len(res.Errors) == 0 {
		t.Fatalf("expected step-level identifier error, got %+v", res)
	}

	// USCIS number alone satisfies the rule.
	data := base()
	data["uscisNumber"] = "A123456789"
	if res := I9(data); !res.Valid {
		t.Fatalf("expected USCIS number to satisfy identifier rule, got %+v", res)
	}

	// I-94 number alone satisfies the rule.
	data = base()
	data["i94Number"] = "99912345678"
	if res := I9(data); !res.Valid {
		t.Fatalf("expected I-94 number to satisfy identifier rule, got %+v", res)
	}

	// Foreign passport requires the issuing country.
	data = base()
	data["foreignPassportNumber"] = "X1234567"
	res = I9(data)
	if res.Valid {
		t.Fatalf("expected invalid result for passport without country")
	}
	if _, ok := res.FieldErrors["passportCountry"]; !ok {
		t.Fatalf("expected error on passportCountry, got %v", res.FieldErrors)
	}

	data["passportCountry"] = "France"
	if res := I9(data); !res.Valid {
		t.Fatalf("expected passport plus country to satisfy identifier rule, got %+v", res)
	}
}

func TestI9_AuthorizedAlienNeedsExpirationDate(t *testing.T) {
	data := validI9()
	data["citizenshipStatus"] = string(api.CitizenAuthorizedAlien)
	data["uscisNumber"] = "A123456789"

	res := I9(data)
	if res.Valid {
		t.Fatalf("expected invalid result without workAuthExpiration")
	}
	if _, ok := res.FieldErrors["workAuthExpiration"]; !ok {
		t.Fatalf("expected error on workAuthExpiration, got %v", res.FieldErrors)
	}
}

func TestI9_DocumentListRule(t *testing.T) {
	// List B alone is not enough.
	data := validI9()
	delete(data, "listADocument")
	data["listBDocument"] = "Driver's license"

	res := I9(data)
	if res.Valid {
		t.Fatalf("expected invalid result for List B alone")
	}

	// List B plus List C satisfies the rule.
	data["listCDocument"] = "Social Security card"
	if res := I9(data); !res.Valid {
		t.Fatalf("expected List B + List C to be valid, got %+v", res)
	}
}

func TestI9Translator(t *testing.T) {
	res := I9Translator(api.FormData{})
	if res.Valid {
		t.Fatalf("expected empty translator data to be invalid")
	}
	for _, field := range []string{"translatorLastName", "translatorFirstName", "translatorAddress"} {
		if _, ok := res.FieldErrors[field]; !ok {
			t.Fatalf("expected error on %q, got %v", field, res.FieldErrors)
		}
	}

	res = I9Translator(api.FormData{
		"translatorLastName":  "Diaz",
		"translatorFirstName": "Maria",
		"translatorAddress":   "10 Elm St, Columbus OH",
	})
	if !res.Valid {
		t.Fatalf("expected valid translator data, got %+v", res)
	}
}

func TestI9Preparer(t *testing.T) {
	res := I9Preparer(api.FormData{})
	if res.Valid {
		t.Fatalf("expected empty preparer data to be invalid")
	}

	res = I9Preparer(api.FormData{
		"preparerLastName":  "Chen",
		"preparerFirstName": "Wei",
		"preparerAddress":   "22 Oak Ave, Columbus OH",
	})
	if !res.Valid {
		t.Fatalf("expected valid preparer data, got %+v", res)
	}
}
