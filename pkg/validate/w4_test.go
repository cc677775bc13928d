package validate

import (
	"testing"

	"github.com/hirewire/onboard/pkg/api"
)

func validW4() api.FormData {
	return api.FormData{
		"firstName":    "Ada",
		"lastName":     "Lovelace",
		"address1":     "1 Analytical Way",
		"city":         "Columbus",
		"state":        "OH",
		"zip":          "43004",
		"ssn":          "123456789",
		"filingStatus": string(api.FilingSingle),
	}
}

func TestW4_ValidData(t *testing.T) {
	if res := W4(validW4()); !res.Valid {
		t.Fatalf("expected valid result, got %+v", res)
	}
}

func TestW4_RequiresFullAddress(t *testing.T) {
	// The certificate's address line carries city, state and ZIP, so all
	// three are collected alongside the street address.
	for _, field := range []string{"address1", "city", "state", "zip"} {
		data := validW4()
		delete(data, field)
		res := W4(data)
		if res.Valid {
			t.Fatalf("expected missing %s to be rejected", field)
		}
		if _, ok := res.FieldErrors[field]; !ok {
			t.Fatalf("expected error on %s, got %v", field, res.FieldErrors)
		}
	}
}

func TestW4_FilingStatuses(t *testing.T) {
	for _, status := range []api.FilingStatus{api.FilingSingle, api.FilingMarriedJointly, api.FilingHeadOfHousehold} {
		data := validW4()
		data["filingStatus"] = string(status)
		if res := W4(data); !res.Valid {
			t.Fatalf("expected filing status %q to be valid, got %+v", status, res)
		}
	}

	data := validW4()
	data["filingStatus"] = "married_separately"
	res := W4(data)
	if res.Valid {
		t.Fatalf("expected unknown filing status to be rejected")
	}
	if _, ok := res.FieldErrors["filingStatus"]; !ok {
		t.Fatalf("expected error on filingStatus, got %v", res.FieldErrors)
	}

	data["filingStatus"] = ""
	res = W4(data)
	if res.Valid {
		t.Fatalf("expected missing filing status to be rejected")
	}
}

func TestW4_OptionalAmountsAcceptedWhenEmpty(t *testing.T) {
	// Steps 3 and 4 of the form are optional; leaving them blank is fine.
	if res := W4(validW4()); !res.Valid {
		t.Fatalf("expected blank optional amounts to be valid, got %+v", res)
	}
}

func TestW4_OptionalAmountsRejectMalformedInput(t *testing.T) {
	cases := []string{"dependentsAmount", "otherIncome", "deductions", "extraWithholding"}
	for _, field := range cases {
		t.Run(field, func(t *testing.T) {
			data := validW4()
			data[field] = "lots"

			res := W4(data)
			if res.Valid {
				t.Fatalf("expected malformed %s to be rejected", field)
			}
			if _, ok := res.FieldErrors[field]; !ok {
				t.Fatalf("expected error on %q, got %v", field, res.FieldErrors)
			}

			data[field] = "-100"
			if res := W4(data); res.Valid {
				t.Fatalf("expected negative %s to be rejected", field)
			}

			data[field] = "2000"
			if res := W4(data); !res.Valid {
				t.Fatalf("expected numeric %s to be valid, got %+v", field, res)
			}
		})
	}
}
