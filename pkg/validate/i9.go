package validate

import (
	"strings"

	"github.com/hirewire/onboard/pkg/api"
)

// I9 validates the Employment Eligibility Verification step (Section 1
// attestation plus the supporting document list rule).
//
// Conditional requirements follow the form's own semantics: the attestation
// category unlocks the sub-fields that apply to it and nothing else.
func I9(data api.FormData) api.Result {
	var r api.Result

	require(&r, data, "lastName", "Last name is required")
	require(&r, data, "firstName", "First name is required")
	requireAddress(&r, data)
	requireDate(&r, data, "dateOfBirth", "Date of birth")
	requireDigits(&r, data, "ssn", 9, "Social Security number")

	status := api.CitizenshipStatus(strings.TrimSpace(data["citizenshipStatus"]))
	switch status {
	case api.CitizenUS, api.CitizenNoncitizenNational:
		// No additional sub-fields.

	case api.CitizenPermanentResident:
		require(&r, data, "uscisNumber", "USCIS / A-Number is required for permanent residents")

	case api.CitizenAuthorizedAlien:
		requireDate(&r, data, "workAuthExpiration", "Work authorization expiration date")
		// Exactly one identifier set is needed: USCIS number, I-94 number,
		// or a foreign passport with its issuing country.
		uscis := strings.TrimSpace(data["uscisNumber"])
		i94 := strings.TrimSpace(data["i94Number"])
		passport := strings.TrimSpace(data["foreignPassportNumber"])
		country := strings.TrimSpace(data["passportCountry"])
		switch {
		case uscis != "" || i94 != "":
			// satisfied
		case passport != "" && country != "":
			// satisfied
		case passport != "":
			r.AddFieldError("passportCountry", "Issuing country is required with a foreign passport number")
		default:
			r.AddError("Provide a USCIS number, an I-94 admission number, or a foreign passport with issuing country")
		}

	case "":
		r.AddFieldError("citizenshipStatus", "Citizenship status is required")

	default:
		r.AddFieldError("citizenshipStatus", "Citizenship status is not a valid selection")
	}

	// Document rule: one List A document, or both a List B and a List C
	// document.
	listA := strings.TrimSpace(data["listADocument"])
	listB := strings.TrimSpace(data["listBDocument"])
	listC := strings.TrimSpace(data["listCDocument"])
	if listA == "" && (listB == "" || listC == "") {
		r.AddError("Provide a List A document, or both a List B and a List C document")
	}

	return r.Finalize()
}

// I9Translator validates the translator-assistance supplement.
func I9Translator(data api.FormData) api.Result {
	var r api.Result
	require(&r, data, "translatorLastName", "Translator last name is required")
	require(&r, data, "translatorFirstName", "Translator first name is required")
	require(&r, data, "translatorAddress", "Translator address is required")
	return r.Finalize()
}

// I9Preparer validates the preparer-assistance supplement.
func I9Preparer(data api.FormData) api.Result {
	var r api.Result
	require(&r, data, "preparerLastName", "Preparer last name is required")
	require(&r, data, "preparerFirstName", "Preparer first name is required")
	require(&r, data, "preparerAddress", "Preparer address is required")
	return r.Finalize()
}
