package docgen

import (
	"strings"
	"time"

	"github.com/hirewire/onboard/pkg/api"
)

// Normalization selects the text rule applied to a value before it is
// written into a template field.
type Normalization uint8

const (
	NormNone Normalization = iota

	// NormUppercase upper-cases legal name fields.
	NormUppercase

	// NormDigits strips everything but digits from identifier fields
	// (SSN, routing numbers).
	NormDigits
)

// FormatDate reformats the canonical YYYY-MM-DD input into the MM/DD/YYYY
// textual form government templates require. Invalid or empty input yields
// an empty string; a partially parsed date is never propagated.
func FormatDate(iso string) string {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(iso))
	if err != nil {
		return ""
	}
	return t.Format("01/02/2006")
}

// withDerivedFields returns a copy of the data with composite logical
// fields filled in. Templates often carry one box for what the wizard
// collects piecewise (a combined name line, a city/state/ZIP line); the
// derived value is only set when every part is present and the caller has
// not supplied the composite directly.
func withDerivedFields(data api.FormData) api.FormData {
	out := data.Clone()

	if out["employeeName"] == "" {
		first := strings.TrimSpace(out["firstName"])
		last := strings.TrimSpace(out["lastName"])
		if first != "" && last != "" {
			out["employeeName"] = first + " " + last
		}
	}

	if out["cityStateZip"] == "" {
		city := strings.TrimSpace(out["city"])
		state := strings.TrimSpace(out["state"])
		zip := strings.TrimSpace(out["zip"])
		if city != "" && state != "" && zip != "" {
			out["cityStateZip"] = city + ", " + state + " " + zip
		}
	}

	return out
}

// normalize applies the given rule to a raw value.
func normalize(value string, rule Normalization) string {
	value = strings.TrimSpace(value)
	switch rule {
	case NormUppercase:
		return strings.ToUpper(value)
	case NormDigits:
		var b strings.Builder
		for _, r := range value {
			if r >= '0' && r <= '9' {
				b.WriteRune(r)
			}
		}
		return b.String()
	default:
		return value
	}
}
