// Package signature produces the attestation artifacts attached to
// completed onboarding steps.
//
// Capture enforces the acknowledgment rule itself rather than trusting the
// UI: an artifact can never exist unless every listed acknowledgment was
// explicitly affirmed.
package signature

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hirewire/onboard/pkg/api"
)

// Capture validates the signer input and acknowledgments and returns an
// immutable SignatureArtifact.
//
// Incomplete input is reported as a validation-style Result, not a Go
// error: the zero artifact plus an invalid result means nothing was
// captured.
func Capture(signerName, signerTitle string, mark []byte, acks []api.Acknowledgment) (api.SignatureArtifact, api.Result) {
	var r api.Result

	signerName = strings.TrimSpace(signerName)
	if signerName == "" {
		r.AddFieldError("signerName", "Signer name is required")
	}
	if len(mark) == 0 {
		r.AddFieldError("signature", "A signature mark is required")
	}

	affirmed := make([]string, 0, len(acks))
	for _, ack := range acks {
		if !ack.Affirmed {
			r.AddFieldError("ack:"+ack.ID, "This acknowledgment must be affirmed before signing")
			continue
		}
		affirmed = append(affirmed, ack.ID)
	}

	if res := r.Finalize(); !res.Valid {
		return api.SignatureArtifact{}, res
	}

	return api.SignatureArtifact{
		ID:           uuid.NewString(),
		SignerName:   signerName,
		SignerTitle:  strings.TrimSpace(signerTitle),
		SignedAt:     time.Now().UTC(),
		Mark:         append([]byte(nil), mark...),
		Acknowledged: affirmed,
	}, api.OK()
}
