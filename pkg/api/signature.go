package api

import "time"

// Acknowledgment is one statement the signer must explicitly affirm before
// a signature artifact can be produced.
type Acknowledgment struct {
	ID       string
	Text     string
	Affirmed bool
}

// SignatureArtifact is the attestation attached to a completed step.
// It is immutable once created; amending a signed step destroys the
// artifact and requires re-signing.
type SignatureArtifact struct {
	ID          string
	SignerName  string
	SignerTitle string
	SignedAt    time.Time

	// Mark is the rendered signature mark (vector path or image bytes).
	Mark []byte

	// Acknowledged lists the IDs of the acknowledgments affirmed at
	// capture time.
	Acknowledged []string
}
