package persistence

import (
	"bytes"
	"encoding/gob"
	"time"

	"github.com/hirewire/onboard/pkg/api"
)

// Snapshots are stored as gob blobs. Unlike JSON, gob round-trips the nil /
// empty distinction for the signature pointer and keeps the payload opaque
// to the storage backend.

// sessionHeader is the wire form of a session without its steps.
type sessionHeader struct {
	ID         string
	EmployeeID string
	PropertyID string
	ActiveStep api.StepID
	CreatedAt  int64 // unix nanos
	UpdatedAt  int64
}

// EncodeSnapshot serializes a step snapshot.
func EncodeSnapshot(snap StepSnapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeSnapshot deserializes a step snapshot produced by EncodeSnapshot.
func DecodeSnapshot(data []byte) (StepSnapshot, error) {
	var snap StepSnapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return StepSnapshot{}, err
	}
	return snap, nil
}

func encodeSession(sess *api.WorkflowSession) ([]byte, error) {
	h := sessionHeader{
		ID:         sess.ID,
		EmployeeID: sess.EmployeeID,
		PropertyID: sess.PropertyID,
		ActiveStep: sess.ActiveStep,
		CreatedAt:  sess.CreatedAt.UnixNano(),
		UpdatedAt:  sess.UpdatedAt.UnixNano(),
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(h); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeSession(data []byte) (*api.WorkflowSession, error) {
	var h sessionHeader
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&h); err != nil {
		return nil, err
	}
	return sessionFromHeader(h), nil
}

func sessionFromHeader(h sessionHeader) *api.WorkflowSession {
	return &api.WorkflowSession{
		ID:         h.ID,
		EmployeeID: h.EmployeeID,
		PropertyID: h.PropertyID,
		ActiveStep: h.ActiveStep,
		CreatedAt:  time.Unix(0, h.CreatedAt),
		UpdatedAt:  time.Unix(0, h.UpdatedAt),
	}
}
