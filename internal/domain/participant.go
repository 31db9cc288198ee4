// Package domain contains entities without transport, just room meta-data.
package domain

// PlayerID is the transport-assigned connection identifier of a participant.
type PlayerID string

// Participant is a connection's membership record within a room.
// Name is whatever the client sent at join time; it is not validated.
type Participant struct {
	ID   PlayerID `json:"id"`
	Name string   `json:"name"`
}

// NewParticipant returns the membership record for connection id under name.
func NewParticipant(id PlayerID, name string) Participant {
	return Participant{ID: id, Name: name}
}
