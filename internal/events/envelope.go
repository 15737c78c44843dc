// Package events decodes inbound domain event envelopes into a closed set of
// typed events.
package events

import (
	"encoding/json"
	"time"

	"keyworker/internal/gateway"
)

// Envelope is the wire form shared by every domain event.
type Envelope struct {
	EventType             string          `json:"eventType"`
	Version               int             `json:"version,omitempty"`
	Description           string          `json:"description,omitempty"`
	DetailURL             string          `json:"detailUrl,omitempty"`
	OccurredAt            string          `json:"occurredAt,omitempty"`
	AdditionalInformation json.RawMessage `json:"additionalInformation,omitempty"`
	PersonReference       *PersonRef      `json:"personReference,omitempty"`
}

// PersonRef carries the identifiers of the person an event is about.
type PersonRef struct {
	Identifiers []Identifier `json:"identifiers"`
}

// Identifier is one typed person identifier.
type Identifier struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// IdentifierNOMS is the prison number identifier type.
const IdentifierNOMS = "NOMS"

// NOMS returns the prison number, or "".
func (e Envelope) NOMS() string {
	if e.PersonReference == nil {
		return ""
	}
	for _, id := range e.PersonReference.Identifiers {
		if id.Type == IdentifierNOMS {
			return id.Value
		}
	}
	return ""
}

// occurred parses OccurredAt. Zero when absent.
func (e Envelope) occurred() (time.Time, error) {
	if e.OccurredAt == "" {
		return time.Time{}, nil
	}
	return gateway.ParseDateTime(e.OccurredAt)
}
