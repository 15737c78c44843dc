package gateway

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"keyworker/pkg/domain"
)

// CaseNote is a single case note.
type CaseNote struct {
	ID               string        `json:"caseNoteId"`
	PersonIdentifier string        `json:"offenderIdentifier"`
	Type             string        `json:"type"`
	SubType          string        `json:"subType"`
	OccurredAt       LocalDateTime `json:"occurrenceDateTime"`
	LocationID       string        `json:"locationId"`
	AuthorUserID     string        `json:"authorUserId"`
	AuthorName       string        `json:"authorName"`
}

// TypeSubTypes selects case notes by type and sub types.
type TypeSubTypes struct {
	Type     string   `json:"type"`
	SubTypes []string `json:"subTypes"`
}

// UsageRequest asks for case note counts per person.
type UsageRequest struct {
	PersonIdentifiers []string       `json:"personIdentifiers"`
	TypeSubTypes      []TypeSubTypes `json:"typeSubTypes"`
	OccurredFrom      *time.Time     `json:"occurredFrom,omitempty"`
	OccurredTo        *time.Time     `json:"occurredTo,omitempty"`
}

// NoteUsage counts one person's notes of one type.
type NoteUsage struct {
	PersonIdentifier string `json:"personIdentifier"`
	Type             string `json:"type"`
	SubType          string `json:"subType"`
	Count            int    `json:"count"`
	LatestNote       *struct {
		OccurredAt LocalDateTime `json:"occurredAt"`
	} `json:"latestNote"`
}

// LatestAt returns the latest note time, or nil.
func (u NoteUsage) LatestAt() *time.Time {
	if u.LatestNote == nil || u.LatestNote.OccurredAt.IsZero() {
		return nil
	}
	t := u.LatestNote.OccurredAt.Time
	return &t
}

type usageResponse struct {
	Content map[string][]NoteUsage `json:"content"`
}

// CaseNotesAPI reads case notes.
type CaseNotesAPI struct {
	client *Client
}

func NewCaseNotesAPI(client *Client) *CaseNotesAPI {
	return &CaseNotesAPI{client: client}
}

// Get returns one case note, or nil when it no longer exists.
func (c *CaseNotesAPI) Get(ctx context.Context, person domain.PersonIdentifier, id string) (*CaseNote, error) {
	var out CaseNote
	path := fmt.Sprintf("/case-notes/%s/%s", url.PathEscape(person.String()), url.PathEscape(id))
	found, err := c.client.Get(ctx, path, &out)
	if err != nil || !found {
		return nil, err
	}
	return &out, nil
}

// UsageByPersonIdentifier returns note counts keyed by person identifier.
func (c *CaseNotesAPI) UsageByPersonIdentifier(ctx context.Context, req UsageRequest) (map[domain.PersonIdentifier][]NoteUsage, error) {
	out := make(map[domain.PersonIdentifier][]NoteUsage)
	if len(req.PersonIdentifiers) == 0 {
		return out, nil
	}
	var resp usageResponse
	if _, err := c.client.Post(ctx, "/case-notes/usage", req, &resp); err != nil {
		return nil, err
	}
	for person, usage := range resp.Content {
		out[domain.PersonIdentifier(person)] = usage
	}
	return out, nil
}
