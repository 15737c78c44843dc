package gateway

import (
	"context"
	"encoding/json"
	"slices"
	"strings"

	"keyworker/pkg/domain"
)

// ComplexityLevel is the complexity of need classification.
type ComplexityLevel string

const (
	ComplexityLow    ComplexityLevel = "low"
	ComplexityMedium ComplexityLevel = "medium"
	ComplexityHigh   ComplexityLevel = "high"
)

const complexityBatchSize = 500

// ParseComplexityLevel normalises a level code. Upstream services and
// domain events are not consistent about case.
func ParseComplexityLevel(s string) ComplexityLevel {
	return ComplexityLevel(strings.ToLower(strings.TrimSpace(s)))
}

func (l *ComplexityLevel) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*l = ParseComplexityLevel(s)
	return nil
}

// ComplexityOfNeed is the current level for one person.
type ComplexityOfNeed struct {
	OffenderNo       string          `json:"offenderNo"`
	Level            ComplexityLevel `json:"level"`
	SourceUser       string          `json:"sourceUser"`
	UpdatedTimeStamp LocalDateTime   `json:"updatedTimeStamp"`
	Active           *bool           `json:"active"`
}

// IsHigh reports an active high level. A missing active flag counts as active.
func (c ComplexityOfNeed) IsHigh() bool {
	return strings.EqualFold(string(c.Level), string(ComplexityHigh)) && (c.Active == nil || *c.Active)
}

// ComplexityOfNeedAPI reads complexity levels.
type ComplexityOfNeedAPI struct {
	client *Client
}

func NewComplexityOfNeedAPI(client *Client) *ComplexityOfNeedAPI {
	return &ComplexityOfNeedAPI{client: client}
}

// Levels returns the current level for each person known to the service,
// keyed by person identifier.
func (c *ComplexityOfNeedAPI) Levels(ctx context.Context, persons []domain.PersonIdentifier) (map[domain.PersonIdentifier]ComplexityOfNeed, error) {
	out := make(map[domain.PersonIdentifier]ComplexityOfNeed, len(persons))
	for batch := range slices.Chunk(persons, complexityBatchSize) {
		var resp []ComplexityOfNeed
		if _, err := c.client.Post(ctx, "/complexity-of-need/multiple/offender-no", batch, &resp); err != nil {
			return nil, err
		}
		for _, level := range resp {
			out[domain.PersonIdentifier(level.OffenderNo)] = level
		}
	}
	return out, nil
}
