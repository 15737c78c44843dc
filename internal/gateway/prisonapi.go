package gateway

import (
	"context"
	"fmt"
	"net/url"

	"keyworker/pkg/domain"
)

// Movement directions and types as recorded by the prison system.
const (
	DirectionIn  = "IN"
	DirectionOut = "OUT"

	MovementAdmission = "ADM"
	MovementRelease   = "REL"
	MovementTransfer  = "TRN"
	MovementCourt     = "CRT"
	MovementTemporary = "TAP"
)

// StaffRole is a staff member holding a role at a prison.
type StaffRole struct {
	StaffID   int64  `json:"staffId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Position  string `json:"position"`
	Role      string `json:"role"`
}

// Movement is an external movement record.
type Movement struct {
	OffenderNo    string        `json:"offenderNo"`
	FromAgency    string        `json:"fromAgency"`
	ToAgency      string        `json:"toAgency"`
	MovementType  string        `json:"movementType"`
	DirectionCode string        `json:"directionCode"`
	MovementTime  LocalDateTime `json:"createDateTime"`
}

// PrisonAPI reads staff roles and movements.
type PrisonAPI struct {
	client *Client
}

func NewPrisonAPI(client *Client) *PrisonAPI {
	return &PrisonAPI{client: client}
}

// RoleFor maps a policy to the staff role code that makes someone
// allocatable under it.
func RoleFor(policy domain.Policy) string {
	if policy == domain.PolicyPersonalOfficer {
		return "PO"
	}
	return "KW"
}

// StaffWithRole returns staff holding role at prison. No holders is an empty
// slice, not an error.
func (p *PrisonAPI) StaffWithRole(ctx context.Context, prison domain.PrisonCode, role string) ([]StaffRole, error) {
	var out []StaffRole
	path := fmt.Sprintf("/api/staff/roles/%s/role/%s", url.PathEscape(prison.String()), url.PathEscape(role))
	if _, err := p.client.Get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Movement fetches one movement by booking and sequence. Nil when unknown.
func (p *PrisonAPI) Movement(ctx context.Context, bookingID int64, sequence int) (*Movement, error) {
	var out Movement
	found, err := p.client.Get(ctx, fmt.Sprintf("/api/bookings/%d/movement/%d", bookingID, sequence), &out)
	if err != nil || !found {
		return nil, err
	}
	return &out, nil
}
