package gateway

import (
	"context"

	"keyworker/pkg/domain"
	pstrings "keyworker/pkg/platform/strings"
)

// Prison is an establishment in the prison register.
type Prison struct {
	PrisonID   string `json:"prisonId"`
	PrisonName string `json:"prisonName"`
	Active     bool   `json:"active"`
}

type prisonsByIDsRequest struct {
	PrisonIDs []string `json:"prisonIds"`
}

// PrisonRegister resolves agency location ids to prisons.
type PrisonRegister struct {
	client *Client
}

func NewPrisonRegister(client *Client) *PrisonRegister {
	return &PrisonRegister{client: client}
}

// FindPrisons returns the register entries matching codes. Codes that are
// not prisons (courts, hospitals) are simply absent.
func (p *PrisonRegister) FindPrisons(ctx context.Context, codes []domain.PrisonCode) ([]Prison, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	ids := make([]string, len(codes))
	for i, c := range codes {
		ids[i] = c.String()
	}
	ids = pstrings.DedupeAndTrimUpper(ids)
	var out []Prison
	if _, err := p.client.Post(ctx, "/prisons/prisonsByIds", prisonsByIDsRequest{PrisonIDs: ids}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// IsPrison reports whether code is a prison known to the register.
func (p *PrisonRegister) IsPrison(ctx context.Context, code domain.PrisonCode) (bool, error) {
	prisons, err := p.FindPrisons(ctx, []domain.PrisonCode{code})
	if err != nil {
		return false, err
	}
	for _, prison := range prisons {
		if prison.PrisonID == code.String() {
			return true, nil
		}
	}
	return false, nil
}
