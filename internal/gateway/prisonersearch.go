package gateway

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"keyworker/pkg/domain"
)

const prisonerSearchPageSize = 1000

// Prisoner is a resident returned by prisoner search.
type Prisoner struct {
	PrisonerNumber    string    `json:"prisonerNumber"`
	PrisonID          string    `json:"prisonId"`
	CellLocation      string    `json:"cellLocation"`
	ReceptionDate     LocalDate `json:"receptionDate"`
	LastAdmissionDate LocalDate `json:"lastAdmissionDate"`
}

// AdmissionDate is the most recent admission, falling back to reception.
func (p Prisoner) AdmissionDate() *time.Time {
	if d := p.LastAdmissionDate.Ptr(); d != nil {
		return d
	}
	return p.ReceptionDate.Ptr()
}

type prisonerPage struct {
	Content []Prisoner `json:"content"`
	Last    bool       `json:"last"`
}

// PrisonerSearch queries the prisoner search index.
type PrisonerSearch struct {
	client *Client
}

func NewPrisonerSearch(client *Client) *PrisonerSearch {
	return &PrisonerSearch{client: client}
}

// FindPrisonersInPrison pages through every resident of prison. A prison
// the index does not know yields an empty slice.
func (p *PrisonerSearch) FindPrisonersInPrison(ctx context.Context, prison domain.PrisonCode) ([]Prisoner, error) {
	var out []Prisoner
	for page := 0; ; page++ {
		q := url.Values{}
		q.Set("page", fmt.Sprint(page))
		q.Set("size", fmt.Sprint(prisonerSearchPageSize))
		path := "/prisoner-search/prison/" + url.PathEscape(prison.String()) + "?" + q.Encode()

		var resp prisonerPage
		found, err := p.client.Get(ctx, path, &resp)
		if err != nil {
			return nil, err
		}
		if !found {
			return out, nil
		}
		out = append(out, resp.Content...)
		if resp.Last || len(resp.Content) < prisonerSearchPageSize {
			return out, nil
		}
	}
}
