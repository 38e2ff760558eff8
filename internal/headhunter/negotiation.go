package headhunter

import (
	"context"
	"fmt"
	"net/url"
)

const (
	apiNegotiataionPath       = "/negotiations"
	allStatusesExceptArchived = "non_archived"
)

type Negotations []*Negotiation

type Negotiation struct {
	ID        string   `json:"id"`
	CreatedAt string   `json:"created_at"`
	URL       string   `json:"url"`
	Vacancy   *Vacancy `json:"vacancy"`
}

// GetNegotiations returns the user's non archived negotiations (applications).
func (c *Client) GetNegotiations(ctx context.Context) (*Negotations, error) {
	apiURLMineNegotations := fmt.Sprintf("%s%s", c.APIURL, apiNegotiataionPath)

	q := url.Values{}
	// We never need our archived negotiations
	q.Add("status", allStatusesExceptArchived)
	// Set per_page max as possible. It should be faster.
	q.Add("per_page", perPage)

	items, err := c.GetItems(ctx, apiURLMineNegotations, q)
	if err != nil {
		return nil, err
	}

	var negotations Negotations
	if err = decodeItems(items, &negotations); err != nil {
		return nil, err
	}

	return &negotations, nil
}

func (n *Negotations) VacanciesIDs() []string {
	ids := make([]string, 0, len(*n))

	for _, v := range *n {
		if v.Vacancy == nil {
			continue
		}
		ids = append(ids, v.Vacancy.ID)
	}

	return ids
}
