package headhunter

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/hh-recommender/internal/recommend"
)

// VacancyFilter narrows a vacancy listing before details are fetched.
type VacancyFilter interface {
	RunFilters(ctx context.Context, v *Vacancies) (*Vacancies, error)
}

// Corpus is the job corpus found by one search on HH.ru.
type Corpus struct {
	client *Client
	params *SearchParams
	filter VacancyFilter
}

// NewCorpus returns a corpus for params. filter may be nil.
func NewCorpus(client *Client, params *SearchParams, filter VacancyFilter) *Corpus {
	return &Corpus{client: client, params: params, filter: filter}
}

// Vacancies searches, filters and fetches the full vacancies.
func (c *Corpus) Vacancies(ctx context.Context) (*Vacancies, error) {
	vacancies, err := c.client.Search(ctx, c.params)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	c.client.logger.Info("getting vacancies", zap.Int("count", vacancies.Len()))

	if c.filter != nil && vacancies.Len() > 0 {
		vacancies, err = c.filter.RunFilters(ctx, vacancies)
		if err != nil {
			return nil, fmt.Errorf("filtering: %w", err)
		}
	}

	if vacancies.Len() == 0 {
		return vacancies, nil
	}

	return c.client.FetchDetails(ctx, vacancies)
}

// Jobs implements recommend.JobSource.
func (c *Corpus) Jobs(ctx context.Context) ([]recommend.JobRecord, error) {
	vacancies, err := c.Vacancies(ctx)
	if err != nil {
		return nil, err
	}

	return vacancies.JobRecords(), nil
}
