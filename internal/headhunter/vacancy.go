package headhunter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/hh-recommender/internal/recommend"
)

const (
	VacancyIDField         = "ID"
	VacancyEmployerIDField = "EmployerID"
)

type Vacancies struct {
	Items []*Vacancy
}

type Vacancy struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Area struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"area,omitempty"`
	Employer struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"employer,omitempty"`
	AlternateURL string     `json:"alternate_url,omitempty"`
	KeySkills    []KeySkill `json:"key_skills,omitempty"`
	Archived     bool       `json:"archived,omitempty"`
	PublishedAt  string     `json:"published_at,omitempty"`
}

type KeySkill struct {
	Name string `json:"name,omitempty"`
}

type ExcludedVacancies struct {
	Items []*ExcludedVacancy
}

type ExcludedVacancy struct {
	ID           string
	URL          string
	EmployerName string
	ExcludedAt   time.Time
}

// GetVacancy returns the full vacancy, key skills included.
func (c *Client) GetVacancy(ctx context.Context, id string) (*Vacancy, error) {
	if id == "" {
		return nil, errors.New("vacancy id is required")
	}

	var vacancy *Vacancy
	if err := c.getJSON(ctx, fmt.Sprintf("%s%s/%s", c.APIURL, SearchPath, id), nil, &vacancy); err != nil {
		return nil, err
	}
	if vacancy == nil {
		return nil, fmt.Errorf("vacancy %s: empty response", id)
	}

	return vacancy, nil
}

// FetchDetails replaces every listed vacancy with its full version, fetched concurrently.
// Order is preserved. Vacancies that cannot be fetched are kept as listed and logged.
func (c *Client) FetchDetails(ctx context.Context, v *Vacancies) (*Vacancies, error) {
	detailed := make([]*Vacancy, len(v.Items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency())
	for i, vacancy := range v.Items {
		g.Go(func() error {
			full, err := c.GetVacancy(gctx, vacancy.ID)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				c.logger.Warn("fetching detailed vacancy failed",
					zap.String("vacancy_id", vacancy.ID),
					zap.Error(err),
				)
				detailed[i] = vacancy
				return nil
			}
			detailed[i] = full
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Vacancies{Items: detailed}, nil
}

// SkillNames returns the raw key skill names of the vacancy.
func (va *Vacancy) SkillNames() []string {
	names := make([]string, 0, len(va.KeySkills))
	for _, skill := range va.KeySkills {
		names = append(names, skill.Name)
	}
	return names
}

// JobRecords converts vacancies into the records the recommender scores.
func (v *Vacancies) JobRecords() []recommend.JobRecord {
	records := make([]recommend.JobRecord, 0, len(v.Items))
	for _, vacancy := range v.Items {
		records = append(records, recommend.JobRecord{
			ID:             vacancy.ID,
			SkillsRequired: vacancy.SkillNames(),
		})
	}
	return records
}

func (v *Vacancies) ToExcluded() *ExcludedVacancies {
	excluded := &ExcludedVacancies{}
	for _, vacancy := range v.Items {
		excluded.Items = append(excluded.Items, &ExcludedVacancy{
			ID:           vacancy.ID,
			URL:          vacancy.AlternateURL,
			EmployerName: vacancy.Employer.Name,
			ExcludedAt:   time.Now().UTC(),
		})
	}
	return excluded
}

func GetExludedVacanciesFromFile(path string) (*ExcludedVacancies, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &ExcludedVacancies{}, nil
		}
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedVacancies{}, nil
	}

	var excluded ExcludedVacancies
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

func (v *ExcludedVacancies) Append(s *ExcludedVacancies) {
	v.Items = append(v.Items, s.Items...)
}

func (v *ExcludedVacancies) VacanciesIDs() []string {
	ids := make([]string, 0, len(v.Items))
	for _, vacancy := range v.Items {
		ids = append(ids, vacancy.ID)
	}
	return ids
}

func (v *ExcludedVacancies) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (va *Vacancy) GetStringField(name string) string {
	switch name {
	case VacancyIDField:
		return va.ID
	case VacancyEmployerIDField:
		return va.Employer.ID
	default:
		return ""
	}
}

func (v *Vacancies) Len() int {
	return len(v.Items)
}

func (v *Vacancies) FindByID(id string) *Vacancy {
	for _, vacancy := range v.Items {
		if vacancy.ID == id {
			return vacancy
		}
	}
	return nil
}

// ExcludeArchived removes archived vacancies and returns their IDs.
func (v *Vacancies) ExcludeArchived() []string {
	return v.excludeFunc(func(vacancy *Vacancy) bool { return vacancy.Archived })
}

// Exclude removes vacancies whose field name matches one of targets and returns their IDs.
// The order of the remaining vacancies is preserved.
func (v *Vacancies) Exclude(name string, targets []string) []string {
	set := make(map[string]struct{}, len(targets))
	for _, target := range targets {
		set[target] = struct{}{}
	}

	return v.excludeFunc(func(vacancy *Vacancy) bool {
		_, ok := set[vacancy.GetStringField(name)]
		return ok
	})
}

func (v *Vacancies) excludeFunc(drop func(*Vacancy) bool) []string {
	var excluded []string
	kept := make([]*Vacancy, 0, len(v.Items))
	for _, vacancy := range v.Items {
		if drop(vacancy) {
			excluded = append(excluded, vacancy.ID)
			continue
		}
		kept = append(kept, vacancy)
	}
	v.Items = kept
	return excluded
}
