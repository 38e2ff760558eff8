package headhunter

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spigell/hh-recommender/internal/recommend"
)

type Resumes struct {
	Items []*Resume
}

type Resume struct {
	Title string `json:"title,omitempty"`
	ID    string `json:"id,omitempty"`
}

type ResumeDetails struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	SkillSet []string `json:"skill_set"`
}

func (c *Client) GetMineResumes(ctx context.Context) (*Resumes, error) {
	return c.getResumes(ctx, mineResumID)
}

func (c *Client) getResumes(ctx context.Context, id string) (*Resumes, error) {
	apiURLMineResumes := fmt.Sprintf("%s/resumes/%s", c.APIURL, id)

	items, err := c.GetItems(ctx, apiURLMineResumes, nil)
	if err != nil {
		return nil, err
	}

	var resumes []*Resume
	if err = decodeItems(items, &resumes); err != nil {
		return nil, err
	}

	return &Resumes{
		Items: resumes,
	}, nil
}

func (r *Resumes) Len() int {
	return len(r.Items)
}

func (r *Resumes) Titles() []string {
	titles := make([]string, 0, len(r.Items))

	for _, v := range r.Items {
		titles = append(titles, v.Title)
	}

	return titles
}

func (r *Resumes) FindByTitle(title string) *Resume {
	for _, resume := range r.Items {
		if resume.Title == title {
			return resume
		}
	}

	return nil
}

func (c *Client) GetResumeDetails(ctx context.Context, id string) (*ResumeDetails, error) {
	if id == "" {
		return nil, fmt.Errorf("resume id is required")
	}

	var details ResumeDetails
	if err := c.getJSON(ctx, fmt.Sprintf("%s/resumes/%s", c.APIURL, id), nil, &details); err != nil {
		return nil, err
	}

	return &details, nil
}

// UserSkills returns the skill set of the user's resume with the given title.
// It satisfies recommend.UserSource, so the resume title is the user identifier.
func (c *Client) UserSkills(ctx context.Context, title string) ([]string, error) {
	resumes, err := c.GetMineResumes(ctx)
	if err != nil {
		return nil, fmt.Errorf("get mine resumes: %w", err)
	}

	resume := resumes.FindByTitle(title)
	if resume == nil {
		return nil, fmt.Errorf("resume %q: %w", title, recommend.ErrNotFound)
	}

	details, err := c.GetResumeDetails(ctx, resume.ID)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound {
			return nil, fmt.Errorf("resume %q: %w", title, recommend.ErrNotFound)
		}
		return nil, fmt.Errorf("get resume details: %w", err)
	}

	if len(details.SkillSet) == 0 {
		return nil, fmt.Errorf("resume %q: %w", title, recommend.ErrNoSkills)
	}

	return details.SkillSet, nil
}
