package filtering

import (
	"context"

	"go.uber.org/zap"

	"github.com/spigell/hh-recommender/internal/headhunter"
)

type archivedFilter struct {
	logger *zap.Logger
}

// NewArchived creates a filter that removes archived vacancies. Nobody can apply to them.
func NewArchived(logger *zap.Logger) Filter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &archivedFilter{logger: logger}
}

func (f *archivedFilter) Name() string { return "archived" }

func (f *archivedFilter) Disable(string) {}

func (f *archivedFilter) IsEnabled() bool { return true }

func (f *archivedFilter) Validate() error { return nil }

func (f *archivedFilter) Apply(_ context.Context, v *headhunter.Vacancies) (*headhunter.Vacancies, Step, error) {
	initial := v.Len()
	excluded := v.ExcludeArchived()
	if len(excluded) > 0 {
		f.logger.Debug("excluding archived vacancies",
			zap.Strings("excluded_vacancies", excluded),
			zap.Int("vacancies_left", v.Len()),
		)
	}

	return v, Step{Initial: initial, Dropped: len(excluded), Left: v.Len()}, nil
}
