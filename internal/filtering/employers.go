package filtering

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/hh-recommender/internal/headhunter"
)

type employersFilter struct {
	employers []string
	logger    *zap.Logger
}

// NewExcludedEmployers creates a filter that drops vacancies of the given hh.ru employer IDs.
// IDs are trimmed and de-duplicated.
func NewExcludedEmployers(employers []string, logger *zap.Logger) Filter {
	if logger == nil {
		logger = zap.NewNop()
	}

	seen := make(map[string]struct{}, len(employers))
	ids := make([]string, 0, len(employers))
	for _, id := range employers {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	return &employersFilter{employers: ids, logger: logger}
}

func (f *employersFilter) Name() string { return "employers" }

func (f *employersFilter) Disable(string) {}

func (f *employersFilter) IsEnabled() bool { return true }

// Validate rejects IDs hh.ru can never return. Employer IDs are numeric.
func (f *employersFilter) Validate() error {
	for _, id := range f.employers {
		if _, err := strconv.ParseUint(id, 10, 64); err != nil {
			return fmt.Errorf("invalid employer id %q", id)
		}
	}
	return nil
}

func (f *employersFilter) Apply(_ context.Context, v *headhunter.Vacancies) (*headhunter.Vacancies, Step, error) {
	step := Step{Initial: v.Len()}
	if len(f.employers) > 0 {
		excluded := v.Exclude(headhunter.VacancyEmployerIDField, f.employers)
		step.Dropped = len(excluded)

		if len(excluded) > 0 {
			f.logger.Info("excluding vacancies by employers",
				zap.Strings("excluded_employers", f.employers),
				zap.Strings("excluded_vacancies", excluded),
				zap.Int("vacancies_left", v.Len()),
			)
		}
	}
	step.Left = v.Len()

	return v, step, nil
}

func (f *employersFilter) Status() Status {
	details := map[string]string{}
	if len(f.employers) > 0 {
		details["employers"] = strings.Join(f.employers, ",")
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
