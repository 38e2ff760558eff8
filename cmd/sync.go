package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/hh-recommender/internal/headhunter"
	"github.com/spigell/hh-recommender/internal/logger"
	"github.com/spigell/hh-recommender/internal/store"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Copy vacancies found on hh.ru (and optionally a resume's skills) into PostgreSQL",
	Run: func(cmd *cobra.Command, _ []string) {
		runSync(cmd)
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().BoolP("do-not-exclude-applied", "f", false, "do not exclude vacancies if already applied")
	syncCmd.Flags().String("email", "", "store the skills of the configured resume under this email")
	syncCmd.Flags().String("resume", "", "resume title to take skills from. Default is the configured resume")
}

func runSync(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log, config := setup()
	log = logger.WithRunFields(log, uuid.NewString(), sourceHeadhunter, "")

	hh, err := newHHClient(config, log)
	if err != nil {
		log.Fatal("loading headhunter token", zap.Error(err))
	}

	s, err := openStore(ctx, config, log)
	if err != nil {
		log.Fatal("opening the store", zap.Error(err))
	}
	defer s.Close()

	email, _ := cmd.Flags().GetString("email")
	resume, _ := cmd.Flags().GetString("resume")
	if resume == "" {
		resume = config.Resume
	}

	if email != "" {
		if resume == "" {
			log.Fatal("resume title is required to sync user skills", zap.String("hint", "pass --resume or set resume in the config"))
		}

		userSkills, err := hh.UserSkills(ctx, resume)
		if err != nil {
			log.Fatal("getting resume skills", zap.Error(err), zap.String("resume", resume))
		}

		if err := s.UpsertUserSkills(ctx, email, userSkills); err != nil {
			log.Fatal("storing user skills", zap.Error(err))
		}

		log.Info("user skills stored", zap.String(logger.FieldUser, email), zap.Int("skills", len(userSkills)))
	}

	filters := prepareFilters(cmd, hh, config, log)
	logFilters(filters, log)

	vacancies, err := headhunter.NewCorpus(hh, config.Search, filters).Vacancies(ctx)
	if err != nil {
		log.Fatal("getting available vacancies", zap.Error(err))
	}

	if vacancies.Len() == 0 {
		log.Info("exiting", zap.String("reason", "no vacancies left after filters"))
		return
	}

	if err := s.UpsertJobs(ctx, jobRows(vacancies)); err != nil {
		log.Fatal("storing vacancies", zap.Error(err))
	}
}

func jobRows(v *headhunter.Vacancies) []store.JobRow {
	rows := make([]store.JobRow, 0, v.Len())
	for _, vacancy := range v.Items {
		rows = append(rows, store.JobRow{
			ID:             vacancy.ID,
			Title:          vacancy.Name,
			Source:         sourceHeadhunter,
			SkillsRequired: vacancy.SkillNames(),
		})
	}
	return rows
}
