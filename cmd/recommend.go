package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/hh-recommender/internal/headhunter"
	"github.com/spigell/hh-recommender/internal/logger"
	"github.com/spigell/hh-recommender/internal/recommend"
	"github.com/spigell/hh-recommender/internal/utils"
)

const (
	outputTable = "table"
	outputJSON  = "json"

	skillsPreviewLimit = 200
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Rank jobs by how well they match the user's skills",
	Run: func(cmd *cobra.Command, _ []string) {
		runRecommend(cmd)
	},
}

func init() {
	rootCmd.AddCommand(recommendCmd)

	recommendCmd.Flags().StringP("source", "s", "", "where users and jobs come from: headhunter or postgres")
	recommendCmd.Flags().StringP("user", "u", "", "resume title (headhunter) or email (postgres)")
	recommendCmd.Flags().BoolP("all", "a", false, "print every scored job, below the minimum match too")
	recommendCmd.Flags().IntP("limit", "l", 0, "print at most this many jobs. 0 means no limit")
	recommendCmd.Flags().StringP("output", "o", "", "output format: table or json")
	recommendCmd.Flags().IntP("workers", "w", 0, "parallel scoring workers. 0 means the number of CPUs")
	recommendCmd.Flags().BoolP("do-not-exclude-applied", "f", false, "do not exclude vacancies if already applied")
	recommendCmd.Flags().StringP("exclude-file", "e", "", "special file with vacancies to exclude. Default is unset.")

	viper.BindPFlag("recommend.source", recommendCmd.Flags().Lookup("source"))
	viper.BindPFlag("recommend.limit", recommendCmd.Flags().Lookup("limit"))
	viper.BindPFlag("recommend.output", recommendCmd.Flags().Lookup("output"))
	viper.BindPFlag("exclude-file", recommendCmd.Flags().Lookup("exclude-file"))
}

func runRecommend(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log, config := setup()
	workersFromFlag(cmd, config)

	all, _ := cmd.Flags().GetBool("all")
	user, _ := cmd.Flags().GetString("user")
	source := config.Recommend.Source

	log = logger.WithRunFields(log, uuid.NewString(), source, "")
	log.Info("starting the hh-recommender", zap.String("version", version))

	var (
		users  recommend.UserSource
		corpus recommend.JobSource
	)

	switch source {
	case sourceHeadhunter:
		hh, err := newHHClient(config, log)
		if err != nil {
			log.Fatal("loading headhunter token", zap.Error(err))
		}

		if user == "" {
			user = config.Resume
		}
		if user == "" {
			user, err = selectResume(ctx, hh)
			if err != nil {
				log.Fatal("selecting a resume", zap.Error(err))
			}
		}

		filters := prepareFilters(cmd, hh, config, log)
		logFilters(filters, log)

		users = hh
		corpus = headhunter.NewCorpus(hh, config.Search, filters)
	case sourcePostgres:
		if user == "" {
			log.Fatal("user email is required for the postgres source", zap.String("hint", "pass --user"))
		}

		s, err := openStore(ctx, config, log)
		if err != nil {
			log.Fatal("opening the store", zap.Error(err))
		}
		defer s.Close()

		users = s
		corpus = s
	}

	log = log.With(zap.String(logger.FieldUser, user))

	userSkills, jobs, err := recommend.Lookup(ctx, users, corpus, user)
	if err != nil {
		log.Fatal("getting user skills and jobs", zap.Error(err))
	}

	log.Info("scoring jobs",
		zap.Int("jobs", len(jobs)),
		zap.String("skills", utils.JoinForLog(userSkills, skillsPreviewLimit)),
	)

	r := recommend.New(log, recommend.WithWorkers(config.Recommend.Workers))

	var recs []recommend.Recommendation
	if all {
		recs, err = r.Score(ctx, userSkills, jobs)
	} else {
		recs, err = r.Recommend(ctx, userSkills, jobs)
	}
	if err != nil {
		if errors.Is(err, recommend.ErrNoJobs) {
			log.Info("exiting", zap.String("reason", "no vacancies found"))
			return
		}
		log.Fatal("scoring jobs", zap.Error(err))
	}

	recs = limitRecommendations(recs, config.Recommend.Limit)

	log.Info("recommendations ready", zap.Int("count", len(recs)))

	if err := writeRecommendations(cmd.OutOrStdout(), config.Recommend.Output, recs); err != nil {
		log.Fatal("writing recommendations", zap.Error(err))
	}
}

// selectResume asks the user to choose one of their resumes.
func selectResume(ctx context.Context, hh *headhunter.Client) (string, error) {
	resumes, err := hh.GetMineResumes(ctx)
	if err != nil {
		return "", fmt.Errorf("getting mine resumes: %w", err)
	}

	if resumes.Len() == 0 {
		return "", fmt.Errorf("no resumes: %w", recommend.ErrNotFound)
	}

	resumePrompt := promptui.Select{
		Label: "Choose a resume and press ENTER",
		Items: resumes.Titles(),
	}

	_, title, err := resumePrompt.Run()
	if err != nil {
		return "", err
	}

	return title, nil
}

func limitRecommendations(recs []recommend.Recommendation, limit int) []recommend.Recommendation {
	if limit <= 0 || len(recs) <= limit {
		return recs
	}
	return recs[:limit]
}

func writeRecommendations(w io.Writer, format string, recs []recommend.Recommendation) error {
	switch strings.ToLower(format) {
	case outputJSON:
		if recs == nil {
			recs = []recommend.Recommendation{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	case outputTable, "":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "JOB ID\tMATCH")
		for _, rec := range recs {
			fmt.Fprintf(tw, "%s\t%d%%\n", rec.JobID, rec.MatchPercentage)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}
