package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/hh-recommender/internal/filtering"
	"github.com/spigell/hh-recommender/internal/headhunter"
	"github.com/spigell/hh-recommender/internal/logger"
	"github.com/spigell/hh-recommender/internal/secrets"
	"github.com/spigell/hh-recommender/internal/store"
)

// setup builds the logger and loads the config. Both are required for every command but version.
func setup() (*zap.Logger, *Config) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	return logger, config
}

// workersFromFlag lets the --workers flag of the running command override the config.
func workersFromFlag(cmd *cobra.Command, config *Config) {
	if cmd == nil || !cmd.Flags().Changed("workers") {
		return
	}
	if workers, err := cmd.Flags().GetInt("workers"); err == nil {
		config.Recommend.Workers = workers
	}
}

func resolveToken(config *Config) (string, error) {
	if config == nil {
		return "", errors.New("config is required")
	}

	tokenFile := strings.TrimSpace(config.TokenFile)
	if tokenFile == "" {
		tokenFile = strings.TrimSpace(viper.GetString("token-file"))
	}

	return secrets.Load(secrets.Source{
		Name: "headhunter token",
		File: tokenFile,
		Env:  "HH_TOKEN",
	})
}

func resolveDatabaseURL(config *Config) (string, error) {
	return secrets.Load(secrets.Source{
		Name:  "database url",
		File:  config.Database.URLFile,
		Value: config.Database.URL,
	})
}

func newHHClient(config *Config, logger *zap.Logger) (*headhunter.Client, error) {
	token, err := resolveToken(config)
	if err != nil {
		return nil, fmt.Errorf("%w (set HH_TOKEN_FILE, HH_TOKEN or the 'token-file' key in the configuration file)", err)
	}

	hh := headhunter.New(logger, token)

	if config.UserAgent != "" {
		hh.UserAgent = config.UserAgent
	}
	if config.HH.MaxConcurrentPages > 0 {
		hh.MaxConcurrentPages = config.HH.MaxConcurrentPages
	}
	hh.MaxRetries = config.HH.MaxRetries

	return hh, nil
}

func openStore(ctx context.Context, config *Config, logger *zap.Logger) (*store.Store, error) {
	databaseURL, err := resolveDatabaseURL(config)
	if err != nil {
		return nil, fmt.Errorf("%w (set DATABASE_URL or database.url)", err)
	}

	s, err := store.Connect(ctx, databaseURL, logger)
	if err != nil {
		return nil, err
	}

	if config.Database.PageSize > 0 {
		s.PageSize = config.Database.PageSize
	}
	if config.Database.MaxConcurrentPages > 0 {
		s.MaxConcurrentPages = config.Database.MaxConcurrentPages
	}

	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return s, nil
}

func prepareFilters(cmd *cobra.Command, hh *headhunter.Client, config *Config, logger *zap.Logger) *filtering.Filtering {
	var employers []string
	if config.Exclude != nil {
		employers = config.Exclude.Employers
	}

	steps := []filtering.Filter{
		filtering.NewArchived(logger),
		prepareAppliedHistoryFilter(cmd, hh, logger),
		filtering.NewExcludedEmployers(employers, logger),
		filtering.NewExcludeFile(config.ExcludeFile, logger),
	}

	return filtering.New(steps, logger)
}

func prepareAppliedHistoryFilter(cmd *cobra.Command, client *headhunter.Client, logger *zap.Logger) filtering.Filter {
	ignore := false
	if cmd != nil {
		flag := cmd.Flag("do-not-exclude-applied")
		if flag != nil && strings.EqualFold(flag.Value.String(), "true") {
			ignore = true
		}
	}

	cfg := &filtering.AppliedHistoryConfig{Ignore: ignore}
	deps := &filtering.AppliedHistoryDeps{
		HH:     client,
		Logger: logger,
	}

	return filtering.NewAppliedHistory(cfg, deps)
}

func logFilters(f *filtering.Filtering, logger *zap.Logger) {
	for _, status := range f.Describe() {
		logger.Debug("filter configured",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
			zap.Any("details", status.Details),
		)
	}
}
