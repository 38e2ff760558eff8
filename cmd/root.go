package cmd

import (
	"errors"
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/hh-recommender/internal/headhunter"
)

const (
	app = "hh-recommender"

	sourceHeadhunter = "headhunter"
	sourcePostgres   = "postgres"
)

// Config is the application configuration. Resume is the title of the resume
// used as the user's skill set for the headhunter source.
type Config struct {
	Search      *headhunter.SearchParams `mapstructure:"search"`
	ExcludeFile string                   `mapstructure:"exclude-file"`
	UserAgent   string                   `mapstructure:"user-agent"`
	TokenFile   string                   `mapstructure:"token-file"`
	Resume      string                   `mapstructure:"resume"`
	Exclude     *ExcludeConfig           `mapstructure:"exclude"`
	HH          HHConfig                 `mapstructure:"hh"`
	Recommend   RecommendConfig          `mapstructure:"recommend"`
	Database    DatabaseConfig           `mapstructure:"database"`
	Server      ServerConfig             `mapstructure:"server"`
}

type ExcludeConfig struct {
	Employers []string `mapstructure:"employers"`
}

type HHConfig struct {
	MaxConcurrentPages int `mapstructure:"max-concurrent-pages" validate:"gte=0"`
	MaxRetries         int `mapstructure:"max-retries" validate:"gte=0"`
}

type RecommendConfig struct {
	Source  string `mapstructure:"source" validate:"oneof=headhunter postgres"`
	Workers int    `mapstructure:"workers" validate:"gte=0"`
	Output  string `mapstructure:"output" validate:"oneof=table json"`
	Limit   int    `mapstructure:"limit" validate:"gte=0"`
}

type DatabaseConfig struct {
	URL                string `mapstructure:"url"`
	URLFile            string `mapstructure:"url-file"`
	PageSize           int    `mapstructure:"page-size" validate:"gte=0"`
	MaxConcurrentPages int    `mapstructure:"max-concurrent-pages" validate:"gte=0"`
}

type ServerConfig struct {
	Addr           string   `mapstructure:"addr" validate:"required"`
	AllowedOrigins []string `mapstructure:"allowed-origins"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "hh-recommender ranks job vacancies by how well they match your skills",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("token-file", "HH_TOKEN_FILE"); err != nil {
		log.Fatalf("binding HH_TOKEN_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("database.url", "DATABASE_URL"); err != nil {
		log.Fatalf("binding DATABASE_URL environment variable: %v", err)
	}

	setDefaults(viper.GetViper())

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is hh-recommender.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("recommend.source", sourceHeadhunter)
	v.SetDefault("recommend.output", outputTable)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("database.page-size", 500)
	v.SetDefault("database.max-concurrent-pages", 4)
	v.SetDefault("hh.max-concurrent-pages", 4)
	v.SetDefault("hh.max-retries", 3)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	// An explicit config must exist. Without one every setting may come from flags and environment.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &config, nil
}
