package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/hh-recommender/internal/api"
	"github.com/spigell/hh-recommender/internal/recommend"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve recommendations for users stored in PostgreSQL over HTTP",
	Run: func(cmd *cobra.Command, _ []string) {
		runServe(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address. Default is :8080")
	serveCmd.Flags().IntP("workers", "w", 0, "parallel scoring workers per request. 0 means the number of CPUs")

	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log, config := setup()
	workersFromFlag(cmd, config)

	s, err := openStore(ctx, config, log)
	if err != nil {
		log.Fatal("opening the store", zap.Error(err))
	}
	defer s.Close()

	server := api.New(api.Deps{
		Recommender: recommend.New(log, recommend.WithWorkers(config.Recommend.Workers)),
		Users:       s,
		Jobs:        s,
		Health:      s,
		Logger:      log,
	})

	httpServer := &http.Server{
		Addr:              config.Server.Addr,
		Handler:           server.Handler(config.Server.AllowedOrigins),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("shutting down the server", zap.Error(err))
		}
	}()

	log.Info("starting the server", zap.String("addr", config.Server.Addr), zap.String("version", version))

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("serving", zap.Error(err))
	}

	log.Info("server stopped")
}
