package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sujalbistaa/whisphaven/internal/config"
	"github.com/sujalbistaa/whisphaven/internal/events"
	"github.com/sujalbistaa/whisphaven/internal/feed"
	routes "github.com/sujalbistaa/whisphaven/internal/http"
	"github.com/sujalbistaa/whisphaven/internal/identity"
	"github.com/sujalbistaa/whisphaven/internal/logging"
	"github.com/sujalbistaa/whisphaven/internal/store"
	"github.com/sujalbistaa/whisphaven/internal/ws"
)

var (
	configPath string
	envFile    string
)

// rootCmd serves the API when run without a subcommand.
var rootCmd = &cobra.Command{
	Use:           "whisphaven",
	Short:         "Anonymous confession feed server",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every stored feed collection so the seed posts come back",
	RunE:  runReset,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.AddCommand(resetCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup loads configuration and builds the logger.
func setup() (*config.Config, *zap.Logger, error) {
	if err := config.LoadEnvFile(envFile); err != nil {
		return nil, nil, fmt.Errorf("loading %s: %w", envFile, err)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.New(cfg.Debug)
	if err != nil {
		return nil, nil, fmt.Errorf("building logger: %w", err)
	}
	return cfg, log, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// 1. Open the store
	st, err := store.Open(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	// 2. Feed and identity
	svc := feed.New(st, feed.Options{Logger: log, Latency: cfg.SimulatedLatency})
	users := identity.NewProvider(st, svc, nil, log)

	// 3. Event fan-out
	hub := ws.NewHub(log)
	go hub.Run()
	defer hub.Stop()

	publishers := events.Multi{hub}
	if cfg.AMQP.URL != "" {
		amqp, err := events.DialAMQP(cfg.AMQP.URL, cfg.AMQP.Exchange, log)
		if err != nil {
			return err
		}
		defer amqp.Close()
		publishers = append(publishers, amqp)
	}

	// 4. Router
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	env := &routes.Env{
		Feed:     svc,
		Identity: users,
		Tokens:   routes.NewTokens(cfg.JWTSecret),
		Events:   publishers,
		Log:      log,
	}
	routes.SetupRoutes(ctx, router, env, hub, cfg)

	// 5. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("store", cfg.DatabaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-quit:
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	}
	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server exiting")
	return nil
}

func runReset(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	st, err := store.Open(cmd.Context(), cfg.DatabaseURL, log)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	return feed.New(st, feed.Options{Logger: log}).Reset(cmd.Context())
}
