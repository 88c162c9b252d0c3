package serve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-extras/cobraflags"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	gormlogger "gorm.io/gorm/logger"

	"regportal-go/config"
	"regportal-go/database"
	"regportal-go/events"
	"regportal-go/handlers"
	"regportal-go/ingest"
	"regportal-go/logging"
	"regportal-go/middleware"
	"regportal-go/repository"
	"regportal-go/storage"
	"regportal-go/submission"
	"regportal-go/utils"
)

const (
	portFlag    = "port"
	envFileFlag = "env-file"
)

var serveFlags = map[string]cobraflags.Flag{
	portFlag: &cobraflags.StringFlag{
		Name:  portFlag,
		Value: "",
		Usage: "Port to listen on (overrides PORT)",
	},
	envFileFlag: &cobraflags.StringFlag{
		Name:  envFileFlag,
		Value: ".env",
		Usage: "Environment file loaded before configuration",
	},
}

func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the submission portal HTTP server",
		RunE:  serveCommand,
	}
	cobraflags.RegisterMap(cmd, serveFlags)
	return cmd
}

func serveCommand(cmd *cobra.Command, _ []string) error {
	envErr := godotenv.Load(serveFlags[envFileFlag].GetString())

	cfg := config.Load()
	if port := serveFlags[portFlag].GetString(); port != "" {
		cfg.Port = port
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	if envErr != nil {
		logger.Info("No .env file found")
	}

	if err := config.ValidateConfig(cfg, logger); err != nil {
		return err
	}
	if err := utils.InitializeJWT(cfg.JWTSecret); err != nil {
		return fmt.Errorf("failed to initialize JWT: %w", err)
	}

	gormLevel := gormlogger.Warn
	if cfg.Environment == "development" {
		gormLevel = gormlogger.Info
	}
	db, err := database.Initialize(cfg.DatabaseDriver, cfg.DatabaseURL, gormLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	store, err := storage.NewLocal(cfg.Upload.Dir, cfg.Upload.MaxFileSize)
	if err != nil {
		return fmt.Errorf("failed to initialize file storage: %w", err)
	}

	limits := ingest.DefaultLimits()
	limits.ParseTimeout = cfg.Upload.ParseTimeout
	validator := ingest.NewValidator(limits).WithLogger(logger)

	var publisher submission.Publisher
	if len(cfg.Kafka.Brokers) > 0 {
		kp := events.NewKafkaPublisher(events.KafkaConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		}, logger)
		defer kp.Close()
		publisher = kp
	}

	service := submission.NewService(repository.New(db), store, validator, publisher, logger)
	h := handlers.NewHandlers(service, cfg, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limiter := middleware.NewRateLimiter(ctx, cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(h, limiter, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			"port", cfg.Port,
			"environment", cfg.Environment,
			"database_driver", cfg.DatabaseDriver,
			"kafka", publisher != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server exited")
	return nil
}
