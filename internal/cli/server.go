package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"exam-grading-service/internal/app"
	"exam-grading-service/internal/auth"
	"exam-grading-service/internal/config"
	"exam-grading-service/internal/infra/memory"
	transport "exam-grading-service/internal/transport/http"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string, envPort string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the grading server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
	cmd.Flags().StringVar(port, "port", envPort, "port to listen on (overrides server.port)")
	return cmd
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, log, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	c, err := buildComponents(ctx, cfg, log)
	if err != nil {
		log.Error("startup failed", zap.Error(err))
		_ = log.Sync()
		return err
	}
	defer c.close()

	if err := c.store.Migrate(ctx); err != nil {
		log.Error("migrations failed", zap.Error(err))
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	signer, err := auth.NewSigner(cfg.Auth.SigningKey, config.TTLDuration(cfg.Auth.TokenTTL, 12*time.Hour))
	if err != nil {
		return err
	}

	feeds := memory.NewFeedStore()
	handler := transport.NewHandler(transport.Services{
		Papers:      app.NewPaperService(c.store, c.blobs, c.cache, log),
		AnswerKeys:  app.NewAnswerKeyService(c.store, c.cache, c.events, log),
		Submissions: app.NewSubmissionService(c.store, c.store, feeds, c.events, log),
		Results:     app.NewResultsService(c.store, c.store, c.store, c.store, feeds),
	}, log, cfg.Server.MaxUploadBytes)
	router := transport.NewRouter(handler, signer, func(r *http.Request) error {
		return c.store.Ping(r.Context())
	}, cfg.Server.AllowedOrigins)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  config.TTLDuration(cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout: config.TTLDuration(cfg.Server.WriteTimeout, 0),
	}

	go func() {
		log.Info("starting grading service", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.TTLDuration(cfg.Server.ShutdownTimeout, 5*time.Second))
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
