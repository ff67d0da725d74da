package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/abhisek/mathquiz/internal/api"
	"github.com/abhisek/mathquiz/internal/concepts"
	"github.com/abhisek/mathquiz/internal/config"
	"github.com/abhisek/mathquiz/internal/eval"
	"github.com/abhisek/mathquiz/internal/llm"
	"github.com/abhisek/mathquiz/internal/questiongen"
	"github.com/abhisek/mathquiz/internal/quiz"
	"github.com/abhisek/mathquiz/internal/report"
	"github.com/abhisek/mathquiz/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the quiz HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func runServe(cmd *cobra.Command) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DBPath = p
	}
	if err := store.EnsureDir(cfg.DBPath); err != nil {
		return err
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("Failed to close event store", "error", closeErr)
		}
	}()
	events := db.EventRepo()
	slog.Info("Event store ready", "path", cfg.DBPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	llmCfg := llm.ConfigFromEnv()
	provider, err := llm.NewProvider(ctx, llmCfg, events)
	if err != nil {
		return err
	}
	slog.Info("LLM provider ready", "provider", llmCfg.Provider, "model", provider.ModelID())

	sessions := quiz.NewSessionStore(quiz.StoreConfig{TTL: cfg.SessionTTL})
	conceptSvc := concepts.NewService(provider, concepts.DefaultConfig())
	generator := questiongen.New(provider, questiongen.DefaultConfig())
	evaluator := eval.New(provider, eval.DefaultConfig())
	engine := quiz.NewEngine(sessions, conceptSvc, generator, evaluator, events)
	reports := report.NewBuilder(provider, cfg.ReportsDir)

	handler := api.NewHandler(engine, sessions, conceptSvc, reports)
	router := api.NewRouter(handler, cfg.ReportsDir)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go sweepSessions(ctx, sessions, cfg.SessionTTL)

	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	slog.Info("Server stopped successfully")
	return nil
}

// sweepSessions periodically removes expired sessions. The store also
// sweeps opportunistically on create; this catches idle periods.
func sweepSessions(ctx context.Context, sessions *quiz.SessionStore, ttl time.Duration) {
	interval := ttl / 2
	if interval > 5*time.Minute {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.CleanupExpired(); n > 0 {
				slog.Info("Swept expired sessions", "count", n)
			}
		}
	}
}
