package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"awareness-quiz-service/internal/app"
	"awareness-quiz-service/internal/config"
	"awareness-quiz-service/internal/domain"
	"awareness-quiz-service/internal/infra/memory"
	pgloader "awareness-quiz-service/internal/infra/postgres"
	redisinfra "awareness-quiz-service/internal/infra/redis"
	"awareness-quiz-service/internal/tracking"
	transport "awareness-quiz-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz delivery server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.QuizLoader = memory.NewStaticQuizLoader(sampleQuizzes())
	if pool != nil {
		loader = pgloader.NewQuizLoader(pool)
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var quizzes app.QuizRepository
	if redisClient != nil {
		quizzes = redisinfra.NewQuizRepository(redisClient, loader, quizTTL)
	} else {
		quizzes = memory.NewQuizRepository(loader, quizTTL)
	}

	attemptTTL := config.TTLDuration(cfg.Attempt.TTL, time.Hour)
	var attempts app.AttemptRepository
	if redisClient != nil {
		attempts = redisinfra.NewAttemptStore(redisClient, attemptTTL)
	} else {
		attempts = memory.NewAttemptStore()
	}

	reporter := tracking.New(tracking.Config{
		BaseURL: cfg.Tracking.URL,
		Timeout: config.TTLDuration(cfg.Tracking.Timeout, 10*time.Second),
	})

	service := app.NewAttemptService(attempts, quizzes, reporter)
	handler := transport.NewHandler(service)
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	handler.Register(mux)
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz delivery service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuizzes provides a minimal quiz for running without Postgres.
func sampleQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"phishing-basics": {
			ID:          "quiz-phishing-basics",
			PublicSlug:  "phishing-basics",
			Title:       "Phishing Basics",
			Description: "Spot the warning signs of a phishing email.",
			Questions: []domain.Question{
				{
					Prompt: "An email urges you to reset your password via an unfamiliar link. What do you do?",
					Options: []domain.Option{
						{Text: "Click the link right away", Correct: false, Explanation: "Unexpected links are the classic phishing lure."},
						{Text: "Navigate to the site directly and check", Correct: true, Explanation: "Going to the known address avoids spoofed links."},
						{Text: "Reply asking if it is legitimate", Correct: false, Explanation: "Replies go back to the attacker."},
					},
				},
				{
					Prompt: "Which sender address is most suspicious?",
					Options: []domain.Option{
						{Text: "it-support@yourcompany.com", Correct: false},
						{Text: "it-supp0rt@yourc0mpany-security.net", Correct: true, Explanation: "Lookalike domains swap characters to imitate the real one."},
					},
				},
			},
		},
	}
}
