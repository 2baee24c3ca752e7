package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"awareness-quiz-service/internal/config"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// NewSeedCmd inserts the bundled sample quizzes into Postgres so a fresh
// deployment has something to deliver.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed sample quizzes into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath)
		},
	}
}

func runSeed(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}
	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return err
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	for slug, quiz := range sampleQuizzes() {
		if quiz.ID == "" {
			quiz.ID = uuid.NewString()
		}
		data, err := json.Marshal(quiz)
		if err != nil {
			return fmt.Errorf("marshal quiz %s: %w", slug, err)
		}
		if _, err := db.ExecContext(ctx,
			`INSERT INTO quizzes (id, public_slug, data) VALUES (?, ?, ?::jsonb)
			 ON CONFLICT (public_slug) DO UPDATE SET data=EXCLUDED.data`,
			quiz.ID, slug, string(data)); err != nil {
			return fmt.Errorf("insert quiz %s: %w", slug, err)
		}
		log.Printf("seeded quiz %q", slug)
	}
	return nil
}
