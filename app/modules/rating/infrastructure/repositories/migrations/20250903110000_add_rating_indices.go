package ratingmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Adding indices for rating module...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE INDEX IF NOT EXISTS idx_matches_pipeline_state ON matches(pipeline_state);
			`); err != nil {
				return fmt.Errorf("failed to add index to matches: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `
				CREATE INDEX IF NOT EXISTS idx_rating_history_player_id ON rating_history(player_id);
			`); err != nil {
				return fmt.Errorf("failed to add index to rating_history: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `
				CREATE INDEX IF NOT EXISTS idx_rating_history_match_id ON rating_history(match_id);
			`); err != nil {
				return fmt.Errorf("failed to add index to rating_history: %w", err)
			}
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Rolling back indices for rating module...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				DROP INDEX IF EXISTS idx_matches_pipeline_state;
			`); err != nil {
				return fmt.Errorf("failed to drop index from matches: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `
				DROP INDEX IF EXISTS idx_rating_history_player_id;
			`); err != nil {
				return fmt.Errorf("failed to drop index from rating_history: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `
				DROP INDEX IF EXISTS idx_rating_history_match_id;
			`); err != nil {
				return fmt.Errorf("failed to drop index from rating_history: %w", err)
			}
			return nil
		})
	})
}
