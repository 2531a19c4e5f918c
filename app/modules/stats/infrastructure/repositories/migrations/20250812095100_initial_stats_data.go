package statsmigrations

import (
	"context"
	"fmt"

	statsdb "github.com/sideout-club/sideout-backend/app/modules/stats/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating stats tables...")

		if _, err := db.NewCreateTable().Model((*statsdb.HeadToHeadStat)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*statsdb.TeammateStat)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}

		if _, err := db.ExecContext(ctx, `
			CREATE INDEX IF NOT EXISTS idx_h2h_player_id ON head_to_head_stats(player_id);
		`); err != nil {
			return fmt.Errorf("failed to add index to head_to_head_stats: %w", err)
		}
		if _, err := db.ExecContext(ctx, `
			CREATE INDEX IF NOT EXISTS idx_teammate_player_id ON teammate_stats(player_id);
		`); err != nil {
			return fmt.Errorf("failed to add index to teammate_stats: %w", err)
		}

		// This module's columns on the rating-owned players table.
		if _, err := db.ExecContext(ctx, `
			ALTER TABLE players
				ADD COLUMN IF NOT EXISTS role_stats jsonb,
				ADD COLUMN IF NOT EXISTS point_stats jsonb;
		`); err != nil {
			return fmt.Errorf("failed to add performance columns to players: %w", err)
		}

		fmt.Println("Stats tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping stats tables...")

		if _, err := db.NewDropTable().Model((*statsdb.TeammateStat)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewDropTable().Model((*statsdb.HeadToHeadStat)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}

		if _, err := db.ExecContext(ctx, `
			ALTER TABLE IF EXISTS players
				DROP COLUMN IF EXISTS role_stats,
				DROP COLUMN IF EXISTS point_stats;
		`); err != nil {
			return fmt.Errorf("failed to drop performance columns from players: %w", err)
		}

		fmt.Println("Stats tables dropped successfully!")
		return nil
	})
}
