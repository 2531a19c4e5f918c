package ratingmigrations

import (
	"context"
	"fmt"

	ratingdb "github.com/sideout-club/sideout-backend/app/modules/rating/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating rating tables...")

		if _, err := db.NewCreateTable().Model((*ratingdb.Match)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*ratingdb.PlayerProfile)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*ratingdb.RatingHistoryEntry)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Rating tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping rating tables...")

		if _, err := db.NewDropTable().Model((*ratingdb.RatingHistoryEntry)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewDropTable().Model((*ratingdb.PlayerProfile)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewDropTable().Model((*ratingdb.Match)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}

		fmt.Println("Rating tables dropped successfully!")
		return nil
	})
}
