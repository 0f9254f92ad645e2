package store

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

var indexStatements = []string{
	`CREATE INDEX IF NOT EXISTS idx_chats_user_id ON chats (user_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_user_id ON reservations (user_id)`,
}

func createTables(ctx context.Context, db *bun.DB) error {
	models := []interface{}{
		(*userSchema)(nil),
		(*chatSchema)(nil),
		(*reservationSchema)(nil),
	}

	for _, model := range models {
		_, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("create table for %T: %w", model, err)
		}
	}

	for _, stmt := range indexStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}

	return nil
}
