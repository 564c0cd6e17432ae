package migrations

import (
	"context"
	"fmt"
	"time"

	"solana-wallet-pnl/internal/observability"
	"solana-wallet-pnl/internal/storage/postgres"
)

// RunPostgresMigrations applies the embedded PostgreSQL schema in file order.
// Every file uses CREATE ... IF NOT EXISTS, so reruns are no-ops.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool) (err error) {
	defer func(start time.Time) {
		observability.RecordDBQuery("postgres", "migrate", time.Since(start).Seconds(), err)
	}(time.Now())

	files, err := load(PostgresFS, "postgres")
	if err != nil {
		return err
	}
	for _, m := range files {
		if _, err := pool.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.name, err)
		}
	}
	return nil
}
