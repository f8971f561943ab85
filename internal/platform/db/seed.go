package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Seed loads the fixed public-holiday calendar. Idempotent: existing rows are
// left alone.
func Seed(ctx context.Context, pool *pgxpool.Pool) error {
	year := time.Now().Year()
	holidays := []struct {
		month time.Month
		day   int
		name  string
	}{
		{time.January, 1, "New Year's Day"},
		{time.May, 1, "Labour Day"},
		{time.December, 25, "Christmas Day"},
	}

	for _, h := range holidays {
		day := time.Date(year, h.month, h.day, 0, 0, 0, 0, time.UTC)
		if _, err := pool.Exec(ctx, `
      INSERT INTO holidays (day, name) VALUES ($1, $2)
      ON CONFLICT (day) DO NOTHING
    `, day, h.name); err != nil {
			return err
		}
	}
	return nil
}
