package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/myrjola/japanmethod/internal/errors"
	"github.com/myrjola/japanmethod/internal/repositories"
	"github.com/myrjola/japanmethod/internal/sqlite"
	"github.com/myrjola/japanmethod/internal/testhelpers"
)

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	var (
		err       error
		start     = time.Now()
		ctx       context.Context
		sqliteURL string
		ok        bool
		cancel    context.CancelFunc
	)
	ctx = context.Background()
	ctx, cancel = context.WithTimeout(ctx, 5*time.Second) //nolint:mnd // 5 seconds

	if sqliteURL, ok = os.LookupEnv("JAPANMETHOD_SQLITE_URL"); !ok {
		logger.LogAttrs(ctx, slog.LevelError, "JAPANMETHOD_SQLITE_URL not set")
		os.Exit(1)
	}

	var db *sqlite.Database
	if db, err = sqlite.NewDatabase(ctx, sqliteURL, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating database",
			slog.String("url", sqliteURL), errors.SlogError(err))
		os.Exit(1)
	}

	// Reading the checkout history through the repository checks that the migrated schema still fits the queries.
	counts, err := repositories.NewCheckoutRepository(db, logger).CountByPlan(ctx)
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error counting checkouts", errors.SlogError(err))
		os.Exit(1)
	}
	total := 0
	for _, c := range counts {
		logger.LogAttrs(ctx, slog.LevelInfo, "checkouts", slog.String("plan", c.PlanID), slog.Int("count", c.Count))
		total += c.Count
	}

	var sessions int
	if err = db.ReadOnly.GetContext(ctx, &sessions, `SELECT COUNT(*) FROM sessions`); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error counting sessions", errors.SlogError(err))
		os.Exit(1)
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "row counts", slog.Int("checkouts", total), slog.Int("sessions", sessions))

	if err = db.Close(); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error closing database", errors.SlogError(err))
		os.Exit(1)
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "Migration test successful 🙌", slog.Duration("duration", time.Since(start)))
	cancel()
	os.Exit(0)
}
