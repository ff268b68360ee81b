package repositories

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/myrjola/japanmethod/internal/checkout"
	"github.com/myrjola/japanmethod/internal/errors"
	"github.com/myrjola/japanmethod/internal/models"
	"github.com/myrjola/japanmethod/internal/sqlite"
)

var ErrNotFound = errors.NewSentinel("not found")

// createdLayout matches STRFTIME('%Y-%m-%dT%H:%M:%fZ', 'now') in the schema.
const createdLayout = "2006-01-02T15:04:05.000Z"

type CheckoutRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func NewCheckoutRepository(db *sqlite.Database, logger *slog.Logger) *CheckoutRepository {
	return &CheckoutRepository{
		db:     db,
		logger: logger.With("source", "CheckoutRepository"),
	}
}

// RecordCheckout stores a created checkout session. Recording the same session twice keeps the first record.
func (r *CheckoutRepository) RecordCheckout(ctx context.Context, planID string, s checkout.Session) error {
	stmt := `INSERT INTO checkout_sessions (id, plan, url) VALUES (?, ?, ?) ON CONFLICT (id) DO NOTHING`
	if _, err := r.db.ReadWrite.ExecContext(ctx, stmt, s.ID, planID, s.URL); err != nil {
		return errors.Wrap(err, "insert checkout session",
			slog.String("session_id", s.ID), slog.String("plan", planID))
	}
	return nil
}

type checkoutSessionRow struct {
	ID      string `db:"id"`
	Plan    string `db:"plan"`
	URL     string `db:"url"`
	Created string `db:"created"`
}

// Get returns the checkout session with id or ErrNotFound.
func (r *CheckoutRepository) Get(ctx context.Context, id string) (*models.CheckoutSession, error) {
	var row checkoutSessionRow
	stmt := `SELECT id, plan, url, created FROM checkout_sessions WHERE id = ?`
	if err := r.db.ReadOnly.GetContext(ctx, &row, stmt, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrap(ErrNotFound, "get checkout session", slog.String("session_id", id))
		}
		return nil, errors.Wrap(err, "get checkout session", slog.String("session_id", id))
	}
	created, err := time.Parse(createdLayout, row.Created)
	if err != nil {
		return nil, errors.Wrap(err, "parse created", slog.String("created", row.Created))
	}
	return &models.CheckoutSession{
		ID:      row.ID,
		PlanID:  row.Plan,
		URL:     row.URL,
		Created: created,
	}, nil
}

// CountByPlan returns how many checkout sessions each plan has, most popular first.
func (r *CheckoutRepository) CountByPlan(ctx context.Context) ([]models.PlanCount, error) {
	var counts []models.PlanCount
	stmt := `SELECT plan, COUNT(*) AS count FROM checkout_sessions GROUP BY plan ORDER BY count DESC, plan`
	if err := r.db.ReadOnly.SelectContext(ctx, &counts, stmt); err != nil {
		return nil, errors.Wrap(err, "count checkout sessions by plan")
	}
	return counts, nil
}
