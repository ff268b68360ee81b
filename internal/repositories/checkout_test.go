package repositories_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/myrjola/japanmethod/internal/checkout"
	"github.com/myrjola/japanmethod/internal/models"
	"github.com/myrjola/japanmethod/internal/repositories"
	"github.com/myrjola/japanmethod/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

func TestCheckoutRepository(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewCheckoutRepository(newTestDB(t), testhelpers.NewLogger(io.Discard))

	_, err := repo.Get(ctx, "cs_missing")
	require.ErrorIs(t, err, repositories.ErrNotFound)

	before := time.Now().Add(-time.Minute)
	require.NoError(t, repo.RecordCheckout(ctx, "master",
		checkout.Session{ID: "cs_1", URL: "https://checkout.stripe.com/c/pay/cs_1"}))
	require.NoError(t, repo.RecordCheckout(ctx, "essential",
		checkout.Session{ID: "cs_1", URL: "https://checkout.stripe.com/c/pay/other"}), "duplicates are ignored")
	require.NoError(t, repo.RecordCheckout(ctx, "master", checkout.Session{ID: "cs_2", URL: "u2"}))
	require.NoError(t, repo.RecordCheckout(ctx, "ultimate", checkout.Session{ID: "cs_3", URL: "u3"}))

	got, err := repo.Get(ctx, "cs_1")
	require.NoError(t, err)
	require.Equal(t, "master", got.PlanID)
	require.Equal(t, "https://checkout.stripe.com/c/pay/cs_1", got.URL)
	require.True(t, got.Created.After(before))

	counts, err := repo.CountByPlan(ctx)
	require.NoError(t, err)
	require.Equal(t, []models.PlanCount{{PlanID: "master", Count: 2}, {PlanID: "ultimate", Count: 1}}, counts)

	require.Error(t, repo.RecordCheckout(ctx, "free", checkout.Session{ID: "cs_4", URL: "u4"}),
		"unknown plans violate the check constraint")
}
