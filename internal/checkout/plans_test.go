package checkout_test

import (
	"testing"

	"github.com/myrjola/japanmethod/internal/checkout"
	"github.com/stretchr/testify/require"
)

func TestLookupPlan(t *testing.T) {
	tests := []struct {
		id        string
		wantName  string
		wantPrice int64
		wantErr   error
	}{
		{id: "essential", wantName: "Essential Plan", wantPrice: 1900},
		{id: "master", wantName: "Master Plan", wantPrice: 3500},
		{id: "ultimate", wantName: "Ultimate Plan", wantPrice: 5500},
		{id: "doesnotexist", wantErr: checkout.ErrInvalidPlan},
		{id: "", wantErr: checkout.ErrInvalidPlan},
		{id: "Master", wantErr: checkout.ErrInvalidPlan},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			plan, err := checkout.LookupPlan(tt.id)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.id, plan.ID)
			require.Equal(t, tt.wantName, plan.Name)
			require.Equal(t, tt.wantPrice, plan.Price)
		})
	}
}

func TestPlans(t *testing.T) {
	require.Equal(t, []string{"essential", "master", "ultimate"}, checkout.PlanIDs())

	plans := checkout.Plans()
	require.Len(t, plans, 3)
	require.Equal(t, "$19", plans[0].PriceLabel())
	require.Equal(t, "$55", plans[2].PriceLabel())

	plans[0].Price = 0
	require.Equal(t, int64(1900), checkout.Plans()[0].Price)
}
