package checkout

import (
	"fmt"
	"log/slog"

	"github.com/myrjola/japanmethod/internal/errors"
)

var ErrInvalidPlan = errors.NewSentinel("invalid plan")

type Plan struct {
	ID          string `json:"-"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Description string `json:"description"`
}

// PriceLabel formats the price in whole dollars, e.g. "$35".
func (p Plan) PriceLabel() string {
	return fmt.Sprintf("$%d", p.Price/100) //nolint:mnd // cents
}

// plans is ordered from cheapest to most expensive.
var plans = []Plan{ //nolint:gochecknoglobals // static price table.
	{
		ID:          "essential",
		Name:        "Essential Plan",
		Price:       1900, //nolint:mnd // cents
		Description: "All 6 method guides, worksheets, and checklists",
	},
	{
		ID:          "master",
		Name:        "Master Plan",
		Price:       3500, //nolint:mnd // cents
		Description: "Complete digital system with tracking tools",
	},
	{
		ID:          "ultimate",
		Name:        "Ultimate Plan",
		Price:       5500, //nolint:mnd // cents
		Description: "Premium experience with personalized coaching",
	},
}

func Plans() []Plan {
	out := make([]Plan, len(plans))
	copy(out, plans)
	return out
}

func PlanIDs() []string {
	ids := make([]string, 0, len(plans))
	for _, p := range plans {
		ids = append(ids, p.ID)
	}
	return ids
}

func LookupPlan(id string) (Plan, error) {
	for _, p := range plans {
		if p.ID == id {
			return p, nil
		}
	}
	return Plan{}, errors.Wrap(ErrInvalidPlan, "lookup plan", slog.String("plan", id))
}
