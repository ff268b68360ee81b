package models

import "time"

// CheckoutSession is a hosted checkout page that was created for a price plan.
type CheckoutSession struct {
	ID      string
	PlanID  string
	URL     string
	Created time.Time
}

// PlanCount is the number of checkout sessions created for a plan.
type PlanCount struct {
	PlanID string `db:"plan"`
	Count  int    `db:"count"`
}
