// Package checkout creates hosted payment sessions for the price plans.
package checkout

import (
	"context"
	"log/slog"
	"strings"

	"github.com/myrjola/japanmethod/internal/errors"
)

var (
	ErrNotConfigured = errors.NewSentinel("payment provider not configured")
	ErrProvider      = errors.NewSentinel("payment provider failed")
)

// SessionRequest describes a one-off card payment for a single plan.
type SessionRequest struct {
	Plan       Plan
	SuccessURL string
	CancelURL  string
	ImageURL   string
}

// Session is a hosted checkout page created by the provider.
type Session struct {
	ID  string `json:"sessionId"`
	URL string `json:"url"`
}

// Provider creates hosted checkout sessions.
type Provider interface {
	CreateSession(ctx context.Context, req SessionRequest) (Session, error)
}

// Recorder keeps track of created sessions so that the success page can tell which plan was bought.
type Recorder interface {
	RecordCheckout(ctx context.Context, planID string, s Session) error
}

type Config struct {
	// CanonicalURL is used as origin when the request does not carry one.
	CanonicalURL string
	ContactEmail string
}

type Requester struct {
	provider Provider
	recorder Recorder
	config   Config
	logger   *slog.Logger
}

// NewRequester creates a Requester. A nil provider puts checkout in degraded mode where every valid request fails
// with ErrNotConfigured. A nil recorder disables recording.
func NewRequester(config Config, provider Provider, recorder Recorder, logger *slog.Logger) *Requester {
	return &Requester{
		provider: provider,
		recorder: recorder,
		config:   config,
		logger:   logger,
	}
}

// Configured reports whether a payment provider is available.
func (r *Requester) Configured() bool {
	return r.provider != nil
}

// ContactMessage is shown to buyers while payments are not configured.
func (r *Requester) ContactMessage() string {
	return "Please contact " + r.config.ContactEmail + " to complete your purchase."
}

// RetryMessage is shown to buyers when the provider failed.
func (r *Requester) RetryMessage() string {
	return "Please try again or contact " + r.config.ContactEmail
}

// Request creates a checkout session for planID. The buyer is sent back to origin after paying or cancelling.
//
// The returned Plan is set whenever planID is valid, also on ErrNotConfigured and ErrProvider.
func (r *Requester) Request(ctx context.Context, planID string, origin string) (Plan, Session, error) {
	plan, err := LookupPlan(planID)
	if err != nil {
		return Plan{}, Session{}, err
	}
	if r.provider == nil {
		return plan, Session{}, errors.Wrap(ErrNotConfigured, "request checkout", slog.String("plan", plan.ID))
	}

	origin = strings.TrimSuffix(origin, "/")
	if origin == "" {
		origin = r.config.CanonicalURL
	}
	req := SessionRequest{
		Plan:       plan,
		SuccessURL: origin + "/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  origin + "/pricing",
		ImageURL:   r.config.CanonicalURL + "/images/logo.png",
	}

	var session Session
	if session, err = r.provider.CreateSession(ctx, req); err != nil {
		r.logger.LogAttrs(ctx, slog.LevelError, "create checkout session failed",
			slog.String("plan", plan.ID), errors.SlogError(err))
		return plan, Session{}, errors.Wrap(ErrProvider, "request checkout", slog.String("plan", plan.ID))
	}

	if r.recorder != nil {
		if err = r.recorder.RecordCheckout(ctx, plan.ID, session); err != nil {
			r.logger.LogAttrs(ctx, slog.LevelWarn, "failed to record checkout session",
				slog.String("session_id", session.ID), errors.SlogError(err))
		}
	}

	r.logger.LogAttrs(ctx, slog.LevelInfo, "checkout session created",
		slog.String("plan", plan.ID), slog.String("session_id", session.ID))
	return plan, session, nil
}
