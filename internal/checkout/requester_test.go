package checkout_test

import (
	"context"
	"io"
	"testing"

	"github.com/myrjola/japanmethod/internal/checkout"
	"github.com/myrjola/japanmethod/internal/errors"
	"github.com/myrjola/japanmethod/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	requests []checkout.SessionRequest
	err      error
}

func (f *fakeProvider) CreateSession(_ context.Context, req checkout.SessionRequest) (checkout.Session, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return checkout.Session{}, f.err
	}
	return checkout.Session{ID: "cs_test_1", URL: "https://checkout.example.com/cs_test_1"}, nil
}

type fakeRecorder struct {
	planIDs []string
	err     error
}

func (f *fakeRecorder) RecordCheckout(_ context.Context, planID string, _ checkout.Session) error {
	f.planIDs = append(f.planIDs, planID)
	return f.err
}

var testConfig = checkout.Config{ //nolint:gochecknoglobals // test fixture.
	CanonicalURL: "https://japanmethod.com",
	ContactEmail: "hello@japanmethod.com",
}

func TestRequester_Request(t *testing.T) {
	provider := &fakeProvider{}
	recorder := &fakeRecorder{}
	r := checkout.NewRequester(testConfig, provider, recorder, testhelpers.NewLogger(io.Discard))
	require.True(t, r.Configured())

	plan, session, err := r.Request(context.Background(), "master", "http://localhost:4000/")
	require.NoError(t, err)
	require.Equal(t, "Master Plan", plan.Name)
	require.Equal(t, "cs_test_1", session.ID)
	require.Equal(t, "https://checkout.example.com/cs_test_1", session.URL)

	require.Len(t, provider.requests, 1)
	req := provider.requests[0]
	require.Equal(t, int64(3500), req.Plan.Price)
	require.Equal(t, "http://localhost:4000/success?session_id={CHECKOUT_SESSION_ID}", req.SuccessURL)
	require.Equal(t, "http://localhost:4000/pricing", req.CancelURL)
	require.Equal(t, "https://japanmethod.com/images/logo.png", req.ImageURL)
	require.Equal(t, []string{"master"}, recorder.planIDs)
}

func TestRequester_OriginFallback(t *testing.T) {
	provider := &fakeProvider{}
	r := checkout.NewRequester(testConfig, provider, nil, testhelpers.NewLogger(io.Discard))

	_, _, err := r.Request(context.Background(), "essential", "")
	require.NoError(t, err)
	require.Equal(t, "https://japanmethod.com/success?session_id={CHECKOUT_SESSION_ID}", provider.requests[0].SuccessURL)
	require.Equal(t, "https://japanmethod.com/pricing", provider.requests[0].CancelURL)
}

func TestRequester_Errors(t *testing.T) {
	t.Run("invalid plan", func(t *testing.T) {
		provider := &fakeProvider{}
		r := checkout.NewRequester(testConfig, provider, nil, testhelpers.NewLogger(io.Discard))
		_, _, err := r.Request(context.Background(), "doesnotexist", "")
		require.ErrorIs(t, err, checkout.ErrInvalidPlan)
		require.Empty(t, provider.requests)
	})

	t.Run("not configured", func(t *testing.T) {
		r := checkout.NewRequester(testConfig, nil, nil, testhelpers.NewLogger(io.Discard))
		require.False(t, r.Configured())
		plan, _, err := r.Request(context.Background(), "master", "")
		require.ErrorIs(t, err, checkout.ErrNotConfigured)
		require.Equal(t, int64(3500), plan.Price)
		require.Equal(t, "Please contact hello@japanmethod.com to complete your purchase.", r.ContactMessage())
	})

	t.Run("invalid plan wins over not configured", func(t *testing.T) {
		r := checkout.NewRequester(testConfig, nil, nil, testhelpers.NewLogger(io.Discard))
		_, _, err := r.Request(context.Background(), "free", "")
		require.ErrorIs(t, err, checkout.ErrInvalidPlan)
	})

	t.Run("provider failure hides provider message", func(t *testing.T) {
		var logs testhelpers.LogBuffer
		provider := &fakeProvider{err: errors.New("card_declined: secret details")}
		r := checkout.NewRequester(testConfig, provider, nil, testhelpers.NewLogger(&logs))
		_, _, err := r.Request(context.Background(), "ultimate", "")
		require.ErrorIs(t, err, checkout.ErrProvider)
		require.NotContains(t, err.Error(), "secret details")
		require.Contains(t, logs.String(), "secret details")
		require.Equal(t, "Please try again or contact hello@japanmethod.com", r.RetryMessage())
	})

	t.Run("recording failure does not fail checkout", func(t *testing.T) {
		var logs testhelpers.LogBuffer
		recorder := &fakeRecorder{err: errors.New("disk full")}
		r := checkout.NewRequester(testConfig, &fakeProvider{}, recorder, testhelpers.NewLogger(&logs))
		_, session, err := r.Request(context.Background(), "essential", "")
		require.NoError(t, err)
		require.Equal(t, "cs_test_1", session.ID)
		require.Contains(t, logs.String(), "failed to record checkout session")
	})
}
