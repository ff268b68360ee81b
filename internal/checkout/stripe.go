package checkout

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/myrjola/japanmethod/internal/errors"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeProvider creates Stripe Checkout sessions.
type StripeProvider struct {
	api *client.API
}

// NewStripeProvider creates a provider authenticated with secretKey. An empty apiURL uses the Stripe API, other
// values point the client to e.g. stripe-mock.
//
// Requests are never retried so that a failed checkout does not create duplicate sessions.
func NewStripeProvider(secretKey string, apiURL string, logger *slog.Logger) *StripeProvider {
	config := &stripe.BackendConfig{ //nolint:exhaustruct // defaults are fine.
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     stripeLogger{logger: logger},
	}
	if apiURL != "" {
		config.URL = stripe.String(apiURL)
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, config)
	api := client.New(secretKey, &stripe.Backends{
		API:     backend,
		Connect: backend,
		Uploads: backend,
	})
	return &StripeProvider{api: api}
}

func (p *StripeProvider) CreateSession(ctx context.Context, req SessionRequest) (Session, error) {
	params := &stripe.CheckoutSessionParams{ //nolint:exhaustruct // only the used fields.
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyUSD)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(req.Plan.Name),
						Description: stripe.String(req.Plan.Description),
						Images:      stripe.StringSlice([]string{req.ImageURL}),
					},
					UnitAmount: stripe.Int64(req.Plan.Price),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	params.Context = ctx
	params.AddMetadata("plan", req.Plan.ID)

	s, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		attrs := []slog.Attr{slog.String("plan", req.Plan.ID)}
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			attrs = append(attrs,
				slog.String("stripe_type", string(stripeErr.Type)),
				slog.String("stripe_code", string(stripeErr.Code)),
				slog.Int("stripe_status", stripeErr.HTTPStatusCode),
				slog.String("stripe_request_id", stripeErr.RequestID),
			)
		}
		return Session{}, errors.Wrap(err, "create stripe checkout session", attrs...)
	}
	return Session{ID: s.ID, URL: s.URL}, nil
}

// stripeLogger routes the Stripe client's logs to slog.
type stripeLogger struct {
	logger *slog.Logger
}

func (l stripeLogger) Debugf(format string, v ...any) {
	l.logger.Debug(fmt.Sprintf(format, v...), slog.String("component", "stripe"))
}

func (l stripeLogger) Infof(format string, v ...any) {
	l.logger.Debug(fmt.Sprintf(format, v...), slog.String("component", "stripe"))
}

func (l stripeLogger) Warnf(format string, v ...any) {
	l.logger.Warn(fmt.Sprintf(format, v...), slog.String("component", "stripe"))
}

func (l stripeLogger) Errorf(format string, v ...any) {
	l.logger.Warn(fmt.Sprintf(format, v...), slog.String("component", "stripe"))
}
