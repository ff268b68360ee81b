package main

import (
	"log/slog"
	"net/http"

	"github.com/myrjola/japanmethod/internal/checkout"
	"github.com/myrjola/japanmethod/internal/errors"
	"github.com/myrjola/japanmethod/internal/metrics"
	"github.com/myrjola/japanmethod/internal/models"
	"github.com/myrjola/japanmethod/internal/quiz"
	"github.com/myrjola/japanmethod/internal/repositories"
)

type pricingTemplateData struct {
	BaseTemplateData
	Plans       []checkout.Plan
	Recommended *quiz.Method
	Notice      string
}

func (app *application) renderPricing(w http.ResponseWriter, r *http.Request, status int, notice string) {
	data := pricingTemplateData{
		BaseTemplateData: newBaseTemplateData(r, app.config.ContactEmail),
		Plans:            checkout.Plans(),
		Recommended:      nil,
		Notice:           notice,
	}
	if result, ok := app.storedResult(r); ok {
		if m, found := app.engine.Catalog().Method(result.TopMethod); found {
			data.Recommended = &m
		}
	}
	app.render(w, r, status, "pricing", data)
}

func (app *application) pricing(w http.ResponseWriter, r *http.Request) {
	app.renderPricing(w, r, http.StatusOK, "")
}

// pricingCheckout starts a checkout from the pricing page form and sends the buyer to the hosted payment page.
func (app *application) pricingCheckout(w http.ResponseWriter, r *http.Request) {
	planID := r.PathValue("plan")
	_, session, err := app.checkout.Request(r.Context(), planID, r.Header.Get("Origin"))
	switch {
	case errors.Is(err, checkout.ErrInvalidPlan):
		app.metrics.CheckoutRequested(planID, metrics.OutcomeInvalidPlan)
		app.notFound(w, r)
	case errors.Is(err, checkout.ErrNotConfigured):
		app.metrics.CheckoutRequested(planID, metrics.OutcomeNotConfigured)
		app.renderPricing(w, r, http.StatusServiceUnavailable, app.checkout.ContactMessage())
	case err != nil:
		app.metrics.CheckoutRequested(planID, metrics.OutcomeProviderError)
		app.renderPricing(w, r, http.StatusInternalServerError, app.checkout.RetryMessage())
	default:
		app.metrics.CheckoutRequested(planID, metrics.OutcomeCreated)
		http.Redirect(w, r, session.URL, http.StatusSeeOther)
	}
}

type successTemplateData struct {
	BaseTemplateData
	Plan *checkout.Plan
}

func (app *application) success(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := successTemplateData{
		BaseTemplateData: newBaseTemplateData(r, app.config.ContactEmail),
		Plan:             nil,
	}

	if sessionID := r.URL.Query().Get("session_id"); sessionID != "" {
		var (
			cs  *models.CheckoutSession
			err error
		)
		cs, err = app.checkouts.Get(ctx, sessionID)
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			app.logger.LogAttrs(ctx, slog.LevelDebug, "unknown checkout session", slog.String("session_id", sessionID))
		case err != nil:
			app.logger.LogAttrs(ctx, slog.LevelWarn, "failed to look up checkout session", errors.SlogError(err))
		default:
			if plan, planErr := checkout.LookupPlan(cs.PlanID); planErr == nil {
				data.Plan = &plan
			}
		}
	}

	app.render(w, r, http.StatusOK, "success", data)
}
