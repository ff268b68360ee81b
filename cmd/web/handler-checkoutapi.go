package main

import (
	"encoding/json"
	"mime"
	"net/http"

	"github.com/myrjola/japanmethod/internal/checkout"
	"github.com/myrjola/japanmethod/internal/errors"
	"github.com/myrjola/japanmethod/internal/metrics"
)

const maxCheckoutBodyBytes = 1 << 16

type apiError struct {
	Error      string         `json:"error"`
	Message    string         `json:"message,omitempty"`
	ValidPlans []string       `json:"validPlans,omitempty"`
	Plan       *checkout.Plan `json:"plan,omitempty"`
}

type checkoutResponse struct {
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
}

// checkoutAPI creates a hosted checkout session for the plan given in the query string or request body.
func (app *application) checkoutAPI(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodGet, http.MethodPost:
	default:
		app.writeJSON(w, r, http.StatusMethodNotAllowed, apiError{Error: "Method not allowed"}) //nolint:exhaustruct // optional fields.
		return
	}
	if !app.allowRequest(w, r) {
		app.writeJSON(w, r, http.StatusTooManyRequests, apiError{ //nolint:exhaustruct // optional fields.
			Error:   "Too many requests",
			Message: "Please wait a minute before trying again.",
		})
		return
	}

	planID := app.checkoutPlanID(w, r)
	plan, session, err := app.checkout.Request(r.Context(), planID, r.Header.Get("Origin"))
	switch {
	case errors.Is(err, checkout.ErrInvalidPlan):
		app.metrics.CheckoutRequested(planID, metrics.OutcomeInvalidPlan)
		app.writeJSON(w, r, http.StatusBadRequest, apiError{ //nolint:exhaustruct // optional fields.
			Error:      "Invalid plan",
			ValidPlans: checkout.PlanIDs(),
		})
	case errors.Is(err, checkout.ErrNotConfigured):
		app.metrics.CheckoutRequested(planID, metrics.OutcomeNotConfigured)
		app.writeJSON(w, r, http.StatusServiceUnavailable, apiError{ //nolint:exhaustruct // optional fields.
			Error:   "Payment system not configured",
			Message: app.checkout.ContactMessage(),
			Plan:    &plan,
		})
	case err != nil:
		app.metrics.CheckoutRequested(planID, metrics.OutcomeProviderError)
		app.writeJSON(w, r, http.StatusInternalServerError, apiError{ //nolint:exhaustruct // optional fields.
			Error:   "Payment processing error",
			Message: app.checkout.RetryMessage(),
		})
	default:
		app.metrics.CheckoutRequested(planID, metrics.OutcomeCreated)
		app.writeJSON(w, r, http.StatusOK, checkoutResponse{URL: session.URL, SessionID: session.ID})
	}
}

// checkoutPlanID reads the plan from the query string, falling back to a JSON or form body field.
//
// An unreadable body yields an empty plan, which is rejected as invalid.
func (app *application) checkoutPlanID(w http.ResponseWriter, r *http.Request) string {
	if plan := r.URL.Query().Get("plan"); plan != "" {
		return plan
	}
	if r.Method != http.MethodPost || r.Body == nil {
		return ""
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxCheckoutBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var body struct {
			Plan string `json:"plan"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return ""
		}
		return body.Plan
	}
	if err := r.ParseForm(); err != nil {
		return ""
	}
	return r.PostForm.Get("plan")
}
