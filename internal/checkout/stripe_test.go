package checkout_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/myrjola/japanmethod/internal/checkout"
	"github.com/myrjola/japanmethod/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

// fakeStripe mimics the Checkout Sessions endpoint of the Stripe API.
type fakeStripe struct {
	mu       sync.Mutex
	forms    []url.Values
	status   int
	response string
}

func (f *fakeStripe) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, "/checkout/sessions") {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	f.forms = append(f.forms, r.PostForm)
	f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Request-Id", "req_test")
	w.WriteHeader(f.status)
	_, _ = w.Write([]byte(f.response))
}

func TestStripeProvider_CreateSession(t *testing.T) {
	fake := &fakeStripe{
		status:   http.StatusOK,
		response: `{"id":"cs_test_a1","object":"checkout.session","url":"https://checkout.stripe.com/c/pay/cs_test_a1"}`,
	}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	provider := checkout.NewStripeProvider("sk_test_123", server.URL, testhelpers.NewLogger(io.Discard))
	plan, err := checkout.LookupPlan("master")
	require.NoError(t, err)

	session, err := provider.CreateSession(context.Background(), checkout.SessionRequest{
		Plan:       plan,
		SuccessURL: "https://japanmethod.com/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  "https://japanmethod.com/pricing",
		ImageURL:   "https://japanmethod.com/images/logo.png",
	})
	require.NoError(t, err)
	require.Equal(t, "cs_test_a1", session.ID)
	require.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_a1", session.URL)

	require.Len(t, fake.forms, 1)
	form := fake.forms[0]
	require.Equal(t, "payment", form.Get("mode"))
	require.Equal(t, "card", form.Get("payment_method_types[0]"))
	require.Equal(t, "usd", form.Get("line_items[0][price_data][currency]"))
	require.Equal(t, "3500", form.Get("line_items[0][price_data][unit_amount]"))
	require.Equal(t, "Master Plan", form.Get("line_items[0][price_data][product_data][name]"))
	require.Equal(t, "https://japanmethod.com/images/logo.png",
		form.Get("line_items[0][price_data][product_data][images][0]"))
	require.Equal(t, "1", form.Get("line_items[0][quantity]"))
	require.Equal(t, "master", form.Get("metadata[plan]"))
	require.Equal(t, "https://japanmethod.com/success?session_id={CHECKOUT_SESSION_ID}", form.Get("success_url"))
	require.Equal(t, "https://japanmethod.com/pricing", form.Get("cancel_url"))
}

func TestStripeProvider_Error(t *testing.T) {
	fake := &fakeStripe{
		status:   http.StatusBadRequest,
		response: `{"error":{"type":"invalid_request_error","code":"parameter_invalid_integer","message":"Invalid integer"}}`,
	}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	provider := checkout.NewStripeProvider("sk_test_123", server.URL, testhelpers.NewLogger(io.Discard))
	plan, err := checkout.LookupPlan("essential")
	require.NoError(t, err)

	_, err = provider.CreateSession(context.Background(), checkout.SessionRequest{Plan: plan})
	require.ErrorContains(t, err, "Invalid integer")
	require.Len(t, fake.forms, 1, "failed requests must not be retried")
}
