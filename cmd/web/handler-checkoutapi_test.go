package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/japanmethod/internal/e2etest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkoutAPIResponse struct {
	Error      string   `json:"error"`
	Message    string   `json:"message"`
	ValidPlans []string `json:"validPlans"`
	Plan       *struct {
		Name        string `json:"name"`
		Price       int64  `json:"price"`
		Description string `json:"description"`
	} `json:"plan"`
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
}

func doCheckout(
	t *testing.T,
	client *e2etest.Client,
	method, path string,
	body io.Reader,
	header http.Header,
) (*http.Response, checkoutAPIResponse) {
	t.Helper()
	resp, err := client.Do(context.Background(), method, path, body, header)
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded checkoutAPIResponse
	if len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, &decoded), string(data))
	}
	return resp, decoded
}

func Test_application_checkoutAPI_notConfigured(t *testing.T) {
	server := startTestServer(t, io.Discard, newLookupEnv(nil))
	client := server.Client()

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		header     http.Header
		wantStatus int
		wantPrice  int64
	}{
		{
			name:       "query parameter",
			method:     http.MethodGet,
			path:       "/api/checkout?plan=master",
			wantStatus: http.StatusServiceUnavailable,
			wantPrice:  3500,
		},
		{
			name:       "json body",
			method:     http.MethodPost,
			path:       "/api/checkout",
			body:       `{"plan":"essential"}`,
			header:     http.Header{"Content-Type": {"application/json"}},
			wantStatus: http.StatusServiceUnavailable,
			wantPrice:  1900,
		},
		{
			name:       "form body",
			method:     http.MethodPost,
			path:       "/api/checkout",
			body:       "plan=ultimate",
			header:     http.Header{"Content-Type": {"application/x-www-form-urlencoded"}},
			wantStatus: http.StatusServiceUnavailable,
			wantPrice:  5500,
		},
		{
			name:       "malformed json",
			method:     http.MethodPost,
			path:       "/api/checkout",
			body:       `{"plan":`,
			header:     http.Header{"Content-Type": {"application/json"}},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown plan",
			method:     http.MethodGet,
			path:       "/api/checkout?plan=doesnotexist",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing plan",
			method:     http.MethodGet,
			path:       "/api/checkout",
			wantStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, got := doCheckout(t, client, tt.method, tt.path, strings.NewReader(tt.body), tt.header)
			require.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "GET, POST, OPTIONS", resp.Header.Get("Access-Control-Allow-Methods"))
			assert.Equal(t, "Content-Type", resp.Header.Get("Access-Control-Allow-Headers"))

			switch tt.wantStatus {
			case http.StatusServiceUnavailable:
				assert.Equal(t, "Payment system not configured", got.Error)
				assert.Equal(t, "Please contact hello@japanmethod.com to complete your purchase.", got.Message)
				require.NotNil(t, got.Plan)
				assert.Equal(t, tt.wantPrice, got.Plan.Price)
			case http.StatusBadRequest:
				assert.Equal(t, "Invalid plan", got.Error)
				if diff := cmp.Diff([]string{"essential", "master", "ultimate"}, got.ValidPlans); diff != "" {
					t.Errorf("validPlans mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func Test_application_checkoutAPI_methods(t *testing.T) {
	server := startTestServer(t, io.Discard, newLookupEnv(nil))
	client := server.Client()

	resp, got := doCheckout(t, client, http.MethodDelete, "/api/checkout?plan=master", nil, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, "Method not allowed", got.Error)

	resp, got = doCheckout(t, client, http.MethodOptions, "/api/checkout", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, checkoutAPIResponse{}, got) //nolint:exhaustruct // empty body.
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func Test_application_checkoutAPI_stripe(t *testing.T) {
	fake, stripeURL := newFakeStripe(t)
	server := startTestServer(t, io.Discard, newLookupEnv(map[string]string{
		"STRIPE_SECRET_KEY":          "sk_test_123",
		"JAPANMETHOD_STRIPE_API_URL": stripeURL,
	}))
	client := newVisitor(t, server)

	resp, got := doCheckout(t, client, http.MethodPost, "/api/checkout?plan=master", nil,
		http.Header{"Origin": {"https://preview.japanmethod.com"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "cs_test_a1", got.SessionID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_a1", got.URL)

	form := fake.lastForm()
	require.NotNil(t, form)
	assert.Equal(t, "https://preview.japanmethod.com/success?session_id={CHECKOUT_SESSION_ID}", form.Get("success_url"))
	assert.Equal(t, "https://preview.japanmethod.com/pricing", form.Get("cancel_url"))
	assert.Equal(t, "master", form.Get("metadata[plan]"))

	// The recorded session is recognised on the success page.
	doc, err := client.GetDoc(context.Background(), "/success?session_id=cs_test_a1")
	require.NoError(t, err)
	assert.Equal(t, "master", doc.Find(".purchased-plan").AttrOr("data-plan", ""))

	doc, err = client.GetDoc(context.Background(), "/success?session_id=cs_unknown")
	require.NoError(t, err)
	assert.Equal(t, 0, doc.Find(".purchased-plan").Length())

	t.Run("provider failure", func(t *testing.T) {
		fake.failWith(http.StatusPaymentRequired, declinedCard)

		resp, err := client.Do(context.Background(), http.MethodPost, "/api/checkout?plan=essential", nil, nil)
		require.NoError(t, err)
		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, resp.Body.Close())

		require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
		assert.JSONEq(t,
			`{"error":"Payment processing error","message":"Please try again or contact hello@japanmethod.com"}`,
			string(data))
		assert.NotContains(t, string(data), "SECRET")
	})
}

func Test_application_pricing(t *testing.T) {
	ctx := context.Background()

	t.Run("not configured", func(t *testing.T) {
		server := startTestServer(t, io.Discard, newLookupEnv(nil))
		client := newVisitor(t, server)

		doc, err := client.GetDoc(ctx, "/pricing")
		require.NoError(t, err)
		assert.Equal(t, 3, doc.Find(".plan-card").Length())
		assert.Equal(t, "$35", doc.Find(".plan-card[data-plan=master] .price").Text())

		resp := postForm(ctx, t, client, doc, "/pricing/master", url.Values{}, nil)
		doc, err = e2etest.DocFromResponse(resp, http.StatusServiceUnavailable)
		require.NoError(t, err)
		assert.Equal(t, "Please contact hello@japanmethod.com to complete your purchase.", doc.Find(".notice").Text())
	})

	t.Run("redirects to hosted checkout", func(t *testing.T) {
		_, stripeURL := newFakeStripe(t)
		server := startTestServer(t, io.Discard, newLookupEnv(map[string]string{
			"STRIPE_SECRET_KEY":          "sk_test_123",
			"JAPANMETHOD_STRIPE_API_URL": stripeURL,
		}))
		client := newVisitor(t, server)

		doc, err := client.GetDoc(ctx, "/pricing")
		require.NoError(t, err)
		resp := postForm(ctx, t, client.WithoutRedirects(), doc, "/pricing/essential", url.Values{}, nil)
		require.NoError(t, resp.Body.Close())
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_a1", resp.Header.Get("Location"))
	})

	t.Run("provider failure", func(t *testing.T) {
		fake, stripeURL := newFakeStripe(t)
		fake.failWith(http.StatusPaymentRequired, declinedCard)
		server := startTestServer(t, io.Discard, newLookupEnv(map[string]string{
			"STRIPE_SECRET_KEY":          "sk_test_123",
			"JAPANMETHOD_STRIPE_API_URL": stripeURL,
		}))
		client := newVisitor(t, server)

		doc, err := client.GetDoc(ctx, "/pricing")
		require.NoError(t, err)
		resp := postForm(ctx, t, client.WithoutRedirects(), doc, "/pricing/ultimate", url.Values{}, nil)
		doc, err = e2etest.DocFromResponse(resp, http.StatusInternalServerError)
		require.NoError(t, err)
		assert.Equal(t, "Please try again or contact hello@japanmethod.com", doc.Find(".notice").Text())
		html, err := doc.Html()
		require.NoError(t, err)
		assert.NotContains(t, html, "SECRET")
	})
}

func Test_application_checkoutAPI_rateLimit(t *testing.T) {
	server := startTestServer(t, io.Discard, newLookupEnv(map[string]string{
		"JAPANMETHOD_CHECKOUT_RATE": "2",
	}))
	client := server.Client()

	for range 2 {
		resp, _ := doCheckout(t, client, http.MethodGet, "/api/checkout?plan=master", nil, nil)
		require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	}
	resp, got := doCheckout(t, client, http.MethodGet, "/api/checkout?plan=master", nil, nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "60", resp.Header.Get("Retry-After"))
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, "Too many requests", got.Error)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func Test_application_checkoutAPI_rateLimitMethods(t *testing.T) {
	server := startTestServer(t, io.Discard, newLookupEnv(map[string]string{
		"JAPANMETHOD_CHECKOUT_RATE": "1",
	}))
	client := server.Client()

	// Preflights do not spend the budget.
	for range 3 {
		resp, _ := doCheckout(t, client, http.MethodOptions, "/api/checkout", nil, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp, _ := doCheckout(t, client, http.MethodGet, "/api/checkout?plan=master", nil, nil)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	resp, _ = doCheckout(t, client, http.MethodPost, "/api/checkout?plan=master", nil, nil)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	resp, got := doCheckout(t, client, http.MethodDelete, "/api/checkout?plan=master", nil, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, "Method not allowed", got.Error)
	resp, _ = doCheckout(t, client, http.MethodOptions, "/api/checkout", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
