package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/myrjola/japanmethod/internal/e2etest"
	"github.com/stretchr/testify/require"
)

// newLookupEnv returns a fake environment with an ephemeral address and database. overrides are applied on top.
func newLookupEnv(overrides map[string]string) func(string) (string, bool) {
	env := map[string]string{
		"JAPANMETHOD_ADDR":       "localhost:0",
		"JAPANMETHOD_SQLITE_URL": ":memory:",
	}
	for k, v := range overrides {
		env[k] = v
	}
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

// startTestServer boots the application and stops it when the test ends.
func startTestServer(t *testing.T, logSink io.Writer, lookupEnv func(string) (string, bool)) *e2etest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	server, err := e2etest.StartServer(ctx, logSink, lookupEnv, run)
	require.NoError(t, err)
	return server
}

// newVisitor returns a client with its own cookie jar, i.e. a separate browser session.
func newVisitor(t *testing.T, server *e2etest.Server) *e2etest.Client {
	t.Helper()
	client, err := e2etest.NewClient(server.URL())
	require.NoError(t, err)
	return client
}

func postForm(
	ctx context.Context,
	t *testing.T,
	client *e2etest.Client,
	doc *goquery.Document,
	action string,
	values url.Values,
	header http.Header,
) *http.Response {
	t.Helper()
	token, err := e2etest.ExtractCSRFToken(doc, action)
	require.NoError(t, err)
	values.Set("csrf_token", token)
	if header == nil {
		header = http.Header{}
	}
	header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := client.Do(ctx, http.MethodPost, action, strings.NewReader(values.Encode()), header)
	require.NoError(t, err)
	return resp
}

// fakeStripe answers Checkout Session creation like the Stripe API.
type fakeStripe struct {
	mu    sync.Mutex
	forms []url.Values
	// status and body replace the successful answer when status is non-zero.
	status int
	body   string
}

func newFakeStripe(t *testing.T) (*fakeStripe, string) {
	t.Helper()
	fake := &fakeStripe{mu: sync.Mutex{}, forms: nil, status: 0, body: ""}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)
	return fake, server.URL
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
	status, body := f.status, f.body
	f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
		return
	}
	_, _ = w.Write([]byte(
		`{"id":"cs_test_a1","object":"checkout.session","url":"https://checkout.stripe.com/c/pay/cs_test_a1"}`))
}

// failWith makes subsequent session creations answer with status and body.
func (f *fakeStripe) failWith(status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
	f.body = body
}

// declinedCard is a Stripe error body carrying provider detail that must not reach buyers.
const declinedCard = `{"error":{"type":"card_error","code":"card_declined",` +
	`"message":"SECRET provider detail"}}`

func (f *fakeStripe) lastForm() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.forms) == 0 {
		return nil
	}
	return f.forms[len(f.forms)-1]
}
