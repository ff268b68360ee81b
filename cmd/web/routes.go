package main

import (
	"io/fs"
	"net/http"

	htmxmw "github.com/donseba/go-htmx/middleware"
	"github.com/justinas/alice"
	"github.com/myrjola/japanmethod/ui"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	handle := func(pattern string, h http.Handler) {
		mux.Handle(pattern, app.metrics.Instrument(pattern, h))
	}

	static, err := fs.Sub(ui.Files, "static")
	if err != nil {
		panic(err)
	}
	handle("GET /static/", cacheHeaders(http.StripPrefix("/static", http.FileServerFS(static))))

	session := alice.New(app.sessionManager.LoadAndSave, noSurf, commonContext)
	limited := session.Append(app.rateLimit)

	handle("GET /{$}", session.ThenFunc(app.home))
	handle("GET /quiz", session.ThenFunc(app.quiz))
	handle("POST /quiz", session.ThenFunc(app.quizPost))
	handle("GET /results", session.ThenFunc(app.results))
	handle("GET /methods/{methodID}", session.ThenFunc(app.method))
	handle("GET /pricing", session.ThenFunc(app.pricing))
	handle("POST /pricing/{plan}", limited.ThenFunc(app.pricingCheckout))
	handle("GET /success", session.ThenFunc(app.success))

	handle("/api/checkout", alice.New(allowCORS).ThenFunc(app.checkoutAPI))
	handle("GET /api/healthy", http.HandlerFunc(app.healthy))
	mux.Handle("GET /metrics", app.metrics.Handler())

	common := alice.New(app.recoverPanic, app.requestID, app.logRequest, secureHeaders, htmxmw.MiddleWare)
	return common.Then(mux)
}
