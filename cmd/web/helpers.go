package main

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/myrjola/japanmethod/internal/errors"
)

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error",
		slog.String("method", method), slog.String("uri", uri), errors.SlogError(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (app *application) clientError(w http.ResponseWriter, r *http.Request, status int) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.LogAttrs(r.Context(), slog.LevelDebug, http.StatusText(status),
		slog.String("method", method), slog.String("uri", uri))
	http.Error(w, http.StatusText(status), status)
}

// notFound renders the styled error page.
func (app *application) notFound(w http.ResponseWriter, r *http.Request) {
	app.logger.LogAttrs(r.Context(), slog.LevelDebug, "not found", slog.String("uri", r.URL.RequestURI()))
	app.render(w, r, http.StatusNotFound, "error", messageTemplateData{
		BaseTemplateData: newBaseTemplateData(r, app.config.ContactEmail),
		Title:            "Page not found",
		Message:          "We could not find what you were looking for.",
	})
}

func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "marshal json"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// isHTMX reports whether htmx issued the request. The header is parsed by the htmx middleware in routes.
func (app *application) isHTMX(w http.ResponseWriter, r *http.Request) bool {
	return app.htmx.NewHandler(w, r).Request().HxRequest
}

// redirect sends the browser to target. htmx requests get HX-Redirect so that the whole page navigates.
func (app *application) redirect(w http.ResponseWriter, r *http.Request, target string) {
	if app.isHTMX(w, r) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
