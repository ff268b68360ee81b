package main

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"

	"github.com/myrjola/japanmethod/internal/contexthelpers"
	"github.com/myrjola/japanmethod/internal/errors"
	"github.com/myrjola/japanmethod/ui"
)

type BaseTemplateData struct {
	CurrentPath  string
	ContactEmail string
}

func newBaseTemplateData(r *http.Request, contactEmail string) BaseTemplateData {
	return BaseTemplateData{
		CurrentPath:  contexthelpers.CurrentPath(r.Context()),
		ContactEmail: contactEmail,
	}
}

type messageTemplateData struct {
	BaseTemplateData
	Title   string
	Message string
}

// templateCache holds one parsed template set per page.
type templateCache struct {
	pages map[string]*template.Template
}

// newTemplateCache parses every directory inside ui/templates/pages together with the base layout.
//
// Each page directory has to define a template named "page".
func newTemplateCache() (*templateCache, error) {
	entries, err := fs.ReadDir(ui.Files, "templates/pages")
	if err != nil {
		return nil, errors.Wrap(err, "read pages directory")
	}
	cache := &templateCache{pages: make(map[string]*template.Template, len(entries))}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		// The FuncMap has to exist before parsing. The real functions are bound per request in render.
		var t *template.Template
		t, err = template.New(name).Funcs(template.FuncMap{
			"nonce": func() template.HTMLAttr {
				panic("not implemented")
			},
			"csrf": func() template.HTML {
				panic("not implemented")
			},
		}).ParseFS(ui.Files, "templates/base.gohtml", path.Join("templates/pages", name, "*.gohtml"))
		if err != nil {
			return nil, errors.Wrap(err, "parse page template", slog.String("page", name))
		}
		cache.pages[name] = t
	}
	return cache, nil
}

func (c *templateCache) execute(r *http.Request, page string, name string, data any) (*bytes.Buffer, error) {
	base, ok := c.pages[page]
	if !ok {
		return nil, errors.New("page template not found", slog.String("page", page))
	}
	t, err := base.Clone()
	if err != nil {
		return nil, errors.Wrap(err, "clone template", slog.String("page", page))
	}

	ctx := r.Context()
	nonce := fmt.Sprintf("nonce=\"%s\"", contexthelpers.CSPNonce(ctx))
	csrf := fmt.Sprintf("<input type=\"hidden\" name=\"csrf_token\" value=\"%s\"/>",
		template.HTMLEscapeString(contexthelpers.CSRFToken(ctx)))
	t.Funcs(template.FuncMap{
		"nonce": func() template.HTMLAttr {
			return template.HTMLAttr(nonce) //nolint:gosec // we trust the nonce since it's not provided by user.
		},
		"csrf": func() template.HTML {
			return template.HTML(csrf) //nolint:gosec // the token is escaped above.
		},
	})

	buf := new(bytes.Buffer)
	if err = t.ExecuteTemplate(buf, name, data); err != nil {
		return nil, errors.Wrap(err, "execute template", slog.String("page", page), slog.String("template", name))
	}
	return buf, nil
}

// render writes the full page wrapped in the base layout.
func (app *application) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	app.renderTemplate(w, r, status, page, "base", data)
}

// renderTemplate writes a single named template of page, e.g. a partial swapped in by htmx.
func (app *application) renderTemplate(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	page string,
	name string,
	data any,
) {
	buf, err := app.templates.execute(r, page, name, data)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	_, _ = buf.WriteTo(w)
}
