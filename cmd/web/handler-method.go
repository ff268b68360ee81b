package main

import (
	"net/http"

	"github.com/myrjola/japanmethod/internal/quiz"
)

type methodTemplateData struct {
	BaseTemplateData
	Method quiz.Method
}

func (app *application) method(w http.ResponseWriter, r *http.Request) {
	id, err := quiz.ParseMethodID(r.PathValue("methodID"))
	if err != nil {
		app.notFound(w, r)
		return
	}
	m, ok := app.engine.Catalog().Method(id)
	if !ok {
		app.notFound(w, r)
		return
	}

	app.render(w, r, http.StatusOK, "method", methodTemplateData{
		BaseTemplateData: newBaseTemplateData(r, app.config.ContactEmail),
		Method:           m,
	})
}
