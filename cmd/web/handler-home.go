package main

import (
	"net/http"

	"github.com/myrjola/japanmethod/internal/quiz"
)

type homeTemplateData struct {
	BaseTemplateData
	Methods       []quiz.Method
	QuestionCount int
}

func (app *application) home(w http.ResponseWriter, r *http.Request) {
	catalog := app.engine.Catalog()
	data := homeTemplateData{
		BaseTemplateData: newBaseTemplateData(r, app.config.ContactEmail),
		Methods:          catalog.Methods(),
		QuestionCount:    catalog.QuestionCount(),
	}

	app.render(w, r, http.StatusOK, "home", data)
}
