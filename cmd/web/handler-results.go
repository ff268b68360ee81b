package main

import (
	"log/slog"
	"net/http"

	"github.com/myrjola/japanmethod/internal/errors"
	"github.com/myrjola/japanmethod/internal/quiz"
	"github.com/myrjola/japanmethod/internal/sessionstore"
)

type methodMatch struct {
	Method  quiz.Method
	Percent int
}

type resultsTemplateData struct {
	BaseTemplateData
	Top        quiz.Method
	TopPercent int
	Others     []methodMatch
}

// storedResult returns the visitor's latest result. ok is false when nothing readable is stored.
func (app *application) storedResult(r *http.Request) (quiz.Result, bool) {
	ctx := r.Context()
	result, err := app.sessions.LoadResult(ctx)
	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, sessionstore.ErrNotFound) {
			level = slog.LevelDebug
		}
		app.logger.LogAttrs(ctx, level, "no stored quiz result", errors.SlogError(err))
		return quiz.Result{}, false
	}
	if _, ok := app.engine.Catalog().Method(result.TopMethod); !ok {
		app.logger.LogAttrs(ctx, slog.LevelWarn, "stored quiz result has unknown method",
			slog.String("top_method", string(result.TopMethod)))
		return quiz.Result{}, false
	}
	return result, true
}

func (app *application) results(w http.ResponseWriter, r *http.Request) {
	result, ok := app.storedResult(r)
	if !ok {
		result = quiz.DefaultResult()
	}

	catalog := app.engine.Catalog()
	top, ok := catalog.Method(result.TopMethod)
	if !ok {
		app.serverError(w, r, errors.New("default method missing from catalog",
			slog.String("top_method", string(result.TopMethod))))
		return
	}
	maxScore := catalog.MaxScore()

	var others []methodMatch
	for _, entry := range result.Secondary(quiz.SecondaryCount) {
		m, found := catalog.Method(entry.Method)
		if !found {
			continue
		}
		others = append(others, methodMatch{
			Method:  m,
			Percent: quiz.MatchPercent(entry.Points, maxScore, quiz.SecondaryMatchCap),
		})
	}

	app.render(w, r, http.StatusOK, "results", resultsTemplateData{
		BaseTemplateData: newBaseTemplateData(r, app.config.ContactEmail),
		Top:              top,
		TopPercent:       quiz.MatchPercent(result.Scores.Get(result.TopMethod), maxScore, quiz.TopMatchCap),
		Others:           others,
	})
}
