package main

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/myrjola/japanmethod/internal/errors"
	"github.com/myrjola/japanmethod/internal/quiz"
	"github.com/myrjola/japanmethod/internal/sessionstore"
)

const selectOptionMessage = "Please select an option"

type quizStep struct {
	Complete bool
	Active   bool
}

type quizTemplateData struct {
	BaseTemplateData
	Question quiz.Question
	Index    int
	Progress int
	Total    int
	Steps    []quizStep
	Selected string
	Last     bool
	Error    string
}

func (app *application) newQuizTemplateData(r *http.Request, s *quiz.Session, errorMessage string) quizTemplateData {
	catalog := app.engine.Catalog()
	q, _ := catalog.Question(s.Current)
	steps := make([]quizStep, catalog.QuestionCount())
	for i := range steps {
		steps[i] = quizStep{Complete: i < s.Current, Active: i == s.Current}
	}
	return quizTemplateData{
		BaseTemplateData: newBaseTemplateData(r, app.config.ContactEmail),
		Question:         q,
		Index:            s.Current,
		Progress:         s.Progress(),
		Total:            catalog.QuestionCount(),
		Steps:            steps,
		Selected:         s.Answer(s.Current),
		Last:             s.Current == catalog.QuestionCount()-1,
		Error:            errorMessage,
	}
}

// loadQuizSession resumes the visitor's quiz or starts a new one.
func (app *application) loadQuizSession(r *http.Request) *quiz.Session {
	ctx := r.Context()
	s, err := app.sessions.LoadSession(ctx)
	switch {
	case err == nil && !s.Finished && s.Valid(app.engine.Catalog()):
		return s
	case err != nil && !errors.Is(err, sessionstore.ErrNotFound):
		app.logger.LogAttrs(ctx, slog.LevelWarn, "discarding unreadable quiz session", errors.SlogError(err))
	}
	return app.engine.NewSession()
}

func (app *application) saveQuizSession(r *http.Request, s *quiz.Session) {
	if err := app.sessions.SaveSession(r.Context(), s); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelWarn, "failed to save quiz session", errors.SlogError(err))
	}
}

func (app *application) renderQuiz(w http.ResponseWriter, r *http.Request, status int, s *quiz.Session, msg string) {
	data := app.newQuizTemplateData(r, s, msg)
	if app.isHTMX(w, r) {
		app.renderTemplate(w, r, status, "quiz", "quiz-card", data)
		return
	}
	app.render(w, r, status, "quiz", data)
}

// showQuiz responds to a successful transition. Plain form posts are redirected to avoid resubmission.
func (app *application) showQuiz(w http.ResponseWriter, r *http.Request, s *quiz.Session) {
	if app.isHTMX(w, r) {
		app.renderQuiz(w, r, http.StatusOK, s, "")
		return
	}
	http.Redirect(w, r, "/quiz", http.StatusSeeOther)
}

func (app *application) quiz(w http.ResponseWriter, r *http.Request) {
	app.renderQuiz(w, r, http.StatusOK, app.loadQuizSession(r), "")
}

func (app *application) quizPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	s := app.loadQuizSession(r)

	switch r.PostForm.Get("action") {
	case "restart":
		s = app.engine.NewSession()
		app.saveQuizSession(r, s)
		app.showQuiz(w, r, s)
	case "back":
		app.engine.Retreat(s)
		app.saveQuizSession(r, s)
		app.showQuiz(w, r, s)
	case "next", "":
		questionIndex, err := strconv.Atoi(r.PostForm.Get("question"))
		if err != nil {
			app.clientError(w, r, http.StatusBadRequest)
			return
		}
		value := r.PostForm.Get("option")
		if value == "" {
			app.renderQuiz(w, r, http.StatusUnprocessableEntity, s, selectOptionMessage)
			return
		}
		if err = app.engine.SelectOption(s, questionIndex, value); err != nil {
			switch {
			case errors.Is(err, quiz.ErrUnknownOption):
				app.renderQuiz(w, r, http.StatusUnprocessableEntity, s, selectOptionMessage)
			case errors.Is(err, quiz.ErrOutOfOrder):
				// Stale form from another tab or the browser history.
				app.logger.LogAttrs(ctx, slog.LevelDebug, "ignoring stale answer", errors.SlogError(err))
				app.showQuiz(w, r, s)
			default:
				app.serverError(w, r, err)
			}
			return
		}

		var result *quiz.Result
		if result, err = app.engine.Advance(ctx, s); err != nil {
			app.serverError(w, r, errors.Wrap(err, "advance quiz"))
			return
		}
		if result != nil {
			app.metrics.QuizCompleted(string(result.TopMethod))
			if err = app.sessions.ClearSession(ctx); err != nil {
				app.logger.LogAttrs(ctx, slog.LevelWarn, "failed to clear quiz session", errors.SlogError(err))
			}
			app.redirect(w, r, "/results")
			return
		}
		app.saveQuizSession(r, s)
		app.showQuiz(w, r, s)
	default:
		app.clientError(w, r, http.StatusBadRequest)
	}
}
