package quiz

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/myrjola/japanmethod/internal/errors"
)

var (
	ErrOutOfOrder        = errors.NewSentinel("question is not the current question")
	ErrUnknownOption     = errors.NewSentinel("unknown option")
	ErrSelectionRequired = errors.NewSentinel("an option must be selected")
	ErrSessionFinished   = errors.NewSentinel("quiz session is finished")
)

// Engine drives quiz sessions through the catalog and records the final result.
//
// The engine holds no per-visitor state. Every transition operates on the Session it is given.
type Engine struct {
	catalog       *Catalog
	store         ResultStore
	logger        *slog.Logger
	now           func() time.Time
	scoreReversal bool
}

type EngineOption func(*Engine)

// WithScoreReversal takes back the points of a previous answer when the visitor changes it. Methods left without
// points drop out of the scores.
//
// Without this option a revisited question awards points again and the old points stay.
func WithScoreReversal() EngineOption {
	return func(e *Engine) {
		e.scoreReversal = true
	}
}

// WithClock overrides the time source used for result timestamps.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

func NewEngine(catalog *Catalog, store ResultStore, logger *slog.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		catalog:       catalog,
		store:         store,
		logger:        logger,
		now:           time.Now,
		scoreReversal: false,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// NewSession starts a quiz at the first question.
func (e *Engine) NewSession() *Session {
	return NewSession(e.catalog)
}

// SelectOption records the answer for the current question and awards a point to each method the option lists.
//
// The session is left untouched when an error is returned.
func (e *Engine) SelectOption(s *Session, questionIndex int, value string) error {
	attrs := []slog.Attr{slog.Int("question", questionIndex), slog.String("option", value)}
	if s.Finished {
		return errors.Wrap(ErrSessionFinished, "select option", attrs...)
	}
	if questionIndex != s.Current {
		return errors.Wrap(ErrOutOfOrder, "select option", append(attrs, slog.Int("current", s.Current))...)
	}
	q, ok := e.catalog.Question(questionIndex)
	if !ok {
		return errors.Wrap(ErrOutOfOrder, "select option", attrs...)
	}
	option, ok := q.Option(value)
	if !ok {
		return errors.Wrap(ErrUnknownOption, "select option", attrs...)
	}

	if len(s.Answers) != e.catalog.QuestionCount() {
		answers := make([]string, e.catalog.QuestionCount())
		copy(answers, s.Answers)
		s.Answers = answers
	}

	if previous := s.Answers[questionIndex]; previous != "" && e.scoreReversal {
		if old, found := q.Option(previous); found {
			for _, m := range old.Methods {
				s.Scores = s.Scores.Subtract(m, 1)
			}
		}
	}

	s.Answers[questionIndex] = option.Value
	for _, m := range option.Methods {
		s.Scores = s.Scores.Add(m, 1)
	}
	return nil
}

// Advance moves to the next question, or finalizes the session after the last one.
//
// A non-nil Result is returned only when the session finished.
func (e *Engine) Advance(ctx context.Context, s *Session) (*Result, error) {
	if s.Finished {
		return nil, errors.Wrap(ErrSessionFinished, "advance")
	}
	if s.Answer(s.Current) == "" {
		return nil, errors.Wrap(ErrSelectionRequired, "advance", slog.Int("question", s.Current))
	}
	if s.Current < e.catalog.QuestionCount()-1 {
		s.Current++
		return nil, nil //nolint:nilnil // no result until the last question.
	}
	result := e.Finalize(ctx, s)
	return &result, nil
}

// Retreat moves back one question. Answers and scores are kept.
func (e *Engine) Retreat(s *Session) {
	if s.Current > 0 {
		s.Current--
	}
}

// Finalize ranks the scores, persists the result and marks the session finished.
//
// Persistence failures are logged and do not prevent the visitor from seeing the result.
func (e *Engine) Finalize(ctx context.Context, s *Session) Result {
	result := NewResult(slices.Clone(s.Scores), slices.Clone(s.Answers), e.catalog.DefaultMethod(), e.now())
	s.Finished = true

	if e.store != nil {
		if err := e.store.SaveResult(ctx, result); err != nil {
			e.logger.LogAttrs(ctx, slog.LevelWarn, "failed to save quiz result", errors.SlogError(err))
		}
	}
	e.logger.LogAttrs(ctx, slog.LevelDebug, "quiz finalized",
		slog.String("top_method", string(result.TopMethod)))
	return result
}
