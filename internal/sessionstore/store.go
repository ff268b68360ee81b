// Package sessionstore keeps quiz state in the visitor's scs session.
package sessionstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/alexedwards/scs/v2"
	"github.com/myrjola/japanmethod/internal/errors"
	"github.com/myrjola/japanmethod/internal/quiz"
)

const (
	// ResultsKey holds the JSON encoded latest quiz.Result.
	ResultsKey = "japanmethod_results"
	// QuizKey holds the JSON encoded in-progress quiz.Session.
	QuizKey = "japanmethod_quiz"
)

var ErrNotFound = errors.NewSentinel("not found in session")

// Store implements quiz.ResultStore on top of an scs session manager. The session is taken from the request
// context, so the handlers must be wrapped with [scs.SessionManager.LoadAndSave].
type Store struct {
	sessionManager *scs.SessionManager
}

func New(sessionManager *scs.SessionManager) *Store {
	return &Store{sessionManager: sessionManager}
}

func (s *Store) SaveResult(ctx context.Context, r quiz.Result) error {
	return s.put(ctx, ResultsKey, r)
}

// LoadResult returns ErrNotFound when the visitor has not finished the quiz yet.
func (s *Store) LoadResult(ctx context.Context) (quiz.Result, error) {
	var r quiz.Result
	if err := s.get(ctx, ResultsKey, &r); err != nil {
		return quiz.Result{}, err
	}
	return r, nil
}

func (s *Store) SaveSession(ctx context.Context, session *quiz.Session) error {
	return s.put(ctx, QuizKey, session)
}

// LoadSession returns the in-progress quiz or ErrNotFound.
func (s *Store) LoadSession(ctx context.Context) (*quiz.Session, error) {
	var session quiz.Session
	if err := s.get(ctx, QuizKey, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Store) ClearSession(ctx context.Context) error {
	return sessionCall(func() {
		s.sessionManager.Remove(ctx, QuizKey)
	})
}

func (s *Store) put(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "marshal session value", slog.String("key", key))
	}
	if err = sessionCall(func() { s.sessionManager.Put(ctx, key, data) }); err != nil {
		return errors.Wrap(err, "put session value", slog.String("key", key))
	}
	return nil
}

func (s *Store) get(ctx context.Context, key string, v any) error {
	var data []byte
	if err := sessionCall(func() { data = s.sessionManager.GetBytes(ctx, key) }); err != nil {
		return errors.Wrap(err, "get session value", slog.String("key", key))
	}
	if len(data) == 0 {
		return errors.Wrap(ErrNotFound, "get session value", slog.String("key", key))
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrap(err, "unmarshal session value", slog.String("key", key))
	}
	return nil
}

// sessionCall converts the panic scs raises when ctx carries no session into an error.
func sessionCall(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New("session unavailable", slog.String("panic", fmt.Sprint(r)))
		}
	}()
	fn()
	return nil
}
