package quiz

import (
	"context"
	"math"
	"time"
)

const (
	// TopMatchCap caps the match percentage of the recommended method.
	TopMatchCap = 98
	// SecondaryMatchCap bounds the runner-up matches.
	SecondaryMatchCap = 85
	// SecondaryCount is the number of runner-up methods shown next to the top recommendation.
	SecondaryCount = 2
)

// Result is the outcome of a finished quiz. It is the only quiz state that is persisted between visits.
type Result struct {
	TopMethod MethodID `json:"topMethod"`
	Scores    Scores   `json:"scores"`
	Answers   []string `json:"answers"`
	// Timestamp is the creation time in Unix milliseconds.
	Timestamp int64 `json:"timestamp"`
}

// ResultStore persists the latest Result of a visitor.
type ResultStore interface {
	SaveResult(ctx context.Context, r Result) error
	LoadResult(ctx context.Context) (Result, error)
}

// DefaultResult is shown when a visitor has no readable stored result.
func DefaultResult() Result {
	return Result{
		TopMethod: FiveS,
		Scores:    Scores{{Method: FiveS, Points: 5}, {Method: Kaizen, Points: 4}, {Method: KonMari, Points: 3}},
		Answers:   []string{},
		Timestamp: 0,
	}
}

// NewResult ranks scores and picks the top method, falling back to defaultMethod when nothing scored.
func NewResult(scores Scores, answers []string, defaultMethod MethodID, now time.Time) Result {
	top := defaultMethod
	if ranked := scores.Ranked(); len(ranked) > 0 {
		top = ranked[0].Method
	}
	if scores == nil {
		scores = Scores{}
	}
	return Result{
		TopMethod: top,
		Scores:    scores,
		Answers:   answers,
		Timestamp: now.UnixMilli(),
	}
}

// Secondary returns up to n ranked entries following the top method.
func (r Result) Secondary(n int) Scores {
	var out Scores
	for _, e := range r.Scores.Ranked() {
		if e.Method == r.TopMethod {
			continue
		}
		if len(out) == n {
			break
		}
		out = append(out, e)
	}
	return out
}

// Time returns the creation time of the result.
func (r Result) Time() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// MatchPercent converts score out of maxScore into a percentage rounded half away from zero and capped at limit.
func MatchPercent(score, maxScore, limit int) int {
	if maxScore <= 0 || score <= 0 {
		return 0
	}
	p := int(math.Round(float64(score) / float64(maxScore) * 100)) //nolint:mnd // percent
	return min(p, limit)
}
