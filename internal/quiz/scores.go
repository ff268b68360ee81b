package quiz

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"slices"
	"strconv"

	"github.com/myrjola/japanmethod/internal/errors"
)

type ScoreEntry struct {
	Method MethodID
	Points int
}

// Scores maps methods to points and remembers the order in which methods first scored. The order breaks ties in
// the ranking.
type Scores []ScoreEntry

// Add awards points to method, appending it if it has not scored before.
func (s Scores) Add(method MethodID, points int) Scores {
	for i := range s {
		if s[i].Method == method {
			s[i].Points += points
			return s
		}
	}
	return append(s, ScoreEntry{Method: method, Points: points})
}

// Subtract takes points back from method. A method left without points is removed, so it can no longer rank.
func (s Scores) Subtract(method MethodID, points int) Scores {
	i := slices.IndexFunc(s, func(e ScoreEntry) bool { return e.Method == method })
	if i < 0 {
		return s
	}
	s[i].Points -= points
	if s[i].Points <= 0 {
		return slices.Delete(s, i, i+1)
	}
	return s
}

// Get returns the points of method, zero if it never scored.
func (s Scores) Get(method MethodID) int {
	for _, e := range s {
		if e.Method == method {
			return e.Points
		}
	}
	return 0
}

// Ranked returns the entries ordered by points descending. Equal points keep insertion order.
func (s Scores) Ranked() Scores {
	ranked := slices.Clone(s)
	slices.SortStableFunc(ranked, func(a, b ScoreEntry) int {
		return b.Points - a.Points
	})
	return ranked
}

// MarshalJSON encodes the scores as a JSON object whose keys follow insertion order.
func (s Scores) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(e.Method))
		if err != nil {
			return nil, errors.Wrap(err, "marshal method")
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(e.Points))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping the key order of the document.
func (s *Scores) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return errors.Wrap(err, "read scores start")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("scores must be a JSON object")
	}
	scores := Scores{}
	for dec.More() {
		if tok, err = dec.Token(); err != nil {
			return errors.Wrap(err, "read score key")
		}
		key, _ := tok.(string)
		var method MethodID
		if method, err = ParseMethodID(key); err != nil {
			return err
		}
		var points int
		if err = dec.Decode(&points); err != nil {
			return errors.Wrap(err, "read score points", slog.String("method", key))
		}
		scores = scores.Add(method, points)
	}
	if _, err = dec.Token(); err != nil {
		return errors.Wrap(err, "read scores end")
	}
	*s = scores
	return nil
}
