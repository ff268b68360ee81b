package quiz_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/japanmethod/internal/quiz"
	"github.com/stretchr/testify/require"
)

func TestScores_Ranked(t *testing.T) {
	scores := quiz.Scores{}.
		Add(quiz.KonMari, 1).
		Add(quiz.FiveS, 1).
		Add(quiz.Ikigai, 2).
		Add(quiz.KonMari, 1)

	want := quiz.Scores{
		{Method: quiz.KonMari, Points: 2},
		{Method: quiz.Ikigai, Points: 2},
		{Method: quiz.FiveS, Points: 1},
	}
	if diff := cmp.Diff(want, scores.Ranked()); diff != "" {
		t.Errorf("Ranked() mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, quiz.KonMari, scores[0].Method, "ranking must not reorder the receiver")
	require.Equal(t, 2, scores.Get(quiz.Ikigai))
	require.Equal(t, 0, scores.Get(quiz.Omoiyari))
}

func TestScores_Subtract(t *testing.T) {
	scores := quiz.Scores{}.Add(quiz.KonMari, 2).Add(quiz.FiveS, 1).Add(quiz.Kaizen, 1)

	scores = scores.Subtract(quiz.KonMari, 1).Subtract(quiz.FiveS, 1).Subtract(quiz.Omoiyari, 1)

	want := quiz.Scores{
		{Method: quiz.KonMari, Points: 1},
		{Method: quiz.Kaizen, Points: 1},
	}
	if diff := cmp.Diff(want, scores); diff != "" {
		t.Errorf("Subtract() mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, 0, scores.Get(quiz.FiveS))
}

func TestScores_JSON(t *testing.T) {
	scores := quiz.Scores{}.Add(quiz.Pomodoro, 3).Add(quiz.FiveS, 1).Add(quiz.Kaizen, 3)

	data, err := json.Marshal(scores)
	require.NoError(t, err)
	require.JSONEq(t, `{"pomodoro":3,"5s":1,"kaizen":3}`, string(data))
	require.Equal(t, `{"pomodoro":3,"5s":1,"kaizen":3}`, string(data))

	var decoded quiz.Scores
	require.NoError(t, json.Unmarshal([]byte(`{"omoiyari":2,"5s":4,"ikigai":2}`), &decoded))
	want := quiz.Scores{
		{Method: quiz.Omoiyari, Points: 2},
		{Method: quiz.FiveS, Points: 4},
		{Method: quiz.Ikigai, Points: 2},
	}
	if diff := cmp.Diff(want, decoded); diff != "" {
		t.Errorf("decoded scores mismatch (-want +got):\n%s", diff)
	}

	empty, err := json.Marshal(quiz.Scores{})
	require.NoError(t, err)
	require.Equal(t, `{}`, string(empty))

	require.Error(t, json.Unmarshal([]byte(`{"zen":1}`), &decoded))
	require.Error(t, json.Unmarshal([]byte(`[1,2]`), &decoded))
	require.Error(t, json.Unmarshal([]byte(`{"kaizen":"many"}`), &decoded))
}
