package quiz

// Session is one visitor's progress through the quiz.
type Session struct {
	// Current is the index of the question on screen.
	Current int `json:"current"`
	// Answers holds the chosen option value per question position. Unanswered positions are empty.
	Answers  []string `json:"answers"`
	Scores   Scores   `json:"scores"`
	Finished bool     `json:"finished"`
}

// NewSession starts a quiz at the first question.
func NewSession(c *Catalog) *Session {
	return &Session{
		Current:  0,
		Answers:  make([]string, c.QuestionCount()),
		Scores:   Scores{},
		Finished: false,
	}
}

// Answer returns the option value chosen for the question at index.
func (s *Session) Answer(index int) string {
	if index < 0 || index >= len(s.Answers) {
		return ""
	}
	return s.Answers[index]
}

// Progress returns the one-based position of the current question.
func (s *Session) Progress() int {
	return s.Current + 1
}

// Valid reports whether s fits c. Sessions restored from storage are discarded when the catalog changed shape.
func (s *Session) Valid(c *Catalog) bool {
	return s.Current >= 0 && s.Current < c.QuestionCount() && len(s.Answers) == c.QuestionCount()
}
