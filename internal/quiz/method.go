package quiz

import (
	"log/slog"

	"github.com/myrjola/japanmethod/internal/errors"
)

// MethodID identifies one of the productivity methods the quiz can recommend.
type MethodID string

const (
	FiveS    MethodID = "5s"
	Kaizen   MethodID = "kaizen"
	KonMari  MethodID = "konmari"
	Ikigai   MethodID = "ikigai"
	Pomodoro MethodID = "pomodoro"
	Omoiyari MethodID = "omoiyari"
)

// MethodIDs lists every known method in catalog order.
var MethodIDs = []MethodID{FiveS, Kaizen, KonMari, Ikigai, Pomodoro, Omoiyari} //nolint:gochecknoglobals // closed enum.

var ErrUnknownMethod = errors.NewSentinel("unknown method")

// ParseMethodID validates s against the closed set of method ids.
func ParseMethodID(s string) (MethodID, error) {
	for _, id := range MethodIDs {
		if string(id) == s {
			return id, nil
		}
	}
	return "", errors.Wrap(ErrUnknownMethod, "parse method id", slog.String("method", s))
}

// UnmarshalText rejects method ids outside the closed set so that decoded catalogs and results are always valid.
func (id *MethodID) UnmarshalText(text []byte) error {
	parsed, err := ParseMethodID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

type Method struct {
	ID                  MethodID `yaml:"id"`
	Name                string   `yaml:"name"`
	Japanese            string   `yaml:"japanese"`
	Description         string   `yaml:"description"`
	ShortDescription    string   `yaml:"shortDescription"`
	Principles          []string `yaml:"principles"`
	ImplementationSteps []string `yaml:"implementationSteps"`
	Tags                []string `yaml:"tags"`
	BestFor             string   `yaml:"bestFor"`
}

// Option is one answer to a question. Choosing it awards a point to each listed method.
type Option struct {
	Value   string     `yaml:"value"`
	Text    string     `yaml:"text"`
	Methods []MethodID `yaml:"methods"`
}

type Question struct {
	ID      int      `yaml:"id"`
	Text    string   `yaml:"text"`
	Options []Option `yaml:"options"`
}

// Option looks up the option with the given value.
func (q Question) Option(value string) (Option, bool) {
	for _, o := range q.Options {
		if o.Value == value {
			return o, true
		}
	}
	return Option{}, false
}
