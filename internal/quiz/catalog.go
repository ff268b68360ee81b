package quiz

import (
	"bytes"
	_ "embed"
	"io"
	"log/slog"
	"strings"

	"github.com/myrjola/japanmethod/internal/errors"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

var ErrInvalidCatalog = errors.NewSentinel("invalid catalog")

// Catalog is the immutable set of methods and questions the quiz is built from.
type Catalog struct {
	methods   []Method
	questions []Question
}

type catalogDocument struct {
	Methods   []Method   `yaml:"methods"`
	Questions []Question `yaml:"questions"`
}

// DefaultCatalog decodes the embedded catalog.
func DefaultCatalog() (*Catalog, error) {
	return LoadCatalog(bytes.NewReader(defaultCatalogYAML))
}

// MustDefaultCatalog is like DefaultCatalog but panics on error. The embedded catalog is covered by tests.
func MustDefaultCatalog() *Catalog {
	c, err := DefaultCatalog()
	if err != nil {
		panic(err)
	}
	return c
}

// LoadCatalog decodes a YAML catalog from r and validates it.
//
// Every validation failure is reported in the returned error, each wrapping ErrInvalidCatalog.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var doc catalogDocument
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.Join(ErrInvalidCatalog, err), "decode catalog")
	}
	c := &Catalog{methods: doc.Methods, questions: doc.Questions}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) validate() error {
	var errs []error
	invalid := func(msg string, attrs ...slog.Attr) {
		errs = append(errs, errors.Wrap(ErrInvalidCatalog, msg, attrs...))
	}

	seen := make(map[MethodID]bool, len(c.methods))
	for _, m := range c.methods {
		if seen[m.ID] {
			invalid("duplicate method", slog.String("method", string(m.ID)))
		}
		seen[m.ID] = true
		if strings.TrimSpace(m.Name) == "" {
			invalid("method name is empty", slog.String("method", string(m.ID)))
		}
	}
	for _, id := range MethodIDs {
		if !seen[id] {
			invalid("method missing", slog.String("method", string(id)))
		}
	}

	if len(c.questions) == 0 {
		invalid("no questions")
	}
	questionIDs := make(map[int]bool, len(c.questions))
	for _, q := range c.questions {
		qAttr := slog.Int("question", q.ID)
		if questionIDs[q.ID] {
			invalid("duplicate question id", qAttr)
		}
		questionIDs[q.ID] = true
		if len(q.Options) == 0 {
			invalid("question has no options", qAttr)
		}
		values := make(map[string]bool, len(q.Options))
		for _, o := range q.Options {
			oAttr := slog.String("option", o.Value)
			if o.Value == "" {
				invalid("option value is empty", qAttr)
			}
			if values[o.Value] {
				invalid("duplicate option value", qAttr, oAttr)
			}
			values[o.Value] = true
			if len(o.Methods) == 0 {
				invalid("option lists no methods", qAttr, oAttr)
			}
			for _, id := range o.Methods {
				if !seen[id] {
					invalid("option references unknown method", qAttr, oAttr, slog.String("method", string(id)))
				}
			}
		}
	}

	return errors.Join(errs...)
}

// Methods returns the methods in display order.
func (c *Catalog) Methods() []Method {
	return c.methods
}

func (c *Catalog) Method(id MethodID) (Method, bool) {
	for _, m := range c.methods {
		if m.ID == id {
			return m, true
		}
	}
	return Method{}, false
}

func (c *Catalog) Questions() []Question {
	return c.questions
}

func (c *Catalog) Question(index int) (Question, bool) {
	if index < 0 || index >= len(c.questions) {
		return Question{}, false
	}
	return c.questions[index], true
}

func (c *Catalog) QuestionCount() int {
	return len(c.questions)
}

// DefaultMethod is recommended when no method scored.
func (c *Catalog) DefaultMethod() MethodID {
	return c.methods[0].ID
}

// MaxScore is the highest score a method can reach, one point per question.
func (c *Catalog) MaxScore() int {
	return len(c.questions)
}
