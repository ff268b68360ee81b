package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/myrjola/japanmethod/internal/quiz"
	"github.com/spf13/cobra"
)

var Group = &cobra.Group{
	ID:    "catalog",
	Title: "Quiz catalog",
}

func init() {
	Validate.Flags().String("file", "", "path to a catalog YAML file, defaults to the embedded catalog")
	Score.Flags().Bool("reversal", false, "subtract points of replaced answers")
}

// load reads the catalog at path, or the embedded one when path is empty.
func load(path string) (*quiz.Catalog, error) {
	if path == "" {
		return quiz.DefaultCatalog() //nolint:wrapcheck // already descriptive.
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return quiz.LoadCatalog(f) //nolint:wrapcheck // already descriptive.
}

var Validate = &cobra.Command{
	Use:     "validate",
	GroupID: "catalog",
	Short:   "Validate a quiz catalog",
	Long:    "Checks that every method is defined once and every option references known methods",
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, _ := cmd.Flags().GetString("file")
		c, err := load(path)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "catalog ok: %d methods, %d questions\n",
			len(c.Methods()), c.QuestionCount())
		return nil
	},
}

var List = &cobra.Command{
	Use:     "list",
	GroupID: "catalog",
	Short:   "List methods and questions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := quiz.DefaultCatalog()
		if err != nil {
			return err //nolint:wrapcheck // already descriptive.
		}
		out := cmd.OutOrStdout()
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0) //nolint:mnd // padding
		for _, m := range c.Methods() {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", m.ID, m.Name, m.ShortDescription)
		}
		if err = w.Flush(); err != nil {
			return fmt.Errorf("flush: %w", err)
		}
		for i, q := range c.Questions() {
			_, _ = fmt.Fprintf(out, "\n%d. %s\n", i+1, q.Text)
			for _, o := range q.Options {
				_, _ = fmt.Fprintf(out, "   %s: %s %v\n", o.Value, o.Text, o.Methods)
			}
		}
		return nil
	},
}

var Score = &cobra.Command{
	Use:     "score [option values...]",
	GroupID: "catalog",
	Short:   "Score quiz answers",
	Long:    "Runs the quiz with one option value per question and prints the recommendation",
	Example: "japanmethod-cli score habits small habits data focus",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := quiz.DefaultCatalog()
		if err != nil {
			return err //nolint:wrapcheck // already descriptive.
		}
		if len(args) != c.QuestionCount() {
			return fmt.Errorf("expected %d answers, got %d", c.QuestionCount(), len(args))
		}
		var opts []quiz.EngineOption
		if reversal, _ := cmd.Flags().GetBool("reversal"); reversal {
			opts = append(opts, quiz.WithScoreReversal())
		}
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		engine := quiz.NewEngine(c, nil, logger, opts...)

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		s := engine.NewSession()
		var result *quiz.Result
		for i, value := range args {
			if err = engine.SelectOption(s, i, value); err != nil {
				return fmt.Errorf("answer question %d: %w", i+1, err)
			}
			if result, err = engine.Advance(ctx, s); err != nil {
				return fmt.Errorf("advance: %w", err)
			}
		}
		if result == nil {
			return fmt.Errorf("quiz did not finish")
		}
		printResult(cmd.OutOrStdout(), c, *result)
		return nil
	},
}

func printResult(out io.Writer, c *quiz.Catalog, r quiz.Result) {
	top, _ := c.Method(r.TopMethod)
	_, _ = fmt.Fprintf(out, "top: %s (%d%%)\n", top.Name,
		quiz.MatchPercent(r.Scores.Get(r.TopMethod), c.MaxScore(), quiz.TopMatchCap))
	for _, e := range r.Secondary(quiz.SecondaryCount) {
		m, _ := c.Method(e.Method)
		_, _ = fmt.Fprintf(out, "also: %s (%d%%)\n", m.Name,
			quiz.MatchPercent(e.Points, c.MaxScore(), quiz.SecondaryMatchCap))
	}
	_, _ = fmt.Fprint(out, "scores:")
	for _, e := range r.Scores {
		_, _ = fmt.Fprintf(out, " %s=%d", e.Method, e.Points)
	}
	_, _ = fmt.Fprintln(out)
}
