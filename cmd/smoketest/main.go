package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/myrjola/japanmethod/internal/e2etest"
	"github.com/myrjola/japanmethod/internal/errors"
	"github.com/myrjola/japanmethod/internal/logging"
)

var smokeAnswers = []string{"habits", "small", "habits", "data", "focus"} //nolint:gochecknoglobals // fixture

// TestQuiz answers every question and checks that a recommendation is rendered.
func TestQuiz(client *e2etest.Client) error {
	ctx := context.Background()
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second) //nolint:mnd // 10 seconds
	defer cancel()

	doc, err := client.GetDoc(ctx, "/quiz")
	if err != nil {
		return errors.Wrap(err, "get quiz")
	}
	for i, answer := range smokeAnswers {
		var resp *http.Response
		resp, err = client.PostForm(ctx, doc, "/quiz", url.Values{
			"action":   {"next"},
			"question": {strconv.Itoa(i)},
			"option":   {answer},
		})
		if err != nil {
			return errors.Wrap(err, "answer question", slog.Int("question", i))
		}
		if doc, err = e2etest.DocFromResponse(resp, http.StatusOK); err != nil {
			return errors.Wrap(err, "read quiz response", slog.Int("question", i))
		}
	}
	if title := doc.Find("#primary-title").Text(); title != "Kaizen" {
		return errors.New("unexpected recommendation", slog.String("title", title))
	}
	return nil
}

func main() {
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		baseURL  = "https://" + hostname
		client   *e2etest.Client
		err      error
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", baseURL))

	if client, err = e2etest.NewClient(baseURL); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", errors.SlogError(err))
		os.Exit(1)
	}
	if err = client.WaitForReady(ctx, "/api/healthy"); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not healthy", errors.SlogError(err))
		os.Exit(1)
	}
	if err = TestQuiz(client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing quiz", errors.SlogError(err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌")
	os.Exit(0)
}
