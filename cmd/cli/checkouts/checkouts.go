package checkouts

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/myrjola/japanmethod/internal/checkout"
	"github.com/myrjola/japanmethod/internal/repositories"
	"github.com/myrjola/japanmethod/internal/sqlite"
	"github.com/spf13/cobra"
)

var Group = &cobra.Group{
	ID:    "checkouts",
	Title: "Plans and checkouts",
}

func init() {
	Stats.Flags().String("sqlite-url", "", "SQLite URL, defaults to JAPANMETHOD_SQLITE_URL")
}

var Plans = &cobra.Command{
	Use:     "plans",
	GroupID: "checkouts",
	Short:   "List purchasable plans",
	RunE: func(cmd *cobra.Command, _ []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0) //nolint:mnd // padding
		for _, p := range checkout.Plans() {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.PriceLabel(), p.Description)
		}
		if err := w.Flush(); err != nil {
			return fmt.Errorf("flush: %w", err)
		}
		return nil
	},
}

var Stats = &cobra.Command{
	Use:     "stats",
	GroupID: "checkouts",
	Short:   "Count created checkout sessions per plan",
	RunE: func(cmd *cobra.Command, _ []string) error {
		url, _ := cmd.Flags().GetString("sqlite-url")
		if url == "" {
			url = os.Getenv("JAPANMETHOD_SQLITE_URL")
		}
		if url == "" {
			return fmt.Errorf("no database: set --sqlite-url or JAPANMETHOD_SQLITE_URL")
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		db, err := sqlite.NewDatabase(ctx, url, logger)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer func() {
			_ = db.Close()
		}()

		counts, err := repositories.NewCheckoutRepository(db, logger).CountByPlan(ctx)
		if err != nil {
			return fmt.Errorf("count checkouts: %w", err)
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0) //nolint:mnd // padding
		for _, c := range counts {
			_, _ = fmt.Fprintf(w, "%s\t%d\n", c.PlanID, c.Count)
		}
		if err = w.Flush(); err != nil {
			return fmt.Errorf("flush: %w", err)
		}
		return nil
	},
}
