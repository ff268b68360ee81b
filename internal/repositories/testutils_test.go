package repositories_test

import (
	"context"
	"io"
	"testing"

	"github.com/myrjola/japanmethod/internal/sqlite"
	"github.com/myrjola/japanmethod/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sqlite.Database {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	db, err := sqlite.NewDatabase(ctx, ":memory:", testhelpers.NewLogger(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}
