// Package cli holds helpers for command tests. It is separate from testutil
// because it depends on app, whose own tests import testutil.
package cli

import (
	"io"
	"log/slog"
	"testing"

	"github.com/thenoetrevino/quadro/internal/app"
	"github.com/thenoetrevino/quadro/internal/database"
	"github.com/thenoetrevino/quadro/internal/models"
	"github.com/thenoetrevino/quadro/internal/testutil"
)

// SetupCLITest creates an in-memory store and an App over it
func SetupCLITest(t *testing.T) (*database.Store, *app.App) {
	t.Helper()
	store := testutil.SetupTestDB(t)

	// Note: no hub is running - event delivery is tested in httpapi and events
	appInstance := app.New(store, app.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	t.Cleanup(appInstance.Hub.Shutdown)

	return store, appInstance
}

// CreateTestUser wraps testutil.CreateTestUser for CLI tests. The user's
// email, <name>@example.com, is what --user expects.
func CreateTestUser(t *testing.T, store *database.Store, name string) *models.User {
	t.Helper()
	return testutil.CreateTestUser(t, store, name)
}
