package label

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/quadro/internal/cli"
	"github.com/thenoetrevino/quadro/internal/models"
	"github.com/thenoetrevino/quadro/internal/testutil"
	clitest "github.com/thenoetrevino/quadro/internal/testutil/cli"
)

const ann = "--user=ann@example.com"

func labelNames(labels []*models.Label) []string {
	names := make([]string, len(labels))
	for i, l := range labels {
		names[i] = l.Name
	}
	return names
}

func TestListLabels_SeedsDefaults(t *testing.T) {
	store, app := clitest.SetupCLITest(t)
	user := clitest.CreateTestUser(t, store, "Ann")
	board := testutil.CreateTestBoard(t, store, user.ID, "Roadmap")

	output, err := clitest.ExecuteCLICommand(t, app, LabelCmd(), []string{"list", board.ID, ann, "--json"})
	require.NoError(t, err)

	var labels []*models.Label
	clitest.DecodeData(t, output, &labels)
	want := make([]string, len(models.DefaultLabels))
	for i, def := range models.DefaultLabels {
		want[i] = def.Name
	}
	assert.ElementsMatch(t, want, labelNames(labels))

	// a second listing returns the same labels
	output, err = clitest.ExecuteCLICommand(t, app, LabelCmd(), []string{"list", board.ID, ann, "--json"})
	require.NoError(t, err)
	var again []*models.Label
	clitest.DecodeData(t, output, &again)
	assert.Len(t, again, len(labels))
}

func TestCreateAndDeleteLabel(t *testing.T) {
	store, app := clitest.SetupCLITest(t)
	user := clitest.CreateTestUser(t, store, "Ann")
	board := testutil.CreateTestBoard(t, store, user.ID, "Roadmap")

	output, err := clitest.ExecuteCLICommand(t, app, LabelCmd(), []string{
		"create", "--board", board.ID, "--name", "urgent", "--color", "#ff0000", ann, "--quiet",
	})
	require.NoError(t, err)
	labelID := strings.TrimSpace(output)
	require.NotEmpty(t, labelID)

	output, err = clitest.ExecuteCLICommand(t, app, LabelCmd(), []string{"list", board.ID, ann, "--json"})
	require.NoError(t, err)
	var labels []*models.Label
	clitest.DecodeData(t, output, &labels)
	assert.Equal(t, []string{"urgent"}, labelNames(labels), "boards with labels are not seeded")

	output, err = clitest.ExecuteCLICommand(t, app, LabelCmd(), []string{"delete", labelID, ann})
	require.NoError(t, err)
	assert.Equal(t, "Deleted label "+labelID+"\n", output)

	_, err = clitest.ExecuteCLICommand(t, app, LabelCmd(), []string{"delete", labelID, ann})
	assert.Equal(t, cli.ExitNotFound, cli.ExitCodeFor(err))
}

func TestCreateLabel_Negative(t *testing.T) {
	store, app := clitest.SetupCLITest(t)
	user := clitest.CreateTestUser(t, store, "Ann")
	clitest.CreateTestUser(t, store, "Eve")
	board := testutil.CreateTestBoard(t, store, user.ID, "Roadmap")

	tests := []struct {
		name     string
		args     []string
		wantCode int
	}{
		{"missing name", []string{"create", "--board", board.ID, ann}, cli.ExitUsage},
		{"missing board", []string{"create", "--name", "x", ann}, cli.ExitUsage},
		{"bad color", []string{"create", "--board", board.ID, "--name", "x", "--color", "blue", ann}, cli.ExitValidation},
		{"stranger", []string{"create", "--board", board.ID, "--name", "x", "--user=eve@example.com"}, cli.ExitNotFound},
		{"list needs a board", []string{"list", ann}, cli.ExitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := clitest.ExecuteCLICommand(t, app, LabelCmd(), tt.args)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, cli.ExitCodeFor(err), "error: %v", err)
		})
	}
}
