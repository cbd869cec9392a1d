package column

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/quadro/internal/database"
	"github.com/thenoetrevino/quadro/internal/locker"
	"github.com/thenoetrevino/quadro/internal/models"
	"github.com/thenoetrevino/quadro/internal/mutator"
	"github.com/thenoetrevino/quadro/internal/ordering"
	"github.com/thenoetrevino/quadro/internal/testutil"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

type env struct {
	store  *database.Store
	svc    Service
	owner  *models.User
	member *models.User
	board  *models.Board
	cols   map[string]*models.Column
	cards  map[string]*models.Card
}

// setup builds board K with columns A(0), B(1), C(2); B holds two cards and
// b1 carries the label "bug"
func setup(t *testing.T, opts ...mutator.Option) *env {
	t.Helper()
	store := testutil.SetupTestDB(t)
	e := &env{
		store:  store,
		svc:    NewService(mutator.New(store, opts...)),
		owner:  testutil.CreateTestUser(t, store, "owner"),
		member: testutil.CreateTestUser(t, store, "member"),
		cols:   map[string]*models.Column{},
		cards:  map[string]*models.Card{},
	}
	e.board = testutil.CreateTestBoard(t, store, e.owner.ID, "K")
	testutil.AddTestMember(t, store, e.board.ID, e.member.ID)
	for _, title := range []string{"A", "B", "C"} {
		e.cols[title] = testutil.CreateTestColumn(t, store, e.board.ID, e.owner.ID, title)
	}
	for _, title := range []string{"b1", "b2"} {
		e.cards[title] = testutil.CreateTestCard(t, store, e.cols["B"].ID, e.owner.ID, title)
	}
	bug := testutil.CreateTestLabel(t, store, e.board.ID, e.owner.ID, "bug")
	testutil.AttachTestLabels(t, store, e.cards["b1"].ID, bug.ID)
	return e
}

func (e *env) titles(t *testing.T) []string {
	t.Helper()
	return testutil.ColumnTitles(t, e.store, e.board.ID)
}

// ============================================================================
// CREATE / UPDATE
// ============================================================================

func TestCreateColumn_Appends(t *testing.T) {
	t.Parallel()

	e := setup(t)
	col, err := e.svc.CreateColumn(context.Background(), e.owner.ID, CreateColumnRequest{BoardID: e.board.ID, Title: "D"})
	require.NoError(t, err)
	assert.Equal(t, 3, col.Order)
	assert.Equal(t, models.DefaultColumnColor, col.Color)
	assert.Equal(t, []string{"A", "B", "C", "D"}, e.titles(t))
	testutil.AssertDense(t, e.store, e.board.ID)
}

func TestCreateColumn_EmptyBoardStartsAtZero(t *testing.T) {
	t.Parallel()

	e := setup(t)
	empty := testutil.CreateTestBoard(t, e.store, e.owner.ID, "empty")
	col, err := e.svc.CreateColumn(context.Background(), e.owner.ID, CreateColumnRequest{BoardID: empty.ID, Title: "first"})
	require.NoError(t, err)
	assert.Equal(t, 0, col.Order)
}

func TestCreateColumn_Rejects(t *testing.T) {
	t.Parallel()

	e := setup(t)
	ctx := context.Background()

	_, err := e.svc.CreateColumn(ctx, e.owner.ID, CreateColumnRequest{BoardID: e.board.ID, Title: ""})
	assert.ErrorIs(t, err, ErrEmptyTitle)

	_, err = e.svc.CreateColumn(ctx, e.owner.ID, CreateColumnRequest{BoardID: e.board.ID, Title: "x", Color: "#zzzzzz"})
	assert.ErrorIs(t, err, ErrInvalidColor)

	_, err = e.svc.CreateColumn(ctx, e.member.ID, CreateColumnRequest{BoardID: e.board.ID, Title: "x"})
	assert.ErrorIs(t, err, ErrBoardNotFound, "members cannot add columns")

	_, err = e.svc.CreateColumn(ctx, e.owner.ID, CreateColumnRequest{BoardID: "missing", Title: "x"})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpdateColumn(t *testing.T) {
	t.Parallel()

	e := setup(t)
	ctx := context.Background()

	title, color := "Backlog", "#123456"
	col, err := e.svc.UpdateColumn(ctx, e.owner.ID, UpdateColumnRequest{ColumnID: e.cols["A"].ID, Title: &title, Color: &color})
	require.NoError(t, err)
	assert.Equal(t, "Backlog", col.Title)
	assert.Equal(t, "#123456", col.Color)
	assert.Equal(t, 0, col.Order)

	_, err = e.svc.UpdateColumn(ctx, e.member.ID, UpdateColumnRequest{ColumnID: e.cols["A"].ID, Title: &title})
	assert.ErrorIs(t, err, ErrColumnNotFound)

	_, err = e.svc.UpdateColumn(ctx, e.owner.ID, UpdateColumnRequest{ColumnID: "missing", Title: &title})
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

// ============================================================================
// DELETE
// ============================================================================

// Scenario: [A(0), B(1), C(2)], delete B -> [A(0), C(1)]
func TestDeleteColumn_Compacts(t *testing.T) {
	t.Parallel()

	e := setup(t)
	require.NoError(t, e.store.View(context.Background(), func(tx *database.Tx) error {
		labels, err := tx.ListCardLabels(context.Background(), e.cards["b1"].ID)
		require.NoError(t, err)
		require.Len(t, labels, 1)
		return nil
	}))

	require.NoError(t, e.svc.DeleteColumn(context.Background(), e.owner.ID, e.cols["B"].ID))

	assert.Equal(t, []string{"A", "C"}, e.titles(t))
	testutil.AssertDense(t, e.store, e.board.ID)

	err := e.store.View(context.Background(), func(tx *database.Tx) error {
		ctx := context.Background()
		ids, err := tx.ListCardIDs(ctx, e.cols["B"].ID)
		require.NoError(t, err)
		assert.Empty(t, ids, "cards cascade with their column")

		for _, card := range e.cards {
			_, err := tx.GetCard(ctx, card.ID)
			assert.ErrorIs(t, err, sql.ErrNoRows)

			labels, err := tx.ListCardLabels(ctx, card.ID)
			require.NoError(t, err)
			assert.Empty(t, labels, "card_labels rows cascade with their card")
		}

		labels, err := tx.ListLabels(ctx, e.board.ID)
		require.NoError(t, err)
		assert.Len(t, labels, 1, "board labels survive a column delete")
		return nil
	})
	require.NoError(t, err)
}

func TestDeleteColumn_NotFound(t *testing.T) {
	t.Parallel()

	e := setup(t)
	err := e.svc.DeleteColumn(context.Background(), e.owner.ID, "missing")
	assert.ErrorIs(t, err, ErrColumnNotFound)

	err = e.svc.DeleteColumn(context.Background(), e.member.ID, e.cols["A"].ID)
	assert.ErrorIs(t, err, ErrColumnNotFound)
	assert.Equal(t, []string{"A", "B", "C"}, e.titles(t))
}

// ============================================================================
// MOVE
// ============================================================================

func TestMoveColumn(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		column string
		to     int
		want   []string
	}{
		{"first to last", "A", 2, []string{"B", "C", "A"}},
		{"last to first", "C", 0, []string{"C", "A", "B"}},
		{"middle down", "B", 2, []string{"A", "C", "B"}},
		{"count means end", "A", 3, []string{"B", "C", "A"}},
		{"onto itself", "B", 1, []string{"A", "B", "C"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := setup(t)
			before := testutil.Dump(t, e.store, e.board.ID)

			col, err := e.svc.MoveColumn(context.Background(), e.owner.ID, e.cols[tt.column].ID, tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.want, e.titles(t))
			testutil.AssertDense(t, e.store, e.board.ID)

			if tt.name == "onto itself" {
				assert.Equal(t, before, testutil.Dump(t, e.store, e.board.ID))
				assert.Equal(t, 1, col.Order)
			}
		})
	}
}

func TestMoveColumn_OutOfRange(t *testing.T) {
	t.Parallel()

	e := setup(t)
	for _, to := range []int{-1, 4} {
		_, err := e.svc.MoveColumn(context.Background(), e.owner.ID, e.cols["A"].ID, to)
		assert.ErrorIs(t, err, ordering.ErrRankOutOfRange)
		assert.ErrorIs(t, err, models.ErrValidation)
	}
	assert.Equal(t, []string{"A", "B", "C"}, e.titles(t))
}

// ============================================================================
// REORDER
// ============================================================================

// Scenario: reorder [C, A, B] -> A=1, B=2, C=0
func TestReorderColumns(t *testing.T) {
	t.Parallel()

	e := setup(t)
	ids := []string{e.cols["C"].ID, e.cols["A"].ID, e.cols["B"].ID}
	columns, err := e.svc.ReorderColumns(context.Background(), e.owner.ID, e.board.ID, ids)
	require.NoError(t, err)

	ranks := map[string]int{}
	for _, c := range columns {
		ranks[c.Title] = c.Order
	}
	assert.Equal(t, map[string]int{"A": 1, "B": 2, "C": 0}, ranks)
	testutil.AssertDense(t, e.store, e.board.ID)
}

func TestReorderColumns_RejectsNonPermutation(t *testing.T) {
	t.Parallel()

	e := setup(t)
	a, b, c := e.cols["A"].ID, e.cols["B"].ID, e.cols["C"].ID

	for name, ids := range map[string][]string{
		"missing one": {a, b},
		"duplicate":   {a, a, b},
		"unknown":     {a, b, "other"},
		"extra":       {a, b, c, "other"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := e.svc.ReorderColumns(context.Background(), e.owner.ID, e.board.ID, ids)
			assert.ErrorIs(t, err, ordering.ErrInvalidPermutation)
		})
	}
	assert.Equal(t, []string{"A", "B", "C"}, e.titles(t))
}

// ============================================================================
// ATOMICITY / CONCURRENCY
// ============================================================================

func TestDeleteColumn_FailureBeforeCommit(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk on fire")
	e := setup(t, mutator.WithBeforeCommit(func(op string) error {
		if op == "column.delete" {
			return boom
		}
		return nil
	}))
	before := testutil.Dump(t, e.store, e.board.ID)

	err := e.svc.DeleteColumn(context.Background(), e.owner.ID, e.cols["A"].ID)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, models.KindStorage, models.KindOf(err))
	assert.Equal(t, before, testutil.Dump(t, e.store, e.board.ID))
}

func TestMoveColumn_ConcurrentWithLocker(t *testing.T) {
	t.Parallel()

	e := setup(t, mutator.WithLocker(locker.NewLocal()))

	var wg sync.WaitGroup
	for _, title := range []string{"A", "C"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := e.svc.MoveColumn(context.Background(), e.owner.ID, id, 1)
			if err != nil {
				assert.ErrorIs(t, err, models.ErrConflict)
			}
		}(e.cols[title].ID)
	}
	wg.Wait()

	assert.Len(t, e.titles(t), 3)
	testutil.AssertDense(t, e.store, e.board.ID)
}
