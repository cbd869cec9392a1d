package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/quadro/internal/models"
	"github.com/thenoetrevino/quadro/internal/ordering"
)

// ============================================================================
// Local Test Helpers (to avoid import cycle with testutil)
// ============================================================================

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func mustTx(t *testing.T, store *Store, fn func(*Tx) error) {
	t.Helper()
	require.NoError(t, store.WithTx(context.Background(), fn))
}

func seedUser(t *testing.T, store *Store, id string) {
	t.Helper()
	mustTx(t, store, func(tx *Tx) error {
		now := Now()
		return tx.InsertUser(context.Background(), &models.User{
			ID: id, Name: id, Email: id + "@example.com", PasswordHash: "x",
			Role: models.RoleUser, CreatedAt: now, UpdatedAt: now,
		})
	})
}

func seedBoard(t *testing.T, store *Store, id, owner string) {
	t.Helper()
	mustTx(t, store, func(tx *Tx) error {
		now := Now()
		return tx.InsertBoard(context.Background(), &models.Board{
			ID: id, Title: id, Color: models.DefaultBoardColor, OwnerID: owner, CreatedAt: now, UpdatedAt: now,
		})
	})
}

// seedColumnWithCards creates a column at rank and n cards named <column>-0..n-1
func seedColumnWithCards(t *testing.T, store *Store, boardID, columnID string, rank, n int) {
	t.Helper()
	mustTx(t, store, func(tx *Tx) error {
		ctx := context.Background()
		now := Now()
		if err := tx.InsertColumn(ctx, &models.Column{
			ID: columnID, BoardID: boardID, CreatorID: "owner", Title: columnID, Color: models.DefaultColumnColor,
			Order: rank, CreatedAt: now, UpdatedAt: now,
		}); err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			if err := tx.InsertCard(ctx, &models.Card{
				ID: fmt.Sprintf("%s-%d", columnID, i), ColumnID: columnID, CreatorID: "owner",
				Title: fmt.Sprintf("card %d", i), Order: i, CreatedAt: now, UpdatedAt: now,
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

func cardIDs(t *testing.T, store *Store, columnID string) []string {
	t.Helper()
	var ids []string
	require.NoError(t, store.View(context.Background(), func(tx *Tx) error {
		var err error
		ids, err = tx.ListCardIDs(context.Background(), columnID)
		return err
	}))
	return ids
}

func cardRanks(t *testing.T, store *Store, columnID string) []int {
	t.Helper()
	var ranks []int
	require.NoError(t, store.View(context.Background(), func(tx *Tx) error {
		rows, err := tx.query(context.Background(), "SELECT ord FROM cards WHERE column_id = ?", columnID)
		if err != nil {
			return err
		}
		defer func() { _ = rows.Close() }()
		for rows.Next() {
			var r int
			if err := rows.Scan(&r); err != nil {
				return err
			}
			ranks = append(ranks, r)
		}
		return rows.Err()
	}))
	return ranks
}

func fixture(t *testing.T) *Store {
	t.Helper()
	store := setupTestStore(t)
	seedUser(t, store, "owner")
	seedUser(t, store, "guest")
	seedBoard(t, store, "b1", "owner")
	seedColumnWithCards(t, store, "b1", "A", 0, 3)
	seedColumnWithCards(t, store, "b1", "B", 1, 2)
	return store
}

// ============================================================================
// Store Tests
// ============================================================================

func TestOpenSQLite_MigrationsAreIdempotent(t *testing.T) {
	t.Parallel()

	store := setupTestStore(t)
	require.NoError(t, runMigrations(context.Background(), store.db, DriverSQLite))
	assert.Equal(t, DriverSQLite, store.Driver())
	assert.NoError(t, store.Ping(context.Background()))
}

func TestSQLiteDSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		dsn  string
		want string
	}{
		{":memory:", ":memory:"},
		{"file::memory:?cache=shared", "file::memory:?cache=shared"},
		{"file:test.db?mode=memory", "file:test.db?mode=memory"},
		{"/tmp/q.db", "/tmp/q.db?_txlock=immediate&_pragma=busy_timeout(5000)"},
		{"file:/tmp/q.db?cache=shared", "file:/tmp/q.db?cache=shared&_txlock=immediate&_pragma=busy_timeout(5000)"},
		{"/tmp/q.db?_txlock=deferred", "/tmp/q.db?_txlock=deferred"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sqliteDSN(tt.dsn), tt.dsn)
	}
}

// Two stores on one file stand in for the CLI and the server. The second
// writer must wait for the first transaction instead of slipping a commit
// between its read and its write.
func TestOpenSQLite_WriterInOtherStoreWaits(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "quadro.db")
	ctx := context.Background()

	first, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = first.Close() })
	second, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	seedUser(t, first, "owner")
	seedBoard(t, first, "b1", "owner")

	appendColumn := func(tx *Tx, id string) error {
		top, err := tx.MaxColumnRank(ctx, "b1")
		if err != nil {
			return err
		}
		rank := 0
		if top != nil {
			rank = *top + 1
		}
		now := Now()
		return tx.InsertColumn(ctx, &models.Column{
			ID: id, BoardID: "b1", CreatorID: "owner", Title: id, Color: models.DefaultColumnColor,
			Order: rank, CreatedAt: now, UpdatedAt: now,
		})
	}

	secondDone := make(chan error, 1)
	err = first.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.MaxColumnRank(ctx, "b1"); err != nil {
			return err
		}

		go func() {
			secondDone <- second.WithTx(ctx, func(tx *Tx) error { return appendColumn(tx, "late") })
		}()

		select {
		case err := <-secondDone:
			t.Errorf("second writer committed inside the first transaction: %v", err)
		case <-time.After(150 * time.Millisecond):
		}
		return appendColumn(tx, "early")
	})
	require.NoError(t, err)

	select {
	case err := <-secondDone:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("second writer never finished")
	}

	require.NoError(t, first.View(ctx, func(tx *Tx) error {
		cols, err := tx.ListColumns(ctx, "b1")
		require.NoError(t, err)
		require.Len(t, cols, 2)
		assert.Equal(t, "early", cols[0].ID)
		assert.Equal(t, 0, cols[0].Order)
		assert.Equal(t, "late", cols[1].ID)
		assert.Equal(t, 1, cols[1].Order)
		return nil
	}))
}

func TestOpen_UnknownDriver(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), Config{Driver: "oracle"})
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	t.Parallel()

	pg := &Tx{driver: DriverPostgres}
	assert.Equal(t, "UPDATE cards SET ord = ord + $1 WHERE column_id = $2 AND ord >= $3",
		pg.rebind("UPDATE cards SET ord = ord + ? WHERE column_id = ? AND ord >= ?"))

	lite := &Tx{driver: DriverSQLite}
	assert.Equal(t, "SELECT 1 WHERE a = ?", lite.rebind("SELECT 1 WHERE a = ?"))
}

func TestPlaceholders(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", placeholders(0))
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?, ?, ?", placeholders(3))
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	t.Parallel()

	store := fixture(t)
	boom := errors.New("boom")

	err := store.WithTx(context.Background(), func(tx *Tx) error {
		if err := tx.DeleteCard(context.Background(), "A-0"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"A-0", "A-1", "A-2"}, cardIDs(t, store, "A"))
}

// ============================================================================
// Rank Plan Tests
// ============================================================================

func TestApplyCardPlan_MoveWithinList(t *testing.T) {
	t.Parallel()

	store := fixture(t)
	plan, err := ordering.MoveWithinList("A", "A-0", 0, 2, 3)
	require.NoError(t, err)

	mustTx(t, store, func(tx *Tx) error { return tx.ApplyCardPlan(context.Background(), plan) })

	assert.Equal(t, []string{"A-1", "A-2", "A-0"}, cardIDs(t, store, "A"))
	assert.True(t, ordering.Dense(cardRanks(t, store, "A")))
}

func TestApplyCardPlan_MoveAcrossLists(t *testing.T) {
	t.Parallel()

	store := fixture(t)
	plan, err := ordering.MoveAcrossLists("A-1", "A", 1, "B", 1, 2)
	require.NoError(t, err)

	mustTx(t, store, func(tx *Tx) error { return tx.ApplyCardPlan(context.Background(), plan) })

	assert.Equal(t, []string{"A-0", "A-2"}, cardIDs(t, store, "A"))
	assert.Equal(t, []string{"B-0", "A-1", "B-1"}, cardIDs(t, store, "B"))
	assert.True(t, ordering.Dense(cardRanks(t, store, "A")))
	assert.True(t, ordering.Dense(cardRanks(t, store, "B")))
}

func TestApplyCardPlan_RemoveAndCompact(t *testing.T) {
	t.Parallel()

	store := fixture(t)
	mustTx(t, store, func(tx *Tx) error {
		if err := tx.DeleteCard(context.Background(), "A-0"); err != nil {
			return err
		}
		return tx.ApplyCardPlan(context.Background(), ordering.RemoveAndCompact("A", 0))
	})

	assert.Equal(t, []string{"A-1", "A-2"}, cardIDs(t, store, "A"))
	assert.ElementsMatch(t, []int{0, 1}, cardRanks(t, store, "A"))
}

func TestSetCardRanks(t *testing.T) {
	t.Parallel()

	store := fixture(t)
	placements, err := ordering.Reorder("A", []string{"A-2", "A-0", "A-1"}, []string{"A-0", "A-1", "A-2"})
	require.NoError(t, err)

	mustTx(t, store, func(tx *Tx) error { return tx.SetCardRanks(context.Background(), placements) })
	assert.Equal(t, []string{"A-2", "A-0", "A-1"}, cardIDs(t, store, "A"))
}

func TestMaxAndCount(t *testing.T) {
	t.Parallel()

	store := fixture(t)
	require.NoError(t, store.View(context.Background(), func(tx *Tx) error {
		ctx := context.Background()

		max, err := tx.MaxCardRank(ctx, "A")
		require.NoError(t, err)
		require.NotNil(t, max)
		assert.Equal(t, 2, *max)

		empty, err := tx.MaxCardRank(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, empty)

		n, err := tx.CountColumns(ctx, "b1")
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		return nil
	}))
}

// ============================================================================
// Board Tests
// ============================================================================

func TestBoardAccess(t *testing.T) {
	t.Parallel()

	store := fixture(t)
	seedUser(t, store, "member")
	mustTx(t, store, func(tx *Tx) error { return tx.AddBoardMember(context.Background(), "b1", "member") })

	require.NoError(t, store.View(context.Background(), func(tx *Tx) error {
		ctx := context.Background()
		cases := map[string]models.Access{
			"owner":  models.AccessOwner,
			"member": models.AccessMember,
			"guest":  models.AccessNone,
		}
		for user, want := range cases {
			got, err := tx.BoardAccess(ctx, "b1", user)
			require.NoError(t, err)
			assert.Equal(t, want, got, user)
		}

		missing, err := tx.BoardAccess(ctx, "nope", "owner")
		require.NoError(t, err)
		assert.Equal(t, models.AccessNone, missing)
		return nil
	}))
}

func TestListBoardSummaries_Counts(t *testing.T) {
	t.Parallel()

	store := fixture(t)
	var summaries []*models.BoardSummary
	require.NoError(t, store.View(context.Background(), func(tx *Tx) error {
		var err error
		summaries, err = tx.ListBoardSummaries(context.Background(), "owner")
		return err
	}))

	require.Len(t, summaries, 1)
	assert.Equal(t, 2, summaries[0].TotalColumns)
	assert.Equal(t, 5, summaries[0].TotalCards)
	assert.Equal(t, models.AccessOwner, summaries[0].Access)
}

func TestDeleteBoard_Cascades(t *testing.T) {
	t.Parallel()

	store := fixture(t)
	mustTx(t, store, func(tx *Tx) error { return tx.DeleteBoard(context.Background(), "b1") })

	assert.Empty(t, cardIDs(t, store, "A"))
	require.NoError(t, store.View(context.Background(), func(tx *Tx) error {
		_, err := tx.GetColumn(context.Background(), "A")
		assert.ErrorIs(t, err, sql.ErrNoRows)
		return nil
	}))
}

// ============================================================================
// Error Classification Tests
// ============================================================================

func TestClassify(t *testing.T) {
	t.Parallel()

	notFound := models.NotFound("card not found")

	tests := []struct {
		name string
		err  error
		kind models.ErrorKind
	}{
		{"classified passes through", notFound, models.KindNotFound},
		{"no rows", fmt.Errorf("get: %w", sql.ErrNoRows), models.KindNotFound},
		{"serialization failure", &pgconn.PgError{Code: "40001"}, models.KindConflict},
		{"deadlock", fmt.Errorf("shift: %w", &pgconn.PgError{Code: "40P01"}), models.KindConflict},
		{"unique", &pgconn.PgError{Code: "23505"}, models.KindConflict},
		{"foreign key", &pgconn.PgError{Code: "23503"}, models.KindValidation},
		{"cancelled", context.Canceled, models.KindStorage},
		{"other", errors.New("disk on fire"), models.KindStorage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.kind, models.KindOf(Classify(tt.err)))
		})
	}

	assert.Same(t, notFound, Classify(notFound))
	assert.NoError(t, Classify(nil))
}

func TestClassify_SQLiteForeignKey(t *testing.T) {
	t.Parallel()

	store := fixture(t)
	err := store.WithTx(context.Background(), func(tx *Tx) error {
		now := Now()
		return tx.InsertCard(context.Background(), &models.Card{
			ID: "orphan", ColumnID: "no-such-column", CreatorID: "owner", Title: "x", CreatedAt: now, UpdatedAt: now,
		})
	})
	require.Error(t, err)
	assert.Equal(t, models.KindValidation, models.KindOf(Classify(err)))
}

func TestClassify_SQLiteUnique(t *testing.T) {
	t.Parallel()

	store := fixture(t)
	err := store.WithTx(context.Background(), func(tx *Tx) error {
		now := Now()
		return tx.InsertUser(context.Background(), &models.User{
			ID: "dup", Name: "dup", Email: "owner@example.com", PasswordHash: "x", Role: models.RoleUser,
			CreatedAt: now, UpdatedAt: now,
		})
	})
	require.Error(t, err)
	assert.Equal(t, models.KindConflict, models.KindOf(Classify(err)))
}
