package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/quadro/internal/database"
	"github.com/thenoetrevino/quadro/internal/models"
)

// SetupTestDB creates an in-memory store with the full schema
func SetupTestDB(t *testing.T) *database.Store {
	t.Helper()
	store, err := database.OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func mustTx(t *testing.T, store *database.Store, fn func(ctx context.Context, tx *database.Tx) error) {
	t.Helper()
	ctx := context.Background()
	if err := store.WithTx(ctx, func(tx *database.Tx) error { return fn(ctx, tx) }); err != nil {
		t.Fatalf("fixture transaction failed: %v", err)
	}
}

// CreateTestUser inserts a user named name with email <name>@example.com
func CreateTestUser(t *testing.T, store *database.Store, name string) *models.User {
	t.Helper()
	now := database.Now()
	u := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        strings.ToLower(name) + "@example.com",
		PasswordHash: "not-a-real-hash",
		Role:         models.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	mustTx(t, store, func(ctx context.Context, tx *database.Tx) error {
		return tx.InsertUser(ctx, u)
	})
	return u
}

// CreateTestBoard inserts an empty board owned by ownerID
func CreateTestBoard(t *testing.T, store *database.Store, ownerID, title string) *models.Board {
	t.Helper()
	now := database.Now()
	b := &models.Board{
		ID:        uuid.NewString(),
		Title:     title,
		Color:     models.DefaultBoardColor,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	mustTx(t, store, func(ctx context.Context, tx *database.Tx) error {
		return tx.InsertBoard(ctx, b)
	})
	return b
}

// AddTestMember grants userID member access to boardID
func AddTestMember(t *testing.T, store *database.Store, boardID, userID string) {
	t.Helper()
	mustTx(t, store, func(ctx context.Context, tx *database.Tx) error {
		return tx.AddBoardMember(ctx, boardID, userID)
	})
}

// CreateTestColumn appends a column to boardID
func CreateTestColumn(t *testing.T, store *database.Store, boardID, creatorID, title string) *models.Column {
	t.Helper()
	now := database.Now()
	c := &models.Column{
		ID:        uuid.NewString(),
		BoardID:   boardID,
		CreatorID: creatorID,
		Title:     title,
		Color:     models.DefaultColumnColor,
		CreatedAt: now,
		UpdatedAt: now,
	}
	mustTx(t, store, func(ctx context.Context, tx *database.Tx) error {
		n, err := tx.CountColumns(ctx, boardID)
		if err != nil {
			return err
		}
		c.Order = n
		return tx.InsertColumn(ctx, c)
	})
	return c
}

// CreateTestCard appends a card to columnID
func CreateTestCard(t *testing.T, store *database.Store, columnID, creatorID, title string) *models.Card {
	t.Helper()
	now := database.Now()
	c := &models.Card{
		ID:        uuid.NewString(),
		ColumnID:  columnID,
		CreatorID: creatorID,
		Title:     title,
		Color:     "#ffffff",
		CreatedAt: now,
		UpdatedAt: now,
	}
	mustTx(t, store, func(ctx context.Context, tx *database.Tx) error {
		n, err := tx.CountCards(ctx, columnID)
		if err != nil {
			return err
		}
		c.Order = n
		return tx.InsertCard(ctx, c)
	})
	return c
}

// CreateTestLabel inserts a label on boardID
func CreateTestLabel(t *testing.T, store *database.Store, boardID, creatorID, name string) *models.Label {
	t.Helper()
	now := database.Now()
	l := &models.Label{
		ID:        uuid.NewString(),
		BoardID:   boardID,
		CreatorID: creatorID,
		Name:      name,
		Color:     "#ff0000",
		CreatedAt: now,
		UpdatedAt: now,
	}
	mustTx(t, store, func(ctx context.Context, tx *database.Tx) error {
		return tx.InsertLabel(ctx, l)
	})
	return l
}

// AttachTestLabels sets a card's labels to labelIDs
func AttachTestLabels(t *testing.T, store *database.Store, cardID string, labelIDs ...string) {
	t.Helper()
	mustTx(t, store, func(ctx context.Context, tx *database.Tx) error {
		return tx.ReplaceCardLabels(ctx, cardID, labelIDs)
	})
}

// CardTitles returns a column's card titles in rank order
func CardTitles(t *testing.T, store *database.Store, boardID, columnID string) []string {
	t.Helper()
	var titles []string
	for _, c := range listCards(t, store, boardID) {
		if c.ColumnID == columnID {
			titles = append(titles, c.Title)
		}
	}
	return titles
}

// ColumnTitles returns a board's column titles in rank order
func ColumnTitles(t *testing.T, store *database.Store, boardID string) []string {
	t.Helper()
	var titles []string
	for _, c := range listColumns(t, store, boardID) {
		titles = append(titles, c.Title)
	}
	return titles
}

// AssertDense fails the test unless every rank on the board forms 0..n-1
// within its parent
func AssertDense(t *testing.T, store *database.Store, boardID string) {
	t.Helper()

	columns := listColumns(t, store, boardID)
	for i, c := range columns {
		require.Equalf(t, i, c.Order, "column %q rank", c.Title)
	}

	ranks := make(map[string][]int)
	for _, c := range listCards(t, store, boardID) {
		ranks[c.ColumnID] = append(ranks[c.ColumnID], c.Order)
	}
	for _, col := range columns {
		got := ranks[col.ID]
		sort.Ints(got)
		for i, r := range got {
			require.Equalf(t, i, r, "card ranks in column %q: %v", col.Title, got)
		}
	}
}

// Dump renders every column and card of a board with its parent and rank.
// Two equal dumps mean the board's structure is unchanged.
func Dump(t *testing.T, store *database.Store, boardID string) string {
	t.Helper()

	var b strings.Builder
	for _, c := range listColumns(t, store, boardID) {
		fmt.Fprintf(&b, "column %s %q rank=%d\n", c.ID, c.Title, c.Order)
	}
	for _, c := range listCards(t, store, boardID) {
		fmt.Fprintf(&b, "card %s %q column=%s rank=%d\n", c.ID, c.Title, c.ColumnID, c.Order)
	}
	return b.String()
}

func listColumns(t *testing.T, store *database.Store, boardID string) []*models.Column {
	t.Helper()
	var out []*models.Column
	err := store.View(context.Background(), func(tx *database.Tx) error {
		var err error
		out, err = tx.ListColumns(context.Background(), boardID)
		return err
	})
	require.NoError(t, err)
	return out
}

func listCards(t *testing.T, store *database.Store, boardID string) []*models.Card {
	t.Helper()
	var out []*models.Card
	err := store.View(context.Background(), func(tx *database.Tx) error {
		var err error
		out, err = tx.ListCardsByBoard(context.Background(), boardID)
		return err
	})
	require.NoError(t, err)
	return out
}
