package database

import (
	"context"
	"fmt"

	"github.com/thenoetrevino/quadro/internal/ordering"
)

// rankedTable names a table whose rows carry a dense ord under a parent key
type rankedTable struct {
	table  string
	parent string
}

var (
	columnsTable = rankedTable{table: "columns", parent: "board_id"}
	cardsTable   = rankedTable{table: "cards", parent: "column_id"}
)

// ApplyColumnPlan executes a column rank plan
func (t *Tx) ApplyColumnPlan(ctx context.Context, plan ordering.Plan) error {
	return t.applyPlan(ctx, columnsTable, plan)
}

// ApplyCardPlan executes a card rank plan; a placement may change the card's column
func (t *Tx) ApplyCardPlan(ctx context.Context, plan ordering.Plan) error {
	return t.applyPlan(ctx, cardsTable, plan)
}

// SetColumnRanks writes explicit ranks from a bulk reorder
func (t *Tx) SetColumnRanks(ctx context.Context, placements []ordering.Placement) error {
	return t.setRanks(ctx, columnsTable, placements)
}

// SetCardRanks writes explicit ranks from a bulk reorder
func (t *Tx) SetCardRanks(ctx context.Context, placements []ordering.Placement) error {
	return t.setRanks(ctx, cardsTable, placements)
}

// applyPlan runs each shift as one multi-row UPDATE, in plan order, then
// the placement
func (t *Tx) applyPlan(ctx context.Context, rt rankedTable, plan ordering.Plan) error {
	for _, s := range plan.Shifts {
		query := fmt.Sprintf("UPDATE %s SET ord = ord + ? WHERE %s = ? AND ord >= ?", rt.table, rt.parent)
		args := []any{s.Delta, s.Parent, s.From}
		if s.To != ordering.Unbounded {
			query += " AND ord <= ?"
			args = append(args, s.To)
		}
		if _, err := t.exec(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to shift %s ranks: %w", rt.table, err)
		}
	}

	if p := plan.Place; p != nil {
		query := fmt.Sprintf("UPDATE %s SET %s = ?, ord = ?, updated_at = ? WHERE id = ?", rt.table, rt.parent)
		if _, err := t.exec(ctx, query, p.Parent, p.Rank, Now(), p.Item); err != nil {
			return fmt.Errorf("failed to place %s row: %w", rt.table, err)
		}
	}

	return nil
}

func (t *Tx) setRanks(ctx context.Context, rt rankedTable, placements []ordering.Placement) error {
	query := fmt.Sprintf("UPDATE %s SET ord = ? WHERE id = ? AND %s = ?", rt.table, rt.parent)
	for _, p := range placements {
		if _, err := t.exec(ctx, query, p.Rank, p.Item, p.Parent); err != nil {
			return fmt.Errorf("failed to set %s rank: %w", rt.table, err)
		}
	}
	return nil
}
