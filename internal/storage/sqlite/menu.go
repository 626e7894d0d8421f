package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"

	"github.com/untoldecay/mentor/internal/storage"
	"github.com/untoldecay/mentor/internal/types"
)

// UpsertMenuItem applies the last-write-wins rule for item.Name.
// The lookup and the write share one BEGIN IMMEDIATE transaction.
func (s *SQLiteStorage) UpsertMenuItem(ctx context.Context, item *types.MenuItem) (storage.Outcome, error) {
	if err := types.ValidateMenuItem(item); err != nil {
		return 0, err
	}
	at := types.FormatTimestamp(item.UpdatedAt)

	var outcome storage.Outcome
	err := s.withImmediateTx(ctx, func(conn *sql.Conn) error {
		var stored sql.NullString
		err := conn.QueryRowContext(ctx, `SELECT timestamp FROM menu WHERE name = ?`, item.Name).Scan(&stored)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if _, err := conn.ExecContext(ctx, `
				INSERT INTO menu (name, price, description, timestamp)
				VALUES (?, ?, ?, ?)
			`, item.Name, item.Price, item.Description, at); err != nil {
				return fmt.Errorf("failed to insert menu item: %w", err)
			}
			outcome = storage.OutcomeInserted
		case err != nil:
			return fmt.Errorf("failed to look up menu item: %w", err)
		case types.Supersedes(item.UpdatedAt, stored.String):
			// Update in place so the row keeps its retrieval position.
			if _, err := conn.ExecContext(ctx, `
				UPDATE menu SET price = ?, description = ?, timestamp = ?
				WHERE name = ?
			`, item.Price, item.Description, at, item.Name); err != nil {
				return fmt.Errorf("failed to replace menu item: %w", err)
			}
			outcome = storage.OutcomeReplaced
		default:
			outcome = storage.OutcomeUnchanged
		}
		return nil
	})
	if err != nil {
		return 0, wrapDBError("upsert menu item "+item.Name, err)
	}
	return outcome, nil
}

// GetMenuItem returns the item stored under name or storage.ErrNotFound.
func (s *SQLiteStorage) GetMenuItem(ctx context.Context, name string) (*types.MenuItem, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT name, price, description, timestamp FROM menu WHERE name = ?
	`, name)
	item, err := scanMenuItem(row)
	if err != nil {
		return nil, wrapDBError("get menu item "+name, err)
	}
	return item, nil
}

// DeleteMenuItem removes name. Deleting a missing item is not an error.
func (s *SQLiteStorage) DeleteMenuItem(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM menu WHERE name = ?`, name); err != nil {
		return wrapDBError("delete menu item "+name, err)
	}
	return nil
}

// ListMenuItems streams items in rowid order. Rows are read only as the
// caller asks for them and the cursor is closed when ranging stops.
func (s *SQLiteStorage) ListMenuItems(ctx context.Context) iter.Seq2[*types.MenuItem, error] {
	return func(yield func(*types.MenuItem, error) bool) {
		rows, err := s.db.QueryContext(ctx, `
			SELECT name, price, description, timestamp FROM menu ORDER BY rowid
		`)
		if err != nil {
			yield(nil, wrapDBError("list menu items", err))
			return
		}
		defer func() { _ = rows.Close() }()

		for rows.Next() {
			item, err := scanMenuItem(rows)
			if err != nil {
				yield(nil, wrapDBError("list menu items", err))
				return
			}
			if !yield(item, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, wrapDBError("list menu items", err))
		}
	}
}

// CountMenuItems returns the number of stored items.
func (s *SQLiteStorage) CountMenuItems(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM menu`).Scan(&n); err != nil {
		return 0, wrapDBError("count menu items", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanMenuItem tolerates NULL columns left by older databases.
func scanMenuItem(row rowScanner) (*types.MenuItem, error) {
	var (
		item      types.MenuItem
		price     sql.NullInt64
		desc      sql.NullString
		timestamp sql.NullString
	)
	if err := row.Scan(&item.Name, &price, &desc, &timestamp); err != nil {
		return nil, err
	}
	item.Price = price.Int64
	item.Description = desc.String
	// A missing or unreadable stamp reads as zero, so any write replaces it.
	if timestamp.Valid {
		if at, err := types.ParseTimestamp(timestamp.String); err == nil {
			item.UpdatedAt = at
		}
	}
	return &item, nil
}
