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

// UpsertQA applies the last-write-wins rule for entry.Question.
func (s *SQLiteStorage) UpsertQA(ctx context.Context, entry *types.QAEntry) (storage.Outcome, error) {
	if err := types.ValidateQA(entry); err != nil {
		return 0, err
	}
	at := types.FormatTimestamp(entry.UpdatedAt)

	var outcome storage.Outcome
	err := s.withImmediateTx(ctx, func(conn *sql.Conn) error {
		var stored sql.NullString
		err := conn.QueryRowContext(ctx, `SELECT timestamp FROM qa WHERE question = ?`, entry.Question).Scan(&stored)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if _, err := conn.ExecContext(ctx, `
				INSERT INTO qa (question, answer, timestamp) VALUES (?, ?, ?)
			`, entry.Question, entry.Answer, at); err != nil {
				return fmt.Errorf("failed to insert qa entry: %w", err)
			}
			outcome = storage.OutcomeInserted
		case err != nil:
			return fmt.Errorf("failed to look up qa entry: %w", err)
		case types.Supersedes(entry.UpdatedAt, stored.String):
			if _, err := conn.ExecContext(ctx, `
				UPDATE qa SET answer = ?, timestamp = ? WHERE question = ?
			`, entry.Answer, at, entry.Question); err != nil {
				return fmt.Errorf("failed to replace qa entry: %w", err)
			}
			outcome = storage.OutcomeReplaced
		default:
			outcome = storage.OutcomeUnchanged
		}
		return nil
	})
	if err != nil {
		return 0, wrapDBError("upsert qa entry", err)
	}
	return outcome, nil
}

// GetQA returns the entry stored under question or storage.ErrNotFound.
func (s *SQLiteStorage) GetQA(ctx context.Context, question string) (*types.QAEntry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT question, answer, timestamp FROM qa WHERE question = ?`, question)
	entry, err := scanQA(row)
	if err != nil {
		return nil, wrapDBError("get qa entry", err)
	}
	return entry, nil
}

// DeleteQA removes question. Deleting a missing entry is not an error.
func (s *SQLiteStorage) DeleteQA(ctx context.Context, question string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM qa WHERE question = ?`, question); err != nil {
		return wrapDBError("delete qa entry", err)
	}
	return nil
}

// ListQA streams entries in rowid order.
func (s *SQLiteStorage) ListQA(ctx context.Context) iter.Seq2[*types.QAEntry, error] {
	return func(yield func(*types.QAEntry, error) bool) {
		rows, err := s.db.QueryContext(ctx, `SELECT question, answer, timestamp FROM qa ORDER BY rowid`)
		if err != nil {
			yield(nil, wrapDBError("list qa entries", err))
			return
		}
		defer func() { _ = rows.Close() }()

		for rows.Next() {
			entry, err := scanQA(rows)
			if err != nil {
				yield(nil, wrapDBError("list qa entries", err))
				return
			}
			if !yield(entry, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, wrapDBError("list qa entries", err))
		}
	}
}

// CountQA returns the number of stored entries.
func (s *SQLiteStorage) CountQA(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM qa`).Scan(&n); err != nil {
		return 0, wrapDBError("count qa entries", err)
	}
	return n, nil
}

func scanQA(row rowScanner) (*types.QAEntry, error) {
	var (
		entry     types.QAEntry
		answer    sql.NullString
		timestamp sql.NullString
	)
	if err := row.Scan(&entry.Question, &answer, &timestamp); err != nil {
		return nil, err
	}
	entry.Answer = answer.String
	// A missing or unreadable stamp reads as zero, so any write replaces it.
	if timestamp.Valid {
		if at, err := types.ParseTimestamp(timestamp.String); err == nil {
			entry.UpdatedAt = at
		}
	}
	return &entry, nil
}
