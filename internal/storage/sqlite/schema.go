package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/untoldecay/mentor/internal/types"
)

// The menu and qa column sets match databases written by the original tool,
// so such a file opens in place. Columns other than the key stay nullable for
// the same reason. The metadata table is ours: a file that has menu or qa
// but no metadata was written by the original tool, whose timestamps are
// local wall-clock time, and initSchema converts them to UTC once.
const schema = `
CREATE TABLE IF NOT EXISTS menu (
    name TEXT PRIMARY KEY,
    price INTEGER,
    description TEXT,
    timestamp TEXT
);

CREATE TABLE IF NOT EXISTS qa (
    question TEXT PRIMARY KEY,
    answer TEXT,
    timestamp TEXT
);

CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// initSchema creates missing tables under an exclusive lock so two processes
// opening a fresh file at once do not race.
func initSchema(ctx context.Context, db *sql.DB, loc *time.Location) error {
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if _, err := conn.ExecContext(ctx, "BEGIN EXCLUSIVE"); err != nil {
		return fmt.Errorf("failed to acquire exclusive lock for schema: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_, _ = conn.ExecContext(context.Background(), "ROLLBACK")
		}
	}()

	legacy, err := isLegacyDatabase(ctx, conn)
	if err != nil {
		return err
	}

	if _, err := conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	if legacy {
		for _, t := range []struct{ table, key string }{{"menu", "name"}, {"qa", "question"}} {
			if err := convertLegacyTimestamps(ctx, conn, t.table, t.key, loc); err != nil {
				return err
			}
		}
		if _, err := conn.ExecContext(ctx, `INSERT OR REPLACE INTO metadata (key, value) VALUES ('legacy_timezone', ?)`, loc.String()); err != nil {
			return fmt.Errorf("failed to record legacy conversion: %w", err)
		}
	}

	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		return fmt.Errorf("failed to commit schema: %w", err)
	}
	committed = true
	return nil
}

func isLegacyDatabase(ctx context.Context, conn *sql.Conn) (bool, error) {
	rows, err := conn.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name IN ('menu', 'qa', 'metadata')
	`)
	if err != nil {
		return false, fmt.Errorf("failed to inspect schema: %w", err)
	}
	defer func() { _ = rows.Close() }()

	tables := map[string]bool{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return false, fmt.Errorf("failed to inspect schema: %w", err)
		}
		tables[name] = true
	}
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("failed to inspect schema: %w", err)
	}
	return (tables["menu"] || tables["qa"]) && !tables["metadata"], nil
}

// convertLegacyTimestamps rewrites every readable local stamp in table as
// UTC. Unreadable stamps are left alone; any write replaces them.
func convertLegacyTimestamps(ctx context.Context, conn *sql.Conn, table, key string, loc *time.Location) error {
	// #nosec G201 -- table and key are fixed names, never user input
	rows, err := conn.QueryContext(ctx, fmt.Sprintf(`SELECT %s, timestamp FROM %s WHERE timestamp IS NOT NULL`, key, table))
	if err != nil {
		return fmt.Errorf("failed to read %s timestamps: %w", table, err)
	}
	converted := map[string]string{}
	for rows.Next() {
		var k, stamp string
		if err := rows.Scan(&k, &stamp); err != nil {
			_ = rows.Close()
			return fmt.Errorf("failed to read %s timestamps: %w", table, err)
		}
		local, err := time.ParseInLocation(types.TimestampLayout, stamp, loc)
		if err != nil {
			continue
		}
		converted[k] = types.FormatTimestamp(local)
	}
	err = rows.Err()
	_ = rows.Close()
	if err != nil {
		return fmt.Errorf("failed to read %s timestamps: %w", table, err)
	}

	// #nosec G201 -- table and key are fixed names, never user input
	update := fmt.Sprintf(`UPDATE %s SET timestamp = ? WHERE %s = ?`, table, key)
	for k, stamp := range converted {
		if _, err := conn.ExecContext(ctx, update, stamp, k); err != nil {
			return fmt.Errorf("failed to convert %s timestamps: %w", table, err)
		}
	}
	return nil
}
