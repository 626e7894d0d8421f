package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/untoldecay/mentor/internal/storage"
)

// wrapDBError prefixes err with the failing operation. sql.ErrNoRows becomes
// storage.ErrNotFound so callers never need database/sql.
func wrapDBError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
