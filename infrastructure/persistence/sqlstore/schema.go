package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaTemplate is the single clothing table. The DDL is accepted by both
// SQLite and MySQL.
const schemaTemplate = `
CREATE TABLE IF NOT EXISTS %s (
    id         VARCHAR(64) NOT NULL PRIMARY KEY,
    name       TEXT,
    brand      TEXT,
    size       TEXT,
    color      TEXT,
    price      DOUBLE,
    wishlist   BOOLEAN NOT NULL DEFAULT FALSE,
    notes      TEXT,
    link       TEXT,
    reference  TEXT,
    created_at VARCHAR(32) NOT NULL,
    updated_at VARCHAR(32) NOT NULL
)`

// EnsureSchema creates the clothing table if it does not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB, table string) error {
	if _, err := db.ExecContext(ctx, fmt.Sprintf(schemaTemplate, table)); err != nil {
		return fmt.Errorf("creating table %s: %w", table, err)
	}
	return nil
}
