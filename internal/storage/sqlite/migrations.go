package sqlite

import (
	"context"
	"database/sql"
)

// schema sets up the database. It runs on startup and is idempotent.
// subscribers must be created before bills due to the foreign key.
const schema = `
CREATE TABLE IF NOT EXISTS subscribers (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    subscriber_number TEXT NOT NULL UNIQUE,
    username TEXT NOT NULL UNIQUE,
    credential_hash TEXT NOT NULL,
    user_type TEXT NOT NULL CHECK (user_type IN ('normal', 'admin')),
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS bills (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    subscriber_id INTEGER NOT NULL,
    month TEXT NOT NULL,
    bill_total INTEGER NOT NULL CHECK (bill_total > 0),
    remaining_amount INTEGER NOT NULL CHECK (remaining_amount >= 0 AND remaining_amount <= bill_total),
    payment_status TEXT NOT NULL CHECK (payment_status IN ('unpaid', 'paid')),
    version INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    FOREIGN KEY (subscriber_id) REFERENCES subscribers(id)
);

CREATE INDEX IF NOT EXISTS idx_bills_subscriber_month ON bills(subscriber_id, month);
CREATE INDEX IF NOT EXISTS idx_bills_subscriber_status ON bills(subscriber_id, payment_status);
`

// runMigrations executes the schema setup.
func runMigrations(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
