package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS subscribers (
    id BIGSERIAL PRIMARY KEY,
    subscriber_number TEXT NOT NULL UNIQUE,
    username TEXT NOT NULL UNIQUE,
    credential_hash TEXT NOT NULL,
    user_type TEXT NOT NULL CHECK (user_type IN ('normal', 'admin')),
    created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS bills (
    id BIGSERIAL PRIMARY KEY,
    subscriber_id BIGINT NOT NULL REFERENCES subscribers(id),
    month TEXT NOT NULL,
    bill_total BIGINT NOT NULL CHECK (bill_total > 0),
    remaining_amount BIGINT NOT NULL CHECK (remaining_amount >= 0 AND remaining_amount <= bill_total),
    payment_status TEXT NOT NULL CHECK (payment_status IN ('unpaid', 'paid')),
    version BIGINT NOT NULL DEFAULT 0,
    created_at BIGINT NOT NULL,
    updated_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_bills_subscriber_month ON bills(subscriber_id, month);
CREATE INDEX IF NOT EXISTS idx_bills_subscriber_status ON bills(subscriber_id, payment_status);
`

func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}
