// Package postgres provides a PostgreSQL-backed implementation of the
// storage.Store interface using pgx.
//
// Inside WithTx, FindBill locks the selected row with SELECT ... FOR UPDATE
// so concurrent payments on the same bill queue behind each other while
// readers on other bills proceed.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mmynk/billpay/internal/models"
	"github.com/mmynk/billpay/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// dbtx is satisfied by *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type queries struct {
	db dbtx
	// inTx enables row locks on FindBill.
	inTx bool
}

// Store implements storage.Store on a pgx connection pool.
type Store struct {
	*queries
	pool *pgxpool.Pool
}

// Config holds pool settings.
type Config struct {
	URL         string
	MaxConns    int32
	ConnTimeout time.Duration
}

// New connects to PostgreSQL, verifies the connection and runs migrations.
func New(ctx context.Context, cfg Config) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.ConnTimeout > 0 {
		poolCfg.ConnConfig.ConnectTimeout = cfg.ConnTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := runMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{queries: &queries{db: pool}, pool: pool}, nil
}

// Close closes the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// WithTx runs fn inside a transaction, committing only if fn succeeds.
func (s *Store) WithTx(ctx context.Context, fn func(q storage.Queries) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&queries{db: tx, inTx: true}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func pgErrorCode(err error) (string, string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	return "", ""
}

const subscriberColumns = `id, subscriber_number, username, credential_hash, user_type, created_at`

// CreateSubscriber inserts a new subscriber.
func (q *queries) CreateSubscriber(ctx context.Context, sub *models.Subscriber) error {
	if sub.CreatedAt == 0 {
		sub.CreatedAt = time.Now().Unix()
	}

	err := q.db.QueryRow(ctx,
		`INSERT INTO subscribers (subscriber_number, username, credential_hash, user_type, created_at)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		sub.SubscriberNumber, sub.Username, sub.CredentialHash, sub.UserType.String(), sub.CreatedAt,
	).Scan(&sub.ID)
	if err != nil {
		code, constraint := pgErrorCode(err)
		if code == pgerrcode.UniqueViolation {
			if constraint == "subscribers_username_key" {
				return &storage.ConflictError{Entity: "subscriber", Field: "username", Value: sub.Username}
			}
			return &storage.ConflictError{Entity: "subscriber", Field: "subscriber_number", Value: sub.SubscriberNumber}
		}
		return fmt.Errorf("failed to create subscriber: %w", err)
	}
	return nil
}

// FindSubscriberByNumber retrieves a subscriber by subscriber number.
func (q *queries) FindSubscriberByNumber(ctx context.Context, number string) (*models.Subscriber, error) {
	sub, err := scanSubscriber(q.db.QueryRow(ctx,
		`SELECT `+subscriberColumns+` FROM subscribers WHERE subscriber_number = $1`, number))
	if err != nil {
		return nil, fmt.Errorf("failed to get subscriber by number: %w", err)
	}
	return sub, nil
}

// FindSubscriberByUsername retrieves a subscriber by username.
func (q *queries) FindSubscriberByUsername(ctx context.Context, username string) (*models.Subscriber, error) {
	sub, err := scanSubscriber(q.db.QueryRow(ctx,
		`SELECT `+subscriberColumns+` FROM subscribers WHERE username = $1`, username))
	if err != nil {
		return nil, fmt.Errorf("failed to get subscriber by username: %w", err)
	}
	return sub, nil
}

func scanSubscriber(row pgx.Row) (*models.Subscriber, error) {
	sub := &models.Subscriber{}
	var userType string
	err := row.Scan(&sub.ID, &sub.SubscriberNumber, &sub.Username, &sub.CredentialHash, &userType, &sub.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if sub.UserType, err = models.ParseUserType(userType); err != nil {
		return nil, err
	}
	return sub, nil
}
