package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/billpay/internal/models"
	"github.com/mmynk/billpay/internal/storage"
)

const subscriberColumns = `id, subscriber_number, username, credential_hash, user_type, created_at`

// CreateSubscriber inserts a new subscriber into the database.
func (q *queries) CreateSubscriber(ctx context.Context, sub *models.Subscriber) error {
	if sub.CreatedAt == 0 {
		sub.CreatedAt = time.Now().Unix()
	}

	res, err := q.db.ExecContext(ctx,
		`INSERT INTO subscribers (subscriber_number, username, credential_hash, user_type, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		sub.SubscriberNumber, sub.Username, sub.CredentialHash, sub.UserType, sub.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			if violatedColumn(err) == "username" {
				return &storage.ConflictError{Entity: "subscriber", Field: "username", Value: sub.Username}
			}
			return &storage.ConflictError{Entity: "subscriber", Field: "subscriber_number", Value: sub.SubscriberNumber}
		}
		return fmt.Errorf("failed to create subscriber: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read subscriber id: %w", err)
	}
	sub.ID = id
	return nil
}

// FindSubscriberByNumber retrieves a subscriber by subscriber number.
func (q *queries) FindSubscriberByNumber(ctx context.Context, number string) (*models.Subscriber, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+subscriberColumns+` FROM subscribers WHERE subscriber_number = ?`, number)
	sub, err := scanSubscriber(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscriber by number: %w", err)
	}
	return sub, nil
}

// FindSubscriberByUsername retrieves a subscriber by username.
func (q *queries) FindSubscriberByUsername(ctx context.Context, username string) (*models.Subscriber, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+subscriberColumns+` FROM subscribers WHERE username = ?`, username)
	sub, err := scanSubscriber(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscriber by username: %w", err)
	}
	return sub, nil
}

// scanSubscriber returns nil, nil when the row does not exist.
func scanSubscriber(row *sql.Row) (*models.Subscriber, error) {
	sub := &models.Subscriber{}
	err := row.Scan(
		&sub.ID,
		&sub.SubscriberNumber,
		&sub.Username,
		&sub.CredentialHash,
		&sub.UserType,
		&sub.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (q *queries) subscriberExists(ctx context.Context, id int64) (bool, error) {
	var exists int
	err := q.db.QueryRowContext(ctx, "SELECT 1 FROM subscribers WHERE id = ?", id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check subscriber existence: %w", err)
	}
	return true, nil
}
