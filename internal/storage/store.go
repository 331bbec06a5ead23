// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/mmynk/billpay/internal/models"
)

// Queries is the set of subscriber and bill operations available both on a
// Store and inside a transaction started with Store.WithTx.
type Queries interface {
	// FindSubscriberByNumber returns the subscriber with the given number,
	// or nil if there is none.
	FindSubscriberByNumber(ctx context.Context, number string) (*models.Subscriber, error)

	// FindSubscriberByUsername returns the subscriber with the given
	// username, or nil if there is none. Used only by authentication.
	FindSubscriberByUsername(ctx context.Context, username string) (*models.Subscriber, error)

	// CreateSubscriber persists a new subscriber and populates its ID.
	// Returns a *ConflictError if the subscriber number or username is taken.
	CreateSubscriber(ctx context.Context, sub *models.Subscriber) error

	// FindUnpaidBills returns every unpaid bill owned by the subscriber.
	FindUnpaidBills(ctx context.Context, subscriberID int64) ([]*models.Bill, error)

	// FindBill returns the subscriber's bill for the given month, or nil.
	// If several bills share the month the oldest one is returned.
	// Inside a transaction the row is locked for update where supported.
	FindBill(ctx context.Context, subscriberID int64, month string) (*models.Bill, error)

	// ListBills returns one page of the subscriber's bills for a month.
	ListBills(ctx context.Context, subscriberID int64, month string, page, perPage int) (*BillPage, error)

	// CreateBill persists a new unpaid bill whose remaining amount equals
	// its total. Returns a *ReferenceError if the subscriber does not exist.
	CreateBill(ctx context.Context, subscriberID int64, month string, total int64) (*models.Bill, error)

	// SaveBill persists the remaining amount and payment status of an
	// existing bill and increments its version.
	// Returns a *ConflictError if the bill changed since it was read.
	SaveBill(ctx context.Context, bill *models.Bill) error
}

// Store defines the interface for subscriber and bill storage.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the billing engine.
type Store interface {
	Queries

	// WithTx runs fn inside a single transaction. The transaction commits
	// if fn returns nil and rolls back if fn returns an error or panics.
	WithTx(ctx context.Context, fn func(q Queries) error) error

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}

// BillPage is one page of a paginated bill listing.
type BillPage struct {
	Bills      []*models.Bill
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// NewBillPage computes page counts for a listing of total rows.
func NewBillPage(bills []*models.Bill, page, perPage, total int) *BillPage {
	pages := 0
	if perPage > 0 {
		pages = (total + perPage - 1) / perPage
	}
	return &BillPage{
		Bills:      bills,
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: pages,
	}
}

// NormalizePage clamps pagination parameters to sane values.
func NormalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 1
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}

// MaxPerPage bounds ListBills page sizes.
const MaxPerPage = 100
