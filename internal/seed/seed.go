// Package seed provisions the sample subscribers and bills a fresh
// deployment starts with. Seeding is idempotent: rows that already exist
// are skipped.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmynk/billpay/internal/auth"
	"github.com/mmynk/billpay/internal/metrics"
	"github.com/mmynk/billpay/internal/models"
	"github.com/mmynk/billpay/internal/storage"
)

// Subscriber describes a subscriber to provision.
type Subscriber struct {
	Number   string
	Username string
	Password string
	UserType models.UserType
}

// Bill describes a bill to provision for a subscriber number.
type Bill struct {
	SubscriberNumber string
	Month            string
	Total            int64
}

// Data is a full seeding plan.
type Data struct {
	Subscribers []Subscriber
	Bills       []Bill
}

// DefaultData returns the sample subscribers "1" (elif) and "2" (admin)
// with one unpaid bill each.
func DefaultData(elifPassword, adminPassword string) Data {
	return Data{
		Subscribers: []Subscriber{
			{Number: "1", Username: "elif", Password: elifPassword, UserType: models.UserTypeNormal},
			{Number: "2", Username: "admin", Password: adminPassword, UserType: models.UserTypeAdmin},
		},
		Bills: []Bill{
			{SubscriberNumber: "1", Month: "1", Total: 1500},
			{SubscriberNumber: "2", Month: "5", Total: 2000},
		},
	}
}

// Result counts what a Run created and skipped.
type Result struct {
	SubscribersCreated int
	BillsCreated       int
	Skipped            int
}

// Seeder writes a Data plan into a store.
type Seeder struct {
	store   storage.Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New creates a Seeder. m may be nil.
func New(store storage.Store, logger *slog.Logger, m *metrics.Metrics) *Seeder {
	return &Seeder{store: store, logger: logger, metrics: m}
}

// Run provisions data. Each row is written on its own so one existing row
// never aborts the rest.
func (s *Seeder) Run(ctx context.Context, data Data) (Result, error) {
	var res Result

	for _, row := range data.Subscribers {
		created, err := s.subscriber(ctx, row)
		if err != nil {
			return res, err
		}
		if created {
			res.SubscribersCreated++
		} else {
			res.Skipped++
		}
	}

	for _, row := range data.Bills {
		created, err := s.bill(ctx, row)
		if err != nil {
			return res, err
		}
		if created {
			res.BillsCreated++
		} else {
			res.Skipped++
		}
	}

	s.logger.Info("Seeding complete",
		"subscribers_created", res.SubscribersCreated,
		"bills_created", res.BillsCreated,
		"skipped", res.Skipped,
	)
	return res, nil
}

func (s *Seeder) subscriber(ctx context.Context, row Subscriber) (bool, error) {
	existing, err := s.store.FindSubscriberByNumber(ctx, row.Number)
	if err != nil {
		return false, fmt.Errorf("failed to look up subscriber %s: %w", row.Number, err)
	}
	if existing != nil {
		s.logger.Info("Subscriber already exists, skipping", "subscriber_number", row.Number)
		return false, nil
	}

	hash, err := auth.HashCredential(row.Password)
	if err != nil {
		return false, fmt.Errorf("subscriber %s: %w", row.Number, err)
	}

	sub := models.NewSubscriber(row.Number, row.Username, hash, row.UserType)
	if err := s.store.CreateSubscriber(ctx, sub); err != nil {
		var conflict *storage.ConflictError
		if errors.As(err, &conflict) {
			s.logger.Warn("Subscriber conflicts with an existing row, skipping",
				"subscriber_number", row.Number,
				"field", conflict.Field,
			)
			return false, nil
		}
		return false, fmt.Errorf("failed to create subscriber %s: %w", row.Number, err)
	}

	s.logger.Info("Subscriber seeded", "subscriber_number", row.Number, "user_type", row.UserType)
	return true, nil
}

func (s *Seeder) bill(ctx context.Context, row Bill) (bool, error) {
	sub, err := s.store.FindSubscriberByNumber(ctx, row.SubscriberNumber)
	if err != nil {
		return false, fmt.Errorf("failed to look up subscriber %s: %w", row.SubscriberNumber, err)
	}
	if sub == nil {
		s.logger.Warn("Bill owner missing, skipping", "subscriber_number", row.SubscriberNumber, "month", row.Month)
		return false, nil
	}

	existing, err := s.store.FindBill(ctx, sub.ID, row.Month)
	if err != nil {
		return false, fmt.Errorf("failed to look up bill: %w", err)
	}
	if existing != nil {
		s.logger.Info("Bill already exists, skipping", "subscriber_number", row.SubscriberNumber, "month", row.Month)
		return false, nil
	}

	bill, err := s.store.CreateBill(ctx, sub.ID, row.Month, row.Total)
	if err != nil {
		return false, fmt.Errorf("failed to create bill for %s/%s: %w", row.SubscriberNumber, row.Month, err)
	}

	s.metrics.RecordBillCreated()
	s.logger.Info("Bill seeded", "bill_id", bill.ID, "subscriber_number", row.SubscriberNumber, "month", row.Month)
	return true, nil
}
