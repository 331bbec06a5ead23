// Package cache decorates a storage.Store with an in-memory LRU of
// subscriber lookups.
//
// Subscribers are immutable and never deleted, so a cached lookup by
// subscriber number cannot go stale. Only positive results are cached: a
// subscriber provisioned after a miss is visible on the next lookup.
package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/mmynk/billpay/internal/metrics"
	"github.com/mmynk/billpay/internal/models"
	"github.com/mmynk/billpay/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Config controls cache sizing.
type Config struct {
	Size int
	TTL  time.Duration
}

// DefaultConfig returns the default cache settings.
func DefaultConfig() Config {
	return Config{Size: 1024, TTL: 10 * time.Minute}
}

// Store wraps a storage.Store. Everything except FindSubscriberByNumber is
// delegated unchanged, including WithTx.
type Store struct {
	storage.Store
	subscribers *lru.LRU[string, models.Subscriber]
	metrics     *metrics.Metrics
}

// New wraps next with a subscriber cache.
func New(next storage.Store, cfg Config, m *metrics.Metrics) *Store {
	if cfg.Size <= 0 {
		cfg.Size = DefaultConfig().Size
	}
	return &Store{
		Store:       next,
		subscribers: lru.NewLRU[string, models.Subscriber](cfg.Size, nil, cfg.TTL),
		metrics:     m,
	}
}

// FindSubscriberByNumber serves repeated lookups from memory.
func (s *Store) FindSubscriberByNumber(ctx context.Context, number string) (*models.Subscriber, error) {
	if sub, ok := s.subscribers.Get(number); ok {
		s.metrics.RecordCacheLookup(true)
		return &sub, nil
	}
	s.metrics.RecordCacheLookup(false)

	sub, err := s.Store.FindSubscriberByNumber(ctx, number)
	if err != nil || sub == nil {
		return sub, err
	}
	s.subscribers.Add(number, *sub)
	return sub, nil
}

// CreateSubscriber writes through and primes the cache.
func (s *Store) CreateSubscriber(ctx context.Context, sub *models.Subscriber) error {
	if err := s.Store.CreateSubscriber(ctx, sub); err != nil {
		return err
	}
	s.subscribers.Add(sub.SubscriberNumber, *sub)
	return nil
}

// Len reports the number of cached subscribers.
func (s *Store) Len() int {
	return s.subscribers.Len()
}
