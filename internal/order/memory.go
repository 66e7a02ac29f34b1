package order

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepository is a mutex-guarded in-memory Repository. It backs the
// test suite and the `DB_HOST=memory` development profile; the contract
// matches the Postgres implementation exactly.
type MemoryRepository struct {
	mu     sync.Mutex
	orders map[string]Order
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		orders: make(map[string]Order),
	}
}

func (m *MemoryRepository) Create(ctx context.Context, o *Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.orders[o.ID] = *o
	return nil
}

func (m *MemoryRepository) GetByID(ctx context.Context, id string) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return &o, nil
}

func (m *MemoryRepository) List(ctx context.Context, filter Filter) ([]Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	orders := make([]Order, 0, len(m.orders))
	for _, o := range m.orders {
		if filter.RestaurantID != "" && o.RestaurantID != filter.RestaurantID {
			continue
		}
		if filter.UserID != "" && o.UserID != filter.UserID {
			continue
		}
		orders = append(orders, o)
	}

	// Newest first, same as the Postgres ORDER BY created_at DESC.
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})

	return orders, nil
}

func (m *MemoryRepository) UpdateStatus(ctx context.Context, id string, newStatus Status) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}

	o.Status = newStatus
	o.UpdatedAt = time.Now().UTC()
	m.orders[id] = o

	return &o, nil
}
