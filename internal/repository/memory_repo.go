package repository

import (
	"fmt"
	"sync"
	"time"

	"github.com/adyen/storefront-e2e/internal/models"
)

// MemoryOrderRepository keeps orders in process memory. It is the default
// store when no database is configured.
type MemoryOrderRepository struct {
	mu     sync.RWMutex
	orders map[string]models.Order
}

// NewMemoryOrderRepository creates an empty in-memory repository
func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{orders: map[string]models.Order{}}
}

// CreateOrder stores a copy of order
func (r *MemoryOrderRepository) CreateOrder(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[order.Reference]; exists {
		return fmt.Errorf("failed to create order: duplicate reference %s", order.Reference)
	}

	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now

	stored := *order
	stored.Lines = append([]models.OrderLine(nil), order.Lines...)
	r.orders[order.Reference] = stored
	return nil
}

// GetOrderByReference returns a copy of the stored order
func (r *MemoryOrderRepository) GetOrderByReference(reference string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.orders[reference]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrOrderNotFound, reference)
	}
	order := stored
	order.Lines = append([]models.OrderLine(nil), stored.Lines...)
	return &order, nil
}

// UpdateOrderStatus sets the status of a stored order
func (r *MemoryOrderRepository) UpdateOrderStatus(reference string, status models.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[reference]
	if !ok {
		return fmt.Errorf("%w: %s", models.ErrOrderNotFound, reference)
	}
	stored.Status = status
	stored.UpdatedAt = time.Now()
	r.orders[reference] = stored
	return nil
}

// Len returns the number of stored orders
func (r *MemoryOrderRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.orders)
}
