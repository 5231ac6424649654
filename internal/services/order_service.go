package services

import (
	"fmt"

	"github.com/adyen/storefront-e2e/internal/models"
	"github.com/samber/lo"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	CreateOrder(order *models.Order) error
	GetOrderByReference(reference string) (*models.Order, error)
	UpdateOrderStatus(reference string, status models.OrderStatus) error
}

// OrderService handles checkout business logic
type OrderService interface {
	Quote(cart *models.Cart) ([]models.OrderLine, error)
	PlaceOrder(username string, cart *models.Cart, shipping models.Shipping) (*models.Order, error)
	GetOrderByReference(reference string) (*models.Order, error)
}

// OrderServiceImpl implements OrderService
type OrderServiceImpl struct {
	orderRepo OrderRepository
	catalog   *models.Catalog
}

// NewOrderService creates a new order service
func NewOrderService(orderRepo OrderRepository, catalog *models.Catalog) OrderService {
	return &OrderServiceImpl{
		orderRepo: orderRepo,
		catalog:   catalog,
	}
}

// Quote prices the cart contents against the catalog, in cart order
func (s *OrderServiceImpl) Quote(cart *models.Cart) ([]models.OrderLine, error) {
	products := make([]models.Product, 0, cart.Len())
	for _, id := range cart.IDs() {
		p, err := s.catalog.ByID(id)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return lo.Map(products, func(p models.Product, _ int) models.OrderLine {
		return models.OrderLine{ProductID: p.ID, Name: p.Name, Price: p.Price}
	}), nil
}

// PlaceOrder persists a pending order for the cart and completes it
func (s *OrderServiceImpl) PlaceOrder(username string, cart *models.Cart, shipping models.Shipping) (*models.Order, error) {
	lines, err := s.Quote(cart)
	if err != nil {
		return nil, fmt.Errorf("failed to price cart: %w", err)
	}

	// Create order using domain factory method
	order, err := models.NewOrder(username, lines, shipping)
	if err != nil {
		return nil, fmt.Errorf("invalid order: %w", err)
	}

	if err := s.orderRepo.CreateOrder(order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err := order.Complete(); err != nil {
		return nil, err
	}
	if err := s.orderRepo.UpdateOrderStatus(order.Reference, order.Status); err != nil {
		return nil, fmt.Errorf("failed to complete order: %w", err)
	}

	return order, nil
}

// GetOrderByReference retrieves an order by its reference
func (s *OrderServiceImpl) GetOrderByReference(reference string) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByReference(reference)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}
