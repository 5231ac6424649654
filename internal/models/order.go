package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// OrderStatus represents valid order states
type OrderStatus string

// Order statuses
const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
)

// TaxRatePercent is the flat sales tax applied to the item total
const TaxRatePercent = 8

// OrderLine is a product as it was priced when the order was placed
type OrderLine struct {
	ProductID int    `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
}

// Shipping is the information collected on the first checkout step
type Shipping struct {
	FirstName  string
	LastName   string
	PostalCode string
}

// Order represents a placed checkout with business logic
type Order struct {
	ID        string
	Reference string
	Username  string
	Lines     []OrderLine
	Shipping  Shipping
	Subtotal  int64
	Tax       int64
	Total     int64
	Currency  string
	Status    OrderStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Domain errors. The shipping errors carry the text shown to the shopper.
var (
	ErrInvalidAmount           = errors.New("order amount must be positive")
	ErrEmptyOrder              = errors.New("order has no items")
	ErrMissingUsername         = errors.New("order has no customer")
	ErrFirstNameRequired       = errors.New("First Name is required")
	ErrLastNameRequired        = errors.New("Last Name is required")
	ErrPostalCodeRequired      = errors.New("Postal Code is required")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrOrderNotFound           = errors.New("order not found")
)

// Validate checks the shipping fields in form order and returns the first
// missing one
func (s Shipping) Validate() error {
	switch {
	case strings.TrimSpace(s.FirstName) == "":
		return ErrFirstNameRequired
	case strings.TrimSpace(s.LastName) == "":
		return ErrLastNameRequired
	case strings.TrimSpace(s.PostalCode) == "":
		return ErrPostalCodeRequired
	}
	return nil
}

// TaxFor returns the tax on subtotal, rounded half up to the cent
func TaxFor(subtotal int64) int64 {
	return (subtotal*TaxRatePercent + 50) / 100
}

// Summarize computes item total, tax and total of the lines
func Summarize(lines []OrderLine) (subtotal, tax, total int64) {
	for _, l := range lines {
		subtotal += l.Price
	}
	tax = TaxFor(subtotal)
	return subtotal, tax, subtotal + tax
}

// NewOrder creates a new pending order with validation
func NewOrder(username string, lines []OrderLine, shipping Shipping) (*Order, error) {
	if err := validateOrderInput(username, lines, shipping); err != nil {
		return nil, err
	}

	id := uuid.New()
	now := time.Now()
	subtotal, tax, total := Summarize(lines)

	return &Order{
		ID:        id.String(),
		Reference: fmt.Sprintf("ORDER-%d-%s", now.Unix(), strings.ToUpper(id.String()[:8])),
		Username:  username,
		Lines:     append([]OrderLine(nil), lines...),
		Shipping:  shipping,
		Subtotal:  subtotal,
		Tax:       tax,
		Total:     total,
		Currency:  "USD",
		Status:    OrderStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// validateOrderInput validates order creation parameters
func validateOrderInput(username string, lines []OrderLine, shipping Shipping) error {
	if username == "" {
		return ErrMissingUsername
	}
	if len(lines) == 0 {
		return ErrEmptyOrder
	}
	for _, l := range lines {
		if l.Price <= 0 {
			return fmt.Errorf("%w: %s", ErrInvalidAmount, l.Name)
		}
	}
	return shipping.Validate()
}

// Complete marks the order as completed
func (o *Order) Complete() error {
	if o.Status != OrderStatusPending {
		return fmt.Errorf("%w: cannot complete order with status %s", ErrInvalidStatusTransition, o.Status)
	}

	o.Status = OrderStatusCompleted
	o.UpdatedAt = time.Now()
	return nil
}

// IsPending returns true if the order is in pending status
func (o *Order) IsPending() bool {
	return o.Status == OrderStatusPending
}

// IsCompleted returns true if the order is completed
func (o *Order) IsCompleted() bool {
	return o.Status == OrderStatusCompleted
}

// GetFormattedTotal returns the total formatted with currency
func (o *Order) GetFormattedTotal() string {
	return fmt.Sprintf("%s %s", FormatPrice(o.Total), o.Currency)
}
