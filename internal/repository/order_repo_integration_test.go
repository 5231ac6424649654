//go:build integration
// +build integration

package repository

import (
	"testing"
	"time"

	"github.com/adyen/storefront-e2e/internal/models"
	"github.com/adyen/storefront-e2e/internal/repository/testutil"
	"github.com/google/uuid"
)

func newTestOrder(t *testing.T, reference string) *models.Order {
	t.Helper()
	order, err := models.NewOrder("standard_user",
		[]models.OrderLine{
			{ProductID: 4, Name: "Sauce Labs Backpack", Price: 2999},
			{ProductID: 0, Name: "Sauce Labs Bike Light", Price: 999},
		},
		models.Shipping{FirstName: "John", LastName: "Doe", PostalCode: "12345"})
	if err != nil {
		t.Fatalf("Failed to build order: %v", err)
	}
	if reference != "" {
		order.Reference = reference
	}
	return order
}

func TestOrderRepository_CreateOrder_Integration(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	defer testDB.Teardown(t)

	repo := NewOrderRepositoryWithDB(testDB.DB)
	order := newTestOrder(t, "ORDER-TEST-001")

	if err := repo.CreateOrder(order); err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}
	if order.CreatedAt.IsZero() || order.UpdatedAt.IsZero() {
		t.Error("timestamps should be set")
	}

	retrieved, err := repo.GetOrderByReference(order.Reference)
	if err != nil {
		t.Fatalf("Failed to retrieve created order: %v", err)
	}
	if retrieved.ID != order.ID {
		t.Errorf("ID mismatch: got %v, want %v", retrieved.ID, order.ID)
	}
	if retrieved.Total != order.Total || retrieved.Tax != order.Tax {
		t.Errorf("Amount mismatch: got %d/%d, want %d/%d", retrieved.Total, retrieved.Tax, order.Total, order.Tax)
	}
	if len(retrieved.Lines) != 2 || retrieved.Lines[1].Name != "Sauce Labs Bike Light" {
		t.Errorf("Lines mismatch: %+v", retrieved.Lines)
	}
	if retrieved.Shipping != order.Shipping {
		t.Errorf("Shipping mismatch: got %+v, want %+v", retrieved.Shipping, order.Shipping)
	}
}

func TestOrderRepository_CreateOrder_DuplicateReference_Integration(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	defer testDB.Teardown(t)

	repo := NewOrderRepositoryWithDB(testDB.DB)

	if err := repo.CreateOrder(newTestOrder(t, "ORDER-DUP-001")); err != nil {
		t.Fatalf("Failed to create first order: %v", err)
	}
	if err := repo.CreateOrder(newTestOrder(t, "ORDER-DUP-001")); err == nil {
		t.Error("Expected error when creating order with duplicate reference, got nil")
	}
}

func TestOrderRepository_UpdateOrderStatus_Integration(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	defer testDB.Teardown(t)

	repo := NewOrderRepositoryWithDB(testDB.DB)
	order := newTestOrder(t, "ORDER-UPDATE-001")
	if err := repo.CreateOrder(order); err != nil {
		t.Fatalf("Failed to create order: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	tests := []struct {
		name      string
		reference string
		wantErr   bool
	}{
		{name: "update to completed", reference: "ORDER-UPDATE-001"},
		{name: "update non-existent order", reference: "ORDER-NONEXISTENT", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.UpdateOrderStatus(tt.reference, models.OrderStatusCompleted)

			if (err != nil) != tt.wantErr {
				t.Errorf("UpdateOrderStatus() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}

			retrieved, err := repo.GetOrderByReference(tt.reference)
			if err != nil {
				t.Fatalf("Failed to retrieve updated order: %v", err)
			}
			if retrieved.Status != models.OrderStatusCompleted {
				t.Errorf("Status mismatch: got %v", retrieved.Status)
			}
			if !retrieved.UpdatedAt.After(retrieved.CreatedAt) {
				t.Error("UpdatedAt should be after CreatedAt")
			}
		})
	}
}

func TestOrderRepository_ConcurrentCreates_Integration(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	defer testDB.Teardown(t)

	repo := NewOrderRepositoryWithDB(testDB.DB)

	const numOrders = 10
	errChan := make(chan error, numOrders)

	for i := 0; i < numOrders; i++ {
		order := newTestOrder(t, uuid.New().String())
		go func() {
			errChan <- repo.CreateOrder(order)
		}()
	}

	for i := 0; i < numOrders; i++ {
		if err := <-errChan; err != nil {
			t.Errorf("Concurrent create failed: %v", err)
		}
	}
}

func TestOrderRepository_SchemaIsolation_Integration(t *testing.T) {
	testDB1 := testutil.SetupTestDatabase(t)
	defer testDB1.Teardown(t)

	testDB2 := testutil.SetupTestDatabase(t)
	defer testDB2.Teardown(t)

	repo1 := NewOrderRepositoryWithDB(testDB1.DB)
	repo2 := NewOrderRepositoryWithDB(testDB2.DB)

	order := newTestOrder(t, "ORDER-ISO-001")
	if err := repo1.CreateOrder(order); err != nil {
		t.Fatalf("Failed to create order in first database: %v", err)
	}

	if _, err := repo1.GetOrderByReference(order.Reference); err != nil {
		t.Errorf("Order should exist in first database: %v", err)
	}
	if _, err := repo2.GetOrderByReference(order.Reference); err == nil {
		t.Error("Order should not exist in second database (different schema)")
	}
}
