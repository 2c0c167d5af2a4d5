package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Lixing-Zhang/shop-backend/internal/models"
	"github.com/Lixing-Zhang/shop-backend/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func intPtr(i int) *int { return &i }

func floatPtr(f float64) *float64 { return &f }

func strPtr(s string) *string { return &s }

func validOrderInput(items ...models.OrderItemInput) models.OrderInput {
	return models.OrderInput{
		CustomerName: "Ada Lovelace",
		Email:        "ada@example.com",
		Phone:        "555-0100",
		Address:      "1 Loop Rd",
		Products:     items,
		TotalAmount:  floatPtr(42),
	}
}

func newOrderFixture(t *testing.T) (*OrderService, *repository.InMemoryProductRepository, models.Product) {
	t.Helper()

	products := repository.NewInMemoryProductRepository()
	waffle := models.Product{Name: "Chicken Waffle", Price: 12.99, Category: "Waffle", Stock: 4}
	if err := products.Create(context.Background(), &waffle); err != nil {
		t.Fatalf("seed product: %v", err)
	}

	return NewOrderService(repository.NewInMemoryOrderRepository(), products), products, waffle
}

func TestOrderService_CreateOrder(t *testing.T) {
	svc, _, waffle := newOrderFixture(t)

	tests := []struct {
		name    string
		req     models.OrderInput
		wantErr error
	}{
		{
			name:    "valid order with single item",
			req:     validOrderInput(models.OrderItemInput{Product: waffle.ID.Hex(), Quantity: intPtr(2)}),
			wantErr: nil,
		},
		{
			name:    "valid order without items",
			req:     validOrderInput(),
			wantErr: nil,
		},
		{
			name:    "nonexistent product is accepted",
			req:     validOrderInput(models.OrderItemInput{Product: primitive.NewObjectID().Hex(), Quantity: intPtr(1)}),
			wantErr: nil,
		},
		{
			name:    "zero quantity is accepted",
			req:     validOrderInput(models.OrderItemInput{Product: waffle.ID.Hex(), Quantity: intPtr(0)}),
			wantErr: nil,
		},
		{
			name: "missing customer name",
			req: func() models.OrderInput {
				in := validOrderInput()
				in.CustomerName = ""
				return in
			}(),
			wantErr: ErrInvalidInput,
		},
		{
			name: "missing total amount",
			req: func() models.OrderInput {
				in := validOrderInput()
				in.TotalAmount = nil
				return in
			}(),
			wantErr: ErrInvalidInput,
		},
		{
			name:    "missing quantity",
			req:     validOrderInput(models.OrderItemInput{Product: waffle.ID.Hex()}),
			wantErr: ErrInvalidInput,
		},
		{
			name:    "malformed product reference",
			req:     validOrderInput(models.OrderItemInput{Product: "waffle", Quantity: intPtr(1)}),
			wantErr: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := svc.CreateOrder(context.Background(), tt.req)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("CreateOrder() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("CreateOrder() unexpected error = %v", err)
			}

			if order.ID.IsZero() {
				t.Error("CreateOrder() order ID is empty")
			}

			if order.Status != models.DefaultOrderStatus {
				t.Errorf("CreateOrder() status = %q, want %q", order.Status, models.DefaultOrderStatus)
			}

			if order.Products == nil {
				t.Error("CreateOrder() products must not be nil")
			}

			if len(order.Products) != len(tt.req.Products) {
				t.Errorf("CreateOrder() items count = %d, want %d", len(order.Products), len(tt.req.Products))
			}

			if order.CreatedAt.IsZero() || !order.CreatedAt.Equal(order.UpdatedAt) {
				t.Errorf("CreateOrder() timestamps = %v / %v", order.CreatedAt, order.UpdatedAt)
			}
		})
	}
}

func TestOrderService_CreateOrder_DoesNotTouchStockOrTotal(t *testing.T) {
	svc, products, waffle := newOrderFixture(t)
	ctx := context.Background()

	in := validOrderInput(models.OrderItemInput{Product: waffle.ID.Hex(), Quantity: intPtr(100)})
	in.TotalAmount = floatPtr(1)

	order, err := svc.CreateOrder(ctx, in)
	if err != nil {
		t.Fatalf("CreateOrder() unexpected error = %v", err)
	}
	if order.TotalAmount != 1 {
		t.Errorf("total amount = %v, want client supplied 1", order.TotalAmount)
	}

	stored, err := products.GetByID(ctx, waffle.ID.Hex())
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.Stock != waffle.Stock {
		t.Errorf("stock = %d, want unchanged %d", stored.Stock, waffle.Stock)
	}
}

func TestOrderService_GetOrder_PopulatesProducts(t *testing.T) {
	svc, products, waffle := newOrderFixture(t)
	ctx := context.Background()

	dangling := primitive.NewObjectID()
	created, err := svc.CreateOrder(ctx, validOrderInput(
		models.OrderItemInput{Product: waffle.ID.Hex(), Quantity: intPtr(2)},
		models.OrderItemInput{Product: dangling.Hex(), Quantity: intPtr(1)},
		models.OrderItemInput{Product: waffle.ID.Hex(), Quantity: intPtr(3)},
	))
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}

	got, err := svc.GetOrder(ctx, created.ID.Hex())
	if err != nil {
		t.Fatalf("GetOrder() error = %v", err)
	}

	if len(got.Products) != 3 {
		t.Fatalf("items = %d, want 3", len(got.Products))
	}
	if got.Products[0].Product == nil || got.Products[0].Product.Name != "Chicken Waffle" {
		t.Errorf("item 0 product = %+v, want Chicken Waffle", got.Products[0].Product)
	}
	if got.Products[1].Product != nil {
		t.Errorf("item 1 product = %+v, want nil for dangling reference", got.Products[1].Product)
	}
	if got.Products[2].Quantity != 3 {
		t.Errorf("item 2 quantity = %d, want 3", got.Products[2].Quantity)
	}

	// Deleting the product afterwards leaves a dangling reference
	if err := products.Delete(ctx, waffle.ID.Hex()); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	list, err := svc.ListOrders(ctx)
	if err != nil {
		t.Fatalf("ListOrders() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("orders = %d, want 1", len(list))
	}
	for i, item := range list[0].Products {
		if item.Product != nil {
			t.Errorf("item %d product = %+v, want nil after delete", i, item.Product)
		}
	}
}

func TestOrderService_GetOrder_NotFound(t *testing.T) {
	svc, _, _ := newOrderFixture(t)

	for _, id := range []string{primitive.NewObjectID().Hex(), "not-an-id"} {
		if _, err := svc.GetOrder(context.Background(), id); !errors.Is(err, repository.ErrNotFound) {
			t.Errorf("GetOrder(%q) error = %v, want ErrNotFound", id, err)
		}
	}
}

func TestOrderService_UpdateOrder(t *testing.T) {
	svc, _, waffle := newOrderFixture(t)
	ctx := context.Background()

	created, err := svc.CreateOrder(ctx, validOrderInput(models.OrderItemInput{Product: waffle.ID.Hex(), Quantity: intPtr(1)}))
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}

	t.Run("arbitrary status", func(t *testing.T) {
		updated, err := svc.UpdateOrder(ctx, created.ID.Hex(), models.OrderUpdateRequest{Status: strPtr("Lost In Space")})
		if err != nil {
			t.Fatalf("UpdateOrder() error = %v", err)
		}
		if updated.Status != "Lost In Space" {
			t.Errorf("status = %q, want Lost In Space", updated.Status)
		}
		if updated.CustomerName != "Ada Lovelace" {
			t.Errorf("customer name = %q, want untouched", updated.CustomerName)
		}
		if updated.UpdatedAt.Before(created.UpdatedAt) {
			t.Errorf("updatedAt went backwards: %v < %v", updated.UpdatedAt, created.UpdatedAt)
		}

		fetched, err := svc.GetOrder(ctx, created.ID.Hex())
		if err != nil {
			t.Fatalf("GetOrder() error = %v", err)
		}
		if fetched.Status != "Lost In Space" {
			t.Errorf("fetched status = %q, want Lost In Space", fetched.Status)
		}
	})

	t.Run("replace line items", func(t *testing.T) {
		items := []models.OrderItemInput{{Product: primitive.NewObjectID().Hex(), Quantity: intPtr(9)}}
		updated, err := svc.UpdateOrder(ctx, created.ID.Hex(), models.OrderUpdateRequest{Products: &items})
		if err != nil {
			t.Fatalf("UpdateOrder() error = %v", err)
		}
		if len(updated.Products) != 1 || updated.Products[0].Quantity != 9 {
			t.Errorf("products = %+v, want single item with quantity 9", updated.Products)
		}
	})

	t.Run("malformed line item", func(t *testing.T) {
		items := []models.OrderItemInput{{Product: "nope", Quantity: intPtr(1)}}
		_, err := svc.UpdateOrder(ctx, created.ID.Hex(), models.OrderUpdateRequest{Products: &items})
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("UpdateOrder() error = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("missing order", func(t *testing.T) {
		_, err := svc.UpdateOrder(ctx, primitive.NewObjectID().Hex(), models.OrderUpdateRequest{Status: strPtr("x")})
		if !errors.Is(err, repository.ErrNotFound) {
			t.Errorf("UpdateOrder() error = %v, want ErrNotFound", err)
		}
	})
}

func TestOrderService_DeleteOrder(t *testing.T) {
	svc, _, _ := newOrderFixture(t)
	ctx := context.Background()

	created, err := svc.CreateOrder(ctx, validOrderInput())
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}

	if err := svc.DeleteOrder(ctx, created.ID.Hex()); err != nil {
		t.Fatalf("DeleteOrder() error = %v", err)
	}
	if _, err := svc.GetOrder(ctx, created.ID.Hex()); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("GetOrder() after delete error = %v, want ErrNotFound", err)
	}
}

type failingLookup struct{}

func (failingLookup) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	return nil, errors.New("connection reset")
}

func TestOrderService_ListOrders_LookupFailure(t *testing.T) {
	orders := repository.NewInMemoryOrderRepository()
	svc := NewOrderService(orders, failingLookup{})
	ctx := context.Background()

	if _, err := svc.CreateOrder(ctx, validOrderInput(models.OrderItemInput{Product: primitive.NewObjectID().Hex(), Quantity: intPtr(1)})); err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}

	if _, err := svc.ListOrders(ctx); err == nil {
		t.Error("ListOrders() expected error when product lookup fails")
	}
}

func TestOrderService_ListOrders_SkipsLookupWithoutItems(t *testing.T) {
	svc := NewOrderService(repository.NewInMemoryOrderRepository(), failingLookup{})
	ctx := context.Background()

	if _, err := svc.CreateOrder(ctx, validOrderInput()); err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}

	orders, err := svc.ListOrders(ctx)
	if err != nil {
		t.Fatalf("ListOrders() error = %v", err)
	}
	if len(orders) != 1 || orders[0].Products == nil {
		t.Errorf("orders = %+v, want one order with empty products", orders)
	}
}
