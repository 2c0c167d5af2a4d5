package service

import (
	"context"
	"fmt"

	"github.com/Lixing-Zhang/shop-backend/internal/models"
	"github.com/Lixing-Zhang/shop-backend/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductLookup resolves product references for order population
type ProductLookup interface {
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error)
}

// OrderService handles order operations.
// It never checks stock, never recomputes totalAmount and accepts any status string.
type OrderService struct {
	orders   repository.OrderRepository
	products ProductLookup
}

// NewOrderService creates a new order service
func NewOrderService(orders repository.OrderRepository, products ProductLookup) *OrderService {
	return &OrderService{
		orders:   orders,
		products: products,
	}
}

// ListOrders returns every order with its product references resolved
func (s *OrderService) ListOrders(ctx context.Context) ([]models.PopulatedOrder, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, orders)
}

// GetOrder returns one order with its product references resolved
func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.PopulatedOrder, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	populated, err := s.populate(ctx, []models.Order{*order})
	if err != nil {
		return nil, err
	}
	return &populated[0], nil
}

// CreateOrder stores a new order with status Pending.
// Line items may reference products that do not exist.
func (s *OrderService) CreateOrder(ctx context.Context, in models.OrderInput) (*models.Order, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	items, err := parseItems(in.Products)
	if err != nil {
		return nil, err
	}

	createdAt := now()
	order := &models.Order{
		ID:           primitive.NewObjectID(),
		CustomerName: in.CustomerName,
		Email:        in.Email,
		Phone:        in.Phone,
		Address:      in.Address,
		Products:     items,
		TotalAmount:  *in.TotalAmount,
		Status:       models.DefaultOrderStatus,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateOrder merges the supplied fields into the order and returns the stored result.
// A supplied products array replaces the existing line items.
func (s *OrderService) UpdateOrder(ctx context.Context, id string, req models.OrderUpdateRequest) (*models.Order, error) {
	patch := models.OrderPatch{
		CustomerName: req.CustomerName,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		TotalAmount:  req.TotalAmount,
		Status:       req.Status,
		UpdatedAt:    now(),
	}

	if req.Products != nil {
		items, err := parseItems(*req.Products)
		if err != nil {
			return nil, err
		}
		patch.Products = items
	}

	return s.orders.Update(ctx, id, patch)
}

// DeleteOrder removes an order
func (s *OrderService) DeleteOrder(ctx context.Context, id string) error {
	return s.orders.Delete(ctx, id)
}

// parseItems converts client line items into stored ones, assigning each an ID.
// The result is never nil so an order without items serializes as [].
func parseItems(in []models.OrderItemInput) ([]models.OrderItem, error) {
	items := make([]models.OrderItem, 0, len(in))
	for i, item := range in {
		if err := validateStruct(item); err != nil {
			return nil, fmt.Errorf("products[%d]: %w", i, err)
		}

		productID, err := primitive.ObjectIDFromHex(item.Product)
		if err != nil {
			return nil, fmt.Errorf("%w: products[%d].product %q is not an object id", ErrInvalidInput, i, item.Product)
		}

		items = append(items, models.OrderItem{
			ID:       primitive.NewObjectID(),
			Product:  productID,
			Quantity: *item.Quantity,
		})
	}
	return items, nil
}

// populate resolves every line item's product reference with a single batch lookup.
// References to missing products resolve to nil.
func (s *OrderService) populate(ctx context.Context, orders []models.Order) ([]models.PopulatedOrder, error) {
	// Collect distinct product IDs
	seen := make(map[primitive.ObjectID]struct{})
	ids := make([]primitive.ObjectID, 0)
	for _, order := range orders {
		for _, item := range order.Products {
			if _, exists := seen[item.Product]; exists {
				continue
			}
			seen[item.Product] = struct{}{}
			ids = append(ids, item.Product)
		}
	}

	productMap := make(map[primitive.ObjectID]models.Product, len(ids))
	if len(ids) > 0 {
		products, err := s.products.GetByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("populate order products: %w", err)
		}
		for _, product := range products {
			productMap[product.ID] = product
		}
	}

	populated := make([]models.PopulatedOrder, 0, len(orders))
	for _, order := range orders {
		items := make([]models.PopulatedOrderItem, 0, len(order.Products))
		for _, item := range order.Products {
			var product *models.Product
			if p, ok := productMap[item.Product]; ok {
				product = &p
			}
			items = append(items, models.PopulatedOrderItem{
				ID:       item.ID,
				Product:  product,
				Quantity: item.Quantity,
			})
		}

		populated = append(populated, models.PopulatedOrder{
			ID:           order.ID,
			CustomerName: order.CustomerName,
			Email:        order.Email,
			Phone:        order.Phone,
			Address:      order.Address,
			Products:     items,
			TotalAmount:  order.TotalAmount,
			Status:       order.Status,
			CreatedAt:    order.CreatedAt,
			UpdatedAt:    order.UpdatedAt,
		})
	}
	return populated, nil
}
