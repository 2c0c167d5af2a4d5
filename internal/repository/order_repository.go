package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/Lixing-Zhang/shop-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	List(ctx context.Context) ([]models.Order, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
	Create(ctx context.Context, order *models.Order) error
	Update(ctx context.Context, id string, patch models.OrderPatch) (*models.Order, error)
	Delete(ctx context.Context, id string) error
}

// MongoOrderRepository implements OrderRepository over the orders collection
type MongoOrderRepository struct {
	coll *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{coll: db.Collection(OrdersCollection)}
}

func (r *MongoOrderRepository) List(ctx context.Context) ([]models.Order, error) {
	cursor, err := r.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}

	orders := make([]models.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return orders, nil
}

func (r *MongoOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var order models.Order
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find order %s: %w", id, err)
	}
	return &order, nil
}

func (r *MongoOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, order); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// Update sets the patched fields and returns the order after the update.
// Concurrent updates of the same order are last-write-wins.
func (r *MongoOrderRepository) Update(ctx context.Context, id string, patch models.OrderPatch) (*models.Order, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var order models.Order
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": patch.Fields()}, opts).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update order %s: %w", id, err)
	}
	return &order, nil
}

func (r *MongoOrderRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete order %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// InMemoryOrderRepository implements OrderRepository with in-memory storage
type InMemoryOrderRepository struct {
	mu     sync.RWMutex
	orders map[primitive.ObjectID]models.Order
}

func NewInMemoryOrderRepository() *InMemoryOrderRepository {
	return &InMemoryOrderRepository{
		orders: make(map[primitive.ObjectID]models.Order),
	}
}

func (r *InMemoryOrderRepository) List(ctx context.Context) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orders := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		orders = append(orders, cloneOrder(order))
	}
	sort.Slice(orders, func(i, j int) bool { return lessID(orders[i].ID, orders[j].ID) })
	return orders, nil
}

func (r *InMemoryOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	order, exists := r.orders[oid]
	if !exists {
		return nil, ErrNotFound
	}
	order = cloneOrder(order)
	return &order, nil
}

func (r *InMemoryOrderRepository) Create(ctx context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	if _, exists := r.orders[order.ID]; exists {
		return ErrDuplicateKey
	}
	r.orders[order.ID] = cloneOrder(*order)
	return nil
}

func (r *InMemoryOrderRepository) Update(ctx context.Context, id string, patch models.OrderPatch) (*models.Order, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	order, exists := r.orders[oid]
	if !exists {
		return nil, ErrNotFound
	}
	order = cloneOrder(order)
	patch.Apply(&order)
	r.orders[oid] = order

	out := cloneOrder(order)
	return &out, nil
}

func (r *InMemoryOrderRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[oid]; !exists {
		return ErrNotFound
	}
	delete(r.orders, oid)
	return nil
}

// cloneOrder copies the line-item slice so callers never share backing arrays with the store.
func cloneOrder(order models.Order) models.Order {
	if order.Products != nil {
		items := make([]models.OrderItem, len(order.Products))
		copy(items, order.Products)
		order.Products = items
	}
	return order
}
