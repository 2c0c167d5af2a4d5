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

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	List(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error)
	Delete(ctx context.Context, id string) error
}

// MongoProductRepository implements ProductRepository over the products collection
type MongoProductRepository struct {
	coll *mongo.Collection
}

// NewMongoProductRepository creates a product repository backed by db
func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{coll: db.Collection(ProductsCollection)}
}

// List returns every product in natural order
func (r *MongoProductRepository) List(ctx context.Context) ([]models.Product, error) {
	cursor, err := r.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}

	products := make([]models.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}

// GetByID returns a product by its ID
func (r *MongoProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var product models.Product
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find product %s: %w", id, err)
	}
	return &product, nil
}

// GetByIDs returns the products matching ids; missing ids are silently skipped
func (r *MongoProductRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	products := make([]models.Product, 0, len(ids))
	if len(ids) == 0 {
		return products, nil
	}

	cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find products by ids: %w", err)
	}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}

// Create inserts product, assigning an ID when it has none
func (r *MongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, product); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// Update sets the patched fields and returns the product after the update
func (r *MongoProductRepository) Update(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	fields := patch.Fields()
	if len(fields) == 0 {
		return r.GetByID(ctx, id)
	}

	var product models.Product
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": fields}, opts).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update product %s: %w", id, err)
	}
	return &product, nil
}

// Delete removes a product by its ID
func (r *MongoProductRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// InMemoryProductRepository implements ProductRepository with in-memory storage
type InMemoryProductRepository struct {
	mu       sync.RWMutex
	products map[primitive.ObjectID]models.Product
}

// NewInMemoryProductRepository creates a new in-memory product repository holding seed
func NewInMemoryProductRepository(seed ...models.Product) *InMemoryProductRepository {
	r := &InMemoryProductRepository{
		products: make(map[primitive.ObjectID]models.Product, len(seed)),
	}
	for _, p := range seed {
		if p.ID.IsZero() {
			p.ID = primitive.NewObjectID()
		}
		r.products[p.ID] = p
	}
	return r
}

// List returns all products ordered by ID
func (r *InMemoryProductRepository) List(ctx context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]models.Product, 0, len(r.products))
	for _, product := range r.products {
		products = append(products, product)
	}
	sort.Slice(products, func(i, j int) bool { return lessID(products[i].ID, products[j].ID) })
	return products, nil
}

// GetByID returns a product by its ID
func (r *InMemoryProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	product, exists := r.products[oid]
	if !exists {
		return nil, ErrNotFound
	}
	return &product, nil
}

func (r *InMemoryProductRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if product, ok := r.products[id]; ok {
			products = append(products, product)
		}
	}
	return products, nil
}

func (r *InMemoryProductRepository) Create(ctx context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	if _, exists := r.products[product.ID]; exists {
		return ErrDuplicateKey
	}
	r.products[product.ID] = *product
	return nil
}

func (r *InMemoryProductRepository) Update(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	product, exists := r.products[oid]
	if !exists {
		return nil, ErrNotFound
	}
	patch.Apply(&product)
	r.products[oid] = product
	return &product, nil
}

func (r *InMemoryProductRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[oid]; !exists {
		return ErrNotFound
	}
	delete(r.products, oid)
	return nil
}
