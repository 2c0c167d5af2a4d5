package repository

import (
	"bytes"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection names.
const (
	ProductsCollection = "products"
	OrdersCollection   = "orders"
	UsersCollection    = "users"
)

var (
	// ErrNotFound is returned when an identifier matches no document.
	// A malformed identifier cannot match any document and yields the same error.
	ErrNotFound = errors.New("document not found")

	// ErrDuplicateKey is returned when a write violates a unique index.
	ErrDuplicateKey = errors.New("duplicate key")
)

// parseID converts a hex identifier into an ObjectID, mapping malformed input to ErrNotFound.
func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrNotFound
	}
	return oid, nil
}

// lessID orders ObjectIDs by creation time, which matches natural insertion order.
func lessID(a, b primitive.ObjectID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}

var (
	_ ProductRepository = (*MongoProductRepository)(nil)
	_ ProductRepository = (*InMemoryProductRepository)(nil)
	_ OrderRepository   = (*MongoOrderRepository)(nil)
	_ OrderRepository   = (*InMemoryOrderRepository)(nil)
	_ UserRepository    = (*MongoUserRepository)(nil)
	_ UserRepository    = (*InMemoryUserRepository)(nil)
)
