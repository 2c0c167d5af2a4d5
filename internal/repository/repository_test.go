package repository

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Lixing-Zhang/shop-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

// runProductContract exercises behaviour every ProductRepository must share.
func runProductContract(t *testing.T, repo ProductRepository) {
	ctx := context.Background()

	phone := &models.Product{Name: "Phone", Price: 499.5, Brand: "Acme", Category: "Mobile", Stock: 3, Image: "/p.png", Description: "A phone"}
	require.NoError(t, repo.Create(ctx, phone))
	require.False(t, phone.ID.IsZero(), "create assigns an ID")

	got, err := repo.GetByID(ctx, phone.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, *phone, *got)

	cable := &models.Product{Name: "Cable", Price: 5}
	require.NoError(t, repo.Create(ctx, cable))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, phone.ID, all[0].ID)
	assert.Equal(t, cable.ID, all[1].ID)

	byIDs, err := repo.GetByIDs(ctx, []primitive.ObjectID{cable.ID, primitive.NewObjectID()})
	require.NoError(t, err)
	require.Len(t, byIDs, 1)
	assert.Equal(t, "Cable", byIDs[0].Name)

	empty, err := repo.GetByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	updated, err := repo.Update(ctx, phone.ID.Hex(), models.ProductPatch{Price: floatPtr(450), Brand: strPtr("Other")})
	require.NoError(t, err)
	assert.Equal(t, 450.0, updated.Price)
	assert.Equal(t, "Other", updated.Brand)
	assert.Equal(t, "Phone", updated.Name, "fields outside the patch survive")

	unchanged, err := repo.Update(ctx, cable.ID.Hex(), models.ProductPatch{})
	require.NoError(t, err)
	assert.Equal(t, *cable, *unchanged)

	_, err = repo.Update(ctx, primitive.NewObjectID().Hex(), models.ProductPatch{Name: strPtr("x")})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Delete(ctx, phone.ID.Hex()))
	_, err = repo.GetByID(ctx, phone.ID.Hex())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, phone.ID.Hex()), ErrNotFound)

	_, err = repo.GetByID(ctx, "not-an-object-id")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "nope"), ErrNotFound)
}

func runOrderContract(t *testing.T, repo OrderRepository) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	order := &models.Order{
		CustomerName: "Ada",
		Email:        "ada@example.com",
		Phone:        "555-0100",
		Address:      "1 Loop Rd",
		Products: []models.OrderItem{
			{ID: primitive.NewObjectID(), Product: primitive.NewObjectID(), Quantity: 2},
		},
		TotalAmount: 20,
		Status:      models.DefaultOrderStatus,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, repo.Create(ctx, order))

	got, err := repo.GetByID(ctx, order.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
	assert.Equal(t, order.Products, got.Products)
	assert.True(t, order.CreatedAt.Equal(got.CreatedAt))

	later := now.Add(time.Minute)
	updated, err := repo.Update(ctx, order.ID.Hex(), models.OrderPatch{Status: strPtr("Teleported"), UpdatedAt: later})
	require.NoError(t, err)
	assert.Equal(t, "Teleported", updated.Status)
	assert.Equal(t, "Ada", updated.CustomerName)
	assert.True(t, later.Equal(updated.UpdatedAt))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Teleported", list[0].Status)

	_, err = repo.Update(ctx, primitive.NewObjectID().Hex(), models.OrderPatch{UpdatedAt: later})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Delete(ctx, order.ID.Hex()))
	_, err = repo.GetByID(ctx, order.ID.Hex())
	assert.ErrorIs(t, err, ErrNotFound)
}

func runUserContract(t *testing.T, repo UserRepository) {
	ctx := context.Background()

	user := &models.User{Name: "Ada", Email: "ada@example.com", Password: "hash"}
	require.NoError(t, repo.Create(ctx, user))

	byEmail, err := repo.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byID, err := repo.GetByID(ctx, user.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "hash", byID.Password)

	dup := &models.User{Name: "Other", Email: "ada@example.com"}
	assert.ErrorIs(t, repo.Create(ctx, dup), ErrDuplicateKey)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInMemoryProductRepository(t *testing.T) {
	runProductContract(t, NewInMemoryProductRepository())
}

func TestInMemoryOrderRepository(t *testing.T) {
	runOrderContract(t, NewInMemoryOrderRepository())
}

func TestInMemoryUserRepository(t *testing.T) {
	runUserContract(t, NewInMemoryUserRepository())
}

func TestInMemoryProductRepository_Seed(t *testing.T) {
	repo := NewInMemoryProductRepository(
		models.Product{Name: "Seeded A", Price: 1},
		models.Product{Name: "Seeded B", Price: 2},
	)

	products, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestInMemoryOrderRepository_DoesNotAliasLineItems(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryOrderRepository()

	order := &models.Order{Products: []models.OrderItem{{ID: primitive.NewObjectID(), Quantity: 1}}}
	require.NoError(t, repo.Create(ctx, order))

	order.Products[0].Quantity = 42

	got, err := repo.GetByID(ctx, order.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 1, got.Products[0].Quantity)

	got.Products[0].Quantity = 7
	again, err := repo.GetByID(ctx, order.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 1, again.Products[0].Quantity)
}

func TestInMemoryProductRepository_ConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryProductRepository()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = repo.Create(ctx, &models.Product{Name: fmt.Sprintf("p%d", n)})
		}(i)
	}
	wg.Wait()

	products, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 50)
}

// mongoTestDatabase returns a fresh database on MONGO_TEST_URI, dropped when the test ends.
func mongoTestDatabase(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)

	db := client.Database(fmt.Sprintf("shop_test_%s", primitive.NewObjectID().Hex()))
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return db
}

func TestMongoProductRepository(t *testing.T) {
	runProductContract(t, NewMongoProductRepository(mongoTestDatabase(t)))
}

func TestMongoOrderRepository(t *testing.T) {
	runOrderContract(t, NewMongoOrderRepository(mongoTestDatabase(t)))
}

func TestMongoUserRepository(t *testing.T) {
	repo := NewMongoUserRepository(mongoTestDatabase(t))
	require.NoError(t, repo.EnsureIndexes(context.Background()))
	runUserContract(t, repo)
}
