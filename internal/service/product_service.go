package service

import (
	"context"

	"github.com/Lixing-Zhang/shop-backend/internal/models"
	"github.com/Lixing-Zhang/shop-backend/internal/repository"
)

// ProductService handles business logic for products.
// Every operation is a direct pass-through apart from required-field checks on create.
type ProductService struct {
	repo repository.ProductRepository
}

// NewProductService creates a new product service
func NewProductService(repo repository.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// ListProducts returns all products
func (s *ProductService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.List(ctx)
}

// GetProduct returns a product by ID
func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateProduct stores a new product after checking that name and price are present
func (s *ProductService) CreateProduct(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        in.Name,
		Price:       *in.Price,
		Brand:       in.Brand,
		Category:    in.Category,
		Stock:       in.Stock,
		Image:       in.Image,
		Description: in.Description,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct merges patch into the stored product and returns the result
func (s *ProductService) UpdateProduct(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	return s.repo.Update(ctx, id, patch)
}

// DeleteProduct removes a product. Orders referencing it keep a dangling reference.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
