package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/shop-backend/internal/models"
	"github.com/Lixing-Zhang/shop-backend/internal/repository"
	"github.com/Lixing-Zhang/shop-backend/internal/service"
	"github.com/go-chi/chi/v5"
)

// ProductHandler handles product-related HTTP requests
type ProductHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(service *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger,
	}
}

// Routes mounts the product endpoints on r
func (h *ProductHandler) Routes(r chi.Router) {
	r.Get("/", h.ListProducts)
	r.Post("/", h.CreateProduct)
	r.Get("/{id}", h.GetProduct)
	r.Put("/{id}", h.UpdateProduct)
	r.Delete("/{id}", h.DeleteProduct)
}

// ListProducts handles GET /api/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		h.logger.Error("failed to list products", "error", err)
		WriteError(w, http.StatusInternalServerError, "Error fetching products", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, products, h.logger)
}

// GetProduct handles GET /api/products/{id}
// - 200: the product
// - 404: Product not found
// - 500: database failure
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")

	product, err := h.service.GetProduct(r.Context(), productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.logger.Info("product not found", "productId", productID)
			WriteError(w, http.StatusNotFound, "Product not found", h.logger)
			return
		}

		h.logger.Error("failed to get product", "productId", productID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Error fetching product", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, product, h.logger)
}

// CreateProduct handles POST /api/products
// Every failure, including database errors, is reported as 400.
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in models.ProductInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.logger.Warn("failed to decode product request", "error", err)
		WriteError(w, http.StatusBadRequest, "Error adding product", h.logger)
		return
	}

	product, err := h.service.CreateProduct(r.Context(), in)
	if err != nil {
		h.logger.Warn("failed to create product", "error", err)
		WriteError(w, http.StatusBadRequest, "Error adding product", h.logger)
		return
	}

	h.logger.Info("product created", "productId", product.ID.Hex())
	WriteJSON(w, http.StatusCreated, product, h.logger)
}

// UpdateProduct handles PUT /api/products/{id}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")

	var patch models.ProductPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		h.logger.Warn("failed to decode product update", "productId", productID, "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	product, err := h.service.UpdateProduct(r.Context(), productID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Product not found", h.logger)
			return
		}

		h.logger.Error("failed to update product", "productId", productID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Error updating product", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, product, h.logger)
}

// DeleteProduct handles DELETE /api/products/{id}
// Deleting an unknown product still succeeds.
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")

	if err := h.service.DeleteProduct(r.Context(), productID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		h.logger.Error("failed to delete product", "productId", productID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Error deleting product", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"message": "Product deleted"}, h.logger)
}
