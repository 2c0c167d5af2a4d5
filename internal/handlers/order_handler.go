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

// OrderHandler handles order-related HTTP requests.
// It expects to be mounted behind the Protect middleware.
type OrderHandler struct {
	orderService *service.OrderService
	log          *slog.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *service.OrderService, log *slog.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		log:          log,
	}
}

// Routes mounts the order endpoints on r
func (h *OrderHandler) Routes(r chi.Router) {
	r.Get("/", h.ListOrders)
	r.Post("/", h.CreateOrder)
	r.Get("/{id}", h.GetOrder)
	r.Put("/{id}", h.UpdateOrder)
	r.Delete("/{id}", h.DeleteOrder)
}

// ListOrders handles GET /api/orders
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderService.ListOrders(r.Context())
	if err != nil {
		h.log.Error("failed to list orders", "error", err)
		WriteError(w, http.StatusInternalServerError, "Error fetching orders", h.log)
		return
	}

	WriteJSON(w, http.StatusOK, orders, h.log)
}

// GetOrder handles GET /api/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	order, err := h.orderService.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Order not found", h.log)
			return
		}

		h.log.Error("failed to get order", "order_id", orderID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Error fetching order", h.log)
		return
	}

	WriteJSON(w, http.StatusOK, order, h.log)
}

// CreateOrder handles POST /api/orders
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req models.OrderInput

	// Parse request body
	if err := decodeJSON(w, r, &req); err != nil {
		h.log.Warn("failed to decode order request", "error", err)
		WriteError(w, http.StatusBadRequest, "Error creating order", h.log)
		return
	}

	order, err := h.orderService.CreateOrder(r.Context(), req)
	if err != nil {
		h.log.Warn("failed to create order", "error", err)
		WriteError(w, http.StatusBadRequest, "Error creating order", h.log)
		return
	}

	h.log.Info("order created successfully", "order_id", order.ID.Hex(), "items_count", len(order.Products))
	WriteJSON(w, http.StatusCreated, order, h.log)
}

// UpdateOrder handles PUT /api/orders/{id}
// Any status string is accepted; there is no transition check.
func (h *OrderHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	var req models.OrderUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log.Warn("failed to decode order update", "order_id", orderID, "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	order, err := h.orderService.UpdateOrder(r.Context(), orderID, req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			WriteError(w, http.StatusNotFound, "Order not found", h.log)
		case errors.Is(err, service.ErrInvalidInput):
			h.log.Warn("invalid order update", "order_id", orderID, "error", err)
			WriteError(w, http.StatusBadRequest, "Error updating order", h.log)
		default:
			h.log.Error("failed to update order", "order_id", orderID, "error", err)
			WriteError(w, http.StatusInternalServerError, "Error updating order", h.log)
		}
		return
	}

	WriteJSON(w, http.StatusOK, order, h.log)
}

// DeleteOrder handles DELETE /api/orders/{id}
func (h *OrderHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	if err := h.orderService.DeleteOrder(r.Context(), orderID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		h.log.Error("failed to delete order", "order_id", orderID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Error deleting order", h.log)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"message": "Order deleted"}, h.log)
}
