package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/feastline/orderhub/internal/auth"
	"github.com/feastline/orderhub/internal/order"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	svc order.Service
	az  auth.Authorizer
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc order.Service, az auth.Authorizer) *OrderHandler {
	return &OrderHandler{svc: svc, az: az}
}

// CreateOrder handles checkout: it validates nothing itself beyond JSON
// shape and delegates to the lifecycle service.
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req order.CreateRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	o, err := h.svc.CreateOrder(r.Context(), req)
	if err != nil {
		if errors.Is(err, order.ErrInvalidInput) {
			respondWithMessage(w, http.StatusBadRequest, "Missing order data")
			return
		}
		log.Info().Msgf("Failed to create order: %v", err)
		respondWithMessage(w, http.StatusInternalServerError, "Failed to create order")
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]*order.Order{"order": o})
}

// GetOrder handles retrieving an order by its ID.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondWithMessage(w, http.StatusBadRequest, "Order id required")
		return
	}

	o, err := h.svc.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			respondWithMessage(w, http.StatusNotFound, "Order not found")
			return
		}
		log.Info().Msgf("Failed to get order by id: %v", err)
		respondWithMessage(w, http.StatusInternalServerError, "Failed to fetch order")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]*order.Order{"order": o})
}

// ListOrders returns orders newest-first, optionally filtered by
// restaurantId and userId query parameters.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	filter := order.Filter{
		RestaurantID: r.URL.Query().Get("restaurantId"),
		UserID:       r.URL.Query().Get("userId"),
	}

	orders, err := h.svc.ListOrders(r.Context(), filter)
	if err != nil {
		log.Info().Msgf("Failed to list orders: %v", err)
		respondWithMessage(w, http.StatusInternalServerError, "Failed to list orders")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string][]order.Order{"orders": orders})
}

// UpdateStatus advances an order through the kitchen workflow. The
// authorization decision belongs to the external Authorizer.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body struct {
		Status order.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.Status == "" {
		respondWithMessage(w, http.StatusBadRequest, "Status required")
		return
	}

	o, err := h.svc.ChangeStatus(r.Context(), id, body.Status, h.az.Authorize(r))
	if err != nil {
		switch {
		case errors.Is(err, order.ErrUnauthorized):
			respondWithMessage(w, http.StatusUnauthorized, "Unauthorized")
		case errors.Is(err, order.ErrInvalidStatus):
			respondWithMessage(w, http.StatusBadRequest, "Invalid status value")
		case errors.Is(err, order.ErrOrderNotFound):
			respondWithMessage(w, http.StatusNotFound, "Order not found")
		default:
			log.Info().Msgf("Failed to update order status: %v", err)
			respondWithMessage(w, http.StatusInternalServerError, "Failed to update order status")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]*order.Order{"order": o})
}
