package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

// Lifecycle event names pushed to connected viewers.
const (
	EventOrderCreated = "order-created"
	EventOrderUpdated = "order-updated"
)

// Publisher fans a lifecycle event out to connected viewers. Delivery is
// best-effort; a Publisher never fails the calling write.
type Publisher interface {
	Publish(event string, payload any)
}

// CreateRequest is the checkout payload. Total is a pointer so a missing
// total is distinguishable from an explicit zero. PaymentStatus and
// PaymentMethod are pass-through values from the external payment flow.
type CreateRequest struct {
	RestaurantID  string        `json:"restaurantId"`
	UserID        string        `json:"userId"`
	Items         []Item        `json:"items"`
	Total         *float64      `json:"total"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	PaymentMethod string        `json:"paymentMethod"`
}

// Service gate-keeps all order writes: it validates creation input and
// status transitions, persists through the Repository, and publishes a
// lifecycle event after each successful write.
type Service interface {
	CreateOrder(ctx context.Context, req CreateRequest) (*Order, error)
	GetOrder(ctx context.Context, id string) (*Order, error)
	ListOrders(ctx context.Context, filter Filter) ([]Order, error)
	ChangeStatus(ctx context.Context, id string, newStatus Status, authorized bool) (*Order, error)
}

type service struct {
	repo   Repository
	events Publisher
}

func NewService(repo Repository, events Publisher) Service {
	return &service{
		repo:   repo,
		events: events,
	}
}

func (s *service) CreateOrder(ctx context.Context, req CreateRequest) (*Order, error) {
	if req.RestaurantID == "" {
		return nil, fmt.Errorf("%w: restaurantId is required", ErrInvalidInput)
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: order must contain at least one item", ErrInvalidInput)
	}
	if req.Total == nil {
		return nil, fmt.Errorf("%w: total is required", ErrInvalidInput)
	}
	if *req.Total < 0 {
		return nil, fmt.Errorf("%w: total cannot be negative", ErrInvalidInput)
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: item %q quantity must be greater than zero", ErrInvalidInput, item.Name)
		}
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate order id: %w", err)
	}

	paymentStatus := req.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = PaymentPending
	}

	now := time.Now().UTC()
	o := &Order{
		ID:            id.String(),
		RestaurantID:  req.RestaurantID,
		UserID:        req.UserID,
		Items:         req.Items,
		Total:         *req.Total,
		Status:        StatusPending,
		PaymentStatus: paymentStatus,
		PaymentMethod: req.PaymentMethod,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// Payment state is asserted by the checkout client, not confirmed by a
	// payment callback. Flag it so operators can audit paid-on-arrival orders.
	if req.PaymentStatus == PaymentPaid {
		log.Warn().Str("order_id", o.ID).Str("restaurant_id", o.RestaurantID).Msg("service: paymentStatus=paid asserted by client at creation")
	}

	if err := s.repo.Create(ctx, o); err != nil {
		log.Error().Err(err).Str("order_id", o.ID).Msg("service: failed to create order in repository")
		return nil, fmt.Errorf("service: failed to create order: %w", err)
	}

	s.events.Publish(EventOrderCreated, o)

	log.Info().Str("order_id", o.ID).Str("restaurant_id", o.RestaurantID).Float64("total", o.Total).Msg("service: order created")

	return o, nil
}

func (s *service) GetOrder(ctx context.Context, id string) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			log.Warn().Str("order_id", id).Msg("service: order not found by id")
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Str("order_id", id).Msg("service: failed to fetch order by id")
		return nil, fmt.Errorf("service: failed to fetch order by id: %w", err)
	}

	return o, nil
}

func (s *service) ListOrders(ctx context.Context, filter Filter) ([]Order, error) {
	orders, err := s.repo.List(ctx, filter)
	if err != nil {
		log.Error().Err(err).Str("restaurant_id", filter.RestaurantID).Msg("service: failed to list orders")
		return nil, fmt.Errorf("service: failed to list orders: %w", err)
	}

	return orders, nil
}

// ChangeStatus accepts any of the three recognized statuses from any
// current status; only enum membership is validated. A repeat transition
// to the current status succeeds and still refreshes updatedAt.
func (s *service) ChangeStatus(ctx context.Context, id string, newStatus Status, authorized bool) (*Order, error) {
	if !authorized {
		log.Warn().Str("order_id", id).Msg("service: unauthorized status change attempt")
		return nil, ErrUnauthorized
	}
	if !newStatus.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, newStatus)
	}

	o, err := s.repo.UpdateStatus(ctx, id, newStatus)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Str("order_id", id).Str("new_status", string(newStatus)).Msg("service: failed to update order status")
		return nil, fmt.Errorf("service: failed to update order status: %w", err)
	}

	s.events.Publish(EventOrderUpdated, o)

	log.Info().Str("order_id", o.ID).Str("new_status", string(o.Status)).Msg("service: order status updated")

	return o, nil
}
