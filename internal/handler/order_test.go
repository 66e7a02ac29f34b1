package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/feastline/orderhub/internal/auth"
	"github.com/feastline/orderhub/internal/order"
)

type mockService struct {
	createOrderFunc  func(ctx context.Context, req order.CreateRequest) (*order.Order, error)
	getOrderFunc     func(ctx context.Context, id string) (*order.Order, error)
	listOrdersFunc   func(ctx context.Context, filter order.Filter) ([]order.Order, error)
	changeStatusFunc func(ctx context.Context, id string, newStatus order.Status, authorized bool) (*order.Order, error)
}

func (m *mockService) CreateOrder(ctx context.Context, req order.CreateRequest) (*order.Order, error) {
	return m.createOrderFunc(ctx, req)
}

func (m *mockService) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	return m.getOrderFunc(ctx, id)
}

func (m *mockService) ListOrders(ctx context.Context, filter order.Filter) ([]order.Order, error) {
	return m.listOrdersFunc(ctx, filter)
}

func (m *mockService) ChangeStatus(ctx context.Context, id string, newStatus order.Status, authorized bool) (*order.Order, error) {
	return m.changeStatusFunc(ctx, id, newStatus, authorized)
}

func newTestRouter(svc order.Service, az auth.Authorizer) *chi.Mux {
	h := NewOrderHandler(svc, az)
	r := chi.NewRouter()
	r.Post("/api/orders", h.CreateOrder)
	r.Get("/api/orders", h.ListOrders)
	r.Get("/api/orders/{id}", h.GetOrder)
	r.Put("/api/orders/{id}/status", h.UpdateStatus)
	return r
}

var fixedTime = time.Date(2025, 4, 16, 12, 0, 0, 0, time.UTC)

func sampleOrder() *order.Order {
	return &order.Order{
		ID:            "550e8400-e29b-41d4-a716-446655440000",
		RestaurantID:  "r1",
		Items:         []order.Item{{Name: "Pizza", Quantity: 2, Price: 10}},
		Total:         20,
		Status:        order.StatusPending,
		PaymentStatus: order.PaymentPending,
		CreatedAt:     fixedTime,
		UpdatedAt:     fixedTime,
	}
}

func TestOrderHandler_CreateOrder(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		createOrder    func(ctx context.Context, req order.CreateRequest) (*order.Order, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success",
			body: `{"restaurantId":"r1","items":[{"name":"Pizza","quantity":2,"price":10}],"total":20}`,
			createOrder: func(ctx context.Context, req order.CreateRequest) (*order.Order, error) {
				return sampleOrder(), nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "missing_fields",
			body: `{"items":[]}`,
			createOrder: func(ctx context.Context, req order.CreateRequest) (*order.Order, error) {
				return nil, order.ErrInvalidInput
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"message":"Missing order data"}`,
		},
		{
			name:           "invalid_json",
			body:           `{invalid json}`,
			createOrder:    func(ctx context.Context, req order.CreateRequest) (*order.Order, error) { return nil, nil },
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"message":"Invalid request body"}`,
		},
		{
			name: "store_failure",
			body: `{"restaurantId":"r1","items":[{"name":"Pizza","quantity":2,"price":10}],"total":20}`,
			createOrder: func(ctx context.Context, req order.CreateRequest) (*order.Order, error) {
				return nil, context.DeadlineExceeded
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"message":"Failed to create order"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{createOrderFunc: tt.createOrder}
			r := newTestRouter(svc, auth.AllowAll{})

			req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.Equal(t, tt.expectedBody, w.Body.String())
			}
		})
	}
}

func TestOrderHandler_GetOrder(t *testing.T) {
	tests := []struct {
		name           string
		id             string
		getOrder       func(ctx context.Context, id string) (*order.Order, error)
		expectedStatus int
	}{
		{
			name: "success",
			id:   "550e8400-e29b-41d4-a716-446655440000",
			getOrder: func(ctx context.Context, id string) (*order.Order, error) {
				return sampleOrder(), nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "not_found",
			id:   "missing",
			getOrder: func(ctx context.Context, id string) (*order.Order, error) {
				return nil, order.ErrOrderNotFound
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{getOrderFunc: tt.getOrder}
			r := newTestRouter(svc, auth.AllowAll{})

			req := httptest.NewRequest(http.MethodGet, "/api/orders/"+tt.id, nil)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestOrderHandler_ListOrders_PassesFilter(t *testing.T) {
	var gotFilter order.Filter
	svc := &mockService{
		listOrdersFunc: func(ctx context.Context, filter order.Filter) ([]order.Order, error) {
			gotFilter = filter
			return []order.Order{*sampleOrder()}, nil
		},
	}
	r := newTestRouter(svc, auth.AllowAll{})

	req := httptest.NewRequest(http.MethodGet, "/api/orders?restaurantId=r1&userId=u1", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, order.Filter{RestaurantID: "r1", UserID: "u1"}, gotFilter)
	assert.Contains(t, w.Body.String(), `"orders":[`)
}

func TestOrderHandler_UpdateStatus(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		authorizer     auth.Authorizer
		changeStatus   func(ctx context.Context, id string, newStatus order.Status, authorized bool) (*order.Order, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:       "success",
			body:       `{"status":"served"}`,
			authorizer: auth.AllowAll{},
			changeStatus: func(ctx context.Context, id string, newStatus order.Status, authorized bool) (*order.Order, error) {
				o := sampleOrder()
				o.Status = newStatus
				return o, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:       "missing_status",
			body:       `{}`,
			authorizer: auth.AllowAll{},
			changeStatus: func(ctx context.Context, id string, newStatus order.Status, authorized bool) (*order.Order, error) {
				t.Fatal("service must not be called when status is missing")
				return nil, nil
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"message":"Status required"}`,
		},
		{
			name:       "unauthorized",
			body:       `{"status":"served"}`,
			authorizer: auth.StaticTokenAuthorizer{Token: "secret"},
			changeStatus: func(ctx context.Context, id string, newStatus order.Status, authorized bool) (*order.Order, error) {
				assert.False(t, authorized)
				return nil, order.ErrUnauthorized
			},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"message":"Unauthorized"}`,
		},
		{
			name:       "invalid_status",
			body:       `{"status":"burnt"}`,
			authorizer: auth.AllowAll{},
			changeStatus: func(ctx context.Context, id string, newStatus order.Status, authorized bool) (*order.Order, error) {
				return nil, order.ErrInvalidStatus
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"message":"Invalid status value"}`,
		},
		{
			name:       "not_found",
			body:       `{"status":"served"}`,
			authorizer: auth.AllowAll{},
			changeStatus: func(ctx context.Context, id string, newStatus order.Status, authorized bool) (*order.Order, error) {
				return nil, order.ErrOrderNotFound
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"message":"Order not found"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{changeStatusFunc: tt.changeStatus}
			r := newTestRouter(svc, tt.authorizer)

			req := httptest.NewRequest(http.MethodPut, "/api/orders/o1/status", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.Equal(t, tt.expectedBody, w.Body.String())
			}
		})
	}
}

func TestStaticTokenAuthorizer(t *testing.T) {
	az := auth.StaticTokenAuthorizer{Token: "secret"}

	req := httptest.NewRequest(http.MethodPut, "/api/orders/o1/status", nil)
	assert.False(t, az.Authorize(req))

	req.Header.Set("Authorization", "Bearer wrong")
	assert.False(t, az.Authorize(req))

	req.Header.Set("Authorization", "Bearer secret")
	assert.True(t, az.Authorize(req))

	assert.False(t, auth.StaticTokenAuthorizer{}.Authorize(req))
}
