package order

import (
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPreparing Status = "preparing"
	StatusServed    Status = "served"
)

func (s Status) String() string {
	return string(s)
}

// Valid reports whether s is one of the three recognized order statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPreparing, StatusServed:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

func (p PaymentStatus) String() string {
	return string(p)
}

// Item is a single line of an order. Items are supplied by checkout and
// never edited after placement.
type Item struct {
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
	SpiceLevel string  `json:"spiceLevel,omitempty"`
}

type Order struct {
	ID            string        `json:"id"`
	RestaurantID  string        `json:"restaurantId"`
	UserID        string        `json:"userId,omitempty"`
	Items         []Item        `json:"items"`
	Total         float64       `json:"total"`
	Status        Status        `json:"status"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	PaymentMethod string        `json:"paymentMethod,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// Filter narrows List results. Zero-value fields are ignored.
type Filter struct {
	RestaurantID string
	UserID       string
}
