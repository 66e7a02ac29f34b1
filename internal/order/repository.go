package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrInvalidInput  = errors.New("invalid order input")
	ErrInvalidStatus = errors.New("invalid order status")
	ErrUnauthorized  = errors.New("unauthorized")
)

// Repository is the durable order collection. It is the only owner of
// persisted order state; all writes go through the lifecycle Service.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, filter Filter) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, newStatus Status) (*Order, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, o *Order) error {
	query := `
		INSERT INTO orders (id, restaurant_id, user_id, items, total, status, payment_status, payment_method, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(ctx, query,
		o.ID,
		o.RestaurantID,
		o.UserID,
		o.Items,
		o.Total,
		string(o.Status),
		string(o.PaymentStatus),
		o.PaymentMethod,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert order %s: %w", o.ID, err)
	}

	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id string) (*Order, error) {
	query := `
		SELECT id, restaurant_id, user_id, items, total, status, payment_status, payment_method, created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	o, err := scanOrder(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order by id %s: %w", id, err)
	}

	return o, nil
}

func (r *postgresRepository) List(ctx context.Context, filter Filter) ([]Order, error) {
	query := `
		SELECT id, restaurant_id, user_id, items, total, status, payment_status, payment_method, created_at, updated_at
		FROM orders
		WHERE ($1 = '' OR restaurant_id = $1)
		  AND ($2 = '' OR user_id = $2)
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, filter.RestaurantID, filter.UserID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order row: %w", err)
		}
		orders = append(orders, *o)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating orders: %w", err)
	}

	return orders, nil
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id string, newStatus Status) (*Order, error) {
	query := `
		UPDATE orders
		SET status = $1, updated_at = $2
		WHERE id = $3
		RETURNING id, restaurant_id, user_id, items, total, status, payment_status, payment_method, created_at, updated_at
	`

	o, err := scanOrder(r.db.QueryRow(ctx, query, string(newStatus), time.Now().UTC(), id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Warn().Str("order_id", id).Str("new_status", string(newStatus)).Msg("repository: order not found for status update")
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Str("order_id", id).Str("new_status", string(newStatus)).Msg("repository: failed to update order status")
		return nil, fmt.Errorf("repository: failed to update order status %s: %w", id, err)
	}

	return o, nil
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(
		&o.ID,
		&o.RestaurantID,
		&o.UserID,
		&o.Items,
		&o.Total,
		&o.Status,
		&o.PaymentStatus,
		&o.PaymentMethod,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
