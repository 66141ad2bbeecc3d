package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront-analytics/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	FetchOrders(ctx context.Context, filter *OrderFilter) ([]*Order, error)
	FetchOrderItems(ctx context.Context, orderIDs []uint) (map[uint][]OrderItem, error)
	GetOrderDetail(ctx context.Context, orderID uint) (*Order, error)
	FetchCustomers(ctx context.Context) ([]*Customer, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// FetchOrders loads placed orders with their items, oldest first.
func (r *repository) FetchOrders(ctx context.Context, filter *OrderFilter) ([]*Order, error) {
	log := logger.FromCtx(ctx).With(zap.String("method", "FetchOrders"))

	query := `
		SELECT o.id, o.user_id, o.ordered, o.created_at, o.ordered_at
		FROM orders o
		WHERE 1=1`

	args := []any{}
	argIndex := 1

	if filter == nil || !filter.IncludeCarts {
		query += " AND o.ordered = TRUE"
	}

	if filter != nil {
		if filter.CustomerID != nil {
			query += fmt.Sprintf(" AND o.user_id = $%d", argIndex)
			args = append(args, *filter.CustomerID)
			argIndex++
		}

		if filter.From != nil {
			query += fmt.Sprintf(" AND o.created_at >= $%d", argIndex)
			args = append(args, *filter.From)
			argIndex++
		}

		if filter.To != nil {
			query += fmt.Sprintf(" AND o.created_at < $%d", argIndex)
			args = append(args, *filter.To)
			argIndex++
		}
	}

	query += " ORDER BY o.created_at ASC, o.id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	var ids []uint
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Ordered, &o.CreatedAt, &o.OrderedAt); err != nil {
			log.Error("failed to scan order row", zap.Error(err))
			return nil, err
		}
		orders = append(orders, &o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		log.Error("rows iteration error", zap.Error(err))
		return nil, err
	}

	if len(orders) == 0 {
		return orders, nil
	}

	items, err := r.FetchOrderItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		o.Items = items[o.ID]
	}

	log.Debug("fetched orders", zap.Int("count", len(orders)))
	return orders, nil
}

func (r *repository) FetchOrderItems(ctx context.Context, orderIDs []uint) (map[uint][]OrderItem, error) {
	result := make(map[uint][]OrderItem)
	if len(orderIDs) == 0 {
		return result, nil
	}

	ids := make([]int64, len(orderIDs))
	for i, id := range orderIDs {
		ids[i] = int64(id)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, item_id, quantity, price
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, id
	`, pq.Array(ids))
	if err != nil {
		logger.FromCtx(ctx).Error("failed to query order items", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price); err != nil {
			return nil, err
		}
		result[item.OrderID] = append(result[item.OrderID], item)
	}

	return result, rows.Err()
}

func (r *repository) GetOrderDetail(ctx context.Context, orderID uint) (*Order, error) {
	var o Order
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, ordered, created_at, ordered_at
		FROM orders
		WHERE id = $1
	`, orderID).Scan(&o.ID, &o.UserID, &o.Ordered, &o.CreatedAt, &o.OrderedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	items, err := r.FetchOrderItems(ctx, []uint{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]

	return &o, nil
}

func (r *repository) FetchCustomers(ctx context.Context) ([]*Customer, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, email, name, created_at
		FROM customers
		ORDER BY id
	`)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to query customers", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var customers []*Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Email, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		customers = append(customers, &c)
	}

	return customers, rows.Err()
}
