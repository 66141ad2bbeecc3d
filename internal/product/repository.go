package product

import (
	"context"
	"database/sql"
	"errors"
)

type Repository interface {
	GetAll(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id uint) (*Product, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetAll(ctx context.Context) ([]Product, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, title, slug, category, price FROM items ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Title, &p.Slug, &p.Category, &p.Price); err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	return products, rows.Err()
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Product, error) {
	var p Product
	err := r.db.QueryRowContext(ctx,
		"SELECT id, title, slug, category, price FROM items WHERE id = $1", id,
	).Scan(&p.ID, &p.Title, &p.Slug, &p.Category, &p.Price)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
