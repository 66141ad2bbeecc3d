package product

import "github.com/shopspring/decimal"

type Product struct {
	ID       uint            `json:"id"`
	Title    string          `json:"title"`
	Slug     string          `json:"slug"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
}
