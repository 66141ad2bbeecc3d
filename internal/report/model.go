package report

import (
	"time"

	"storefront-analytics/internal/analytics"
	"storefront-analytics/internal/product"

	"github.com/shopspring/decimal"
)

type SummaryInput struct {
	From *time.Time
	To   *time.Time
}

type Summary struct {
	From              *time.Time               `json:"from,omitempty"`
	To                *time.Time               `json:"to,omitempty"`
	TotalOrders       int                      `json:"totalOrders"`
	TotalRevenue      decimal.Decimal          `json:"totalRevenue"`
	AverageOrderValue decimal.Decimal          `json:"averageOrderValue"`
	TopProducts       []analytics.ProductTally `json:"topProducts"`
}

type SegmentReport struct {
	Segments map[analytics.Segment][]analytics.CustomerID `json:"segments"`
}

type ChurnReport struct {
	WindowDays int       `json:"windowDays"`
	AsOf       time.Time `json:"asOf"`
	Customers  int       `json:"customers"`
	Rate       float64   `json:"rate"`
}

type ProductReport struct {
	Product         product.Product              `json:"product"`
	Performance     analytics.ProductPerformance `json:"performance"`
	Recommendations []analytics.ProductTally     `json:"recommendations"`
}

type RefundQuote struct {
	OrderID uint            `json:"orderId"`
	Items   int             `json:"items"`
	Amount  decimal.Decimal `json:"amount"`
}
