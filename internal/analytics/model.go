package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductID uint

type CustomerID uint

const (
	DefaultTopLimit            = 10
	DefaultRecommendationLimit = 5
	DefaultChurnWindowDays     = 90
)

// Item is a single order line as seen by the aggregator.
// UnitPrice is the price charged when the order was placed.
type Item interface {
	Product() ProductID
	Units() int
	UnitPrice() decimal.Decimal
}

// Order is a read-only view of a placed order.
type Order interface {
	Customer() CustomerID
	PlacedAt() time.Time
	LineItems() []Item
}

// Customer is a read-only view of a customer and their orders.
type Customer interface {
	Key() CustomerID
	History() []Order
}

type Segment string

const (
	SegmentHighValue   Segment = "high_value"
	SegmentMediumValue Segment = "medium_value"
	SegmentLowValue    Segment = "low_value"
	SegmentInactive    Segment = "inactive"
)

// Segments lists every segment from the highest spend bucket down.
var Segments = []Segment{
	SegmentHighValue,
	SegmentMediumValue,
	SegmentLowValue,
	SegmentInactive,
}

type ProductTally struct {
	ProductID ProductID `json:"productId"`
	Count     int       `json:"count"`
}

type CustomerSpend struct {
	CustomerID CustomerID      `json:"customerId"`
	Revenue    decimal.Decimal `json:"revenue"`
}

type ProductPerformance struct {
	TotalSold    int             `json:"totalSold"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	AveragePrice decimal.Decimal `json:"averagePrice"`
	// ReturnRate is not tracked by the storefront yet and is always zero.
	ReturnRate float64 `json:"returnRate"`
}

type DailySales struct {
	Date    string          `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
}

type MonthlyReport struct {
	Year               int             `json:"year"`
	Month              time.Month      `json:"month"`
	TotalOrders        int             `json:"totalOrders"`
	TotalRevenue       decimal.Decimal `json:"totalRevenue"`
	TotalCustomers     int             `json:"totalCustomers"`
	NewCustomers       int             `json:"newCustomers"`
	ReturningCustomers int             `json:"returningCustomers"`
	AverageOrderValue  decimal.Decimal `json:"averageOrderValue"`
	TopProducts        []ProductTally  `json:"topProducts"`
	TopCustomers       []CustomerSpend `json:"topCustomers"`
	DailySales         []DailySales    `json:"dailySales"`
}
