package order

import (
	"time"

	"storefront-analytics/internal/analytics"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID     uint
	UserID uint
	// Ordered is false while the order is still an active cart.
	Ordered   bool
	CreatedAt time.Time
	OrderedAt *time.Time
	Items     []OrderItem
}

type OrderItem struct {
	ID        uint
	OrderID   uint
	ProductID uint
	Quantity  int
	Price     decimal.Decimal
}

type Customer struct {
	ID        uint
	Email     string
	Name      string
	CreatedAt time.Time
	Orders    []*Order
}

type OrderFilter struct {
	CustomerID *uint
	From       *time.Time
	To         *time.Time
	// IncludeCarts also returns orders that have not been placed yet.
	IncludeCarts bool
}

func (i OrderItem) Product() analytics.ProductID { return analytics.ProductID(i.ProductID) }
func (i OrderItem) Units() int                   { return i.Quantity }
func (i OrderItem) UnitPrice() decimal.Decimal   { return i.Price }

func (o *Order) Customer() analytics.CustomerID { return analytics.CustomerID(o.UserID) }
func (o *Order) PlacedAt() time.Time            { return o.CreatedAt }

func (o *Order) LineItems() []analytics.Item {
	items := make([]analytics.Item, len(o.Items))
	for i, item := range o.Items {
		items[i] = item
	}
	return items
}

func (c *Customer) Key() analytics.CustomerID { return analytics.CustomerID(c.ID) }

func (c *Customer) History() []analytics.Order {
	return AsRecords(c.Orders)
}

// AsRecords exposes orders to the analytics package.
func AsRecords(orders []*Order) []analytics.Order {
	records := make([]analytics.Order, len(orders))
	for i, o := range orders {
		records[i] = o
	}
	return records
}

func CustomersAsRecords(customers []*Customer) []analytics.Customer {
	records := make([]analytics.Customer, len(customers))
	for i, c := range customers {
		records[i] = c
	}
	return records
}

// AttachOrders appends each order to its customer. Orders of unknown
// customers are dropped.
func AttachOrders(customers []*Customer, orders []*Order) {
	byID := make(map[uint]*Customer, len(customers))
	for _, c := range customers {
		byID[c.ID] = c
	}
	for _, o := range orders {
		if c, ok := byID[o.UserID]; ok {
			c.Orders = append(c.Orders, o)
		}
	}
}
