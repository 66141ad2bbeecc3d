package analytics

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

func lineTotal(item Item) decimal.Decimal {
	return item.UnitPrice().Mul(decimal.NewFromInt(int64(item.Units())))
}

func orderTotal(o Order) decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.LineItems() {
		total = total.Add(lineTotal(item))
	}
	return total
}

// TotalRevenue sums price * quantity over every item of every order.
func TotalRevenue(orders []Order) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(orderTotal(o))
	}
	return total
}

// AverageOrderValue returns zero for an empty order list.
func AverageOrderValue(orders []Order) decimal.Decimal {
	if len(orders) == 0 {
		return decimal.Zero
	}
	return TotalRevenue(orders).Div(decimal.NewFromInt(int64(len(orders))))
}

// TopProducts ranks products by units sold. Products with equal units keep
// the order in which they were first seen in orders.
func TopProducts(orders []Order, limit int) []ProductTally {
	if limit <= 0 {
		limit = DefaultTopLimit
	}

	t := newTally()
	for _, o := range orders {
		for _, item := range o.LineItems() {
			t.add(item.Product(), item.Units())
		}
	}
	return t.ranked(limit)
}

func CustomerLifetimeValue(customerID CustomerID, orders []Order) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		if o.Customer() == customerID {
			total = total.Add(orderTotal(o))
		}
	}
	return total
}

// RefundAmount is the amount owed back for the given returned items.
func RefundAmount(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(lineTotal(item))
	}
	return total
}

// GenerateMonthlyReport summarizes the orders placed in the given UTC month.
// orders should carry the full history so new and returning customers can
// be told apart.
func GenerateMonthlyReport(orders []Order, year int, month time.Month) (*MonthlyReport, error) {
	if month < time.January || month > time.December {
		return nil, ErrInvalidMonth
	}

	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	firstOrder := make(map[CustomerID]time.Time)
	var inMonth []Order
	for _, o := range orders {
		placed := o.PlacedAt().UTC()
		if first, ok := firstOrder[o.Customer()]; !ok || placed.Before(first) {
			firstOrder[o.Customer()] = placed
		}
		if !placed.Before(start) && placed.Before(end) {
			inMonth = append(inMonth, o)
		}
	}

	report := &MonthlyReport{
		Year:              year,
		Month:             month,
		TotalOrders:       len(inMonth),
		TotalRevenue:      decimal.Zero,
		AverageOrderValue: AverageOrderValue(inMonth),
		TopProducts:       TopProducts(inMonth, DefaultTopLimit),
		DailySales:        dailySeries(year, month),
	}

	spendIndex := make(map[CustomerID]int)
	spend := []CustomerSpend{}
	for _, o := range inMonth {
		total := orderTotal(o)
		report.TotalRevenue = report.TotalRevenue.Add(total)

		day := o.PlacedAt().UTC().Day() - 1
		report.DailySales[day].Revenue = report.DailySales[day].Revenue.Add(total)

		idx, seen := spendIndex[o.Customer()]
		if !seen {
			idx = len(spend)
			spendIndex[o.Customer()] = idx
			spend = append(spend, CustomerSpend{CustomerID: o.Customer(), Revenue: decimal.Zero})

			if firstOrder[o.Customer()].Before(start) {
				report.ReturningCustomers++
			} else {
				report.NewCustomers++
			}
		}
		spend[idx].Revenue = spend[idx].Revenue.Add(total)
	}

	report.TotalCustomers = len(spend)

	slices.SortStableFunc(spend, func(a, b CustomerSpend) int {
		return b.Revenue.Cmp(a.Revenue)
	})
	if len(spend) > DefaultTopLimit {
		spend = spend[:DefaultTopLimit]
	}
	report.TopCustomers = spend

	return report, nil
}

// dailySeries has one zeroed entry per calendar day of the month.
func dailySeries(year int, month time.Month) []DailySales {
	series := make([]DailySales, 0, 31)
	for day := 1; day <= 31; day++ {
		date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		// time.Date normalizes e.g. Feb 30 into March.
		if date.Month() != month {
			break
		}
		series = append(series, DailySales{
			Date:    date.Format(time.DateOnly),
			Revenue: decimal.Zero,
		})
	}
	return series
}
