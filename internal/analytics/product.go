package analytics

import "github.com/shopspring/decimal"

func AnalyzeProductPerformance(productID ProductID, orders []Order) ProductPerformance {
	perf := ProductPerformance{
		TotalRevenue: decimal.Zero,
		AveragePrice: decimal.Zero,
	}

	for _, o := range orders {
		for _, item := range o.LineItems() {
			if item.Product() != productID {
				continue
			}
			perf.TotalSold += item.Units()
			perf.TotalRevenue = perf.TotalRevenue.Add(lineTotal(item))
		}
	}

	if perf.TotalSold > 0 {
		perf.AveragePrice = perf.TotalRevenue.Div(decimal.NewFromInt(int64(perf.TotalSold)))
	}

	return perf
}

// ProductRecommendations ranks the products bought together with productID.
// A co-occurring product counts once per order regardless of quantity.
func ProductRecommendations(productID ProductID, orders []Order, limit int) []ProductTally {
	if limit <= 0 {
		limit = DefaultRecommendationLimit
	}

	t := newTally()
	for _, o := range orders {
		items := o.LineItems()
		if !containsProduct(items, productID) {
			continue
		}

		counted := make(map[ProductID]bool, len(items))
		for _, item := range items {
			id := item.Product()
			if id == productID || counted[id] {
				continue
			}
			counted[id] = true
			t.add(id, 1)
		}
	}

	return t.ranked(limit)
}

func containsProduct(items []Item, productID ProductID) bool {
	for _, item := range items {
		if item.Product() == productID {
			return true
		}
	}
	return false
}
