package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	highValueThreshold   = decimal.NewFromInt(1000)
	mediumValueThreshold = decimal.NewFromInt(500)
	lowValueThreshold    = decimal.NewFromInt(100)
)

// SegmentFor buckets a total spend. Thresholds are exclusive lower bounds,
// so exactly 1000 is medium value.
func SegmentFor(spent decimal.Decimal) Segment {
	switch {
	case spent.GreaterThan(highValueThreshold):
		return SegmentHighValue
	case spent.GreaterThan(mediumValueThreshold):
		return SegmentMediumValue
	case spent.GreaterThan(lowValueThreshold):
		return SegmentLowValue
	default:
		return SegmentInactive
	}
}

// SegmentCustomers groups customers by their total historical spend.
// Every segment is present in the result, empty or not.
func SegmentCustomers(customers []Customer) map[Segment][]Customer {
	segments := make(map[Segment][]Customer, len(Segments))
	for _, s := range Segments {
		segments[s] = []Customer{}
	}

	for _, c := range customers {
		s := SegmentFor(TotalRevenue(c.History()))
		segments[s] = append(segments[s], c)
	}

	return segments
}

// ChurnRate is ChurnRateAt evaluated against the current time.
func ChurnRate(customers []Customer, days int) float64 {
	return ChurnRateAt(customers, days, time.Now())
}

// ChurnRateAt returns the percentage of customers with no order in the
// window of days ending at now. Customers without orders count as churned.
func ChurnRateAt(customers []Customer, days int, now time.Time) float64 {
	if len(customers) == 0 {
		return 0
	}
	if days <= 0 {
		days = DefaultChurnWindowDays
	}

	cutoff := now.AddDate(0, 0, -days)

	churned := 0
	for _, c := range customers {
		last, ok := lastOrderAt(c)
		if !ok || last.Before(cutoff) {
			churned++
		}
	}

	return float64(churned) / float64(len(customers)) * 100
}

func lastOrderAt(c Customer) (time.Time, bool) {
	var last time.Time
	found := false
	for _, o := range c.History() {
		if !found || o.PlacedAt().After(last) {
			last = o.PlacedAt()
			found = true
		}
	}
	return last, found
}
