package analytics

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

func CalculateDiscountAmount(price, discountPct decimal.Decimal) decimal.Decimal {
	return price.Mul(discountPct).Div(hundred)
}

func CalculateTax(amount, taxRate decimal.Decimal) decimal.Decimal {
	return amount.Mul(taxRate).Div(hundred)
}

// CalculateFinalPrice applies the discount first, then taxes the
// discounted amount.
func CalculateFinalPrice(price, discountPct, taxRate decimal.Decimal) decimal.Decimal {
	discounted := price.Sub(CalculateDiscountAmount(price, discountPct))
	return discounted.Add(CalculateTax(discounted, taxRate))
}
