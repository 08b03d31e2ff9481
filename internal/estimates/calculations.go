package estimates

import "github.com/shopspring/decimal"

// Price fills the derived monetary fields from the items, discount, and tax
// rate. Item totals are quantity times unit price; labor and parts rollups
// split by item type, fees count toward the subtotal only; the discount comes
// off the subtotal before tax, and tax rounds to cents. The subtotal never
// discounts below zero.
func Price(est Estimate, taxRate decimal.Decimal) Estimate {
	labor := decimal.Zero
	parts := decimal.Zero
	subtotal := decimal.Zero
	for i := range est.Items {
		item := &est.Items[i]
		item.Total = item.Quantity.Mul(item.UnitPrice).Round(2)
		subtotal = subtotal.Add(item.Total)
		switch item.Type {
		case ItemLabor:
			labor = labor.Add(item.Total)
		case ItemPart:
			parts = parts.Add(item.Total)
		}
	}
	est.LaborTotal = labor
	est.PartsTotal = parts
	est.Subtotal = subtotal
	discounted := subtotal.Sub(est.Discount)
	if discounted.IsNegative() {
		discounted = decimal.Zero
	}
	est.Tax = discounted.Mul(taxRate).Round(2)
	est.Total = discounted.Add(est.Tax)
	return est
}
