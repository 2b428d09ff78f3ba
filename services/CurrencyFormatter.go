package services

import "github.com/shopspring/decimal"

type CurrencyFormatter interface {
	Format(amount decimal.Decimal) string
}

// SymbolFormatter prefixes a fixed two-decimal amount with Symbol.
type SymbolFormatter struct {
	Symbol string
}

func (f SymbolFormatter) Format(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "-" + f.Symbol + amount.Neg().StringFixed(2)
	}
	return f.Symbol + amount.StringFixed(2)
}
