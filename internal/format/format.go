// Package format renders amounts for display in Brazilian Portuguese
// conventions: "." groups thousands and "," separates cents.
package format

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const CurrencySymbol = "R$"

var printer = message.NewPrinter(language.BrazilianPortuguese)

// Money formats v with exactly two decimals, e.g. "1.234,56".
func Money(v decimal.Decimal) string {
	return render(v, 2)
}

// Label formats v rounded to whole units with the currency symbol, as used
// on chart bars and points, e.g. "R$ 1.235".
func Label(v decimal.Decimal) string {
	return CurrencySymbol + " " + render(v, 0)
}

// Count formats an integer with thousands grouping.
func Count(n int) string {
	return printer.Sprint(number.Decimal(n))
}

func render(v decimal.Decimal, places int32) string {
	f := v.Round(places).InexactFloat64()
	return printer.Sprint(number.Decimal(f,
		number.MinFractionDigits(int(places)),
		number.MaxFractionDigits(int(places)),
	))
}
