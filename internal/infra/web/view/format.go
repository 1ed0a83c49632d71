package view

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var uzPrinter = message.NewPrinter(language.Uzbek)

// FormatAmount renders the integer part of d with the Uzbek digit grouping
// followed by the currency unit. The fraction is dropped, not rounded.
func FormatAmount(d decimal.Decimal, currency string) string {
	return uzPrinter.Sprintf("%d", d.IntPart()) + " " + currency
}

// FormatDate renders t as DD.MM.YYYY in t's own location.
func FormatDate(t time.Time) string {
	return t.Format("02.01.2006")
}
