package renderer

import (
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// formatPrice renders an amount in minor units using the shop's currency
// and locale, falling back to en-US / USD when either is unusable so a
// half-configured shop still previews.
func formatPrice(cents int64, currencyCode, locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.AmericanEnglish
	}

	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		unit = currency.USD
	}

	amount := unit.Amount(float64(cents) / 100)
	printer := message.NewPrinter(tag)

	return printer.Sprint(currency.NarrowSymbol(amount))
}
