package billing

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var usdPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatUSD renders cents as dollars, e.g. 140000 -> "$1,400.00".
func FormatUSD(cents int64) string {
	sign := ""
	magnitude := uint64(cents)
	if cents < 0 {
		sign = "-"
		magnitude = -magnitude
	}
	dollars := usdPrinter.Sprintf("%d", magnitude/100)
	return fmt.Sprintf("%s$%s.%02d", sign, dollars, magnitude%100)
}
