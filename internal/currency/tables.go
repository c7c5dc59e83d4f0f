package currency

import (
	"sort"

	"github.com/shopspring/decimal"
)

// fallbackUSDRates is the bundled value of one unit of each currency in USD,
// used when the live rate service cannot answer.
var fallbackUSDRates = map[string]decimal.Decimal{
	"USD": decimal.RequireFromString("1.00"),
	"EUR": decimal.RequireFromString("1.03"),
	"JPY": decimal.RequireFromString("0.0063"),
	"GBP": decimal.RequireFromString("1.22"),
	"AUD": decimal.RequireFromString("0.61"),
	"CAD": decimal.RequireFromString("0.71"),
	"CHF": decimal.RequireFromString("1.09"),
	"CNY": decimal.RequireFromString("0.14"),
	"INR": decimal.RequireFromString("0.012"),
	"MXN": decimal.RequireFromString("0.048"),
	"MYR": decimal.RequireFromString("0.222292"),
}

// isoCodes contains ISO 4217 currency codes accepted when the live
// supported-currency list is unavailable.
var isoCodes = []string{
	"AED", "AFN", "ALL", "AMD", "ANG", "AOA", "ARS", "AUD", "AWG", "AZN",
	"BAM", "BBD", "BDT", "BGN", "BHD", "BIF", "BMD", "BND", "BOB", "BRL",
	"BSD", "BTN", "BWP", "BYN", "BZD", "CAD", "CDF", "CHF", "CLP", "CNY",
	"COP", "CRC", "CUP", "CVE", "CZK", "DJF", "DKK", "DOP", "DZD", "EGP",
	"ERN", "ETB", "EUR", "FJD", "FKP", "FOK", "GBP", "GEL", "GHS", "GIP",
	"GMD", "GNF", "GTQ", "GYD", "HKD", "HNL", "HRK", "HTG", "HUF", "IDR",
	"ILS", "INR", "IQD", "IRR", "ISK", "JMD", "JOD", "JPY", "KES", "KGS",
	"KHR", "KMF", "KPW", "KRW", "KWD", "KYD", "KZT", "LAK", "LBP", "LKR",
	"LRD", "LSL", "LYD", "MAD", "MDL", "MGA", "MKD", "MMK", "MNT", "MOP",
	"MRU", "MUR", "MVR", "MWK", "MXN", "MYR", "MZN", "NAD", "NGN", "NIO",
	"NOK", "NPR", "NZD", "OMR", "PAB", "PEN", "PGK", "PHP", "PKR", "PLN",
	"PYG", "QAR", "RON", "RSD", "RUB", "RWF", "SAR", "SBD", "SCR", "SDG",
	"SEK", "SGD", "SHP", "SLE", "SOS", "SRD", "SSP", "STN", "SVC", "SYP",
	"SZL", "THB", "TJS", "TMT", "TND", "TOP", "TRY", "TTD", "TWD", "TZS",
	"UAH", "UGX", "USD", "UYU", "UZS", "VES", "VND", "VUV", "WST", "XAF",
	"XCD", "XOF", "XPF", "YER", "ZAR", "ZMW", "ZWL",
}

// staticCodes is isoCodes plus every fallback-table key.
var staticCodes = func() map[string]bool {
	set := make(map[string]bool, len(isoCodes))
	for _, c := range isoCodes {
		set[c] = true
	}
	for c := range fallbackUSDRates {
		set[c] = true
	}
	return set
}()

// FallbackCodes returns the currencies the bundled rate table can convert, sorted.
func FallbackCodes() []string {
	codes := make([]string, 0, len(fallbackUSDRates))
	for c := range fallbackUSDRates {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}
