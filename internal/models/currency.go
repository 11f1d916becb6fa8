package models

// Well-known currency codes
const (
	USD = "USD"
	EUR = "EUR"
	RUB = "RUB"
	GBP = "GBP"
	INR = "INR"
)

// DefaultCurrency is assumed when a request or listing omits its currency.
const DefaultCurrency = USD
