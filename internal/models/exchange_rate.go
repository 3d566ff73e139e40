package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate is a row holding the conversion rate between two currency
// codes as of DateEffective. Both codes reference the currencies table and
// the rate must be positive.
type ExchangeRate struct {
	ExchangeRateID   string          `db:"exchange_rate_id"`
	FromCurrencyCode string          `db:"from_currency_code"`
	ToCurrencyCode   string          `db:"to_currency_code"`
	Rate             decimal.Decimal `db:"rate"`
	DateEffective    time.Time       `db:"date_effective"`
	AuditFields
}
