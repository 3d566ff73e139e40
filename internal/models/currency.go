package models

// Currency is a row in the currencies reference table. CurrencyCode is the
// ISO 4217 code and the primary key, Precision the number of minor units.
type Currency struct {
	CurrencyCode string `db:"currency_code"`
	Symbol       string `db:"symbol"`
	Name         string `db:"name"`
	Precision    int16  `db:"precision"`
	AuditFields
}
