package domain

// Currency is reference data for a currency that accounts and journal lines
// are denominated in. CurrencyCode is the ISO 4217 code and the primary key.
// Precision is the number of minor units and drives display rounding in
// exports.
type Currency struct {
	CurrencyCode string `json:"currencyCode"`
	Symbol       string `json:"symbol"`
	Name         string `json:"name"`
	Precision    int16  `json:"precision"`
	AuditFields
}
