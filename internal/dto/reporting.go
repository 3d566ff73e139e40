package dto

import "time"

// TrialBalanceParams defines query parameters for the trial balance report.
// AsOf defaults to now when omitted.
type TrialBalanceParams struct {
	AsOf   *time.Time `form:"asOf" time_format:"2006-01-02"`
	Format string     `form:"format,default=json"`
}

// AccountActivityParams defines query parameters for the account activity report.
type AccountActivityParams struct {
	From   time.Time `form:"from" time_format:"2006-01-02" binding:"required"`
	To     time.Time `form:"to" time_format:"2006-01-02" binding:"required"`
	Format string    `form:"format,default=json"`
}

// PeriodSummaryParams defines query parameters for the period summary report.
type PeriodSummaryParams struct {
	Format string `form:"format,default=json"`
}
