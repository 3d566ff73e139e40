package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	AccountRepo      AccountRepositoryFacade
	CurrencyRepo     CurrencyRepositoryFacade
	ExchangeRateRepo ExchangeRateRepositoryFacade
	UserRepo         UserRepositoryFacade
	APITokenRepo     APITokenRepository
	EntryRepo        EntryRepositoryWithTx
	PeriodRepo       PeriodRepositoryWithTx
	TemplateRepo     TemplateRepositoryWithTx
	LoanRepo         LoanRepositoryWithTx
	AccrualRepo      AccrualRepositoryWithTx
	AnomalyRepo      AnomalyRepositoryWithTx
	ReportingRepo    ReportingRepository
}
