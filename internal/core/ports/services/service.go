package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	Account      AccountSvcFacade
	Currency     CurrencySvcFacade
	ExchangeRate ExchangeRateSvcFacade
	User         UserSvcFacade
	Entry        EntrySvcFacade
	Period       PeriodSvcFacade
	Mapping      MappingSvcFacade
	Accrual      AccrualSvcFacade
	Anomaly      AnomalySvcFacade
	Reporting    ReportingSvcFacade
	Export       ExportSvc
	Loan         LoanSvcFacade
	Token        TokenSvcFacade
	APIToken     APITokenSvc
	GoogleOAuth  GoogleOAuthHandlerSvcFacade
}
