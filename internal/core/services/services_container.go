package services

import (
	portsrepo "github.com/lendaro/loanledger/internal/core/ports/repositories"
	portssvc "github.com/lendaro/loanledger/internal/core/ports/services"
	"github.com/lendaro/loanledger/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Reference data first since most services validate against it.
	container.Currency = NewCurrencyService(repos.CurrencyRepo)
	container.ExchangeRate = NewExchangeRateService(repos.ExchangeRateRepo, container.Currency)
	container.Account = NewAccountService(repos.AccountRepo, repos.CurrencyRepo)

	// Ledger core. The entry service is the only writer of journal entries;
	// everything that posts goes through it.
	container.Period = NewPeriodService(repos.PeriodRepo)
	container.Entry = NewEntryService(repos.EntryRepo, container.Account, container.Period)
	container.Mapping = NewMappingService(repos.TemplateRepo, container.Account)

	// Loan lifecycle and batch processing sit on top of the ledger core.
	container.Loan = NewLoanService(repos.LoanRepo, container.Mapping, container.Entry)
	container.Accrual = NewAccrualService(
		repos.AccrualRepo,
		repos.LoanRepo,
		container.Entry,
		container.Account,
		cfg.AccrualReceivableAccount,
		cfg.AccrualIncomeAccount,
	)
	container.Anomaly = NewAnomalyService(repos.AnomalyRepo, container.Entry)

	// Read side.
	container.Reporting = NewReportingService(repos.ReportingRepo, container.Account)
	container.Export = NewExportService()

	// Users and authentication.
	container.User = NewUserService(repos.UserRepo)
	container.Token = NewTokenService(cfg, container.User)
	container.APIToken = NewAPITokenService(repos.APITokenRepo)
	container.GoogleOAuth = NewGoogleOAuthHandlerService(cfg)

	return container
}
