package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"
	portsrepo "github.com/lendaro/loanledger/internal/core/ports/repositories"
)

// NewRepositoryProvider wires every pgsql repository against the shared pool.
// The entry repository takes the account repository so postings can lock and
// update account balances inside their own transaction.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	currencyRepo := newPgxCurrencyRepository(dbPool)
	exchangeRateRepo := newPgxExchangeRateRepository(dbPool)
	userRepo := newPgxUserRepository(dbPool)
	apiTokenRepo := newPgxAPITokenRepository(dbPool)
	entryRepo := newPgxEntryRepository(dbPool, accountRepo)
	periodRepo := newPgxPeriodRepository(dbPool)
	templateRepo := newPgxTemplateRepository(dbPool)
	loanRepo := newPgxLoanRepository(dbPool)
	accrualRepo := newPgxAccrualRepository(dbPool)
	anomalyRepo := newPgxAnomalyRepository(dbPool)
	reportingRepo := newReportingRepository(dbPool)

	return portsrepo.RepositoryProvider{
		AccountRepo:      accountRepo,
		CurrencyRepo:     currencyRepo,
		ExchangeRateRepo: exchangeRateRepo,
		UserRepo:         userRepo,
		APITokenRepo:     apiTokenRepo,
		EntryRepo:        entryRepo,
		PeriodRepo:       periodRepo,
		TemplateRepo:     templateRepo,
		LoanRepo:         loanRepo,
		AccrualRepo:      accrualRepo,
		AnomalyRepo:      anomalyRepo,
		ReportingRepo:    reportingRepo,
	}
}
