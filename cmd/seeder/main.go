package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lendaro/loanledger/internal/core/domain"
	portssvc "github.com/lendaro/loanledger/internal/core/ports/services"
	"github.com/lendaro/loanledger/internal/core/services"
	"github.com/lendaro/loanledger/internal/apperrors"
	"github.com/lendaro/loanledger/internal/dto"
	"github.com/lendaro/loanledger/internal/platform/config"
	"github.com/lendaro/loanledger/internal/repositories/database/pgsql"
	"github.com/lendaro/loanledger/pkg/database"
)

// Seeds a fresh database with currencies, a loan-servicing chart of
// accounts, default mapping templates, an open period for the current month
// and a few demo loans. Safe to run repeatedly: everything already present
// is skipped.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()
	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, true)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := database.RunMigrations(cfg.DatabaseURL, "file://migrations", logger); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	repos := pgsql.NewRepositoryProvider(dbPool)
	container := services.NewServiceContainer(cfg, repos)

	logger.Info("Seeding database...")
	if err := seed(ctx, container, logger); err != nil {
		logger.Error("Seeding failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Seeding complete.")
}

func seed(ctx context.Context, svc *portssvc.ServiceContainer, logger *slog.Logger) error {
	if err := seedCurrencies(ctx, svc, logger); err != nil {
		return err
	}
	if err := seedChartOfAccounts(ctx, svc, logger); err != nil {
		return err
	}
	if err := seedMappingTemplates(ctx, svc, logger); err != nil {
		return err
	}
	if err := seedOpenPeriod(ctx, svc, logger); err != nil {
		return err
	}
	return seedDemoLoans(ctx, svc, logger)
}

func seedCurrencies(ctx context.Context, svc *portssvc.ServiceContainer, logger *slog.Logger) error {
	currencies := []dto.CreateCurrencyRequest{
		{CurrencyCode: "USD", Symbol: "$", Name: "US Dollar", Precision: 2},
		{CurrencyCode: "EUR", Symbol: "€", Name: "Euro", Precision: 2},
		{CurrencyCode: "INR", Symbol: "₹", Name: "Indian Rupee", Precision: 2},
	}

	created := 0
	for _, req := range currencies {
		_, err := svc.Currency.GetCurrencyByCode(ctx, req.CurrencyCode)
		if err == nil {
			continue
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("failed to check currency %s: %w", req.CurrencyCode, err)
		}
		if _, err := svc.Currency.CreateCurrency(ctx, req, domain.SystemUserID); err != nil {
			return fmt.Errorf("failed to create currency %s: %w", req.CurrencyCode, err)
		}
		created++
	}
	logger.Info("Currencies seeded", slog.Int("created", created))
	return nil
}

// seedAccount describes one chart row. Parents are created before children,
// so the slice order matters.
type seedAccount struct {
	Code        string
	Name        string
	Type        domain.AccountType
	ParentCode  string
	Description string
}

func seedChartOfAccounts(ctx context.Context, svc *portssvc.ServiceContainer, logger *slog.Logger) error {
	chart := []seedAccount{
		{Code: "1000", Name: "Assets", Type: domain.Asset},
		{Code: "1100", Name: "Cash and Bank", Type: domain.Asset, ParentCode: "1000"},
		{Code: "1110", Name: "Operating Cash", Type: domain.Asset, ParentCode: "1100", Description: "Cash moved on disbursements and repayments"},
		{Code: "1140", Name: "Loans Receivable", Type: domain.Asset, ParentCode: "1000", Description: "Outstanding loan principal"},
		{Code: "1150", Name: "Interest Receivable", Type: domain.Asset, ParentCode: "1000", Description: "Accrued interest not yet collected"},
		{Code: "1160", Name: "Fees Receivable", Type: domain.Asset, ParentCode: "1000"},
		{Code: "2000", Name: "Liabilities", Type: domain.Liability},
		{Code: "2100", Name: "Funding Payable", Type: domain.Liability, ParentCode: "2000"},
		{Code: "3000", Name: "Equity", Type: domain.Equity},
		{Code: "3100", Name: "Retained Earnings", Type: domain.Equity, ParentCode: "3000"},
		{Code: "4000", Name: "Income", Type: domain.Revenue},
		{Code: "4100", Name: "Interest Income", Type: domain.Revenue, ParentCode: "4000", Description: "Interest earned through daily accrual"},
		{Code: "4200", Name: "Fee Income", Type: domain.Revenue, ParentCode: "4000"},
		{Code: "5000", Name: "Expenses", Type: domain.Expense},
		{Code: "5100", Name: "Credit Loss Expense", Type: domain.Expense, ParentCode: "5000", Description: "Principal lost to write-offs"},
	}

	idsByCode := make(map[string]string, len(chart))
	created := 0
	for _, a := range chart {
		existing, err := svc.Account.GetAccountByCode(ctx, a.Code)
		if err == nil {
			idsByCode[a.Code] = existing.AccountID
			continue
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("failed to check account %s: %w", a.Code, err)
		}

		req := dto.CreateAccountRequest{
			AccountCode:  a.Code,
			Name:         a.Name,
			AccountType:  a.Type,
			CurrencyCode: "USD",
			Description:  a.Description,
		}
		if a.ParentCode != "" {
			parentID, ok := idsByCode[a.ParentCode]
			if !ok {
				return fmt.Errorf("account %s references parent %s before it was seeded", a.Code, a.ParentCode)
			}
			req.ParentAccountID = &parentID
		}

		account, err := svc.Account.CreateAccount(ctx, req, domain.SystemUserID)
		if err != nil {
			return fmt.Errorf("failed to create account %s: %w", a.Code, err)
		}
		idsByCode[a.Code] = account.AccountID
		created++
	}
	logger.Info("Chart of accounts seeded", slog.Int("created", created))
	return nil
}

func seedMappingTemplates(ctx context.Context, svc *portssvc.ServiceContainer, logger *slog.Logger) error {
	templates := []dto.CreateMappingTemplateRequest{
		{
			Name:      "Standard disbursement",
			EventType: domain.EventDisbursement,
			Priority:  100,
			Lines: []dto.TemplateLineRequest{
				{AccountSelector: "1140", Side: domain.Debit, AmountExpr: "amount", Memo: "Loan principal disbursed"},
				{AccountSelector: "1110", Side: domain.Credit, AmountExpr: "amount", Memo: "Cash paid out"},
			},
		},
		{
			Name:      "Standard repayment",
			EventType: domain.EventRepayment,
			Priority:  100,
			Lines: []dto.TemplateLineRequest{
				{AccountSelector: "1110", Side: domain.Debit, AmountExpr: "amount", Memo: "Cash received"},
				{AccountSelector: "1140", Side: domain.Credit, AmountExpr: "amount", Memo: "Principal repaid"},
			},
		},
		{
			Name:      "Late fee",
			EventType: domain.EventFee,
			Priority:  50,
			Conditions: []dto.TemplateConditionRequest{
				{Field: "attr.fee_kind", Operator: domain.OpEqual, Value: "LATE"},
			},
			Lines: []dto.TemplateLineRequest{
				{AccountSelector: "1160", Side: domain.Debit, AmountExpr: "amount", Memo: "Late fee charged"},
				{AccountSelector: "4200", Side: domain.Credit, AmountExpr: "amount", Memo: "Late fee income"},
			},
		},
		{
			Name:      "Standard fee",
			EventType: domain.EventFee,
			Priority:  100,
			Lines: []dto.TemplateLineRequest{
				{AccountSelector: "1160", Side: domain.Debit, AmountExpr: "amount", Memo: "Fee charged"},
				{AccountSelector: "4200", Side: domain.Credit, AmountExpr: "amount", Memo: "Fee income"},
			},
		},
		{
			Name:      "Standard write-off",
			EventType: domain.EventWriteOff,
			Priority:  100,
			Lines: []dto.TemplateLineRequest{
				{AccountSelector: "5100", Side: domain.Debit, AmountExpr: "amount", Memo: "Principal written off"},
				{AccountSelector: "1140", Side: domain.Credit, AmountExpr: "amount", Memo: "Receivable cleared"},
			},
		},
	}

	existing, err := svc.Mapping.ListTemplates(ctx)
	if err != nil {
		return fmt.Errorf("failed to list templates: %w", err)
	}
	byName := make(map[string]bool, len(existing))
	for _, t := range existing {
		byName[t.Name] = true
	}

	created := 0
	for _, req := range templates {
		if byName[req.Name] {
			continue
		}
		if _, err := svc.Mapping.CreateTemplate(ctx, req, domain.SystemUserID); err != nil {
			return fmt.Errorf("failed to create template %q: %w", req.Name, err)
		}
		created++
	}
	logger.Info("Mapping templates seeded", slog.Int("created", created))
	return nil
}

// seedOpenPeriod ensures an OPEN period covering the current month so demo
// lifecycle operations can post immediately.
func seedOpenPeriod(ctx context.Context, svc *portssvc.ServiceContainer, logger *slog.Logger) error {
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	periods, err := svc.Period.ListPeriods(ctx)
	if err != nil {
		return fmt.Errorf("failed to list periods: %w", err)
	}
	for _, p := range periods {
		if !now.Before(p.StartDate) && now.Before(p.EndDate) {
			logger.Info("Period already covers today", slog.String("period", p.Name))
			return nil
		}
	}

	req := dto.CreatePeriodRequest{
		Name:      start.Format("2006-01"),
		StartDate: start,
		EndDate:   end,
	}
	period, err := svc.Period.CreatePeriod(ctx, req, domain.SystemUserID)
	if err != nil {
		return fmt.Errorf("failed to create period %s: %w", req.Name, err)
	}
	logger.Info("Open period seeded", slog.String("period", period.Name))
	return nil
}

func seedDemoLoans(ctx context.Context, svc *portssvc.ServiceContainer, logger *slog.Logger) error {
	loans := []struct {
		Req      dto.CreateLoanRequest
		Disburse bool
	}{
		{
			Req: dto.CreateLoanRequest{
				ReferenceCode: "LN-1001",
				BorrowerName:  "Asha Textiles Pvt Ltd",
				Principal:     decimal.RequireFromString("250000.00"),
				AnnualRate:    decimal.RequireFromString("0.125"),
				DayCountBasis: 365,
				CurrencyCode:  "USD",
			},
			Disburse: true,
		},
		{
			Req: dto.CreateLoanRequest{
				ReferenceCode: "LN-1002",
				BorrowerName:  "Harbor Freight Co-op",
				Principal:     decimal.RequireFromString("80000.00"),
				AnnualRate:    decimal.RequireFromString("0.095"),
				DayCountBasis: 360,
				CurrencyCode:  "USD",
			},
		},
		{
			Req: dto.CreateLoanRequest{
				ReferenceCode: "LN-1003",
				BorrowerName:  "Meridian Logistics LLC",
				Principal:     decimal.RequireFromString("150000.00"),
				AnnualRate:    decimal.RequireFromString("0.11"),
				DayCountBasis: 365,
				CurrencyCode:  "USD",
			},
		},
	}

	existing, err := svc.Loan.ListLoans(ctx, 200, 0)
	if err != nil {
		return fmt.Errorf("failed to list loans: %w", err)
	}
	byRef := make(map[string]domain.Loan, len(existing))
	for _, l := range existing {
		byRef[l.ReferenceCode] = l
	}

	created := 0
	for _, seed := range loans {
		loan, ok := byRef[seed.Req.ReferenceCode]
		if !ok {
			newLoan, err := svc.Loan.CreateLoan(ctx, seed.Req, domain.SystemUserID)
			if err != nil {
				return fmt.Errorf("failed to create loan %s: %w", seed.Req.ReferenceCode, err)
			}
			loan = *newLoan
			created++
		}

		if seed.Disburse && loan.Status == domain.LoanPending {
			if _, err := svc.Loan.Disburse(ctx, loan.LoanID, domain.SystemUserID); err != nil {
				return fmt.Errorf("failed to disburse loan %s: %w", loan.ReferenceCode, err)
			}
			logger.Info("Demo loan disbursed", slog.String("reference", loan.ReferenceCode))
		}
	}
	logger.Info("Demo loans seeded", slog.Int("created", created))
	return nil
}
