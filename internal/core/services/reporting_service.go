package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lendaro/loanledger/internal/core/domain"
	portsrepo "github.com/lendaro/loanledger/internal/core/ports/repositories"
	portssvc "github.com/lendaro/loanledger/internal/core/ports/services"
)

// reportingService assembles read-only reports from posted data. Every
// monetary cell is rendered through decimal.Decimal.String, never a float.
type reportingService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepository
	accountSvc    portssvc.AccountReaderSvc
}

// NewReportingService creates a new ReportingService.
func NewReportingService(reportingRepo portsrepo.ReportingRepository, accountSvc portssvc.AccountReaderSvc) portssvc.ReportingSvcFacade {
	return &reportingService{
		reportingRepo: reportingRepo,
		accountSvc:    accountSvc,
	}
}

// Ensure reportingService implements the ReportingSvcFacade interface
var _ portssvc.ReportingSvcFacade = (*reportingService)(nil)

// TrialBalance generates a trial balance as of a date. Leaf totals come from
// the repository; summary accounts aggregate their subtree by walking each
// leaf's path to the root, so the rollup never double counts.
func (s *reportingService) TrialBalance(ctx context.Context, asOf time.Time) (*domain.ReportData, error) {
	tree, err := s.accountSvc.GetAccountTree(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load account tree: %w", err)
	}
	leafBalances, err := s.reportingRepo.GetLeafBalances(ctx, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve trial balance data",
			slog.String("asOf", asOf.Format(time.RFC3339)))
		return nil, fmt.Errorf("failed to retrieve trial balance data: %w", err)
	}

	rolled := make(map[string]domain.AccountBalance, tree.Len())
	var totalDebit, totalCredit decimal.Decimal
	for accountID, bal := range leafBalances {
		totalDebit = totalDebit.Add(bal.Debit)
		totalCredit = totalCredit.Add(bal.Credit)
		for _, ancestorID := range tree.PathToRoot(accountID) {
			agg := rolled[ancestorID]
			agg.Debit = agg.Debit.Add(bal.Debit)
			agg.Credit = agg.Credit.Add(bal.Credit)
			rolled[ancestorID] = agg
		}
	}

	report := &domain.ReportData{
		Title:       "Trial Balance as of " + asOf.Format("2006-01-02"),
		GeneratedAt: time.Now().UTC(),
		Columns: []domain.ReportColumn{
			{Key: "account_code", Label: "Account Code", Kind: domain.CellText},
			{Key: "account_name", Label: "Account Name", Kind: domain.CellText},
			{Key: "account_type", Label: "Type", Kind: domain.CellText},
			{Key: "depth", Label: "Level", Kind: domain.CellInteger},
			{Key: "debit", Label: "Debit", Kind: domain.CellDecimal},
			{Key: "credit", Label: "Credit", Kind: domain.CellDecimal},
			{Key: "balance", Label: "Balance", Kind: domain.CellDecimal},
		},
	}

	tree.Walk(func(acc domain.Account, depth int) bool {
		bal := rolled[acc.AccountID]
		balance := bal.Debit.Sub(bal.Credit)
		if acc.AccountType.NormalSide() == domain.Credit {
			balance = bal.Credit.Sub(bal.Debit)
		}
		report.Rows = append(report.Rows, []domain.ReportCell{
			domain.TextCell(acc.AccountCode),
			domain.TextCell(acc.Name),
			domain.TextCell(string(acc.AccountType)),
			domain.IntegerCell(int64(depth)),
			domain.DecimalCell(bal.Debit),
			domain.DecimalCell(bal.Credit),
			domain.DecimalCell(balance),
		})
		return true
	})

	// Grand totals over leaves only; a balanced ledger shows equal columns.
	report.Rows = append(report.Rows, []domain.ReportCell{
		domain.TextCell(""),
		domain.TextCell("TOTAL"),
		domain.TextCell(""),
		domain.IntegerCell(0),
		domain.DecimalCell(totalDebit),
		domain.DecimalCell(totalCredit),
		domain.DecimalCell(totalDebit.Sub(totalCredit)),
	})

	s.LogInfo(ctx, "Trial balance report generated successfully",
		slog.String("asOf", asOf.Format(time.RFC3339)),
		slog.Int("row_count", len(report.Rows)))
	return report, nil
}

// AccountActivity generates the posted lines of one account over a date
// range. Running balances come from the repository ordered by entry date and
// sequence number.
func (s *reportingService) AccountActivity(ctx context.Context, accountID string, from, to time.Time) (*domain.ReportData, error) {
	account, err := s.accountSvc.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	rows, err := s.reportingRepo.GetAccountActivity(ctx, accountID, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve account activity data",
			slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to retrieve account activity data: %w", err)
	}

	report := &domain.ReportData{
		Title: fmt.Sprintf("Account Activity %s (%s) %s to %s",
			account.AccountCode, account.Name,
			from.Format("2006-01-02"), to.Format("2006-01-02")),
		GeneratedAt: time.Now().UTC(),
		Columns: []domain.ReportColumn{
			{Key: "entry_date", Label: "Date", Kind: domain.CellDate},
			{Key: "sequence_no", Label: "Seq", Kind: domain.CellInteger},
			{Key: "entry_id", Label: "Entry", Kind: domain.CellText},
			{Key: "description", Label: "Description", Kind: domain.CellText},
			{Key: "debit", Label: "Debit", Kind: domain.CellDecimal},
			{Key: "credit", Label: "Credit", Kind: domain.CellDecimal},
			{Key: "balance", Label: "Balance", Kind: domain.CellDecimal},
		},
	}
	for i := range rows {
		row := &rows[i]
		report.Rows = append(report.Rows, []domain.ReportCell{
			domain.DateCell(row.EntryDate),
			domain.IntegerCell(row.SequenceNo),
			domain.TextCell(row.EntryID),
			domain.TextCell(row.Description),
			domain.DecimalCell(row.Debit),
			domain.DecimalCell(row.Credit),
			domain.DecimalCell(row.Balance),
		})
	}

	s.LogInfo(ctx, "Account activity report generated successfully",
		slog.String("account_id", accountID),
		slog.Int("row_count", len(report.Rows)))
	return report, nil
}

// PeriodSummary generates per-period posted entry counts and totals.
func (s *reportingService) PeriodSummary(ctx context.Context) (*domain.ReportData, error) {
	rows, err := s.reportingRepo.GetPeriodSummaries(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve period summary data")
		return nil, fmt.Errorf("failed to retrieve period summary data: %w", err)
	}

	report := &domain.ReportData{
		Title:       "Period Summary",
		GeneratedAt: time.Now().UTC(),
		Columns: []domain.ReportColumn{
			{Key: "period_name", Label: "Period", Kind: domain.CellText},
			{Key: "status", Label: "Status", Kind: domain.CellText},
			{Key: "entry_count", Label: "Posted Entries", Kind: domain.CellInteger},
			{Key: "total_debit", Label: "Total Debit", Kind: domain.CellDecimal},
			{Key: "total_credit", Label: "Total Credit", Kind: domain.CellDecimal},
		},
	}
	for i := range rows {
		row := &rows[i]
		report.Rows = append(report.Rows, []domain.ReportCell{
			domain.TextCell(row.PeriodName),
			domain.TextCell(string(row.Status)),
			domain.IntegerCell(row.EntryCount),
			domain.DecimalCell(row.TotalDebit),
			domain.DecimalCell(row.TotalCredit),
		})
	}
	return report, nil
}
