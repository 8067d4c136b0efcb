package service

import (
	"context"
	"time"

	"libraryhub/internal/http-api/repository"

	"github.com/shopspring/decimal"
)

const recentActivityLimit = 5

// Activity types in the admin feed.
const (
	ActivityBorrow = "borrow"
	ActivityReturn = "return"
)

// OverdueLoan is an active loan past due with the fine it has accrued so far.
type OverdueLoan struct {
	repository.LoanReportRow
	AccruedFine decimal.Decimal
}

type Activity struct {
	Date      time.Time
	UserName  string
	BookTitle string
	Type      string
}

// Stats is the admin dashboard.
type Stats struct {
	repository.Counters
	RecentActivity []Activity
}

type ReportService interface {
	ActiveLoans(ctx context.Context) ([]repository.LoanReportRow, error)
	Overdue(ctx context.Context) ([]OverdueLoan, error)
	BorrowingHistory(ctx context.Context, filter repository.HistoryFilter) ([]repository.LoanReportRow, error)
	Stats(ctx context.Context) (*Stats, error)
}

type reportService struct {
	reports repository.ReportRepository
	cfg     CirculationConfig
}

// NewReportService shares CirculationConfig with the engine so the overdue
// report accrues fines exactly as a return would.
func NewReportService(reports repository.ReportRepository, cfg CirculationConfig) ReportService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &reportService{reports: reports, cfg: cfg}
}

func (s *reportService) ActiveLoans(ctx context.Context) ([]repository.LoanReportRow, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	rows, err := s.reports.ActiveLoans(ctx)
	if err != nil {
		return nil, translate("active loans report", err, nil, nil)
	}
	return rows, nil
}

func (s *reportService) Overdue(ctx context.Context) ([]OverdueLoan, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	now := s.cfg.Now()
	rows, err := s.reports.Overdue(ctx, now)
	if err != nil {
		return nil, translate("overdue report", err, nil, nil)
	}

	loans := make([]OverdueLoan, 0, len(rows))
	for _, row := range rows {
		loans = append(loans, OverdueLoan{
			LoanReportRow: row,
			AccruedFine:   FineFor(row.DueDate, now, s.cfg.DailyFineRate),
		})
	}
	return loans, nil
}

func (s *reportService) BorrowingHistory(ctx context.Context, filter repository.HistoryFilter) ([]repository.LoanReportRow, error) {
	if filter.Start != nil && filter.End != nil && filter.Start.After(*filter.End) {
		return nil, Validationf("startDate must not be after endDate")
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	rows, err := s.reports.BorrowingHistory(ctx, filter)
	if err != nil {
		return nil, translate("borrowing history report", err, nil, nil)
	}
	return rows, nil
}

func (s *reportService) Stats(ctx context.Context) (*Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	counters, err := s.reports.Counters(ctx, s.cfg.Now())
	if err != nil {
		return nil, translate("admin stats", err, nil, nil)
	}
	rows, err := s.reports.RecentActivity(ctx, recentActivityLimit)
	if err != nil {
		return nil, translate("recent activity", err, nil, nil)
	}

	activity := make([]Activity, 0, len(rows))
	for _, row := range rows {
		kind := ActivityBorrow
		if row.ReturnDate != nil {
			kind = ActivityReturn
		}
		activity = append(activity, Activity{
			Date:      row.Date,
			UserName:  row.UserName,
			BookTitle: row.BookTitle,
			Type:      kind,
		})
	}
	return &Stats{Counters: *counters, RecentActivity: activity}, nil
}
