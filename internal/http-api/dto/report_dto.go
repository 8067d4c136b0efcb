package dto

import (
	"fmt"
	"time"

	"libraryhub/internal/http-api/repository"
	"libraryhub/internal/http-api/service"
)

const dateLayout = "2006-01-02"

// LoanReportResponse is one row of the loan reports
type LoanReportResponse struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"user_id"`
	BookID       int64      `json:"book_id"`
	BorrowedDate time.Time  `json:"borrowed_date"`
	DueDate      time.Time  `json:"due_date"`
	ReturnDate   *time.Time `json:"return_date"`
	FineAmount   float64    `json:"fine_amount"`
	Status       string     `json:"status"`
	UserName     string     `json:"user_name"`
	Email        string     `json:"email,omitempty"`
	Title        string     `json:"title"`
	Author       string     `json:"author"`
	AccruedFine  *float64   `json:"accruedFine,omitempty"`
}

func FromLoanRow(r repository.LoanReportRow) LoanReportResponse {
	return LoanReportResponse{
		ID:           r.ID,
		UserID:       r.UserID,
		BookID:       r.BookID,
		BorrowedDate: r.BorrowedDate,
		DueDate:      r.DueDate,
		ReturnDate:   r.ReturnDate,
		FineAmount:   r.FineAmount.InexactFloat64(),
		Status:       string(r.Status),
		UserName:     r.UserName,
		Email:        r.Email,
		Title:        r.Title,
		Author:       r.Author,
	}
}

func FromOverdueLoan(l service.OverdueLoan) LoanReportResponse {
	resp := FromLoanRow(l.LoanReportRow)
	fine := l.AccruedFine.InexactFloat64()
	resp.AccruedFine = &fine
	return resp
}

func FromLoanRows(rows []repository.LoanReportRow) []LoanReportResponse {
	out := make([]LoanReportResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromLoanRow(r))
	}
	return out
}

// HistoryQuery is the query string of GET /api/reports/borrowing-history
type HistoryQuery struct {
	UserID    *int64 `form:"userId"`
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
}

// ToFilter parses the date bounds. Dates are YYYY-MM-DD or RFC 3339; a bare
// end date covers that whole day.
func (q HistoryQuery) ToFilter() (repository.HistoryFilter, error) {
	var f repository.HistoryFilter
	f.UserID = q.UserID

	if q.StartDate != "" {
		start, _, err := parseDate(q.StartDate)
		if err != nil {
			return f, fmt.Errorf("invalid startDate: %w", err)
		}
		f.Start = &start
	}
	if q.EndDate != "" {
		end, dateOnly, err := parseDate(q.EndDate)
		if err != nil {
			return f, fmt.Errorf("invalid endDate: %w", err)
		}
		if dateOnly {
			end = end.Add(24*time.Hour - time.Nanosecond)
		}
		f.End = &end
	}
	return f, nil
}

func parseDate(s string) (time.Time, bool, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	return t, false, err
}

type ActivityResponse struct {
	Date      time.Time `json:"date"`
	UserName  string    `json:"userName"`
	BookTitle string    `json:"bookTitle"`
	Type      string    `json:"type"`
}

// StatsResponse is the admin dashboard
type StatsResponse struct {
	TotalBooks     int64              `json:"totalBooks"`
	TotalUsers     int64              `json:"totalUsers"`
	ActiveLoans    int64              `json:"activeLoans"`
	OverdueBooks   int64              `json:"overdueBooks"`
	AvailableBooks int64              `json:"availableBooks"`
	BorrowedBooks  int64              `json:"borrowedBooks"`
	Librarians     int64              `json:"librarians"`
	Students       int64              `json:"students"`
	RecentActivity []ActivityResponse `json:"recentActivity"`
}

func FromStats(s *service.Stats) StatsResponse {
	activity := make([]ActivityResponse, 0, len(s.RecentActivity))
	for _, a := range s.RecentActivity {
		activity = append(activity, ActivityResponse{
			Date:      a.Date,
			UserName:  a.UserName,
			BookTitle: a.BookTitle,
			Type:      a.Type,
		})
	}
	return StatsResponse{
		TotalBooks:     s.TotalBooks,
		TotalUsers:     s.TotalUsers,
		ActiveLoans:    s.ActiveLoans,
		OverdueBooks:   s.OverdueBooks,
		AvailableBooks: s.AvailableBooks,
		BorrowedBooks:  s.BorrowedBooks,
		Librarians:     s.Librarians,
		Students:       s.Students,
		RecentActivity: activity,
	}
}
