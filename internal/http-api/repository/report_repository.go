package repository

import (
	"context"
	"database/sql"
	"time"

	"libraryhub/internal/http-api/models"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// LoanReportRow is a borrowing record joined with its borrower and book.
type LoanReportRow struct {
	ID           int64             `db:"id"`
	UserID       int64             `db:"user_id"`
	BookID       int64             `db:"book_id"`
	BorrowedDate time.Time         `db:"borrowed_date"`
	DueDate      time.Time         `db:"due_date"`
	ReturnDate   *time.Time        `db:"return_date"`
	FineAmount   decimal.Decimal   `db:"fine_amount"`
	Status       models.LoanStatus `db:"status"`
	UserName     string            `db:"user_name"`
	Email        string            `db:"email"`
	Title        string            `db:"title"`
	Author       string            `db:"author"`
}

// HistoryFilter narrows the borrowing history report; nil fields are ignored.
type HistoryFilter struct {
	UserID *int64
	Start  *time.Time
	End    *time.Time
}

// Counters are the admin dashboard aggregates.
type Counters struct {
	TotalBooks     int64
	TotalUsers     int64
	ActiveLoans    int64
	OverdueBooks   int64
	AvailableBooks int64
	BorrowedBooks  int64
	Librarians     int64
	Students       int64
}

// ActivityRow is one line of the recent activity feed.
type ActivityRow struct {
	Date       time.Time  `db:"date"`
	UserName   string     `db:"user_name"`
	BookTitle  string     `db:"book_title"`
	ReturnDate *time.Time `db:"return_date"`
}

// ReportRepository serves the read-only reporting queries.
type ReportRepository interface {
	ActiveLoans(ctx context.Context) ([]LoanReportRow, error)
	Overdue(ctx context.Context, asOf time.Time) ([]LoanReportRow, error)
	BorrowingHistory(ctx context.Context, filter HistoryFilter) ([]LoanReportRow, error)
	Counters(ctx context.Context, asOf time.Time) (*Counters, error)
	RecentActivity(ctx context.Context, limit uint) ([]ActivityRow, error)
}

type reportRepository struct {
	db      *sqlx.DB
	dialect goqu.DialectWrapper
}

// NewReportRepository builds the reporting side on the shared sql pool.
func NewReportRepository(db *sqlx.DB) ReportRepository {
	return &reportRepository{db: db, dialect: goqu.Dialect("postgres")}
}

func (r *reportRepository) loans() *goqu.SelectDataset {
	return r.dialect.
		From(goqu.T("borrowing_records").As("br")).
		InnerJoin(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("br.user_id")))).
		InnerJoin(goqu.T("books").As("b"), goqu.On(goqu.I("b.id").Eq(goqu.I("br.book_id")))).
		Select(
			goqu.I("br.id"), goqu.I("br.user_id"), goqu.I("br.book_id"),
			goqu.I("br.borrowed_date"), goqu.I("br.due_date"), goqu.I("br.return_date"),
			goqu.I("br.fine_amount"), goqu.I("br.status"),
			goqu.I("u.name").As("user_name"), goqu.I("u.email"),
			goqu.I("b.title"), goqu.I("b.author"),
		)
}

func (r *reportRepository) selectLoans(ctx context.Context, op string, ds *goqu.SelectDataset) ([]LoanReportRow, error) {
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, classify(op, err)
	}
	rows := make([]LoanReportRow, 0)
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, classify(op, err)
	}
	return rows, nil
}

func (r *reportRepository) ActiveLoans(ctx context.Context) ([]LoanReportRow, error) {
	return r.selectLoans(ctx, "active loans report", r.activeQuery())
}

func (r *reportRepository) Overdue(ctx context.Context, asOf time.Time) ([]LoanReportRow, error) {
	return r.selectLoans(ctx, "overdue report", r.overdueQuery(asOf))
}

func (r *reportRepository) BorrowingHistory(ctx context.Context, filter HistoryFilter) ([]LoanReportRow, error) {
	return r.selectLoans(ctx, "borrowing history report", r.historyQuery(filter))
}

func (r *reportRepository) activeQuery() *goqu.SelectDataset {
	return r.loans().
		Where(goqu.I("br.status").Eq(string(models.LoanActive))).
		Order(goqu.I("br.borrowed_date").Desc())
}

func (r *reportRepository) overdueQuery(asOf time.Time) *goqu.SelectDataset {
	return r.loans().
		Where(
			goqu.I("br.status").Eq(string(models.LoanActive)),
			goqu.I("br.due_date").Lt(asOf),
		).
		Order(goqu.I("br.due_date").Asc())
}

func (r *reportRepository) historyQuery(filter HistoryFilter) *goqu.SelectDataset {
	conds := make([]exp.Expression, 0, 3)
	if filter.UserID != nil {
		conds = append(conds, goqu.I("br.user_id").Eq(*filter.UserID))
	}
	if filter.Start != nil {
		conds = append(conds, goqu.I("br.borrowed_date").Gte(*filter.Start))
	}
	if filter.End != nil {
		conds = append(conds, goqu.I("br.borrowed_date").Lte(*filter.End))
	}

	ds := r.loans().Order(goqu.I("br.borrowed_date").Desc())
	if len(conds) > 0 {
		ds = ds.Where(conds...)
	}
	return ds
}

// Counters reads every aggregate from one repeatable-read snapshot.
func (r *reportRepository) Counters(ctx context.Context, asOf time.Time) (*Counters, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: true, Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return nil, classify("begin stats snapshot", err)
	}
	defer tx.Rollback()

	books := func(conds ...exp.Expression) *goqu.SelectDataset {
		return r.dialect.From("books").
			Select(goqu.COUNT(goqu.Star())).
			Where(append(conds, goqu.C("deleted_at").IsNull())...)
	}
	users := func(conds ...exp.Expression) *goqu.SelectDataset {
		ds := r.dialect.From("users").Select(goqu.COUNT(goqu.Star()))
		if len(conds) > 0 {
			ds = ds.Where(conds...)
		}
		return ds
	}
	loans := func(conds ...exp.Expression) *goqu.SelectDataset {
		return r.dialect.From("borrowing_records").
			Select(goqu.COUNT(goqu.Star())).
			Where(conds...)
	}

	c := &Counters{}
	queries := []struct {
		target *int64
		ds     *goqu.SelectDataset
	}{
		{&c.TotalBooks, books()},
		{&c.TotalUsers, users()},
		{&c.ActiveLoans, loans(goqu.C("status").Eq(string(models.LoanActive)))},
		{&c.OverdueBooks, loans(goqu.C("status").Eq(string(models.LoanActive)), goqu.C("due_date").Lt(asOf))},
		{&c.AvailableBooks, books(goqu.C("availability_status").Eq(string(models.StatusAvailable)))},
		{&c.BorrowedBooks, books(goqu.C("availability_status").Eq(string(models.StatusBorrowed)))},
		{&c.Librarians, users(goqu.C("role").Eq(string(models.RoleLibrarian)))},
		{&c.Students, users(goqu.C("role").Eq(string(models.RoleStudent)))},
	}
	for _, q := range queries {
		query, args, err := q.ds.Prepared(true).ToSQL()
		if err != nil {
			return nil, classify("build stats query", err)
		}
		if err := sqlx.GetContext(ctx, tx, q.target, query, args...); err != nil {
			return nil, classify("stats query", err)
		}
	}
	return c, nil
}

func (r *reportRepository) RecentActivity(ctx context.Context, limit uint) ([]ActivityRow, error) {
	query, args, err := r.activityQuery(limit).Prepared(true).ToSQL()
	if err != nil {
		return nil, classify("build activity query", err)
	}
	rows := make([]ActivityRow, 0, limit)
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, classify("recent activity", err)
	}
	return rows, nil
}

func (r *reportRepository) activityQuery(limit uint) *goqu.SelectDataset {
	return r.dialect.
		From(goqu.T("borrowing_records").As("br")).
		InnerJoin(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("br.user_id")))).
		InnerJoin(goqu.T("books").As("b"), goqu.On(goqu.I("b.id").Eq(goqu.I("br.book_id")))).
		Select(
			goqu.I("br.borrowed_date").As("date"),
			goqu.I("u.name").As("user_name"),
			goqu.I("b.title").As("book_title"),
			goqu.I("br.return_date"),
		).
		Order(goqu.I("br.borrowed_date").Desc()).
		Limit(limit)
}
