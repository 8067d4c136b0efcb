package repository

import (
	"context"
	"errors"
	"time"

	"libraryhub/internal/http-api/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const fineSavepoint = "fine_entry"

// LedgerTx is the view of catalog + ledger tables inside one transaction.
// Lock* methods take row locks that are held until the transaction ends.
type LedgerTx interface {
	LockBook(bookID int64) (*models.Book, error)
	// SetBookStatus flips the status only if it still equals from.
	SetBookStatus(bookID int64, from, to models.AvailabilityStatus) error

	CreateRecord(rec *models.BorrowingRecord) error
	LockActiveRecord(recordID, userID int64) (*models.BorrowingRecord, error)
	CloseRecord(recordID int64, returnedAt time.Time, fine decimal.Decimal) error

	HasPendingReservation(userID, bookID int64) (bool, error)
	CreateReservation(res *models.Reservation) error
	LockPendingReservation(reservationID, userID int64) (*models.Reservation, error)
	SetReservationStatus(reservationID int64, from, to models.ReservationStatus) error

	// CreateFine runs inside a savepoint: on failure the fine insert alone is
	// undone and the surrounding transaction stays usable.
	CreateFine(fine *models.Fine) error
}

// CirculationRepository is the circulation ledger.
type CirculationRepository interface {
	WithinTx(ctx context.Context, fn func(tx LedgerTx) error) error
	ListActiveByUser(ctx context.Context, userID int64) ([]models.BorrowingRecord, error)
	ListReservationsByUser(ctx context.Context, userID int64) ([]models.Reservation, error)
}

type circulationRepository struct {
	db *gorm.DB
}

func NewCirculationRepository(db *gorm.DB) CirculationRepository {
	return &circulationRepository{db: db}
}

// WithinTx runs fn in a single transaction: commit when fn returns nil, rollback otherwise.
func (r *circulationRepository) WithinTx(ctx context.Context, fn func(tx LedgerTx) error) error {
	var fnErr error
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fnErr = fn(&ledgerTx{tx: tx})
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	return classify("circulation transaction", err)
}

func (r *circulationRepository) ListActiveByUser(ctx context.Context, userID int64) ([]models.BorrowingRecord, error) {
	records := make([]models.BorrowingRecord, 0)
	if err := r.db.WithContext(ctx).
		Preload("Book", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Where("user_id = ? AND status = ?", userID, models.LoanActive).
		Order("due_date ASC").
		Find(&records).Error; err != nil {
		return nil, classify("list active loans", err)
	}
	return records, nil
}

func (r *circulationRepository) ListReservationsByUser(ctx context.Context, userID int64) ([]models.Reservation, error) {
	reservations := make([]models.Reservation, 0)
	if err := r.db.WithContext(ctx).
		Preload("Book", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Where("user_id = ?", userID).
		Order("reservation_date DESC").
		Find(&reservations).Error; err != nil {
		return nil, classify("list reservations", err)
	}
	return reservations, nil
}

type ledgerTx struct {
	tx *gorm.DB
}

func (t *ledgerTx) forUpdate() *gorm.DB {
	return t.tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (t *ledgerTx) LockBook(bookID int64) (*models.Book, error) {
	var book models.Book
	if err := t.forUpdate().First(&book, bookID).Error; err != nil {
		return nil, classify("lock book", err)
	}
	return &book, nil
}

func (t *ledgerTx) SetBookStatus(bookID int64, from, to models.AvailabilityStatus) error {
	res := t.tx.Model(&models.Book{}).
		Where("id = ? AND availability_status = ?", bookID, from).
		Update("availability_status", to)
	if res.Error != nil {
		return classify("set book status", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

func (t *ledgerTx) CreateRecord(rec *models.BorrowingRecord) error {
	return classify("create borrowing record", t.tx.Create(rec).Error)
}

func (t *ledgerTx) LockActiveRecord(recordID, userID int64) (*models.BorrowingRecord, error) {
	var rec models.BorrowingRecord
	if err := t.forUpdate().
		Where("id = ? AND user_id = ? AND status = ?", recordID, userID, models.LoanActive).
		First(&rec).Error; err != nil {
		return nil, classify("lock borrowing record", err)
	}
	return &rec, nil
}

func (t *ledgerTx) CloseRecord(recordID int64, returnedAt time.Time, fine decimal.Decimal) error {
	res := t.tx.Model(&models.BorrowingRecord{}).
		Where("id = ? AND status = ?", recordID, models.LoanActive).
		Updates(map[string]any{
			"return_date": returnedAt,
			"fine_amount": fine,
			"status":      models.LoanReturned,
		})
	if res.Error != nil {
		return classify("close borrowing record", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

func (t *ledgerTx) HasPendingReservation(userID, bookID int64) (bool, error) {
	var count int64
	if err := t.tx.Model(&models.Reservation{}).
		Where("user_id = ? AND book_id = ? AND status = ?", userID, bookID, models.ReservationPending).
		Count(&count).Error; err != nil {
		return false, classify("count pending reservations", err)
	}
	return count > 0, nil
}

func (t *ledgerTx) CreateReservation(res *models.Reservation) error {
	return classify("create reservation", t.tx.Create(res).Error)
}

func (t *ledgerTx) LockPendingReservation(reservationID, userID int64) (*models.Reservation, error) {
	var res models.Reservation
	if err := t.forUpdate().
		Where("id = ? AND user_id = ? AND status = ?", reservationID, userID, models.ReservationPending).
		First(&res).Error; err != nil {
		return nil, classify("lock reservation", err)
	}
	return &res, nil
}

func (t *ledgerTx) SetReservationStatus(reservationID int64, from, to models.ReservationStatus) error {
	res := t.tx.Model(&models.Reservation{}).
		Where("id = ? AND status = ?", reservationID, from).
		Update("status", to)
	if res.Error != nil {
		return classify("set reservation status", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

func (t *ledgerTx) CreateFine(fine *models.Fine) error {
	if err := t.tx.SavePoint(fineSavepoint).Error; err != nil {
		return classify("fine savepoint", err)
	}
	if err := t.tx.Create(fine).Error; err != nil {
		if rbErr := t.tx.RollbackTo(fineSavepoint).Error; rbErr != nil {
			return classify("rollback fine savepoint", errors.Join(err, rbErr))
		}
		return classify("create fine", err)
	}
	return nil
}
