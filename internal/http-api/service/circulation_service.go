package service

import (
	"context"
	"log/slog"
	"time"

	"libraryhub/internal/config"
	"libraryhub/internal/http-api/models"
	"libraryhub/internal/http-api/repository"

	"github.com/shopspring/decimal"
)

// CirculationConfig holds the loan rules.
type CirculationConfig struct {
	LoanPeriod    time.Duration
	DailyFineRate decimal.Decimal
	StoreTimeout  time.Duration
	Now           func() time.Time
}

func CirculationConfigFrom(cfg *config.Config) CirculationConfig {
	return CirculationConfig{
		LoanPeriod:    cfg.LoanPeriod,
		DailyFineRate: cfg.DailyFineRate,
		StoreTimeout:  cfg.StoreTimeout,
	}
}

// ReturnResult is the outcome of a successful return.
type ReturnResult struct {
	RecordID   int64
	BookID     int64
	ReturnDate time.Time
	FineAmount decimal.Decimal
}

// CirculationService moves books between available and borrowed and keeps
// the ledger in step. Each mutation is a single transaction.
type CirculationService interface {
	Borrow(ctx context.Context, userID, bookID int64) (*models.BorrowingRecord, error)
	Return(ctx context.Context, userID, recordID int64) (*ReturnResult, error)
	Reserve(ctx context.Context, userID, bookID int64) (*models.Reservation, error)
	CancelReservation(ctx context.Context, userID, reservationID int64) error
	ListBorrowed(ctx context.Context, userID int64) ([]models.BorrowingRecord, error)
	ListReservations(ctx context.Context, userID int64) ([]models.Reservation, error)
}

type circulationService struct {
	ledger repository.CirculationRepository
	cache  CatalogCache
	cfg    CirculationConfig
	logger *slog.Logger
}

func NewCirculationService(
	ledger repository.CirculationRepository,
	cache CatalogCache,
	cfg CirculationConfig,
	logger *slog.Logger,
) CirculationService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cache == nil {
		cache = noCache{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &circulationService{ledger: ledger, cache: cache, cfg: cfg, logger: logger}
}

func (s *circulationService) now() time.Time {
	// postgres keeps microseconds
	return s.cfg.Now().UTC().Truncate(time.Microsecond)
}

func (s *circulationService) Borrow(ctx context.Context, userID, bookID int64) (*models.BorrowingRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	var rec *models.BorrowingRecord
	err := s.ledger.WithinTx(ctx, func(tx repository.LedgerTx) error {
		book, err := tx.LockBook(bookID)
		if err != nil {
			return translate("borrow", err, ErrBookNotFound, nil)
		}
		if book.AvailabilityStatus != models.StatusAvailable {
			return ErrBookUnavailable
		}
		if err := tx.SetBookStatus(bookID, models.StatusAvailable, models.StatusBorrowed); err != nil {
			return translate("borrow", err, ErrBookNotFound, ErrBookUnavailable)
		}

		now := s.now()
		rec = &models.BorrowingRecord{
			UserID:       userID,
			BookID:       bookID,
			BorrowedDate: now,
			DueDate:      now.Add(s.cfg.LoanPeriod),
			FineAmount:   decimal.Zero,
			Status:       models.LoanActive,
		}
		if err := tx.CreateRecord(rec); err != nil {
			return translate("borrow", err, nil, ErrBookUnavailable)
		}
		return nil
	})
	if err != nil {
		s.logger.Debug("borrow_rejected", "user_id", userID, "book_id", bookID, "error", err)
		return nil, translate("borrow", err, nil, ErrBookUnavailable)
	}

	s.invalidate(ctx)
	s.logger.Info("book_borrowed",
		"record_id", rec.ID,
		"user_id", userID,
		"book_id", bookID,
		"due_date", rec.DueDate,
	)
	return rec, nil
}

// Return closes the caller's active loan, computes its fine and frees the book.
// A fine ledger entry that cannot be written is logged and does not fail the return.
func (s *circulationService) Return(ctx context.Context, userID, recordID int64) (*ReturnResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	var result *ReturnResult
	err := s.ledger.WithinTx(ctx, func(tx repository.LedgerTx) error {
		rec, err := tx.LockActiveRecord(recordID, userID)
		if err != nil {
			return translate("return", err, ErrLoanNotFound, nil)
		}

		now := s.now()
		fine := FineFor(rec.DueDate, now, s.cfg.DailyFineRate)

		if err := tx.CloseRecord(rec.ID, now, fine); err != nil {
			return translate("return", err, ErrLoanNotFound, ErrLoanNotFound)
		}
		if err := tx.SetBookStatus(rec.BookID, models.StatusBorrowed, models.StatusAvailable); err != nil {
			return translate("return", err, nil, nil)
		}

		if fine.IsPositive() {
			entry := &models.Fine{
				UserID:            rec.UserID,
				BorrowingRecordID: rec.ID,
				Amount:            fine,
				IssueDate:         now,
				Status:            models.FineUnpaid,
			}
			if err := tx.CreateFine(entry); err != nil {
				s.logger.Error("fine_entry_failed",
					"record_id", rec.ID,
					"user_id", rec.UserID,
					"amount", fine.StringFixed(2),
					"error", err,
				)
			}
		}

		result = &ReturnResult{
			RecordID:   rec.ID,
			BookID:     rec.BookID,
			ReturnDate: now,
			FineAmount: fine,
		}
		return nil
	})
	if err != nil {
		return nil, translate("return", err, ErrLoanNotFound, nil)
	}

	s.invalidate(ctx)
	s.logger.Info("book_returned",
		"record_id", result.RecordID,
		"user_id", userID,
		"book_id", result.BookID,
		"fine", result.FineAmount.StringFixed(2),
	)
	return result, nil
}

// Reserve queues the caller for a book that is currently borrowed.
func (s *circulationService) Reserve(ctx context.Context, userID, bookID int64) (*models.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	var res *models.Reservation
	err := s.ledger.WithinTx(ctx, func(tx repository.LedgerTx) error {
		book, err := tx.LockBook(bookID)
		if err != nil {
			return translate("reserve", err, ErrBookNotFound, nil)
		}
		if book.AvailabilityStatus != models.StatusBorrowed {
			return ErrBookNotBorrowed
		}

		pending, err := tx.HasPendingReservation(userID, bookID)
		if err != nil {
			return translate("reserve", err, nil, nil)
		}
		if pending {
			return ErrAlreadyReserved
		}

		res = &models.Reservation{
			UserID:          userID,
			BookID:          bookID,
			ReservationDate: s.now(),
			Status:          models.ReservationPending,
		}
		if err := tx.CreateReservation(res); err != nil {
			// lost the race against a concurrent reserve by the same user
			return translate("reserve", err, nil, ErrAlreadyReserved)
		}
		return nil
	})
	if err != nil {
		return nil, translate("reserve", err, nil, ErrAlreadyReserved)
	}

	s.logger.Info("book_reserved", "reservation_id", res.ID, "user_id", userID, "book_id", bookID)
	return res, nil
}

func (s *circulationService) CancelReservation(ctx context.Context, userID, reservationID int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	err := s.ledger.WithinTx(ctx, func(tx repository.LedgerTx) error {
		res, err := tx.LockPendingReservation(reservationID, userID)
		if err != nil {
			return translate("cancel reservation", err, ErrReservationNotFound, nil)
		}
		if err := tx.SetReservationStatus(res.ID, models.ReservationPending, models.ReservationCancelled); err != nil {
			return translate("cancel reservation", err, ErrReservationNotFound, ErrReservationNotFound)
		}
		return nil
	})
	if err != nil {
		return translate("cancel reservation", err, ErrReservationNotFound, nil)
	}

	s.logger.Info("reservation_cancelled", "reservation_id", reservationID, "user_id", userID)
	return nil
}

func (s *circulationService) ListBorrowed(ctx context.Context, userID int64) ([]models.BorrowingRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	records, err := s.ledger.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, translate("list borrowed books", err, nil, nil)
	}
	return records, nil
}

func (s *circulationService) ListReservations(ctx context.Context, userID int64) ([]models.Reservation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	reservations, err := s.ledger.ListReservationsByUser(ctx, userID)
	if err != nil {
		return nil, translate("list reservations", err, nil, nil)
	}
	return reservations, nil
}

// Availability changed, so cached searches filtered by status are stale.
func (s *circulationService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("catalog_cache_invalidate_failed", "error", err)
	}
}
