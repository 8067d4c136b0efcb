package repository

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"libraryhub/database"
	"libraryhub/internal/config"
	"libraryhub/internal/http-api/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// integration tests run only when LIBRARYHUB_TEST_DATABASE_URL points at a
// disposable postgres database; every table is truncated first
func testStore(t *testing.T) *database.Store {
	t.Helper()
	url := os.Getenv("LIBRARYHUB_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("LIBRARYHUB_TEST_DATABASE_URL not set")
	}

	cfg := &config.Config{
		GoEnv:             "test",
		DatabaseURL:       url,
		DBMaxOpenConns:    10,
		DBMaxIdleConns:    2,
		DBConnMaxLifetime: time.Minute,
		StoreTimeout:      5 * time.Second,
	}
	logger := slog.New(slog.DiscardHandler)
	ctx := context.Background()

	store, err := database.Connect(ctx, cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, database.Migrate(ctx, store.Gorm, logger))
	require.NoError(t, store.Gorm.Exec(
		"TRUNCATE fines, reservations, borrowing_records, books, users RESTART IDENTITY CASCADE").Error)
	return store
}

func seedUserAndBook(t *testing.T, store *database.Store) (*models.User, *models.Book) {
	t.Helper()
	ctx := context.Background()

	user := &models.User{Name: "Ada", Email: "ada@library.test", Role: models.RoleStudent, PasswordHash: "x"}
	require.NoError(t, NewUserRepository(store.Gorm).Create(ctx, user))

	book := &models.Book{Title: "Dune", Author: "Frank Herbert"}
	require.NoError(t, NewBookRepository(store.Gorm).Create(ctx, book))
	return user, book
}

func borrowInTx(ctx context.Context, ledger CirculationRepository, userID, bookID int64) error {
	return ledger.WithinTx(ctx, func(tx LedgerTx) error {
		book, err := tx.LockBook(bookID)
		if err != nil {
			return err
		}
		if book.AvailabilityStatus != models.StatusAvailable {
			return ErrStaleState
		}
		if err := tx.SetBookStatus(bookID, models.StatusAvailable, models.StatusBorrowed); err != nil {
			return err
		}
		now := time.Now().UTC()
		return tx.CreateRecord(&models.BorrowingRecord{
			UserID:       userID,
			BookID:       bookID,
			BorrowedDate: now,
			DueDate:      now.Add(14 * 24 * time.Hour),
			Status:       models.LoanActive,
		})
	})
}

func TestLedger_ConcurrentBorrowSingleWinner(t *testing.T) {
	store := testStore(t)
	user, book := seedUserAndBook(t, store)
	ledger := NewCirculationRepository(store.Gorm)

	const workers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := borrowInTx(context.Background(), ledger, user.ID, book.ID); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)

	active, err := ledger.ListActiveByUser(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.NotNil(t, active[0].Book)
	assert.Equal(t, models.StatusBorrowed, active[0].Book.AvailabilityStatus)
}

func TestLedger_ActiveLoanUniqueIndex(t *testing.T) {
	store := testStore(t)
	user, book := seedUserAndBook(t, store)
	ledger := NewCirculationRepository(store.Gorm)
	ctx := context.Background()

	require.NoError(t, borrowInTx(ctx, ledger, user.ID, book.ID))

	err := ledger.WithinTx(ctx, func(tx LedgerTx) error {
		now := time.Now().UTC()
		return tx.CreateRecord(&models.BorrowingRecord{
			UserID: user.ID, BookID: book.ID, BorrowedDate: now, DueDate: now, Status: models.LoanActive,
		})
	})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestLedger_FineFailureKeepsReturn(t *testing.T) {
	store := testStore(t)
	user, book := seedUserAndBook(t, store)
	ledger := NewCirculationRepository(store.Gorm)
	ctx := context.Background()

	require.NoError(t, borrowInTx(ctx, ledger, user.ID, book.ID))
	active, err := ledger.ListActiveByUser(ctx, user.ID)
	require.NoError(t, err)
	recordID := active[0].ID

	var fineErr error
	err = ledger.WithinTx(ctx, func(tx LedgerTx) error {
		rec, err := tx.LockActiveRecord(recordID, user.ID)
		if err != nil {
			return err
		}
		fine := decimal.RequireFromString("2.00")
		if err := tx.CloseRecord(rec.ID, time.Now().UTC(), fine); err != nil {
			return err
		}
		if err := tx.SetBookStatus(book.ID, models.StatusBorrowed, models.StatusAvailable); err != nil {
			return err
		}
		// unknown user id violates the fines foreign key
		fineErr = tx.CreateFine(&models.Fine{
			UserID: user.ID + 1000, BorrowingRecordID: rec.ID, Amount: fine,
			IssueDate: time.Now().UTC(), Status: models.FineUnpaid,
		})
		return nil
	})
	require.NoError(t, err)
	assert.Error(t, fineErr)

	got, err := NewBookRepository(store.Gorm).GetByID(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAvailable, got.AvailabilityStatus)

	var rec models.BorrowingRecord
	require.NoError(t, store.Gorm.First(&rec, recordID).Error)
	assert.Equal(t, models.LoanReturned, rec.Status)
	assert.Equal(t, "2.00", rec.FineAmount.StringFixed(2))
}

func TestLedger_StaleStatusUpdate(t *testing.T) {
	store := testStore(t)
	_, book := seedUserAndBook(t, store)
	ledger := NewCirculationRepository(store.Gorm)

	err := ledger.WithinTx(context.Background(), func(tx LedgerTx) error {
		return tx.SetBookStatus(book.ID, models.StatusBorrowed, models.StatusAvailable)
	})
	assert.True(t, errors.Is(err, ErrStaleState))
}

func TestBooks_SearchAndSoftDelete(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	books := NewBookRepository(store.Gorm)

	isbn := "9780141439518"
	fiction := "Fiction"
	require.NoError(t, books.Create(ctx, &models.Book{Title: "Pride and Prejudice", Author: "Jane Austen", ISBN: &isbn, Category: &fiction}))
	require.NoError(t, books.Create(ctx, &models.Book{Title: "Emma", Author: "Jane Austen", Category: &fiction}))
	require.NoError(t, books.Create(ctx, &models.Book{Title: "1984", Author: "George Orwell"}))

	found, err := books.Search(ctx, BookFilter{Search: "AUSTEN"})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Emma", found[0].Title)

	found, err = books.Search(ctx, BookFilter{Search: "43951"})
	require.NoError(t, err)
	require.Len(t, found, 1)

	dup := isbn
	err = books.Create(ctx, &models.Book{Title: "Copy", Author: "Someone", ISBN: &dup})
	assert.ErrorIs(t, err, ErrDuplicate)

	require.NoError(t, books.Delete(ctx, found[0].ID))
	_, err = books.GetByID(ctx, found[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := books.Search(ctx, BookFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestReports_Counters(t *testing.T) {
	store := testStore(t)
	user, book := seedUserAndBook(t, store)
	ledger := NewCirculationRepository(store.Gorm)
	ctx := context.Background()
	require.NoError(t, borrowInTx(ctx, ledger, user.ID, book.ID))

	reports := NewReportRepository(store.X)

	c, err := reports.Counters(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.EqualValues(t, 1, c.TotalBooks)
	assert.EqualValues(t, 1, c.TotalUsers)
	assert.EqualValues(t, 1, c.ActiveLoans)
	assert.EqualValues(t, 0, c.OverdueBooks)
	assert.EqualValues(t, 1, c.BorrowedBooks)
	assert.EqualValues(t, 1, c.Students)

	c, err = reports.Counters(ctx, time.Now().UTC().Add(15*24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, c.OverdueBooks)

	rows, err := reports.ActiveLoans(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Ada", rows[0].UserName)
	assert.Equal(t, "Dune", rows[0].Title)

	activity, err := reports.RecentActivity(ctx, 5)
	require.NoError(t, err)
	require.Len(t, activity, 1)
	assert.Nil(t, activity[0].ReturnDate)
}
