package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"libraryhub/internal/http-api/models"
	"libraryhub/internal/http-api/repository"

	"github.com/shopspring/decimal"
)

// fakeLedger is an in-memory CirculationRepository. WithinTx holds one mutex
// for the whole transaction, which stands in for the row locks, and restores
// a snapshot when fn fails.
type fakeLedger struct {
	mu sync.Mutex

	books        map[int64]models.Book
	records      map[int64]models.BorrowingRecord
	reservations map[int64]models.Reservation
	fines        map[int64]models.Fine
	nextID       int64

	failFine bool // CreateFine always fails
	stall    bool // WithinTx blocks until ctx is done
}

func newFakeLedger(books ...models.Book) *fakeLedger {
	l := &fakeLedger{
		books:        make(map[int64]models.Book),
		records:      make(map[int64]models.BorrowingRecord),
		reservations: make(map[int64]models.Reservation),
		fines:        make(map[int64]models.Fine),
		nextID:       100,
	}
	for _, b := range books {
		if b.AvailabilityStatus == "" {
			b.AvailabilityStatus = models.StatusAvailable
		}
		l.books[b.ID] = b
	}
	return l
}

func (l *fakeLedger) WithinTx(ctx context.Context, fn func(tx repository.LedgerTx) error) error {
	if l.stall {
		<-ctx.Done()
		return fmt.Errorf("begin: %w: %w", repository.ErrUnavailable, ctx.Err())
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin: %w: %w", repository.ErrUnavailable, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	books := maps.Clone(l.books)
	records := maps.Clone(l.records)
	reservations := maps.Clone(l.reservations)
	fines := maps.Clone(l.fines)
	nextID := l.nextID

	if err := fn(&fakeTx{l: l}); err != nil {
		l.books, l.records, l.reservations, l.fines, l.nextID = books, records, reservations, fines, nextID
		return err
	}
	return nil
}

func (l *fakeLedger) ListActiveByUser(ctx context.Context, userID int64) ([]models.BorrowingRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]models.BorrowingRecord, 0)
	for _, r := range l.records {
		if r.UserID == userID && r.Status == models.LoanActive {
			b := l.books[r.BookID]
			r.Book = &b
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b models.BorrowingRecord) int { return a.DueDate.Compare(b.DueDate) })
	return out, nil
}

func (l *fakeLedger) ListReservationsByUser(ctx context.Context, userID int64) ([]models.Reservation, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]models.Reservation, 0)
	for _, r := range l.reservations {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b models.Reservation) int {
		if c := b.ReservationDate.Compare(a.ReservationDate); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out, nil
}

func (l *fakeLedger) book(id int64) models.Book {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.books[id]
}

func (l *fakeLedger) record(id int64) models.BorrowingRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.records[id]
}

func (l *fakeLedger) fineRows() []models.Fine {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Collect(maps.Values(l.fines))
}

// checkActiveLoanInvariant verifies that every book is borrowed exactly when
// it has one active record.
func (l *fakeLedger) checkActiveLoanInvariant() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	active := make(map[int64]int)
	for _, r := range l.records {
		if r.Status == models.LoanActive {
			active[r.BookID]++
		}
	}
	for id, b := range l.books {
		borrowed := b.AvailabilityStatus == models.StatusBorrowed
		if borrowed != (active[id] == 1) || active[id] > 1 {
			return fmt.Errorf("book %d: status %s with %d active records", id, b.AvailabilityStatus, active[id])
		}
	}
	return nil
}

type fakeTx struct {
	l *fakeLedger
}

func (t *fakeTx) id() int64 {
	t.l.nextID++
	return t.l.nextID
}

func notFound(op string) error { return fmt.Errorf("%s: %w", op, repository.ErrNotFound) }

func (t *fakeTx) LockBook(bookID int64) (*models.Book, error) {
	b, ok := t.l.books[bookID]
	if !ok {
		return nil, notFound("lock book")
	}
	return &b, nil
}

func (t *fakeTx) SetBookStatus(bookID int64, from, to models.AvailabilityStatus) error {
	b, ok := t.l.books[bookID]
	if !ok || b.AvailabilityStatus != from {
		return repository.ErrStaleState
	}
	b.AvailabilityStatus = to
	t.l.books[bookID] = b
	return nil
}

func (t *fakeTx) CreateRecord(rec *models.BorrowingRecord) error {
	for _, r := range t.l.records {
		if r.BookID == rec.BookID && r.Status == models.LoanActive {
			return fmt.Errorf("create borrowing record: %w", repository.ErrDuplicate)
		}
	}
	rec.ID = t.id()
	t.l.records[rec.ID] = *rec
	return nil
}

func (t *fakeTx) LockActiveRecord(recordID, userID int64) (*models.BorrowingRecord, error) {
	r, ok := t.l.records[recordID]
	if !ok || r.UserID != userID || r.Status != models.LoanActive {
		return nil, notFound("lock borrowing record")
	}
	return &r, nil
}

func (t *fakeTx) CloseRecord(recordID int64, returnedAt time.Time, fine decimal.Decimal) error {
	r, ok := t.l.records[recordID]
	if !ok || r.Status != models.LoanActive {
		return repository.ErrStaleState
	}
	r.ReturnDate = &returnedAt
	r.FineAmount = fine
	r.Status = models.LoanReturned
	t.l.records[recordID] = r
	return nil
}

func (t *fakeTx) HasPendingReservation(userID, bookID int64) (bool, error) {
	for _, r := range t.l.reservations {
		if r.UserID == userID && r.BookID == bookID && r.Status == models.ReservationPending {
			return true, nil
		}
	}
	return false, nil
}

func (t *fakeTx) CreateReservation(res *models.Reservation) error {
	if pending, _ := t.HasPendingReservation(res.UserID, res.BookID); pending {
		return fmt.Errorf("create reservation: %w", repository.ErrDuplicate)
	}
	res.ID = t.id()
	t.l.reservations[res.ID] = *res
	return nil
}

func (t *fakeTx) LockPendingReservation(reservationID, userID int64) (*models.Reservation, error) {
	r, ok := t.l.reservations[reservationID]
	if !ok || r.UserID != userID || r.Status != models.ReservationPending {
		return nil, notFound("lock reservation")
	}
	return &r, nil
}

func (t *fakeTx) SetReservationStatus(reservationID int64, from, to models.ReservationStatus) error {
	r, ok := t.l.reservations[reservationID]
	if !ok || r.Status != from {
		return repository.ErrStaleState
	}
	r.Status = to
	t.l.reservations[reservationID] = r
	return nil
}

func (t *fakeTx) CreateFine(fine *models.Fine) error {
	if t.l.failFine {
		return errors.New("create fine: insert or update on table \"fines\" violates foreign key constraint")
	}
	fine.ID = t.id()
	t.l.fines[fine.ID] = *fine
	return nil
}

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{now: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// spyCache counts invalidations.
type spyCache struct {
	noCache
	mu          sync.Mutex
	invalidated int
}

func (c *spyCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated++
	return nil
}

func (c *spyCache) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invalidated
}
