package service

import (
	"context"
	"time"

	"libraryhub/internal/http-api/models"
	"libraryhub/internal/http-api/repository"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository mocks repository.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil {
		user.ID = 1
	}
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockRevocationStore mocks RevocationStore
type MockRevocationStore struct {
	mock.Mock
}

func (m *MockRevocationStore) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	return m.Called(ctx, tokenID, expiresAt).Error(0)
}

func (m *MockRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

// MockBookRepository mocks repository.BookRepository
type MockBookRepository struct {
	mock.Mock
}

func (m *MockBookRepository) Search(ctx context.Context, filter repository.BookFilter) ([]models.Book, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Book), args.Error(1)
}

func (m *MockBookRepository) GetByID(ctx context.Context, id int64) (*models.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

func (m *MockBookRepository) Create(ctx context.Context, book *models.Book) error {
	args := m.Called(ctx, book)
	if args.Error(0) == nil {
		book.ID = 10
		book.AvailabilityStatus = models.StatusAvailable
	}
	return args.Error(0)
}

func (m *MockBookRepository) Update(ctx context.Context, id int64, update repository.BookUpdate) (*models.Book, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

func (m *MockBookRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// MockCatalogCache mocks CatalogCache
type MockCatalogCache struct {
	mock.Mock
}

func (m *MockCatalogCache) Lookup(ctx context.Context, filter repository.BookFilter) ([]models.Book, bool, string) {
	args := m.Called(ctx, filter)
	books, _ := args.Get(0).([]models.Book)
	return books, args.Bool(1), args.String(2)
}

func (m *MockCatalogCache) Store(ctx context.Context, key string, books []models.Book) {
	m.Called(ctx, key, books)
}

func (m *MockCatalogCache) Invalidate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockReportRepository mocks repository.ReportRepository
type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) ActiveLoans(ctx context.Context) ([]repository.LoanReportRow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.LoanReportRow), args.Error(1)
}

func (m *MockReportRepository) Overdue(ctx context.Context, asOf time.Time) ([]repository.LoanReportRow, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.LoanReportRow), args.Error(1)
}

func (m *MockReportRepository) BorrowingHistory(ctx context.Context, filter repository.HistoryFilter) ([]repository.LoanReportRow, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.LoanReportRow), args.Error(1)
}

func (m *MockReportRepository) Counters(ctx context.Context, asOf time.Time) (*repository.Counters, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Counters), args.Error(1)
}

func (m *MockReportRepository) RecentActivity(ctx context.Context, limit uint) ([]repository.ActivityRow, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.ActivityRow), args.Error(1)
}
