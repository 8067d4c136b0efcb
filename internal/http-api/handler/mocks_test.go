package handler

import (
	"context"

	"libraryhub/internal/http-api/models"
	"libraryhub/internal/http-api/repository"
	"libraryhub/internal/http-api/service"

	"github.com/stretchr/testify/mock"
)

// MockAuthService mocks the AuthService interface; Authorize uses the real policy table.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, in service.RegisterInput) (*models.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) CreateAdmin(ctx context.Context, name, email, password string) (*models.User, error) {
	args := m.Called(ctx, name, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) Authenticate(ctx context.Context, email, password string) (string, *models.User, error) {
	args := m.Called(ctx, email, password)
	user, _ := args.Get(1).(*models.User)
	return args.String(0), user, args.Error(2)
}

func (m *MockAuthService) Verify(ctx context.Context, token string) (*service.Identity, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Identity), args.Error(1)
}

func (m *MockAuthService) Authorize(id *service.Identity, op service.Operation) error {
	return service.DefaultPolicy().Authorize(id, op)
}

func (m *MockAuthService) Logout(ctx context.Context, id *service.Identity) error {
	return m.Called(ctx, id).Error(0)
}

// MockCatalogService mocks the CatalogService interface
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) Search(ctx context.Context, filter repository.BookFilter) ([]models.Book, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Book), args.Error(1)
}

func (m *MockCatalogService) Get(ctx context.Context, id int64) (*models.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

func (m *MockCatalogService) Create(ctx context.Context, in service.BookInput) (*models.Book, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

func (m *MockCatalogService) Update(ctx context.Context, id int64, update repository.BookUpdate) (*models.Book, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

func (m *MockCatalogService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// MockCirculationService mocks the CirculationService interface
type MockCirculationService struct {
	mock.Mock
}

func (m *MockCirculationService) Borrow(ctx context.Context, userID, bookID int64) (*models.BorrowingRecord, error) {
	args := m.Called(ctx, userID, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BorrowingRecord), args.Error(1)
}

func (m *MockCirculationService) Return(ctx context.Context, userID, recordID int64) (*service.ReturnResult, error) {
	args := m.Called(ctx, userID, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ReturnResult), args.Error(1)
}

func (m *MockCirculationService) Reserve(ctx context.Context, userID, bookID int64) (*models.Reservation, error) {
	args := m.Called(ctx, userID, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reservation), args.Error(1)
}

func (m *MockCirculationService) CancelReservation(ctx context.Context, userID, reservationID int64) error {
	return m.Called(ctx, userID, reservationID).Error(0)
}

func (m *MockCirculationService) ListBorrowed(ctx context.Context, userID int64) ([]models.BorrowingRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BorrowingRecord), args.Error(1)
}

func (m *MockCirculationService) ListReservations(ctx context.Context, userID int64) ([]models.Reservation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Reservation), args.Error(1)
}

// MockReportService mocks the ReportService interface
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) ActiveLoans(ctx context.Context) ([]repository.LoanReportRow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.LoanReportRow), args.Error(1)
}

func (m *MockReportService) Overdue(ctx context.Context) ([]service.OverdueLoan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.OverdueLoan), args.Error(1)
}

func (m *MockReportService) BorrowingHistory(ctx context.Context, filter repository.HistoryFilter) ([]repository.LoanReportRow, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.LoanReportRow), args.Error(1)
}

func (m *MockReportService) Stats(ctx context.Context) (*service.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Stats), args.Error(1)
}

type fakePinger struct {
	err error
}

func (p fakePinger) PingContext(context.Context) error { return p.err }
