package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"libraryhub/internal/http-api/models"
	"libraryhub/internal/http-api/repository"
)

// CatalogCache caches search results. See repository.CatalogCache.
type CatalogCache interface {
	Lookup(ctx context.Context, filter repository.BookFilter) ([]models.Book, bool, string)
	Store(ctx context.Context, key string, books []models.Book)
	Invalidate(ctx context.Context) error
}

type noCache struct{}

func (noCache) Lookup(context.Context, repository.BookFilter) ([]models.Book, bool, string) {
	return nil, false, ""
}
func (noCache) Store(context.Context, string, []models.Book) {}
func (noCache) Invalidate(context.Context) error              { return nil }

// BookInput is a new catalogue entry.
type BookInput struct {
	Title         string
	Author        string
	ISBN          *string
	Category      *string
	PublishedYear *int
}

type CatalogService interface {
	Search(ctx context.Context, filter repository.BookFilter) ([]models.Book, error)
	Get(ctx context.Context, id int64) (*models.Book, error)
	Create(ctx context.Context, in BookInput) (*models.Book, error)
	Update(ctx context.Context, id int64, update repository.BookUpdate) (*models.Book, error)
	Delete(ctx context.Context, id int64) error
}

type catalogService struct {
	books        repository.BookRepository
	cache        CatalogCache
	storeTimeout time.Duration
	logger       *slog.Logger
}

func NewCatalogService(books repository.BookRepository, cache CatalogCache, storeTimeout time.Duration, logger *slog.Logger) CatalogService {
	if cache == nil {
		cache = noCache{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &catalogService{books: books, cache: cache, storeTimeout: storeTimeout, logger: logger}
}

// Search is open to anonymous callers and served through the cache.
func (s *catalogService) Search(ctx context.Context, filter repository.BookFilter) ([]models.Book, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	filter.Category = strings.TrimSpace(filter.Category)
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, Validationf("unknown availability status %q", filter.Status)
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	books, hit, key := s.cache.Lookup(ctx, filter)
	if hit {
		return books, nil
	}

	books, err := s.books.Search(ctx, filter)
	if err != nil {
		return nil, translate("search books", err, nil, nil)
	}
	s.cache.Store(ctx, key, books)
	return books, nil
}

func (s *catalogService) Get(ctx context.Context, id int64) (*models.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	book, err := s.books.GetByID(ctx, id)
	if err != nil {
		return nil, translate("get book", err, ErrBookNotFound, nil)
	}
	return book, nil
}

// Create adds a book; new books always start available.
func (s *catalogService) Create(ctx context.Context, in BookInput) (*models.Book, error) {
	book := &models.Book{
		Title:         strings.TrimSpace(in.Title),
		Author:        strings.TrimSpace(in.Author),
		ISBN:          in.ISBN,
		Category:      in.Category,
		PublishedYear: in.PublishedYear,
	}
	if book.Title == "" || book.Author == "" {
		return nil, Validationf("title and author are required")
	}
	if err := validYear(in.PublishedYear); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	if err := s.books.Create(ctx, book); err != nil {
		return nil, translate("create book", err, nil, ErrISBNInUse)
	}
	s.invalidate(ctx)
	s.logger.Info("book_created", "book_id", book.ID)
	return book, nil
}

func (s *catalogService) Update(ctx context.Context, id int64, update repository.BookUpdate) (*models.Book, error) {
	for _, field := range []*string{update.Title, update.Author} {
		if field != nil && strings.TrimSpace(*field) == "" {
			return nil, Validationf("title and author cannot be blank")
		}
	}
	if err := validYear(update.PublishedYear); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	book, err := s.books.Update(ctx, id, update)
	if err != nil {
		return nil, translate("update book", err, ErrBookNotFound, ErrISBNInUse)
	}
	s.invalidate(ctx)
	s.logger.Info("book_updated", "book_id", id)
	return book, nil
}

// Delete removes a book from the catalogue unless it is on loan.
func (s *catalogService) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	if err := s.books.Delete(ctx, id); err != nil {
		return translate("delete book", err, ErrBookNotFound, ErrBookOnLoan)
	}
	s.invalidate(ctx)
	s.logger.Info("book_deleted", "book_id", id)
	return nil
}

func (s *catalogService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("catalog_cache_invalidate_failed", "error", err)
	}
}

// negative years are BCE
const maxYear = 9999

func validYear(year *int) error {
	if year != nil && (*year < -maxYear || *year > maxYear || *year == 0) {
		return Validationf("published_year must be a non-zero year between -%d and %d", maxYear, maxYear)
	}
	return nil
}
