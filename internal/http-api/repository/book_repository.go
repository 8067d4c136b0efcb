package repository

import (
	"context"
	"strings"

	"libraryhub/internal/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookFilter narrows a catalogue search. Zero values mean "no filter".
type BookFilter struct {
	Search   string                    // substring of title, author or isbn
	Category string                    // exact
	Status   models.AvailabilityStatus // exact
}

// BookUpdate carries the inventory fields an edit may change.
// availability_status is deliberately absent: only circulation changes it.
type BookUpdate struct {
	Title         *string
	Author        *string
	ISBN          *string
	Category      *string
	PublishedYear *int
}

func (u BookUpdate) columns() map[string]any {
	cols := make(map[string]any)
	if u.Title != nil {
		cols["title"] = *u.Title
	}
	if u.Author != nil {
		cols["author"] = *u.Author
	}
	if u.ISBN != nil {
		cols["isbn"] = NullableString(u.ISBN)
	}
	if u.Category != nil {
		cols["category"] = NullableString(u.Category)
	}
	if u.PublishedYear != nil {
		cols["published_year"] = *u.PublishedYear
	}
	return cols
}

// BookRepository is the catalog store.
type BookRepository interface {
	Search(ctx context.Context, filter BookFilter) ([]models.Book, error)
	GetByID(ctx context.Context, id int64) (*models.Book, error)
	Create(ctx context.Context, book *models.Book) error
	Update(ctx context.Context, id int64, update BookUpdate) (*models.Book, error)
	Delete(ctx context.Context, id int64) error
}

type bookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

// Search performs case-insensitive partial match on title, author and isbn,
// plus exact category/status filters, ordered by title.
func (r *bookRepository) Search(ctx context.Context, filter BookFilter) ([]models.Book, error) {
	q := r.db.WithContext(ctx).Model(&models.Book{})

	if term := strings.TrimSpace(filter.Search); term != "" {
		p := "%" + escapeLike(term) + "%"
		// COALESCE so a NULL isbn does not drop the row
		q = q.Where("(title ILIKE ? OR author ILIKE ? OR COALESCE(isbn, '') ILIKE ?)", p, p, p)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Status != "" {
		q = q.Where("availability_status = ?", filter.Status)
	}

	books := make([]models.Book, 0)
	if err := q.Order("title ASC").Order("id ASC").Find(&books).Error; err != nil {
		return nil, classify("search books", err)
	}
	return books, nil
}

func (r *bookRepository) GetByID(ctx context.Context, id int64) (*models.Book, error) {
	var b models.Book
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, classify("get book", err)
	}
	return &b, nil
}

func (r *bookRepository) Create(ctx context.Context, book *models.Book) error {
	book.ISBN = NullableString(book.ISBN)
	book.Category = NullableString(book.Category)
	book.AvailabilityStatus = models.StatusAvailable
	// GORM will populate book.ID and timestamps
	return classify("create book", r.db.WithContext(ctx).Create(book).Error)
}

func (r *bookRepository) Update(ctx context.Context, id int64, update BookUpdate) (*models.Book, error) {
	var book models.Book
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&book, id).Error; err != nil {
			return err
		}
		cols := update.columns()
		if len(cols) == 0 {
			return nil
		}
		if err := tx.Model(&book).Updates(cols).Error; err != nil {
			return err
		}
		return tx.First(&book, id).Error
	})
	if err != nil {
		return nil, classify("update book", err)
	}
	return &book, nil
}

// Delete soft-deletes a book that is not on loan. Ledger rows keep pointing at it.
func (r *bookRepository) Delete(ctx context.Context, id int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var book models.Book
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&book, id).Error; err != nil {
			return err
		}
		if book.AvailabilityStatus == models.StatusBorrowed {
			return ErrInUse
		}
		return tx.Delete(&book).Error
	})
	return classify("delete book", err)
}

// NullableString turns blank strings into NULL so optional unique columns do not collide.
func NullableString(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
