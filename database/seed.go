package database

import (
	"context"
	"fmt"

	"libraryhub/internal/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Default operator account created by the seed step when missing.
const (
	DefaultAdminName     = "Administrator"
	DefaultAdminEmail    = "admin@library.com"
	DefaultAdminPassword = "admin123"
)

type sampleBook struct {
	Title    string
	Author   string
	ISBN     string
	Category string
	Year     int
}

var sampleBooks = []sampleBook{
	{"The Great Gatsby", "F. Scott Fitzgerald", "9780743273565", "Fiction", 1925},
	{"To Kill a Mockingbird", "Harper Lee", "9780061120084", "Fiction", 1960},
	{"1984", "George Orwell", "9780451524935", "Fiction", 1949},
	{"Pride and Prejudice", "Jane Austen", "9780141439518", "Fiction", 1813},
	{"The Catcher in the Rye", "J.D. Salinger", "9780316769174", "Fiction", 1951},
	{"A Brief History of Time", "Stephen Hawking", "9780553380163", "Science", 1988},
	{"Sapiens: A Brief History of Humankind", "Yuval Noah Harari", "9780062316097", "History", 2011},
	{"The Selfish Gene", "Richard Dawkins", "9780192860927", "Science", 1976},
	{"Thinking, Fast and Slow", "Daniel Kahneman", "9780374533557", "Non-Fiction", 2011},
	{"The Lean Startup", "Eric Ries", "9780307887894", "Technology", 2011},
	{"Clean Code", "Robert C. Martin", "9780132350884", "Technology", 2008},
	{"The Art of Computer Programming", "Donald E. Knuth", "9780321751041", "Technology", 1968},
	{"Guns, Germs, and Steel", "Jared Diamond", "9780393317558", "History", 1997},
	{"The Origin of Species", "Charles Darwin", "9780451529060", "Science", 1859},
	{"The Wealth of Nations", "Adam Smith", "9780140432084", "Non-Fiction", 1776},
	{"The Art of War", "Sun Tzu", "9781590309637", "Non-Fiction", -500},
	{"The Republic", "Plato", "9780140449143", "Non-Fiction", -380},
	{"The Odyssey", "Homer", "9780140268867", "Fiction", -800},
	{"The Iliad", "Homer", "9780140275360", "Fiction", -800},
	{"The Divine Comedy", "Dante Alighieri", "9780140448955", "Fiction", 1320},
}

// SampleBooks returns the seed catalogue as models, all available.
func SampleBooks() []models.Book {
	books := make([]models.Book, 0, len(sampleBooks))
	for _, s := range sampleBooks {
		isbn, category, year := s.ISBN, s.Category, s.Year
		books = append(books, models.Book{
			Title:              s.Title,
			Author:             s.Author,
			ISBN:               &isbn,
			Category:           &category,
			PublishedYear:      &year,
			AvailabilityStatus: models.StatusAvailable,
		})
	}
	return books
}

// SeedBooks inserts the sample catalogue. Books whose isbn already exists
// are left untouched, so the step can be re-run safely.
func SeedBooks(ctx context.Context, db *gorm.DB) (int64, error) {
	books := SampleBooks()
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "isbn"}}, DoNothing: true}).
		Create(&books)
	if res.Error != nil {
		return 0, fmt.Errorf("seed books: %w", res.Error)
	}
	return res.RowsAffected, nil
}
