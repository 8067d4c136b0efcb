package dto

import (
	"libraryhub/internal/http-api/models"
	"libraryhub/internal/http-api/repository"
	"libraryhub/internal/http-api/service"
)

// CreateBookRequest used for POST /api/books
type CreateBookRequest struct {
	Title         string  `json:"title" binding:"required"`
	Author        string  `json:"author" binding:"required"`
	ISBN          *string `json:"isbn,omitempty"`
	Category      *string `json:"category,omitempty"`
	PublishedYear *int    `json:"published_year,omitempty"`
}

// UpdateBookRequest used for PUT /api/books/:id (partial updates allowed)
// availability_status is not accepted here; only circulation changes it.
type UpdateBookRequest struct {
	Title         *string `json:"title,omitempty"`
	Author        *string `json:"author,omitempty"`
	ISBN          *string `json:"isbn,omitempty"`
	Category      *string `json:"category,omitempty"`
	PublishedYear *int    `json:"published_year,omitempty"`
}

// BookQuery is the query string of GET /api/books
type BookQuery struct {
	Search   string `form:"search"`
	Category string `form:"category"`
	Status   string `form:"status"`
}

type CreateBookResponse struct {
	Message string `json:"message"`
	BookID  int64  `json:"bookId"`
}

// Converters
func (r CreateBookRequest) ToInput() service.BookInput {
	return service.BookInput{
		Title:         r.Title,
		Author:        r.Author,
		ISBN:          r.ISBN,
		Category:      r.Category,
		PublishedYear: r.PublishedYear,
	}
}

func (r UpdateBookRequest) ToUpdate() repository.BookUpdate {
	return repository.BookUpdate{
		Title:         r.Title,
		Author:        r.Author,
		ISBN:          r.ISBN,
		Category:      r.Category,
		PublishedYear: r.PublishedYear,
	}
}

func (q BookQuery) ToFilter() repository.BookFilter {
	return repository.BookFilter{
		Search:   q.Search,
		Category: q.Category,
		Status:   models.AvailabilityStatus(q.Status),
	}
}
