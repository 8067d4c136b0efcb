package dto

import (
	"time"

	"libraryhub/internal/http-api/models"
)

type BorrowRequest struct {
	BookID int64 `json:"bookId" binding:"required,gt=0"`
}

type ReturnRequest struct {
	RecordID int64 `json:"recordId" binding:"required,gt=0"`
}

type ReserveRequest struct {
	BookID int64 `json:"bookId" binding:"required,gt=0"`
}

type BorrowResponse struct {
	Message  string    `json:"message"`
	RecordID int64     `json:"recordId"`
	DueDate  time.Time `json:"dueDate"`
}

type ReturnResponse struct {
	Message    string  `json:"message"`
	FineAmount float64 `json:"fineAmount"`
}

type ReserveResponse struct {
	Message       string `json:"message"`
	ReservationID int64  `json:"reservationId"`
}

// BorrowedBookResponse is an active loan joined with its book
type BorrowedBookResponse struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"user_id"`
	BookID       int64      `json:"book_id"`
	BorrowedDate time.Time  `json:"borrowed_date"`
	DueDate      time.Time  `json:"due_date"`
	ReturnDate   *time.Time `json:"return_date"`
	FineAmount   float64    `json:"fine_amount"`
	Status       string     `json:"status"`
	Title        string     `json:"title"`
	Author       string     `json:"author"`
	ISBN         *string    `json:"isbn"`
}

func FromBorrowingRecord(r models.BorrowingRecord) BorrowedBookResponse {
	resp := BorrowedBookResponse{
		ID:           r.ID,
		UserID:       r.UserID,
		BookID:       r.BookID,
		BorrowedDate: r.BorrowedDate,
		DueDate:      r.DueDate,
		ReturnDate:   r.ReturnDate,
		FineAmount:   r.FineAmount.InexactFloat64(),
		Status:       string(r.Status),
	}
	if r.Book != nil {
		resp.Title = r.Book.Title
		resp.Author = r.Book.Author
		resp.ISBN = r.Book.ISBN
	}
	return resp
}

type ReservationResponse struct {
	ID              int64     `json:"id"`
	BookID          int64     `json:"book_id"`
	ReservationDate time.Time `json:"reservation_date"`
	Status          string    `json:"status"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
}

func FromReservation(r models.Reservation) ReservationResponse {
	resp := ReservationResponse{
		ID:              r.ID,
		BookID:          r.BookID,
		ReservationDate: r.ReservationDate,
		Status:          string(r.Status),
	}
	if r.Book != nil {
		resp.Title = r.Book.Title
		resp.Author = r.Book.Author
	}
	return resp
}
