package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type LoanStatus string

const (
	LoanActive   LoanStatus = "active"
	LoanReturned LoanStatus = "returned"
)

// BorrowingRecord is one loan of one book to one user.
// The partial unique index keeps a single active loan per book.
type BorrowingRecord struct {
	ID           int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID       int64           `gorm:"not null;index" json:"user_id"`
	BookID       int64           `gorm:"not null;uniqueIndex:idx_active_loan_per_book,where:status = 'active'" json:"book_id"`
	BorrowedDate time.Time       `gorm:"not null;index" json:"borrowed_date"`
	DueDate      time.Time       `gorm:"not null;index" json:"due_date"`
	ReturnDate   *time.Time      `json:"return_date"`
	FineAmount   decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"fine_amount"`
	Status       LoanStatus      `gorm:"size:20;not null;default:'active';index;check:chk_records_status,status IN ('active','returned')" json:"status"`

	// Associations
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Book *Book `gorm:"foreignKey:BookID" json:"book,omitempty"`
}

func (BorrowingRecord) TableName() string {
	return "borrowing_records"
}
