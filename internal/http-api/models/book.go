package models

import (
	"time"

	"gorm.io/gorm"
)

// AvailabilityStatus is the circulation state of a book.
// Only the circulation engine changes it.
type AvailabilityStatus string

const (
	StatusAvailable AvailabilityStatus = "available"
	StatusBorrowed  AvailabilityStatus = "borrowed"
	StatusReserved  AvailabilityStatus = "reserved"
)

func (s AvailabilityStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusBorrowed, StatusReserved:
		return true
	}
	return false
}

type Book struct {
	ID                 int64              `gorm:"primaryKey;autoIncrement" json:"id"`
	Title              string             `gorm:"size:500;not null;index" json:"title"`
	Author             string             `gorm:"size:300;not null" json:"author"`
	ISBN               *string            `gorm:"column:isbn;size:20;uniqueIndex" json:"isbn"`
	Category           *string            `gorm:"size:100;index" json:"category"`
	PublishedYear      *int               `json:"published_year"`
	AvailabilityStatus AvailabilityStatus `gorm:"size:20;not null;default:'available';index;check:chk_books_status,availability_status IN ('available','borrowed','reserved')" json:"availability_status"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
	DeletedAt          gorm.DeletedAt     `gorm:"index" json:"-"`
}

func (Book) TableName() string {
	return "books"
}
